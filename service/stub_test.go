package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"match-service/config"
	"match-service/constant"
	"match-service/entities"
	"match-service/pkg/apperror"
	"match-service/storage"
)

type fakeRepo struct {
	mu          sync.Mutex
	nextID      int64
	matches     map[int64]*entities.Match
	createErr   error
	updateCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{matches: map[int64]*entities.Match{}}
}

func (r *fakeRepo) Create(ctx context.Context, match *entities.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	match.ID = r.nextID
	match.CreatedAt = time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id int64) (*entities.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, nil
	}
	copied := *match
	return &copied, nil
}

func (r *fakeRepo) FindByIDAndOwner(ctx context.Context, id, userID int64) (*entities.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok || match.UserID != userID {
		return nil, nil
	}
	copied := *match
	return &copied, nil
}

func (r *fakeRepo) FindByOwner(ctx context.Context, userID int64) ([]*entities.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Match
	for _, match := range r.matches {
		if match.UserID != userID {
			continue
		}
		copied := *match
		copied.Tracking = nil
		out = append(out, &copied)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*entities.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, errors.New("row vanished")
	}
	r.updateCalls++
	if v, ok := fields["status"]; ok {
		match.Status = v.(constant.MatchStatus)
	}
	if v, ok := fields["tracking"]; ok {
		match.Tracking = v.(*entities.TrackingData)
	}
	if v, ok := fields["description"]; ok {
		match.Description = v.(string)
	}
	copied := *match
	return &copied, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	signed  bool
	putErr  error
	nextKey int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(ctx context.Context, r io.Reader, size int64, suggestedName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.nextKey++
	key := fmt.Sprintf("videos/obj-%d", s.nextKey)
	s.objects[key] = data
	return key, nil
}

func (s *fakeStore) Get(ctx context.Context, locator string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[locator]
	if !ok {
		return nil, apperror.NotFound("File not found")
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		Size:        int64(len(data)),
		ContentType: "video/mp4",
	}, nil
}

func (s *fakeStore) SupportsSignedURLs() bool {
	return s.signed
}

func (s *fakeStore) SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + locator, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Blob: config.Blob{
			PublicBaseURL:          "http://localhost:8080",
			SignedURLExpirySeconds: 900,
		},
		Worker: config.Worker{JobPollTimeoutSeconds: 0},
	}
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
	if ae.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%s)", kind, ae.Kind, ae.Message)
	}
}
