package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"match-service/config"
	"match-service/constant"
	"match-service/dto"
	"match-service/entities"
	"match-service/pkg/apperror"
	"match-service/pkg/queue"
	"match-service/repository"
	"match-service/storage"
)

// MatchService owns the owner-facing match lifecycle: creation with its
// upload and job-enqueue side effects, reads, and video access.
type MatchService interface {
	Create(ctx context.Context, userID int64, req dto.CreateMatchRequest, video *dto.VideoUpload) (*entities.Match, error)
	List(ctx context.Context, userID int64) ([]*entities.Match, error)
	Get(ctx context.Context, userID, id int64) (*entities.Match, error)
	DownloadURL(ctx context.Context, userID, id int64) (*dto.VideoURLResponse, error)
	OpenVideo(ctx context.Context, userID, id int64) (*storage.Object, error)
}

type matchService struct {
	repo  repository.MatchRepository
	store storage.Store
	queue queue.Queue
	cfg   *config.Config
}

func NewMatchService(repo repository.MatchRepository, store storage.Store, q queue.Queue, cfg *config.Config) MatchService {
	return &matchService{
		repo:  repo,
		store: store,
		queue: q,
		cfg:   cfg,
	}
}

// Create stores the upload, persists the match as UPLOADED, then
// enqueues exactly one analysis job for it. A failed blob write aborts
// before any row exists, so a job is never enqueued for a match whose
// bytes were lost.
func (s *matchService) Create(ctx context.Context, userID int64, req dto.CreateMatchRequest, video *dto.VideoUpload) (*entities.Match, error) {
	if video == nil {
		return nil, apperror.InvalidRequest("Video file is required")
	}

	var eventDate *time.Time
	if req.EventDate != "" {
		t, err := time.Parse(time.RFC3339, req.EventDate)
		if err != nil {
			return nil, apperror.InvalidRequest("eventDate must be an ISO 8601 date-time")
		}
		eventDate = &t
	}

	locator, err := s.store.Put(ctx, video.Reader, video.Size, video.Filename)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to store uploaded video")
		return nil, apperror.StorageFailure("failed to store uploaded video", err)
	}

	match := &entities.Match{
		UserID:           userID,
		Title:            req.Title,
		Player1Name:      req.Player1Name,
		Player2Name:      req.Player2Name,
		EventDate:        eventDate,
		Location:         req.Location,
		Description:      req.Description,
		OriginalVideoKey: locator,
		Status:           constant.MatchStatusUploaded,
	}
	if err := s.repo.Create(ctx, match); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to persist match")
		return nil, apperror.StorageFailure("failed to persist match", err)
	}

	job := dto.JobMessage{
		Type:      string(constant.JobTypeTranscodeAndAnalyze),
		MatchID:   match.ID,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("match_id", match.ID).Msg("failed to enqueue job")
		return nil, apperror.StorageFailure("failed to enqueue processing job", err)
	}

	zerolog.Ctx(ctx).Info().Int64("match_id", match.ID).Msg("match created and job enqueued")
	return match, nil
}

func (s *matchService) List(ctx context.Context, userID int64) ([]*entities.Match, error) {
	matches, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, apperror.StorageFailure("failed to list matches", err)
	}
	return matches, nil
}

func (s *matchService) Get(ctx context.Context, userID, id int64) (*entities.Match, error) {
	match, err := s.repo.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, apperror.StorageFailure("failed to load match", err)
	}
	if match == nil {
		return nil, apperror.NotFound("Match not found")
	}
	return match, nil
}

func (s *matchService) DownloadURL(ctx context.Context, userID, id int64) (*dto.VideoURLResponse, error) {
	match, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if s.store.SupportsSignedURLs() {
		ttl := time.Duration(s.cfg.Blob.SignedURLExpirySeconds) * time.Second
		url, err := s.store.SignedURL(ctx, match.OriginalVideoKey, ttl)
		if err != nil {
			return nil, apperror.StorageFailure("failed to sign download url", err)
		}
		return &dto.VideoURLResponse{
			URL:       url,
			ExpiresIn: s.cfg.Blob.SignedURLExpirySeconds,
			ExpiresAt: time.Now().Add(ttl).UTC().Format(time.RFC3339),
			IsSigned:  true,
		}, nil
	}

	return &dto.VideoURLResponse{
		URL:      fmt.Sprintf("%s/v1/videos/%d", s.cfg.Blob.PublicBaseURL, id),
		IsSigned: false,
	}, nil
}

// OpenVideo resolves ownership and opens the original video blob. A
// missing blob behind an existing row surfaces as NotFound rather than
// being ignored.
func (s *matchService) OpenVideo(ctx context.Context, userID, id int64) (*storage.Object, error) {
	match, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, match.OriginalVideoKey)
}
