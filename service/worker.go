package service

import (
	"context"
	"strings"
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

// WorkerService is the elevated-trust surface used by the out-of-process
// analysis workers: pulling jobs, fetching original video bytes, and
// reporting completion.
type WorkerService interface {
	NextJob(ctx context.Context) (*dto.JobMessage, error)
	Complete(ctx context.Context, req dto.WorkerCompleteRequest) (*entities.Match, error)
	OpenVideo(ctx context.Context, matchID int64) (*storage.Object, error)
}

type workerService struct {
	repo  repository.MatchRepository
	store storage.Store
	queue queue.Queue
	cfg   *config.Config
}

func NewWorkerService(repo repository.MatchRepository, store storage.Store, q queue.Queue, cfg *config.Config) WorkerService {
	return &workerService{
		repo:  repo,
		store: store,
		queue: q,
		cfg:   cfg,
	}
}

// NextJob blocks for up to the configured poll timeout. No job within
// the timeout is the normal poll-again outcome, reported as nil.
func (s *workerService) NextJob(ctx context.Context) (*dto.JobMessage, error) {
	timeout := time.Duration(s.cfg.Worker.JobPollTimeoutSeconds) * time.Second
	job, err := s.queue.Dequeue(ctx, timeout)
	if err != nil {
		return nil, apperror.StorageFailure("failed to pull next job", err)
	}
	return job, nil
}

// Complete applies the worker's terminal report. Validation happens
// entirely before the write: a rejected report leaves the match exactly
// as it was. The write itself is a single update statement; concurrent
// reports for one match resolve to whichever lands last.
func (s *workerService) Complete(ctx context.Context, req dto.WorkerCompleteRequest) (*entities.Match, error) {
	status := constant.MatchStatus(req.Status)

	if status == constant.MatchStatusError && req.ErrorMessage == "" {
		return nil, apperror.InvalidRequest("errorMessage is required when status is ERROR")
	}

	var tracking *entities.TrackingData
	if status == constant.MatchStatusDone {
		var err error
		tracking, err = validateTracking(req.Tracking)
		if err != nil {
			return nil, err
		}
	}

	match, err := s.repo.FindByID(ctx, req.MatchID)
	if err != nil {
		return nil, apperror.StorageFailure("failed to load match", err)
	}
	if match == nil {
		return nil, apperror.NotFound("Match not found")
	}

	fields := map[string]interface{}{
		"status": status,
	}
	switch status {
	case constant.MatchStatusDone:
		fields["tracking"] = tracking
	case constant.MatchStatusError:
		// Tracking stays untouched; the message lands in the description.
		fields["description"] = strings.TrimSpace(match.Description + "\nERROR: " + req.ErrorMessage)
	}

	updated, err := s.repo.UpdateFields(ctx, req.MatchID, fields)
	if err != nil {
		return nil, apperror.StorageFailure("failed to update match", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("match_id", req.MatchID).
		Str("status", status.String()).
		Msg("completion report applied")
	return updated, nil
}

// OpenVideo opens the original video for a worker. Workers are trusted
// past ownership, so the lookup is by id alone.
func (s *workerService) OpenVideo(ctx context.Context, matchID int64) (*storage.Object, error) {
	match, err := s.repo.FindByID(ctx, matchID)
	if err != nil {
		return nil, apperror.StorageFailure("failed to load match", err)
	}
	if match == nil {
		return nil, apperror.NotFound("Match not found")
	}
	return s.store.Get(ctx, match.OriginalVideoKey)
}
