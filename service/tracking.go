package service

import (
	"match-service/dto"
	"match-service/entities"
	"match-service/pkg/apperror"
)

// validateTracking checks the shape of a worker-supplied tracking
// payload and converts it to its stored form. It is purely structural:
// timeline ordering and coordinate bounds are not checked. The first
// violation wins and its message is surfaced to the worker verbatim.
func validateTracking(payload *dto.TrackingPayload) (*entities.TrackingData, error) {
	if payload == nil {
		return nil, apperror.InvalidRequest("tracking is required for DONE status")
	}
	court := payload.Court
	if court == nil || court.Width == nil || court.Height == nil {
		return nil, apperror.InvalidRequest("tracking.court.width/height are required numbers")
	}
	if payload.Timeline == nil {
		return nil, apperror.InvalidRequest("tracking.timeline must be an array")
	}

	timeline := make([]entities.TrackingTimelineEntry, 0, len(payload.Timeline))
	for _, item := range payload.Timeline {
		if item.T == nil {
			return nil, apperror.InvalidRequest("tracking.timeline items require numeric t")
		}
		if item.B == nil || item.B.X == nil || item.B.Y == nil {
			return nil, apperror.InvalidRequest("tracking.timeline items require b.x and b.y numbers")
		}
		timeline = append(timeline, entities.TrackingTimelineEntry{
			T: *item.T,
			B: entities.TrackingBall{X: *item.B.X, Y: *item.B.Y},
		})
	}

	return &entities.TrackingData{
		Court:    entities.TrackingCourt{Width: *court.Width, Height: *court.Height},
		Timeline: timeline,
	}, nil
}
