package dto

import "io"

// JobMessage is the wire form of a queued job. Unknown extra fields are
// ignored by consumers.
type JobMessage struct {
	Type      string `json:"type"`
	MatchID   int64  `json:"matchId"`
	CreatedAt int64  `json:"createdAt"`
}

// VideoUpload is the uploaded video part of a create request.
type VideoUpload struct {
	Reader   io.Reader
	Size     int64
	Filename string
}

type CreateMatchRequest struct {
	Title       string `form:"title"`
	Player1Name string `form:"player1Name"`
	Player2Name string `form:"player2Name"`
	EventDate   string `form:"eventDate"`
	Location    string `form:"location"`
	Description string `form:"description"`
}

// WorkerCompleteRequest is the worker's terminal report for a match.
type WorkerCompleteRequest struct {
	MatchID      int64            `json:"matchId" binding:"required"`
	Status       string           `json:"status" binding:"required,oneof=DONE ERROR"`
	Tracking     *TrackingPayload `json:"tracking"`
	ErrorMessage string           `json:"errorMessage"`
}

// TrackingPayload mirrors entities.TrackingData with pointer fields so
// absent values are distinguishable from zeros during validation.
type TrackingPayload struct {
	Court    *TrackingCourtPayload          `json:"court"`
	Timeline []TrackingTimelineEntryPayload `json:"timeline"`
}

type TrackingCourtPayload struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

type TrackingBallPayload struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type TrackingTimelineEntryPayload struct {
	T *float64             `json:"t"`
	B *TrackingBallPayload `json:"b"`
}

type VideoURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	IsSigned  bool   `json:"isSigned"`
}
