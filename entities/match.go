package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"match-service/constant"
)

type Match struct {
	ID               int64                `json:"id" gorm:"primaryKey"`
	UserID           int64                `json:"user_id"`
	Title            string               `json:"title"`
	Player1Name      string               `json:"player1_name"`
	Player2Name      string               `json:"player2_name"`
	EventDate        *time.Time           `json:"event_date"`
	Location         string               `json:"location"`
	Description      string               `json:"description"`
	OriginalVideoKey string               `json:"original_video_key"`
	Status           constant.MatchStatus `json:"status"`
	Tracking         *TrackingData        `json:"tracking,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func (Match) TableName() string {
	return "matches"
}

// TrackingData is the analysis output attached to a DONE match. It is
// stored verbatim as a jsonb column.
type TrackingData struct {
	Court    TrackingCourt           `json:"court"`
	Timeline []TrackingTimelineEntry `json:"timeline"`
}

type TrackingCourt struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type TrackingBall struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TrackingTimelineEntry struct {
	T float64      `json:"t"`
	B TrackingBall `json:"b"`
}

func (t TrackingData) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *TrackingData) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return errors.Join(errTrackingScan, fmt.Errorf("unsupported type %T", value))
	}
}

var errTrackingScan = errors.New("cannot scan tracking column")
