package bid

import (
	"time"

	"github.com/google/uuid"
)

// BidContext is an incoming bid opportunity. It is immutable once
// constructed; the engine never writes back into it.
type BidContext struct {
	CampaignID  uuid.UUID   `json:"campaign_id" validate:"required"`
	UserID      string      `json:"user_id" validate:"required"`
	UserSegment UserSegment `json:"user_segment"`
	GeoLocation GeoLocation `json:"geo_location"`
	DeviceInfo  DeviceInfo  `json:"device_info"`
	FloorPrice  float64     `json:"floor_price" validate:"gte=0"`
	Keywords    []string    `json:"keywords"`
	Timestamp   time.Time   `json:"timestamp"`
}

// UserSegment describes the audience segment a request belongs to.
type UserSegment struct {
	SegmentID             string  `json:"segment_id"`
	Category              string  `json:"category"`
	EngagementScore       float64 `json:"engagement_score" validate:"gte=0,lte=1"`
	ConversionProbability float64 `json:"conversion_probability" validate:"gte=0,lte=1"`
}

// GeoLocation is the request origin. Latitude/Longitude are optional.
type GeoLocation struct {
	Country   string   `json:"country"`
	Region    string   `json:"region"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// DeviceInfo describes the requesting device.
type DeviceInfo struct {
	DeviceType string `json:"device_type"`
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsMobile   bool   `json:"is_mobile"`
}

// BidEvent is one historical bid outcome. Owned by the storage
// collaborator; the engine reads snapshots and never mutates them.
type BidEvent struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	UserID     string    `json:"user_id"`

	BidPrice   float64  `json:"bid_price"`
	WinPrice   *float64 `json:"win_price,omitempty"`
	FloorPrice float64  `json:"floor_price"`

	Won       bool `json:"won"`
	Converted bool `json:"converted"`

	SegmentID       string `json:"segment_id"`
	SegmentCategory string `json:"segment_category"`

	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`

	DeviceType string `json:"device_type"`
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsMobile   bool   `json:"is_mobile"`

	Keywords []string `json:"keywords"`

	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
