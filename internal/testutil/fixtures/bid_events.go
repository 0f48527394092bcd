package fixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/adlattice/bid-decision-engine/internal/domain/bid"
)

// BidEventBuilder builds test BidEvent records
type BidEventBuilder struct {
	event bid.BidEvent
}

// NewBidEventBuilder creates a new BidEventBuilder with defaults
func NewBidEventBuilder() *BidEventBuilder {
	now := time.Now().UTC()
	return &BidEventBuilder{
		event: bid.BidEvent{
			ID:              uuid.New(),
			CampaignID:      uuid.New(),
			UserID:          uuid.NewString(),
			BidPrice:        2.00,
			FloorPrice:      1.00,
			SegmentID:       "seg-general",
			SegmentCategory: "standard",
			Country:         "US",
			Region:          "CA",
			City:            "San Francisco",
			DeviceType:      "mobile",
			OS:              "iOS",
			Browser:         "Safari",
			IsMobile:        true,
			Timestamp:       now,
			CreatedAt:       now,
		},
	}
}

// WithCampaignID sets the campaign ID
func (b *BidEventBuilder) WithCampaignID(id uuid.UUID) *BidEventBuilder {
	b.event.CampaignID = id
	return b
}

// WithUserID sets the user ID
func (b *BidEventBuilder) WithUserID(id string) *BidEventBuilder {
	b.event.UserID = id
	return b
}

// WithBidPrice sets the bid price
func (b *BidEventBuilder) WithBidPrice(price float64) *BidEventBuilder {
	b.event.BidPrice = price
	return b
}

// WithFloorPrice sets the floor price
func (b *BidEventBuilder) WithFloorPrice(price float64) *BidEventBuilder {
	b.event.FloorPrice = price
	return b
}

// Won marks the event as a winning bid at the given price
func (b *BidEventBuilder) Won(winPrice float64) *BidEventBuilder {
	b.event.Won = true
	b.event.WinPrice = &winPrice
	return b
}

// Converted marks the event as converted
func (b *BidEventBuilder) Converted() *BidEventBuilder {
	b.event.Converted = true
	return b
}

// WithDevice sets the device type and mobile flag
func (b *BidEventBuilder) WithDevice(deviceType string) *BidEventBuilder {
	b.event.DeviceType = deviceType
	b.event.IsMobile = deviceType == "mobile"
	return b
}

// WithGeo sets country, region, and city
func (b *BidEventBuilder) WithGeo(country, region, city string) *BidEventBuilder {
	b.event.Country = country
	b.event.Region = region
	b.event.City = city
	return b
}

// WithTimestamp sets the event timestamp
func (b *BidEventBuilder) WithTimestamp(ts time.Time) *BidEventBuilder {
	b.event.Timestamp = ts
	return b
}

// Build returns the constructed event
func (b *BidEventBuilder) Build() *bid.BidEvent {
	ev := b.event
	return &ev
}

// BuildBatch returns n copies of the event, each with a fresh ID
func (b *BidEventBuilder) BuildBatch(n int) []*bid.BidEvent {
	events := make([]*bid.BidEvent, n)
	for i := range events {
		ev := b.event
		ev.ID = uuid.New()
		events[i] = &ev
	}
	return events
}
