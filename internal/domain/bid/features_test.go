package bid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtractFeatures(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC) // Friday

	ctx := BidContext{
		CampaignID: uuid.New(),
		UserID:     uuid.New().String(),
		UserSegment: UserSegment{
			Category:              "luxury",
			EngagementScore:       0.8,
			ConversionProbability: 0.25,
		},
		GeoLocation: GeoLocation{Country: "DE"},
		DeviceInfo:  DeviceInfo{DeviceType: "mobile", IsMobile: true},
		FloorPrice:  1.5,
	}
	stats := HistoricalStats{
		WinRate:           0.55,
		AvgBid:            2.1,
		AvgWinPrice:       2.3,
		SpendLast7d:       42.0,
		ConversionsLast7d: 5.0,
		SampleCount:       37,
	}

	fv := ExtractFeatures(ctx, stats, now, "US")

	assert.Equal(t, 1.5, fv.FloorPrice)
	assert.Equal(t, 0.8, fv.EngagementScore)
	assert.Equal(t, 0.25, fv.ConversionProbability)
	assert.Equal(t, 0.55, fv.HistoricalWinRate)
	assert.Equal(t, 2.1, fv.HistoricalAvgBid)
	assert.Equal(t, 2.3, fv.HistoricalAvgWinPrice)
	assert.Equal(t, "mobile", fv.DeviceType)
	assert.Equal(t, "luxury", fv.SegmentCategory)
	assert.Equal(t, "DE", fv.Country)
	assert.Equal(t, 15, fv.HourOfDay)
	assert.Equal(t, int(time.Friday), fv.DayOfWeek)
	assert.Equal(t, 42.0, fv.CampaignSpendLast7d)
	assert.Equal(t, 5.0, fv.CampaignConversionsLast7d)
	assert.Equal(t, 37, fv.SampleCount)
}

func TestExtractFeatures_Defaults(t *testing.T) {
	fv := ExtractFeatures(BidContext{FloorPrice: 0.5}, DefaultHistoricalStats(), time.Now(), "US")

	assert.Equal(t, DefaultEngagementScore, fv.EngagementScore)
	assert.Equal(t, DefaultConversionProbability, fv.ConversionProbability)
	assert.Equal(t, DefaultDeviceType, fv.DeviceType)
	assert.Equal(t, DefaultSegmentCategory, fv.SegmentCategory)
	assert.Equal(t, "US", fv.Country)
	assert.Equal(t, 0, fv.SampleCount)
}

func TestExtractFeatures_UTCTimeFeatures(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	now := time.Date(2025, 3, 14, 23, 0, 0, 0, loc) // 07:00 Saturday UTC

	fv := ExtractFeatures(BidContext{}, DefaultHistoricalStats(), now, "US")

	assert.Equal(t, 7, fv.HourOfDay)
	assert.Equal(t, int(time.Saturday), fv.DayOfWeek)
}
