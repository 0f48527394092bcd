package bid

import "time"

// Neutral defaults substituted during feature extraction when the
// incoming context omits a signal.
const (
	DefaultEngagementScore       = 0.5
	DefaultConversionProbability = 0.1
	DefaultDeviceType            = "unknown"
	DefaultSegmentCategory       = "standard"
)

// FeatureVector is the complete, defaulted input to a prediction
// backend. Backends must not need any other request state.
type FeatureVector struct {
	FloorPrice            float64 `json:"floor_price"`
	EngagementScore       float64 `json:"engagement_score"`
	ConversionProbability float64 `json:"conversion_probability"`

	HistoricalWinRate     float64 `json:"historical_win_rate"`
	HistoricalAvgBid      float64 `json:"historical_avg_bid"`
	HistoricalAvgWinPrice float64 `json:"historical_avg_win_price"`

	DeviceType      string `json:"device_type"`
	SegmentCategory string `json:"segment_category"`
	Country         string `json:"country"`

	HourOfDay int `json:"hour_of_day"`
	DayOfWeek int `json:"day_of_week"`

	CampaignSpendLast7d       float64 `json:"campaign_spend_last_7d"`
	CampaignConversionsLast7d float64 `json:"campaign_conversions_last_7d"`

	// SampleCount carries how many events backed the historical fields,
	// so backends can scale confidence without a second lookup.
	SampleCount int `json:"sample_count"`
}

// ExtractFeatures builds the backend input from a bid context and the
// campaign's aggregated history. Zero-valued optional signals get the
// neutral defaults above; a missing country falls back to
// defaultCountry. Time-of-day features come from now in UTC.
func ExtractFeatures(ctx BidContext, stats HistoricalStats, now time.Time, defaultCountry string) FeatureVector {
	fv := FeatureVector{
		FloorPrice:            ctx.FloorPrice,
		EngagementScore:       ctx.UserSegment.EngagementScore,
		ConversionProbability: ctx.UserSegment.ConversionProbability,

		HistoricalWinRate:     stats.WinRate,
		HistoricalAvgBid:      stats.AvgBid,
		HistoricalAvgWinPrice: stats.AvgWinPrice,

		DeviceType:      ctx.DeviceInfo.DeviceType,
		SegmentCategory: ctx.UserSegment.Category,
		Country:         ctx.GeoLocation.Country,

		HourOfDay: now.UTC().Hour(),
		DayOfWeek: int(now.UTC().Weekday()),

		CampaignSpendLast7d:       stats.SpendLast7d,
		CampaignConversionsLast7d: stats.ConversionsLast7d,

		SampleCount: stats.SampleCount,
	}

	if fv.EngagementScore == 0 {
		fv.EngagementScore = DefaultEngagementScore
	}
	if fv.ConversionProbability == 0 {
		fv.ConversionProbability = DefaultConversionProbability
	}
	if fv.DeviceType == "" {
		fv.DeviceType = DefaultDeviceType
	}
	if fv.SegmentCategory == "" {
		fv.SegmentCategory = DefaultSegmentCategory
	}
	if fv.Country == "" {
		fv.Country = defaultCountry
	}

	return fv
}
