package bid

// Default historical statistics used when a campaign has no recorded
// events. Chosen so every feature vector carries plausible market-rate
// priors instead of zeros.
const (
	DefaultWinRate          = 0.4
	DefaultAvgBid           = 2.5
	DefaultAvgWinPrice      = 2.7
	DefaultSpendLast7d      = 100.0
	DefaultConversionsLast7d = 3.0
)

// HistoricalStats summarizes a campaign's recent bidding history for
// feature extraction. SampleCount is the number of events aggregated;
// zero means the defaults above are in effect.
type HistoricalStats struct {
	WinRate           float64 `json:"win_rate"`
	AvgBid            float64 `json:"avg_bid"`
	AvgWinPrice       float64 `json:"avg_win_price"`
	SpendLast7d       float64 `json:"spend_last_7d"`
	ConversionsLast7d float64 `json:"conversions_last_7d"`
	SampleCount       int     `json:"sample_count"`
}

// DefaultHistoricalStats returns the documented priors for a campaign
// with no history.
func DefaultHistoricalStats() HistoricalStats {
	return HistoricalStats{
		WinRate:           DefaultWinRate,
		AvgBid:            DefaultAvgBid,
		AvgWinPrice:       DefaultAvgWinPrice,
		SpendLast7d:       DefaultSpendLast7d,
		ConversionsLast7d: DefaultConversionsLast7d,
		SampleCount:       0,
	}
}

// AggregateStats computes HistoricalStats from a set of recent events in
// a single pass. Spend counts won events at their win price, falling
// back to the bid price when the win price was never recorded.
// Conversions count events flagged converted. Empty input yields the
// defaults.
func AggregateStats(events []*BidEvent) HistoricalStats {
	if len(events) == 0 {
		return DefaultHistoricalStats()
	}

	var (
		wins        int
		conversions int
		totalBid    float64
		totalWin    float64
		spend       float64
	)
	for _, ev := range events {
		totalBid += ev.BidPrice
		if ev.Won {
			wins++
			price := ev.BidPrice
			if ev.WinPrice != nil {
				price = *ev.WinPrice
			}
			totalWin += price
			spend += price
		}
		if ev.Converted {
			conversions++
		}
	}

	stats := HistoricalStats{
		WinRate:           float64(wins) / float64(len(events)),
		AvgBid:            totalBid / float64(len(events)),
		SpendLast7d:       spend,
		ConversionsLast7d: float64(conversions),
		SampleCount:       len(events),
	}
	if wins > 0 {
		stats.AvgWinPrice = totalWin / float64(wins)
	} else {
		stats.AvgWinPrice = DefaultAvgWinPrice
	}
	return stats
}
