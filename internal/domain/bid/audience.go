package bid

import (
	"fmt"
	"sort"
)

// AudienceAnalysis is the narrative output of a backend's audience pass:
// named segments plus free-text insights for campaign reports.
type AudienceAnalysis struct {
	Segments []string `json:"segments"`
	Insights []string `json:"insights"`
}

// RuleBasedInsights derives deterministic narrative insights from raw
// events: per-device conversion performance, mobile volume dominance,
// and geographic spread. Used when no analysis backend is reachable.
// Insight order is stable across runs.
func RuleBasedInsights(events []*BidEvent) []string {
	var insights []string

	deviceCount := make(map[string]int)
	deviceConversions := make(map[string]int)
	geoRegions := make(map[string]int)
	for _, ev := range events {
		deviceCount[ev.DeviceType]++
		if ev.Converted {
			deviceConversions[ev.DeviceType]++
		}
		geoRegions[ev.Region+", "+ev.Country]++
	}

	devices := make([]string, 0, len(deviceCount))
	for device := range deviceCount {
		devices = append(devices, device)
	}
	sort.Strings(devices)

	for _, device := range devices {
		rate := float64(deviceConversions[device]) / float64(deviceCount[device])
		if rate > 0.1 {
			insights = append(insights, fmt.Sprintf("%s devices show strong performance (%.1f%% conversion rate)", device, rate*100))
		}
	}

	if deviceCount["mobile"] > len(events)/2 {
		insights = append(insights, "Mobile traffic dominates campaign volume")
	}

	if len(geoRegions) > 10 {
		insights = append(insights, "Campaign has broad geographic reach across multiple regions")
	} else {
		insights = append(insights, "Campaign is geographically concentrated - consider expansion")
	}

	return insights
}
