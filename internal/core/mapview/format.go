package mapview

import (
	"fmt"
	"math"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

// FormatDistance renders meters as kilometres with one decimal, e.g. "4.2 km".
func FormatDistance(meters float64) string {
	if meters < 0 || math.IsNaN(meters) {
		meters = 0
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatDuration renders seconds as "45 sec", "12 min" or "1 hr 5 min".
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d sec", int(math.Round(seconds)))
	case seconds < 3600:
		return fmt.Sprintf("%d min", int(math.Round(seconds/60)))
	}
	hours := int(seconds / 3600)
	minutes := int(math.Round(math.Mod(seconds, 3600) / 60))
	return fmt.Sprintf("%d hr %d min", hours, minutes)
}

// Summary is the human-readable line shown for a route.
type Summary struct {
	Rank     int    `json:"rank"`
	Color    string `json:"color"`
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}

// Summarize formats every route of a set.
func Summarize(routes []domain.RouteSummary) []Summary {
	out := make([]Summary, len(routes))
	for i, r := range routes {
		out[i] = Summary{
			Rank:     r.Rank,
			Color:    RouteColor(r.Rank),
			Distance: FormatDistance(r.Distance),
			Duration: FormatDuration(r.Duration),
		}
	}
	return out
}
