package core

import "sort"

type (
	// VenueStats aggregates results for a single venue.
	VenueStats struct {
		Count       int     `json:"count"`
		TotalProfit float64 `json:"totalProfit"`
		AvgProfit   float64 `json:"avgProfit"`
	}

	// Statistics is the aggregate summary over a record collection. All fields
	// are zero and ProfitByVenue is empty for an empty collection; no field is
	// ever NaN or Inf.
	Statistics struct {
		TotalTournaments      int                   `json:"totalTournaments"`
		TotalProfit           float64               `json:"totalProfit"`
		AvgProfit             float64               `json:"avgProfit"`
		TotalDuration         float64               `json:"totalDuration"`
		AvgDuration           float64               `json:"avgDuration"`
		ROI                   float64               `json:"roi"`
		ProfitableTournaments int                   `json:"profitableTournaments"`
		HourlyRate            float64               `json:"hourlyRate"`
		ProfitByVenue         map[string]VenueStats `json:"profitByVenue"`
	}

	// TrendPoint is one step of the cumulative-profit series.
	TrendPoint struct {
		Date             string  `json:"date"`
		Profit           float64 `json:"profit"`
		CumulativeProfit float64 `json:"cumulativeProfit"`
	}
)

// ComputeStatistics aggregates the collection into a summary. It is a pure
// function of its input and never divides by zero.
func ComputeStatistics(tournaments []Tournament) Statistics {
	stats := Statistics{ProfitByVenue: map[string]VenueStats{}}
	if len(tournaments) == 0 {
		return stats
	}

	var totalCost float64
	for _, t := range tournaments {
		stats.TotalProfit += t.NetProfit
		stats.TotalDuration += t.Hours
		totalCost += t.Buyin + t.Fee
		if t.NetProfit > 0 {
			stats.ProfitableTournaments++
		}

		vs := stats.ProfitByVenue[t.Venue]
		vs.Count++
		vs.TotalProfit += t.NetProfit
		stats.ProfitByVenue[t.Venue] = vs
	}

	n := len(tournaments)
	stats.TotalTournaments = n
	stats.AvgProfit = stats.TotalProfit / float64(n)
	stats.AvgDuration = stats.TotalDuration / float64(n)
	if totalCost > 0 {
		stats.ROI = stats.TotalProfit / totalCost * 100
	}
	if stats.TotalDuration > 0 {
		stats.HourlyRate = stats.TotalProfit / stats.TotalDuration
	}
	for venue, vs := range stats.ProfitByVenue {
		vs.AvgProfit = vs.TotalProfit / float64(vs.Count)
		stats.ProfitByVenue[venue] = vs
	}
	return stats
}

// TrendSeries returns the cumulative-profit series ordered by date ascending.
// The sort is stable, so same-day sessions keep their insertion order.
func TrendSeries(tournaments []Tournament) []TrendPoint {
	sorted := make([]Tournament, len(tournaments))
	copy(sorted, tournaments)
	// ISO dates compare correctly as strings.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	points := make([]TrendPoint, 0, len(sorted))
	var cumulative float64
	for _, t := range sorted {
		cumulative += t.NetProfit
		points = append(points, TrendPoint{
			Date:             t.Date,
			Profit:           t.NetProfit,
			CumulativeProfit: cumulative,
		})
	}
	return points
}

// SortByDateDesc returns a copy sorted most recent first, preserving insertion
// order between same-day sessions.
func SortByDateDesc(tournaments []Tournament) []Tournament {
	sorted := make([]Tournament, len(tournaments))
	copy(sorted, tournaments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	return sorted
}
