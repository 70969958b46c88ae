package core

import (
	"math"
	"testing"
)

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)
	if stats.TotalTournaments != 0 || stats.TotalProfit != 0 || stats.AvgProfit != 0 ||
		stats.ROI != 0 || stats.HourlyRate != 0 || stats.ProfitableTournaments != 0 {
		t.Fatalf("expected all-zero summary, got %+v", stats)
	}
	if len(stats.ProfitByVenue) != 0 {
		t.Fatalf("expected empty venue map, got %v", stats.ProfitByVenue)
	}
}

func TestComputeStatisticsScenario(t *testing.T) {
	ts := []Tournament{
		TournamentInput{Date: "2024-01-01", Venue: "A", Hours: 2, Buyin: 3000, Fee: 400, Prize: 5000}.Materialize(1),
		TournamentInput{Date: "2024-01-02", Venue: "B", Hours: 3, Buyin: 1000, Fee: 0, Prize: 0}.Materialize(2),
	}
	stats := ComputeStatistics(ts)

	if stats.TotalTournaments != 2 {
		t.Fatalf("total = %d", stats.TotalTournaments)
	}
	if stats.TotalProfit != 600 {
		t.Fatalf("totalProfit = %v, want 600", stats.TotalProfit)
	}
	if stats.AvgProfit != 300 {
		t.Fatalf("avgProfit = %v, want 300", stats.AvgProfit)
	}
	wantROI := 600.0 / 4400.0 * 100
	if math.Abs(stats.ROI-wantROI) > 1e-9 {
		t.Fatalf("roi = %v, want %v", stats.ROI, wantROI)
	}
	if stats.ProfitableTournaments != 1 {
		t.Fatalf("profitable = %d, want 1", stats.ProfitableTournaments)
	}
	if stats.TotalDuration != 5 || stats.AvgDuration != 2.5 {
		t.Fatalf("duration = %v avg %v", stats.TotalDuration, stats.AvgDuration)
	}
	if stats.HourlyRate != 120 {
		t.Fatalf("hourlyRate = %v, want 120", stats.HourlyRate)
	}

	a := stats.ProfitByVenue["A"]
	if a.Count != 1 || a.TotalProfit != 1600 || a.AvgProfit != 1600 {
		t.Fatalf("venue A stats: %+v", a)
	}
	b := stats.ProfitByVenue["B"]
	if b.Count != 1 || b.TotalProfit != -1000 {
		t.Fatalf("venue B stats: %+v", b)
	}
}

func TestComputeStatisticsZeroCostAndHours(t *testing.T) {
	// Freeroll with no recorded duration: ROI and hourly rate stay zero.
	ts := []Tournament{
		TournamentInput{Date: "2024-01-01", Venue: "A", Prize: 100}.Materialize(1),
	}
	stats := ComputeStatistics(ts)
	if stats.ROI != 0 {
		t.Fatalf("roi = %v, want 0 for zero cost", stats.ROI)
	}
	if stats.HourlyRate != 0 {
		t.Fatalf("hourlyRate = %v, want 0 for zero hours", stats.HourlyRate)
	}
}

func TestTrendSeriesOrderingAndRunningSum(t *testing.T) {
	ts := []Tournament{
		TournamentInput{Date: "2024-02-01", Venue: "A", Prize: 100}.Materialize(1),
		TournamentInput{Date: "2024-01-01", Venue: "A", Buyin: 50}.Materialize(2),
	}
	points := TrendSeries(ts)
	if len(points) != 2 {
		t.Fatalf("len = %d", len(points))
	}
	if points[0].Date != "2024-01-01" || points[0].Profit != -50 || points[0].CumulativeProfit != -50 {
		t.Fatalf("first point: %+v", points[0])
	}
	if points[1].Date != "2024-02-01" || points[1].Profit != 100 || points[1].CumulativeProfit != 50 {
		t.Fatalf("second point: %+v", points[1])
	}
}

func TestTrendSeriesStableOnSameDate(t *testing.T) {
	ts := []Tournament{
		TournamentInput{Date: "2024-01-01", Venue: "first", Prize: 1}.Materialize(1),
		TournamentInput{Date: "2024-01-01", Venue: "second", Prize: 2}.Materialize(2),
	}
	points := TrendSeries(ts)
	if points[0].Profit != 1 || points[1].Profit != 2 {
		t.Fatalf("same-date order not preserved: %+v", points)
	}
}

func TestTrendSeriesCumulativeInvariant(t *testing.T) {
	ts := []Tournament{
		TournamentInput{Date: "2024-01-03", Venue: "A", Prize: 10}.Materialize(1),
		TournamentInput{Date: "2024-01-01", Venue: "A", Buyin: 5}.Materialize(2),
		TournamentInput{Date: "2024-01-02", Venue: "A", Prize: 7, Buyin: 3}.Materialize(3),
	}
	points := TrendSeries(ts)
	var sum float64
	for k, p := range points {
		if k > 0 && points[k-1].Date > p.Date {
			t.Fatalf("dates not non-decreasing at %d", k)
		}
		sum += p.Profit
		if p.CumulativeProfit != sum {
			t.Fatalf("cumulative at %d = %v, want %v", k, p.CumulativeProfit, sum)
		}
	}
}

func TestSortByDateDesc(t *testing.T) {
	ts := []Tournament{
		TournamentInput{Date: "2024-01-01", Venue: "old"}.Materialize(1),
		TournamentInput{Date: "2024-03-01", Venue: "new"}.Materialize(2),
		TournamentInput{Date: "2024-02-01", Venue: "mid"}.Materialize(3),
	}
	sorted := SortByDateDesc(ts)
	if sorted[0].Venue != "new" || sorted[1].Venue != "mid" || sorted[2].Venue != "old" {
		t.Fatalf("unexpected order: %v %v %v", sorted[0].Venue, sorted[1].Venue, sorted[2].Venue)
	}
	// Input untouched.
	if ts[0].Venue != "old" {
		t.Fatal("input slice mutated")
	}
}
