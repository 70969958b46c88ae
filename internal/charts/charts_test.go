package charts

import (
	"testing"

	"pokerledger/internal/core"
)

func sampleRecords() []core.Tournament {
	return []core.Tournament{
		core.TournamentInput{Date: "2024-02-01", Venue: "A", Hours: 2, Buyin: 1000, Fee: 100, Prize: 1200}.Materialize(2),
		core.TournamentInput{Date: "2024-01-01", Venue: "A", Hours: 3, Buyin: 1000, Fee: 100, Prize: 1050,
			StartingChips: 30000, FinalChips: 45000}.Materialize(1),
		core.TournamentInput{Date: "2024-03-01", Venue: "B", Hours: 1.5, Buyin: 500, Fee: 50, Prize: 0}.Materialize(3),
	}
}

func TestBuildBalanceIsCumulativeAscending(t *testing.T) {
	payload, err := Build(BalanceChart, sampleRecords())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if payload.Type != "line" {
		t.Fatalf("type = %q", payload.Type)
	}

	wantLabels := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	wantData := []float64{-50, 50, -500}
	for i := range wantLabels {
		if payload.Labels[i] != wantLabels[i] {
			t.Fatalf("labels = %v", payload.Labels)
		}
		if payload.Datasets[0].Data[i] != wantData[i] {
			t.Fatalf("data = %v, want %v", payload.Datasets[0].Data, wantData)
		}
	}
}

func TestBuildROIPerSessionAscending(t *testing.T) {
	payload, err := Build(ROIChart, sampleRecords())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	wantLabels := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	if len(payload.Labels) != 3 {
		t.Fatalf("labels = %v", payload.Labels)
	}
	for i := range wantLabels {
		if payload.Labels[i] != wantLabels[i] {
			t.Fatalf("labels = %v", payload.Labels)
		}
	}
	// Session ROIs: -50/1100, 100/1100, -550/550.
	data := payload.Datasets[0].Data
	if data[2] != -100 {
		t.Fatalf("third roi = %v, want -100", data[2])
	}
	if data[0] >= 0 || data[1] <= 0 {
		t.Fatalf("roi signs = %v, want [-,+,-]", data)
	}
}

func TestBuildROIZeroCostSession(t *testing.T) {
	records := []core.Tournament{
		core.TournamentInput{Date: "2024-01-01", Venue: "Freeroll", Prize: 500}.Materialize(1),
	}
	payload, err := Build(ROIChart, records)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if payload.Datasets[0].Data[0] != 0 {
		t.Fatalf("zero-cost roi = %v, want 0", payload.Datasets[0].Data[0])
	}
}

func TestBuildVenueProfit(t *testing.T) {
	payload, err := Build(VenueChart, sampleRecords())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data := payload.Datasets[0].Data
	if data[0] != 50 || data[1] != -550 {
		t.Fatalf("data = %v", data)
	}
}

func TestBuildHourlyPlotsProfitPerHour(t *testing.T) {
	records := append(sampleRecords(),
		core.TournamentInput{Date: "2024-04-01", Venue: "C", Buyin: 100}.Materialize(4))
	payload, err := Build(HourlyChart, records)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	points := payload.Datasets[0].Points
	// The zero-duration record is excluded.
	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}
	// 2h session with NetProfit 100 plots 50/hour, not the raw profit.
	for _, p := range points {
		if p.X == 2 && p.Y != 50 {
			t.Fatalf("2h point y = %v, want 50", p.Y)
		}
	}
}

func TestBuildChipsPlotsStartingChipsAgainstPrize(t *testing.T) {
	payload, err := Build(ChipsChart, sampleRecords())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	points := payload.Datasets[0].Points
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1", len(points))
	}
	if points[0].X != 30000 || points[0].Y != 1050 {
		t.Fatalf("point = %+v, want {X:30000 Y:1050}", points[0])
	}
}

func TestBuildChipsNeedsStartingChips(t *testing.T) {
	records := []core.Tournament{
		core.TournamentInput{Date: "2024-01-01", Venue: "A", Buyin: 100, Prize: 300,
			FinalChips: 20000}.Materialize(1),
	}
	payload, err := Build(ChipsChart, records)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(payload.Datasets[0].Points) != 0 {
		t.Fatalf("record without starting chips must be excluded, got %+v", payload.Datasets[0].Points)
	}
}

func TestBuildUnknownChart(t *testing.T) {
	if _, err := Build("pie", nil); err == nil {
		t.Fatal("expected error for unknown chart")
	}
}

func TestBuildAllCoversEveryName(t *testing.T) {
	all := BuildAll(sampleRecords())
	for _, name := range Names() {
		if _, ok := all[name]; !ok {
			t.Errorf("missing chart %q", name)
		}
	}
}

func TestEmptyCollectionBuildsEmptyCharts(t *testing.T) {
	for _, name := range Names() {
		payload, err := Build(name, nil)
		if err != nil {
			t.Fatalf("build %s: %v", name, err)
		}
		for _, ds := range payload.Datasets {
			if len(ds.Data) != 0 || len(ds.Points) != 0 {
				t.Errorf("chart %s not empty: %+v", name, ds)
			}
		}
	}
}
