// Package charts turns a tournament collection into ready-to-render chart
// payloads, shaped for the Chart.js config the front end feeds them into.
package charts

import (
	"fmt"
	"log/slog"
	"sort"

	"pokerledger/internal/core"
)

// Chart names accepted by Build.
const (
	BalanceChart = "balance"
	ROIChart     = "roi"
	VenueChart   = "venue"
	HourlyChart  = "hourly"
	ChipsChart   = "chips"
)

// Names lists every chart in render order.
func Names() []string {
	return []string{BalanceChart, ROIChart, VenueChart, HourlyChart, ChipsChart}
}

// Point is an x/y sample for scatter datasets.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dataset is one series. Line and bar charts fill Data, scatter charts fill
// Points.
type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data,omitempty"`
	Points []Point   `json:"points,omitempty"`
}

// Payload is the wire shape of a single chart.
type Payload struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Build renders one chart by name from the given collection.
func Build(name string, records []core.Tournament) (Payload, error) {
	switch name {
	case BalanceChart:
		return buildBalance(records), nil
	case ROIChart:
		return buildROI(records), nil
	case VenueChart:
		return buildVenue(records), nil
	case HourlyChart:
		return buildHourly(records), nil
	case ChipsChart:
		return buildChips(records), nil
	default:
		return Payload{}, fmt.Errorf("unknown chart %q", name)
	}
}

// BuildAll renders every chart. A chart that fails to build is skipped so one
// bad series never blanks the whole dashboard.
func BuildAll(records []core.Tournament) map[string]Payload {
	out := make(map[string]Payload, len(Names()))
	for _, name := range Names() {
		payload, err := Build(name, records)
		if err != nil {
			slog.Warn("Skipping chart", "chart", name, "error", err)
			continue
		}
		out[name] = payload
	}
	return out
}

// buildBalance is the cumulative profit line, oldest first.
func buildBalance(records []core.Tournament) Payload {
	trend := core.TrendSeries(records)
	labels := make([]string, len(trend))
	data := make([]float64, len(trend))
	for i, p := range trend {
		labels[i] = p.Date
		data[i] = p.CumulativeProfit
	}
	return Payload{
		Name:   BalanceChart,
		Type:   "line",
		Labels: labels,
		Datasets: []Dataset{
			{Label: "累積盈虧", Data: data},
		},
	}
}

// buildROI is the per-session return-on-investment bar chart, oldest first.
// A session with zero cost contributes a zero bar.
func buildROI(records []core.Tournament) Payload {
	byDate := make([]core.Tournament, len(records))
	copy(byDate, records)
	sort.SliceStable(byDate, func(i, j int) bool { return byDate[i].Date < byDate[j].Date })

	labels := make([]string, len(byDate))
	data := make([]float64, len(byDate))
	for i, r := range byDate {
		labels[i] = r.Date
		if cost := r.Buyin + r.Fee; cost > 0 {
			data[i] = r.NetProfit / cost * 100
		}
	}
	return Payload{
		Name:   ROIChart,
		Type:   "bar",
		Labels: labels,
		Datasets: []Dataset{
			{Label: "投資報酬率 (%)", Data: data},
		},
	}
}

// buildVenue is total profit per venue.
func buildVenue(records []core.Tournament) Payload {
	byVenue := core.ComputeStatistics(records).ProfitByVenue
	labels := sortedKeys(byVenue)
	data := make([]float64, len(labels))
	for i, venue := range labels {
		data[i] = byVenue[venue].TotalProfit
	}
	return Payload{
		Name:   VenueChart,
		Type:   "bar",
		Labels: labels,
		Datasets: []Dataset{
			{Label: "場地盈虧", Data: data},
		},
	}
}

// buildHourly plots profit per hour against session length. Sessions without
// a recorded duration are left out; the exclusion also guards the division.
func buildHourly(records []core.Tournament) Payload {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		if r.Hours <= 0 {
			continue
		}
		points = append(points, Point{X: r.Hours, Y: r.NetProfit / r.Hours})
	}
	return Payload{
		Name: HourlyChart,
		Type: "scatter",
		Datasets: []Dataset{
			{Label: "時長 vs 每小時盈虧", Points: points},
		},
	}
}

// buildChips plots starting chips against the prize won. Records without a
// starting chip count have no x value and are left out entirely.
func buildChips(records []core.Tournament) Payload {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		if r.StartingChips <= 0 {
			continue
		}
		points = append(points, Point{X: float64(r.StartingChips), Y: r.Prize})
	}
	return Payload{
		Name: ChipsChart,
		Type: "scatter",
		Datasets: []Dataset{
			{Label: "起始籌碼 vs 獎金", Points: points},
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
