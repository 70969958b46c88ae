package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"pokerledger/internal/charts"
	"pokerledger/internal/core"
)

// venueRow is one line of the per-venue breakdown.
type venueRow struct {
	Name   string
	Count  int
	Total  string
	Avg    string
	Losing bool
}

// summaryData feeds the summary partial.
type summaryData struct {
	Total      int
	Profit     string
	AvgProfit  string
	ROI        string
	Profitable int
	Hours      string
	AvgHours   string
	HourlyRate string
	Losing     bool
	Venues     []venueRow
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	key := sess.username + ":summary"
	if html, found := s.partialCache.Get(key); found {
		_, _ = w.Write([]byte(html))
		return
	}

	stats := sess.store.GetStatistics()
	data := summaryData{
		Total:      stats.TotalTournaments,
		Profit:     core.FormatDollars(stats.TotalProfit),
		AvgProfit:  core.FormatDollars(stats.AvgProfit),
		ROI:        core.FormatPercent(stats.ROI),
		Profitable: stats.ProfitableTournaments,
		Hours:      strconv.FormatFloat(stats.TotalDuration, 'f', 1, 64),
		AvgHours:   strconv.FormatFloat(stats.AvgDuration, 'f', 1, 64),
		HourlyRate: core.FormatDollars(stats.HourlyRate),
		Losing:     stats.TotalProfit < 0,
	}

	venues := make([]string, 0, len(stats.ProfitByVenue))
	for name := range stats.ProfitByVenue {
		venues = append(venues, name)
	}
	sort.Strings(venues)
	for _, name := range venues {
		vs := stats.ProfitByVenue[name]
		data.Venues = append(data.Venues, venueRow{
			Name:   name,
			Count:  vs.Count,
			Total:  core.FormatDollars(vs.TotalProfit),
			Avg:    core.FormatDollars(vs.AvgProfit),
			Losing: vs.TotalProfit < 0,
		})
	}

	s.renderCachedPartial(w, r, "summary.html", key, data)
}

// historyRow is one rendered line of the session table.
type historyRow struct {
	ID       int64
	Date     string
	Venue    string
	Hours    string
	Buyin    string
	Fee      string
	Prize    string
	Profit   string
	Losing   bool
	HasChips bool
	Chips    string
	Notes    string
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	key := sess.username + ":history"
	if html, found := s.partialCache.Get(key); found {
		_, _ = w.Write([]byte(html))
		return
	}

	records := sess.store.GetAllTournaments()
	rows := make([]historyRow, 0, len(records))
	for _, rec := range records {
		row := historyRow{
			ID:       rec.ID,
			Date:     rec.Date,
			Venue:    rec.Venue,
			Hours:    strconv.FormatFloat(rec.Hours, 'f', -1, 64),
			Buyin:    core.FormatDollars(rec.Buyin),
			Fee:      core.FormatDollars(rec.Fee),
			Prize:    core.FormatDollars(rec.Prize),
			Profit:   core.FormatDollars(rec.NetProfit),
			Losing:   rec.NetProfit < 0,
			HasChips: rec.HasChipData(),
			Notes:    rec.Notes,
		}
		if row.HasChips {
			row.Chips = strconv.FormatInt(rec.StartingChips, 10) + " → " + strconv.FormatInt(rec.FinalChips, 10)
		}
		rows = append(rows, row)
	}

	data := struct {
		Rows []historyRow
	}{Rows: rows}

	s.renderCachedPartial(w, r, "history.html", key, data)
}

// handleCharts serves chart payloads as JSON. With no name parameter every
// chart is returned keyed by name.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	key := sess.username + ":chart:" + name

	if payload, found := s.partialCache.Get(key); found {
		_, _ = w.Write([]byte(payload))
		return
	}

	// Concurrent panel refreshes after one mutation collapse into a single
	// build per chart.
	payload, err, _ := s.chartGroup.Do(key, func() (interface{}, error) {
		records := sess.store.GetAllTournaments()
		var v interface{}
		if name == "" {
			v = charts.BuildAll(records)
		} else {
			p, err := charts.Build(name, records)
			if err != nil {
				return nil, err
			}
			v = p
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		s.partialCache.Set(key, string(raw))
		return string(raw), nil
	})
	if err != nil {
		slog.WarnContext(r.Context(), "Chart build failed", "chart", name, "error", err)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown chart"}`))
		return
	}

	_, _ = w.Write([]byte(payload.(string)))
}

// handleTemplate serves the form prefilled with a named quick-fill preset.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	preset, ok := formPresets[r.URL.Query().Get("name")]
	if !ok {
		NotFoundError("找不到該常用設定").Write(w)
		return
	}

	form := emptyForm()
	form.Venue = preset.Venue
	form.Hours = preset.Hours
	form.Buyin = preset.Buyin
	form.Fee = preset.Fee

	if err := s.templates.ExecuteTemplate(w, "record_form.html", form); err != nil {
		slog.ErrorContext(r.Context(), "Form template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleForm serves the record form partial: blank, or loaded from an
// existing record for editing.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	form := emptyForm()
	switch {
	case r.URL.Query().Get("id") != "":
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			UnprocessableEntityError("無效的記錄編號").Write(w)
			return
		}
		rec, ok := sess.store.GetTournament(id)
		if !ok {
			NotFoundError("找不到該筆記錄").Write(w)
			return
		}
		form = formData{
			ID:    rec.ID,
			Date:  rec.Date,
			Venue: rec.Venue,
			Hours: strconv.FormatFloat(rec.Hours, 'f', -1, 64),
			Buyin: strconv.FormatFloat(rec.Buyin, 'f', -1, 64),
			Fee:   strconv.FormatFloat(rec.Fee, 'f', -1, 64),
			Prize: strconv.FormatFloat(rec.Prize, 'f', -1, 64),
			Notes: rec.Notes,
		}
		if rec.StartingChips > 0 {
			form.StartingChips = strconv.FormatInt(rec.StartingChips, 10)
		}
		if rec.FinalChips > 0 {
			form.FinalChips = strconv.FormatInt(rec.FinalChips, 10)
		}
	}

	if err := s.templates.ExecuteTemplate(w, "record_form.html", form); err != nil {
		slog.ErrorContext(r.Context(), "Form template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// renderCachedPartial executes a template into the cache and the response.
func (s *Server) renderCachedPartial(w http.ResponseWriter, r *http.Request, name, key string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", name)
		_, _ = w.Write([]byte(`<div class="placeholder">載入失敗</div>`))
		return
	}

	s.partialCache.Set(key, buf.String())
	_, _ = w.Write(buf.Bytes())
}
