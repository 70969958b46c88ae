package http

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// exportHeader matches the column layout of the original spreadsheet export.
var exportHeader = []string{"日期", "名稱", "買入金額", "行政費用", "獎金", "盈虧"}

// handleExport streams the collection as CSV, most recent session first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	filename := "poker_tournaments_" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	// UTF-8 BOM so spreadsheet apps detect the encoding of the Chinese header.
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		slog.ErrorContext(r.Context(), "CSV header write failed", "error", err)
		return
	}

	records := sess.store.GetAllTournaments()
	for _, rec := range records {
		row := []string{
			rec.Date,
			rec.Venue,
			strconv.FormatFloat(rec.Buyin, 'f', -1, 64),
			strconv.FormatFloat(rec.Fee, 'f', -1, 64),
			strconv.FormatFloat(rec.Prize, 'f', -1, 64),
			strconv.FormatFloat(rec.NetProfit, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			slog.ErrorContext(r.Context(), "CSV row write failed", "error", err, "record_id", rec.ID)
			return
		}
	}
	cw.Flush()

	slog.InfoContext(r.Context(), "Collection exported",
		"username", sess.username, "records", len(records), "filename", filename)
}
