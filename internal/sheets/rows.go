package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"pokerledger/internal/core"
)

// recordRow renders a tournament as one spreadsheet row, in headerRow order.
func recordRow(r core.Tournament) []any {
	return []any{
		strconv.FormatInt(r.ID, 10),
		r.Date,
		r.Venue,
		formatNumber(r.Hours),
		formatNumber(r.Buyin),
		formatNumber(r.Fee),
		formatNumber(r.Prize),
		formatNumber(r.NetProfit),
		formatChips(r.StartingChips),
		formatChips(r.FinalChips),
		r.Notes,
	}
}

// parseRecordRows converts raw sheet values back into tournaments. The first
// row is skipped when it looks like a header. Blank rows are ignored; net
// profit is recomputed rather than trusted.
func parseRecordRows(rows [][]any) ([]core.Tournament, error) {
	records := make([]core.Tournament, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && isHeaderRow(row) {
			continue
		}

		id, err := parseIntCell(cell(row, 0))
		if err != nil || id <= 0 {
			// Rows without a usable id are junk (trailing notes, totals).
			continue
		}

		buyin, err := parseFloatCell(cell(row, 4))
		if err != nil {
			return nil, fmt.Errorf("row %d: buyin: %w", i+1, err)
		}
		fee, err := parseFloatCell(cell(row, 5))
		if err != nil {
			return nil, fmt.Errorf("row %d: fee: %w", i+1, err)
		}
		prize, err := parseFloatCell(cell(row, 6))
		if err != nil {
			return nil, fmt.Errorf("row %d: prize: %w", i+1, err)
		}
		hours, err := parseFloatCell(cell(row, 3))
		if err != nil {
			return nil, fmt.Errorf("row %d: hours: %w", i+1, err)
		}
		startingChips, _ := parseIntCell(cell(row, 8))
		finalChips, _ := parseIntCell(cell(row, 9))

		records = append(records, core.Tournament{
			ID:            id,
			Date:          strings.TrimSpace(cell(row, 1)),
			Venue:         strings.TrimSpace(cell(row, 2)),
			Hours:         hours,
			Buyin:         buyin,
			Fee:           fee,
			Prize:         prize,
			NetProfit:     core.ComputeNetProfit(buyin, fee, prize),
			StartingChips: startingChips,
			FinalChips:    finalChips,
			Notes:         cell(row, 10),
		})
	}
	return records, nil
}

func isHeaderRow(row []any) bool {
	first := strings.TrimSpace(strings.ToUpper(cell(row, 0)))
	return first == "ID"
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

func parseFloatCell(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseIntCell(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// formatNumber drops the trailing ".00" that RAW float writes would carry.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatChips(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
