package sheets

import (
	"testing"

	"pokerledger/internal/core"
)

func TestParseRecordRowsSkipsHeaderAndJunk(t *testing.T) {
	rows := [][]any{
		{"ID", "日期", "場地", "時長", "買入", "行政費", "獎金", "淨收益", "起始籌碼", "最終籌碼", "備註"},
		{"1", "2024-01-01", "市政華人", "2", "3000", "400", "5000", "9999", "30000", "52000", "final table"},
		{},
		{"", "totals", "", "", "3000"},
		{"2", "2024-01-02", "Casino", "", "1000", "0", "0"},
	}

	records, err := parseRecordRows(rows)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.ID != 1 || first.Venue != "市政華人" || first.Hours != 2 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	// The stored net profit column is ignored and recomputed.
	if first.NetProfit != 1600 {
		t.Fatalf("net profit = %v, want 1600", first.NetProfit)
	}
	if first.StartingChips != 30000 || first.FinalChips != 52000 {
		t.Fatalf("chips = %d/%d", first.StartingChips, first.FinalChips)
	}

	second := records[1]
	if second.Hours != 0 || second.NetProfit != -1000 {
		t.Fatalf("unexpected second record: %+v", second)
	}
	if second.StartingChips != 0 || second.FinalChips != 0 {
		t.Fatalf("short row should leave chips zero: %+v", second)
	}
}

func TestParseRecordRowsRejectsBadNumbers(t *testing.T) {
	rows := [][]any{
		{"1", "2024-01-01", "A", "2", "not-a-number", "0", "0"},
	}
	if _, err := parseRecordRows(rows); err == nil {
		t.Fatal("expected error for malformed buyin")
	}
}

func TestRecordRowRoundTrip(t *testing.T) {
	in := core.TournamentInput{
		Date: "2024-03-10", Venue: "市政華人", Hours: 2.5,
		Buyin: 3000, Fee: 400, Prize: 0,
		StartingChips: 30000, FinalChips: 0, Notes: "bubbled",
	}.Materialize(7)

	records, err := parseRecordRows([][]any{recordRow(in)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0] != in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", records[0], in)
	}
}

func TestUserRange(t *testing.T) {
	if got := userRange("alice"); got != "Records_alice!A:K" {
		t.Fatalf("userRange = %q", got)
	}
}
