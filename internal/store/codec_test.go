package store

import (
	"testing"

	"pokerledger/internal/core"
)

func TestDocumentRoundTrip(t *testing.T) {
	doc := Document{
		Records: []core.Tournament{
			core.TournamentInput{Date: "2024-01-01", Venue: "A", Hours: 2, Buyin: 3000, Fee: 400, Prize: 5000, Notes: "won a flip"}.Materialize(1),
			core.TournamentInput{Date: "2024-01-02", Venue: "B", Buyin: 1000}.Materialize(2),
		},
		NextID: 3,
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.NextID != 3 || len(got.Records) != 2 {
		t.Fatalf("envelope: %+v", got)
	}
	for i := range doc.Records {
		if got.Records[i] != doc.Records[i] {
			t.Fatalf("record %d mismatch: got %+v want %+v", i, got.Records[i], doc.Records[i])
		}
	}
}

func TestDecodeEmptyAndBareArray(t *testing.T) {
	doc, err := DecodeDocument(nil)
	if err != nil || len(doc.Records) != 0 || doc.NextID != 1 {
		t.Fatalf("empty: %+v err=%v", doc, err)
	}

	doc, err = DecodeDocument([]byte(`[{"id":5,"date":"2024-01-01","venue":"A","buyin":100,"fee":0,"prize":50}]`))
	if err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(doc.Records) != 1 || doc.Records[0].ID != 5 {
		t.Fatalf("records: %+v", doc.Records)
	}
	if doc.NextID != 6 {
		t.Fatalf("nextID = %d, want max+1", doc.NextID)
	}
}

func TestDecodeLegacyNaming(t *testing.T) {
	data := []byte(`{"tournaments":[
		{"id":"1704067200000","date":"2024-01-01","name":"Type $3400","buyinAmount":3000,"addonAmount":400,"prizeAmount":5000,"minutes":120}
	]}`)
	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("records: %+v", doc.Records)
	}
	rec := doc.Records[0]
	if rec.ID != 1704067200000 {
		t.Fatalf("string id not parsed: %d", rec.ID)
	}
	if rec.Venue != "Type $3400" {
		t.Fatalf("name not mapped to venue: %q", rec.Venue)
	}
	if rec.Buyin != 3000 || rec.Fee != 400 || rec.Prize != 5000 {
		t.Fatalf("legacy amounts: %+v", rec)
	}
	if rec.Hours != 2 {
		t.Fatalf("minutes not converted: %v", rec.Hours)
	}
	if rec.NetProfit != 1600 {
		t.Fatalf("netProfit not recomputed: %v", rec.NetProfit)
	}
}

func TestDecodeRecomputesStaleNetProfit(t *testing.T) {
	data := []byte(`{"records":[{"id":1,"date":"2024-01-01","venue":"A","buyin":100,"fee":0,"prize":50,"netProfit":9999}],"nextId":2}`)
	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Records[0].NetProfit != -50 {
		t.Fatalf("stale netProfit survived: %v", doc.Records[0].NetProfit)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := DecodeDocument([]byte(`{"records":`)); err == nil {
		t.Fatal("expected error for truncated document")
	}
	if _, err := DecodeDocument([]byte(`not json`)); err == nil {
		t.Fatal("expected error for garbage")
	}
}
