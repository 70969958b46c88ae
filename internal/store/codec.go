package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pokerledger/internal/core"
)

// Document is the persisted envelope for one user's collection. The same JSON
// shape is stored as the local backend's value and as the generation-B
// tournaments cell.
type Document struct {
	Records []core.Tournament `json:"records"`
	NextID  int64             `json:"nextId"`
}

// flexID accepts both numeric and quoted ids; legacy sheets stored ids as
// strings.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexID(id)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexID(v)
		return nil
	}
	*f = 0
	return nil
}

// wireRecord tolerates both the canonical field naming and the legacy
// generation-B naming (name/buyinAmount/addonAmount/prizeAmount, duration in
// minutes). Legacy documents are a one-time import format: they are converted
// to canonical on read and written back canonical.
type wireRecord struct {
	ID            flexID   `json:"id"`
	Date          string   `json:"date"`
	Venue         string   `json:"venue"`
	Hours         float64  `json:"hours"`
	Buyin         *float64 `json:"buyin"`
	Fee           *float64 `json:"fee"`
	Prize         *float64 `json:"prize"`
	StartingChips int64    `json:"startingChips"`
	FinalChips    int64    `json:"finalChips"`
	Notes         string   `json:"notes"`

	// Legacy naming.
	Name        string   `json:"name"`
	BuyinAmount *float64 `json:"buyinAmount"`
	AddonAmount *float64 `json:"addonAmount"`
	PrizeAmount *float64 `json:"prizeAmount"`
	Minutes     float64  `json:"minutes"`
}

// EncodeDocument serializes the canonical envelope.
func EncodeDocument(doc Document) ([]byte, error) {
	if doc.Records == nil {
		doc.Records = []core.Tournament{}
	}
	return json.Marshal(doc)
}

// DecodeDocument parses a stored document. It accepts the canonical envelope,
// a bare record array, and records in the legacy naming; NetProfit is always
// recomputed so a stale derived value can never survive a load.
func DecodeDocument(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{Records: []core.Tournament{}, NextID: 1}, nil
	}

	var rawRecords []json.RawMessage
	var nextID int64
	if data[0] == '[' {
		if err := json.Unmarshal(data, &rawRecords); err != nil {
			return Document{}, fmt.Errorf("parse record array: %w", err)
		}
	} else {
		var env struct {
			Records []json.RawMessage `json:"records"`
			// Some variants persisted under a "tournaments" key.
			Tournaments []json.RawMessage `json:"tournaments"`
			NextID      int64             `json:"nextId"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return Document{}, fmt.Errorf("parse document envelope: %w", err)
		}
		rawRecords = env.Records
		if rawRecords == nil {
			rawRecords = env.Tournaments
		}
		nextID = env.NextID
	}

	records := make([]core.Tournament, 0, len(rawRecords))
	var maxID int64
	for i, raw := range rawRecords {
		rec, err := decodeRecord(raw)
		if err != nil {
			return Document{}, fmt.Errorf("parse record %d: %w", i, err)
		}
		if rec.ID > maxID {
			maxID = rec.ID
		}
		records = append(records, rec)
	}
	if nextID <= maxID {
		nextID = maxID + 1
	}
	if nextID < 1 {
		nextID = 1
	}
	return Document{Records: records, NextID: nextID}, nil
}

func decodeRecord(raw json.RawMessage) (core.Tournament, error) {
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return core.Tournament{}, err
	}

	rec := core.Tournament{
		Date:          strings.TrimSpace(w.Date),
		Venue:         strings.TrimSpace(w.Venue),
		Hours:         w.Hours,
		StartingChips: w.StartingChips,
		FinalChips:    w.FinalChips,
		Notes:         w.Notes,
	}
	if w.Buyin != nil {
		rec.Buyin = *w.Buyin
	}
	if w.Fee != nil {
		rec.Fee = *w.Fee
	}
	if w.Prize != nil {
		rec.Prize = *w.Prize
	}

	// Legacy naming wins only where the canonical field is absent.
	if rec.Venue == "" && w.Name != "" {
		rec.Venue = strings.TrimSpace(w.Name)
	}
	if w.Buyin == nil && w.BuyinAmount != nil {
		rec.Buyin = *w.BuyinAmount
	}
	if w.Fee == nil && w.AddonAmount != nil {
		rec.Fee = *w.AddonAmount
	}
	if w.Prize == nil && w.PrizeAmount != nil {
		rec.Prize = *w.PrizeAmount
	}
	if rec.Hours == 0 && w.Minutes > 0 {
		rec.Hours = w.Minutes / 60
	}

	rec.ID = int64(w.ID)
	rec.NetProfit = core.ComputeNetProfit(rec.Buyin, rec.Fee, rec.Prize)
	return rec, nil
}
