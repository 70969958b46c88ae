package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical wire format for session dates.
	DateLayout = "2006-01-02"

	// MinUsernameLen is the minimum length of a username after trimming.
	MinUsernameLen = 3

	maxVenueLen = 100
	maxNotesLen = 500
)

type (
	// Tournament is one logged poker tournament session. NetProfit is derived
	// from Prize, Buyin and Fee and is recomputed on every write; it is never
	// set independently.
	Tournament struct {
		ID            int64   `json:"id"`
		Date          string  `json:"date"` // YYYY-MM-DD
		Venue         string  `json:"venue"`
		Hours         float64 `json:"hours"`
		Buyin         float64 `json:"buyin"`
		Fee           float64 `json:"fee"`
		Prize         float64 `json:"prize"`
		NetProfit     float64 `json:"netProfit"`
		StartingChips int64   `json:"startingChips,omitempty"`
		FinalChips    int64   `json:"finalChips,omitempty"`
		Notes         string  `json:"notes,omitempty"`
	}

	// TournamentInput carries the editable fields of a session as submitted by
	// the form. ID assignment and NetProfit computation belong to the store.
	TournamentInput struct {
		Date          string
		Venue         string
		Hours         float64
		Buyin         float64
		Fee           float64
		Prize         float64
		StartingChips int64
		FinalChips    int64
		Notes         string
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyVenue      = errors.New("empty venue")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidUsername = errors.New("username must be at least 3 characters")
)

// Validate checks the editable fields of a session submission.
func (in TournamentInput) Validate() error {
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(in.Venue)) == 0 {
		return ErrEmptyVenue
	}
	if len(in.Venue) > maxVenueLen {
		return errors.New("venue too long (max 100 characters)")
	}
	if in.Buyin < 0 || in.Fee < 0 || in.Prize < 0 {
		return ErrNegativeAmount
	}
	if in.Hours < 0 {
		return ErrInvalidDuration
	}
	if in.StartingChips < 0 || in.FinalChips < 0 {
		return errors.New("chip counts cannot be negative")
	}
	if len(in.Notes) > maxNotesLen {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

// Materialize builds a Tournament from the input with the derived NetProfit.
// The ID is left to the caller.
func (in TournamentInput) Materialize(id int64) Tournament {
	return Tournament{
		ID:            id,
		Date:          strings.TrimSpace(in.Date),
		Venue:         strings.TrimSpace(in.Venue),
		Hours:         in.Hours,
		Buyin:         in.Buyin,
		Fee:           in.Fee,
		Prize:         in.Prize,
		NetProfit:     ComputeNetProfit(in.Buyin, in.Fee, in.Prize),
		StartingChips: in.StartingChips,
		FinalChips:    in.FinalChips,
		Notes:         strings.TrimSpace(in.Notes),
	}
}

// ComputeNetProfit returns prize minus the full cost basis (buy-in plus fee).
func ComputeNetProfit(buyin, fee, prize float64) float64 {
	return prize - (buyin + fee)
}

// HasChipData reports whether the record carries any chip counts.
func (t Tournament) HasChipData() bool {
	return t.StartingChips > 0 || t.FinalChips > 0
}

// ValidateUsername checks the free-text user identifier.
func ValidateUsername(username string) error {
	if len(strings.TrimSpace(username)) < MinUsernameLen {
		return ErrInvalidUsername
	}
	return nil
}
