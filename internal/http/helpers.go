package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"pokerledger/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// parseRecordForm converts the submitted form into a session input. A present
// non-zero id marks the submission as an update of an existing record.
func parseRecordForm(r *http.Request) (core.TournamentInput, int64, error) {
	var in core.TournamentInput

	in.Date = sanitizeInput(r.Form.Get("date"))
	if in.Date == "" {
		in.Date = time.Now().Format(core.DateLayout)
	}
	in.Venue = sanitizeInput(r.Form.Get("venue"))
	in.Notes = sanitizeInput(r.Form.Get("notes"))

	var err error
	if in.Hours, err = core.ParseHours(r.Form.Get("hours")); err != nil {
		return in, 0, err
	}
	if in.Buyin, err = core.ParseAmount(r.Form.Get("buyin")); err != nil {
		return in, 0, err
	}
	if in.Fee, err = core.ParseAmount(r.Form.Get("fee")); err != nil {
		return in, 0, err
	}
	if in.Prize, err = core.ParseAmount(r.Form.Get("prize")); err != nil {
		return in, 0, err
	}
	if in.StartingChips, err = parseChips(r.Form.Get("startingChips")); err != nil {
		return in, 0, err
	}
	if in.FinalChips, err = parseChips(r.Form.Get("finalChips")); err != nil {
		return in, 0, err
	}

	var id int64
	if v := strings.TrimSpace(r.Form.Get("id")); v != "" {
		id, err = strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return in, 0, core.ErrInvalidAmount
		}
	}
	return in, id, nil
}

func parseChips(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, core.ErrInvalidAmount
	}
	return n, nil
}
