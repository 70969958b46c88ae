// Package sheets implements the first-generation remote backend: one worksheet
// per user, one row per session, full clear-and-rewrite on every save.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"pokerledger/internal/core"
	"pokerledger/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	usersRange       = "Users!A:B"
	userSheetPrefix  = "Records_"
	recordColumnSpan = "A:K"
)

// headerRow is the fixed column order of a per-user sheet:
// [id, date, venue, hours, buyin, fee, prize, netProfit, startingChips, finalChips, notes].
var headerRow = []any{"ID", "日期", "場地", "時長", "買入", "行政費", "獎金", "淨收益", "起始籌碼", "最終籌碼", "備註"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ store.Backend = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets service using service account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Name implements store.Backend.
func (c *Client) Name() string { return "sheets" }

// Load implements store.Backend. A user whose sheet does not exist yet gets
// an empty collection.
func (c *Client) Load(ctx context.Context, username string) ([]core.Tournament, int64, error) {
	if c.svc == nil {
		return nil, 0, errors.New("sheets service not initialized")
	}

	rng := userRange(username)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, 1, nil
		}
		return nil, 0, fmt.Errorf("read %s: %w", rng, err)
	}

	records, err := parseRecordRows(resp.Values)
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", rng, err)
	}
	var maxID int64
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return records, maxID + 1, nil
}

// Save implements store.Backend: ensure the user and sheet exist, clear the
// whole range, then rewrite header plus data rows.
func (c *Client) Save(ctx context.Context, username string, records []core.Tournament, nextID int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	if err := c.ensureUser(ctx, username); err != nil {
		return err
	}

	rng := userRange(username)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		if !isMissingSheet(err) {
			return fmt.Errorf("clear %s: %w", rng, err)
		}
		if err := c.addUserSheet(ctx, username); err != nil {
			return err
		}
	}

	values := [][]any{headerRow}
	for _, r := range records {
		values = append(values, recordRow(r))
	}
	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Collection saved to Google Sheets",
		"username", username, "records", len(records))
	return nil
}

// ensureUser appends the username to the Users sheet on first save.
func (c *Client) ensureUser(ctx context.Context, username string) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, usersRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", usersRange, err)
	}
	for _, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == username {
			return nil
		}
	}

	vr := &gsheet.ValueRange{Values: [][]any{{username, time.Now().UTC().Format(time.RFC3339)}}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, usersRange, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append user %s: %w", username, err)
	}
	return nil
}

// addUserSheet creates the per-user worksheet the first time it is needed.
func (c *Client) addUserSheet(ctx context.Context, username string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: userSheetPrefix + username},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create sheet for %s: %w", username, err)
	}
	return nil
}

func userRange(username string) string {
	return fmt.Sprintf("%s%s!%s", userSheetPrefix, username, recordColumnSpan)
}

// isMissingSheet matches the API error returned for a range whose worksheet
// does not exist.
func isMissingSheet(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unable to parse range")
}
