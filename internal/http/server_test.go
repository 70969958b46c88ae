package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"pokerledger/internal/core"
)

// fakeBackend is an in-memory store.Backend for handler tests.
type fakeBackend struct {
	records map[string][]core.Tournament
	nextID  map[string]int64
	loadErr error
	saveErr error
	saves   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		records: make(map[string][]core.Tournament),
		nextID:  make(map[string]int64),
	}
}

func (b *fakeBackend) Load(_ context.Context, username string) ([]core.Tournament, int64, error) {
	if b.loadErr != nil {
		return nil, 0, b.loadErr
	}
	nextID := b.nextID[username]
	if nextID == 0 {
		nextID = 1
	}
	return b.records[username], nextID, nil
}

func (b *fakeBackend) Save(_ context.Context, username string, records []core.Tournament, nextID int64) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves++
	b.records[username] = append([]core.Tournament(nil), records...)
	b.nextID[username] = nextID
	return nil
}

func (b *fakeBackend) Name() string { return "fake" }

func newTestServer(t *testing.T, backend *fakeBackend) *Server {
	t.Helper()
	s := NewServer(":0", backend, Options{})
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	if s.templates == nil {
		t.Fatal("templates failed to parse")
	}
	return s
}

func doRequest(s *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Server, username string) {
	t.Helper()
	rec := doRequest(s, http.MethodPost, "/login", url.Values{"username": {username}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
}

func TestIndexShowsLoginWhenLoggedOut(t *testing.T) {
	s := newTestServer(t, newFakeBackend())

	rec := doRequest(s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/login"`) {
		t.Error("logged-out index should render the login form")
	}
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	login(t, s, "alice")

	rec := doRequest(s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "alice") {
		t.Error("dashboard should show the logged-in username")
	}
	if !strings.Contains(body, "fake") {
		t.Error("dashboard should show the backend name")
	}
}

func TestLoginRejectsShortUsername(t *testing.T) {
	s := newTestServer(t, newFakeBackend())

	rec := doRequest(s, http.MethodPost, "/login", url.Values{"username": {"ab"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestLoginSurvivesBackendFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.loadErr = errors.New("backend down")
	s := newTestServer(t, backend)

	login(t, s, "alice")

	rec := doRequest(s, http.MethodGet, "/ui/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "還沒有任何記錄") {
		t.Error("failed load should fall back to an empty collection")
	}
}

func TestSaveRecordCreates(t *testing.T) {
	backend := newFakeBackend()
	s := newTestServer(t, backend)
	login(t, s, "alice")

	rec := doRequest(s, http.MethodPost, "/tournaments", url.Values{
		"date":  {"2026-03-01"},
		"venue": {"CTP"},
		"hours": {"2.5"},
		"buyin": {"3000"},
		"fee":   {"400"},
		"prize": {"5000"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "ledger:changed") {
		t.Errorf("HX-Trigger = %q, want ledger:changed", trigger)
	}

	saved := backend.records["alice"]
	if len(saved) != 1 {
		t.Fatalf("backend has %d records, want 1", len(saved))
	}
	if saved[0].NetProfit != 1600 {
		t.Errorf("NetProfit = %v, want 1600", saved[0].NetProfit)
	}
}

func TestSaveRecordRejectsBadAmount(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	login(t, s, "alice")

	rec := doRequest(s, http.MethodPost, "/tournaments", url.Values{
		"venue": {"CTP"},
		"buyin": {"not-a-number"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if backend := s.backend.(*fakeBackend); backend.saves != 0 {
		t.Error("invalid input must not reach the backend")
	}
}

func TestSaveRecordUpdatesExisting(t *testing.T) {
	backend := newFakeBackend()
	backend.records["alice"] = []core.Tournament{
		{ID: 1, Date: "2026-03-01", Venue: "CTP", Buyin: 3000, Fee: 400, Prize: 0, NetProfit: -3400},
	}
	backend.nextID["alice"] = 2
	s := newTestServer(t, backend)
	login(t, s, "alice")

	rec := doRequest(s, http.MethodPost, "/tournaments", url.Values{
		"id":    {"1"},
		"date":  {"2026-03-01"},
		"venue": {"CTP"},
		"buyin": {"3000"},
		"fee":   {"400"},
		"prize": {"9000"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	saved := backend.records["alice"]
	if len(saved) != 1 {
		t.Fatalf("backend has %d records, want 1", len(saved))
	}
	if saved[0].NetProfit != 5600 {
		t.Errorf("NetProfit = %v, want 5600", saved[0].NetProfit)
	}
}

func TestDeleteRecord(t *testing.T) {
	backend := newFakeBackend()
	backend.records["alice"] = []core.Tournament{
		{ID: 1, Date: "2026-03-01", Venue: "CTP", Buyin: 3000, Fee: 400},
	}
	backend.nextID["alice"] = 2
	s := newTestServer(t, backend)
	login(t, s, "alice")

	rec := doRequest(s, http.MethodPost, "/tournaments/delete", url.Values{"id": {"1"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if len(backend.records["alice"]) != 0 {
		t.Errorf("backend has %d records, want 0", len(backend.records["alice"]))
	}
}

func TestDeleteMissingRecord(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	login(t, s, "alice")

	rec := doRequest(s, http.MethodPost, "/tournaments/delete", url.Values{"id": {"42"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestConcurrentSaveRejected(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	login(t, s, "alice")

	s.saving.Store(true)
	defer s.saving.Store(false)

	rec := doRequest(s, http.MethodPost, "/tournaments", url.Values{
		"venue": {"CTP"},
		"buyin": {"3000"},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestPartialsRequireLogin(t *testing.T) {
	s := newTestServer(t, newFakeBackend())

	for _, target := range []string{"/ui/summary", "/ui/history", "/ui/charts", "/export"} {
		rec := doRequest(s, http.MethodGet, target, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", target, rec.Code)
		}
	}
}

func TestSummaryPartial(t *testing.T) {
	backend := newFakeBackend()
	backend.records["alice"] = []core.Tournament{
		{ID: 1, Date: "2026-03-01", Venue: "CTP", Hours: 2, Buyin: 3000, Fee: 400, Prize: 5000, NetProfit: 1600},
		{ID: 2, Date: "2026-03-02", Venue: "CTP", Hours: 3, Buyin: 3000, Fee: 400, Prize: 0, NetProfit: -3400},
	}
	backend.nextID["alice"] = 3
	s := newTestServer(t, backend)
	login(t, s, "alice")

	rec := doRequest(s, http.MethodGet, "/ui/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "-$1,800.00") {
		t.Errorf("summary should show total profit -$1,800.00, got: %s", body)
	}
	if !strings.Contains(body, "CTP") {
		t.Error("summary should list the venue breakdown")
	}
}

func TestChartsEndpoint(t *testing.T) {
	backend := newFakeBackend()
	backend.records["alice"] = []core.Tournament{
		{ID: 1, Date: "2026-03-01", Venue: "CTP", Hours: 2, Buyin: 3000, Fee: 400, Prize: 5000, NetProfit: 1600},
	}
	backend.nextID["alice"] = 2
	s := newTestServer(t, backend)
	login(t, s, "alice")

	rec := doRequest(s, http.MethodGet, "/ui/charts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payloads map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &payloads); err != nil {
		t.Fatalf("charts response is not valid JSON: %v", err)
	}
	for _, name := range []string{"balance", "roi", "venue", "hourly"} {
		if _, ok := payloads[name]; !ok {
			t.Errorf("charts response missing %q", name)
		}
	}

	rec = doRequest(s, http.MethodGet, "/ui/charts?name=bogus", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chart status = %d, want 404", rec.Code)
	}
}

func TestTemplatePartial(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	login(t, s, "alice")

	rec := doRequest(s, http.MethodGet, "/ui/template?name=standard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"市政華人", "3000", "400"} {
		if !strings.Contains(body, want) {
			t.Errorf("prefilled form missing %q", want)
		}
	}

	rec = doRequest(s, http.MethodGet, "/ui/template?name=nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown preset status = %d, want 404", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	backend := newFakeBackend()
	backend.records["alice"] = []core.Tournament{
		{ID: 1, Date: "2026-03-01", Venue: "CTP", Buyin: 3000, Fee: 400, Prize: 5000, NetProfit: 1600},
	}
	backend.nextID["alice"] = 2
	s := newTestServer(t, backend)
	login(t, s, "alice")

	rec := doRequest(s, http.MethodGet, "/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "poker_tournaments_") {
		t.Errorf("Content-Disposition = %q, want poker_tournaments_ filename", cd)
	}

	body := rec.Body.Bytes()
	if len(body) < 3 || body[0] != 0xEF || body[1] != 0xBB || body[2] != 0xBF {
		t.Fatal("export should start with a UTF-8 BOM")
	}
	text := string(body[3:])
	if !strings.HasPrefix(text, "日期,名稱,買入金額,行政費用,獎金,盈虧") {
		t.Errorf("unexpected CSV header: %s", strings.SplitN(text, "\n", 2)[0])
	}
	if !strings.Contains(text, "2026-03-01,CTP,3000,400,5000,1600") {
		t.Errorf("CSV missing record row: %s", text)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	login(t, s, "alice")

	rec := doRequest(s, http.MethodPost, "/logout", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want 303", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/ui/summary", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout summary status = %d, want 401", rec.Code)
	}
}
