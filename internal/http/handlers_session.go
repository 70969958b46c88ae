package http

import (
	"log/slog"
	"net/http"
	"time"

	"pokerledger/internal/core"
	"pokerledger/internal/store"
)

// formData feeds the record form partial.
type formData struct {
	ID            int64
	Date          string
	Venue         string
	Hours         string
	Buyin         string
	Fee           string
	Prize         string
	StartingChips string
	FinalChips    string
	Notes         string
}

func emptyForm() formData {
	return formData{Date: time.Now().Format(core.DateLayout)}
}

// formPresets are the quick-fill templates for regular games.
var formPresets = map[string]formData{
	"standard": {Venue: "市政華人", Hours: "2", Buyin: "3000", Fee: "400"},
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	sess := s.currentSession()
	if sess == nil {
		if err := s.templates.ExecuteTemplate(w, "login.html", nil); err != nil {
			slog.ErrorContext(r.Context(), "Login template execution failed", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	data := struct {
		Username string
		Backend  string
		Form     formData
	}{
		Username: sess.username,
		Backend:  sess.store.BackendName(),
		Form:     emptyForm(),
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("無法解析表單").Write(w)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	if err := core.ValidateUsername(username); err != nil {
		UnprocessableEntityError("用戶名至少需要 3 個字元").Write(w)
		return
	}

	st := store.New(s.backend)
	if err := st.LoadUserData(r.Context(), username); err != nil {
		// The store falls back to an empty collection; the user can keep
		// working and a later save re-establishes persistence.
		slog.WarnContext(r.Context(), "Load failed, starting with empty collection",
			"username", username, "error", err)
	}
	s.setSession(&session{username: username, store: st})
	s.invalidateUser(username)

	slog.InfoContext(r.Context(), "User logged in",
		"username", username,
		"backend", st.BackendName(),
		"records", len(st.GetAllTournaments()))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.currentSession(); sess != nil {
		s.invalidateUser(sess.username)
		slog.InfoContext(r.Context(), "User logged out", "username", sess.username)
	}
	s.setSession(nil)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireSession fetches the active session or answers 401.
func (s *Server) requireSession(w http.ResponseWriter) *session {
	sess := s.currentSession()
	if sess == nil {
		ErrorResponse(http.StatusUnauthorized, "請先登入").Write(w)
		return nil
	}
	return sess
}
