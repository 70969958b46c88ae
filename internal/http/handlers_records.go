package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"pokerledger/internal/amqp"
	"pokerledger/internal/core"
	"pokerledger/internal/store"
)

// handleSaveRecord creates or updates one session record. A non-zero id field
// selects update; otherwise a new record is appended.
func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	// Only one save at a time; a concurrent submission is rejected, not queued.
	if !s.saving.CompareAndSwap(false, true) {
		ConflictError("儲存進行中，請稍候").Write(w)
		return
	}
	defer s.saving.Store(false)

	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("無法解析表單").Write(w)
		return
	}

	in, id, err := parseRecordForm(r)
	if err != nil {
		UnprocessableEntityError("金額或時長格式不正確").Write(w)
		return
	}

	var (
		record core.Tournament
		op     string
	)
	if id > 0 {
		op = amqp.OpUpdate
		err = sess.store.UpdateTournament(r.Context(), id, in)
		record, _ = sess.store.GetTournament(id)
	} else {
		op = amqp.OpAdd
		record, err = sess.store.AddTournament(r.Context(), in)
	}

	if err != nil {
		s.writeMutationError(w, r, err, op)
		return
	}

	s.invalidateUser(sess.username)
	count := len(sess.store.GetAllTournaments())
	if s.publisher != nil {
		s.publisher.Publish(sess.username, op, record.ID, count)
	}

	s.logs.LogRecordMutation(r.Context(), op, sess.username, record.ID, record.Venue)

	NewHTMXResponse().
		TriggerLedgerChanged(op, record.ID).
		TriggerFormReset().
		TriggerSuccessNotification("已儲存：" + record.Venue + " " + core.FormatDollars(record.NetProfit)).
		BodyHTML(`<div class="success">已儲存 #` + strconv.FormatInt(record.ID, 10) + ` — ` +
			template.HTMLEscapeString(record.Venue) + ` ` +
			core.FormatDollars(record.NetProfit) + `</div>`).
		Write(w)
}

// handleDeleteRecord removes one record by id.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	sess := s.requireSession(w)
	if sess == nil {
		return
	}

	if !s.saving.CompareAndSwap(false, true) {
		ConflictError("儲存進行中，請稍候").Write(w)
		return
	}
	defer s.saving.Store(false)

	if err := r.ParseForm(); err != nil {
		BadRequestError("無法解析表單").Write(w)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("id")), 10, 64)
	if err != nil || id <= 0 {
		UnprocessableEntityError("無效的記錄編號").Write(w)
		return
	}

	if err := sess.store.DeleteTournament(r.Context(), id); err != nil {
		s.writeMutationError(w, r, err, amqp.OpDelete)
		return
	}

	s.invalidateUser(sess.username)
	count := len(sess.store.GetAllTournaments())
	if s.publisher != nil {
		s.publisher.Publish(sess.username, amqp.OpDelete, id, count)
	}

	s.logs.LogRecordMutation(r.Context(), amqp.OpDelete, sess.username, id, "")

	NewHTMXResponse().
		TriggerLedgerChanged(amqp.OpDelete, id).
		TriggerSuccessNotification("記錄已刪除").
		BodyHTML(`<div class="success">記錄已刪除</div>`).
		Write(w)
}

// writeMutationError maps store errors onto HTMX error responses.
func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFoundError("找不到該筆記錄").Write(w)
	case errors.Is(err, store.ErrBackend):
		slog.ErrorContext(r.Context(), "Persistence failed, mutation rolled back",
			"error", err, "op", op)
		InternalServerError("儲存失敗，變更已復原").
			TriggerErrorNotification("儲存失敗，請重試").
			Write(w)
	default:
		UnprocessableEntityError("資料不正確：" + err.Error()).Write(w)
	}
}
