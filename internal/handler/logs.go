package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/logship"
)

type logReader interface {
	Fetch(ctx context.Context, f logship.Filter) (json.RawMessage, error)
	Stats(ctx context.Context) logship.Stats
}

type LogsHandler struct {
	logs logReader
}

func NewLogsHandler(logs logReader) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// List returns the caller's own entries from the log service. The user filter
// is always forced to the authenticated user.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := logship.Filter{
		ApplicationName: logship.ApplicationName,
		Level:           q.Get("level"),
		UserID:          userID.String(),
		Source:          q.Get("source"),
		DateFrom:        q.Get("date_from"),
		DateTo:          q.Get("date_to"),
	}

	var fields []FieldError
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields = append(fields, FieldError{Field: "page", Message: "must be a positive integer"})
		}
		f.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			fields = append(fields, FieldError{Field: "per_page", Message: "must be between 1 and 100"})
		}
		f.PerPage = n
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	body, err := h.logs.Fetch(r.Context(), f)
	if err != nil {
		logging.FromContext(r.Context()).Warn("log fetch failed", "error", err)
		if errors.Is(err, logship.ErrUpstream) {
			RespondAppError(w, ErrUpstreamFailed, nil)
			return
		}
		RespondAppError(w, ErrInternalError, nil)
		return
	}
	RespondSuccess(w, http.StatusOK, body)
}

func (h *LogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	RespondSuccess(w, http.StatusOK, h.logs.Stats(r.Context()))
}
