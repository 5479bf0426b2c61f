// Command mock-logs is a local stand-in for the central log service. It keeps
// entries in memory and answers the same POST/GET /api/logs calls.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/logship"
)

type store struct {
	mu      sync.RWMutex
	entries []logship.Entry
}

func (s *store) add(e logship.Entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return len(s.entries)
}

func (s *store) query(q map[string]string, page, perPage int) ([]logship.Entry, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]logship.Entry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if !matches(e, q) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	return matched[start:end], total
}

func matches(e logship.Entry, q map[string]string) bool {
	if v := q["application_name"]; v != "" && e.ApplicationName != v {
		return false
	}
	if v := q["level"]; v != "" && e.Level != v {
		return false
	}
	if v := q["user_id"]; v != "" && e.UserID != v {
		return false
	}
	if v := q["source"]; v != "" && e.Source != v {
		return false
	}
	day := e.Timestamp.UTC().Format(time.DateOnly)
	if v := q["date_from"]; v != "" && day < v {
		return false
	}
	if v := q["date_to"]; v != "" && day > v {
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func positive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func main() {
	logging.Init(logging.Options{Service: "mock-logs", Level: "info", AppEnv: os.Getenv("APP_ENV")})

	addr := os.Getenv("MOCK_LOGS_ADDR")
	if addr == "" {
		addr = ":8001"
	}

	s := &store{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/logs", func(w http.ResponseWriter, r *http.Request) {
		var e logship.Entry
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&e); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid log entry"})
			return
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}
		id := s.add(e)
		slog.Info("log stored", "id", id, "source", e.Source, "message", e.Message)
		writeJSON(w, http.StatusCreated, map[string]int{"id": id})
	})

	mux.HandleFunc("GET /api/logs", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := map[string]string{}
		for _, k := range []string{"application_name", "level", "user_id", "source", "date_from", "date_to"} {
			filters[k] = q.Get(k)
		}
		page := positive(q.Get("page"), 1)
		perPage := min(positive(q.Get("per_page"), 20), 100)

		logs, total := s.query(filters, page, perPage)
		writeJSON(w, http.StatusOK, map[string]any{
			"data":     logs,
			"page":     page,
			"per_page": perPage,
			"total":    total,
		})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("mock log service started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
