package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

// TaskSource yields the authenticated user's task list for one request.
type TaskSource func(r *http.Request) ([]model.Task, error)

type Handler struct {
	source TaskSource

	// Now is overridable in tests.
	Now func() time.Time
}

func NewHandler(source TaskSource) *Handler {
	return &Handler{source: source, Now: time.Now}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// Stats serves GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tasks, err := h.source(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not load tasks")
		return
	}
	writeJSON(w, http.StatusOK, Summarize(tasks, h.Now()))
}

// Report serves GET /api/report?start=YYYY-MM-DD&end=YYYY-MM-DD.
// The range defaults to the last seven days.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := h.Now()
	start := now.AddDate(0, 0, -6)
	end := now

	q := r.URL.Query()
	if raw := q.Get("start"); raw != "" {
		ts, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			writeErr(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		start = ts
	}
	if raw := q.Get("end"); raw != "" {
		ts, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			writeErr(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		end = ts
	}

	tasks, err := h.source(r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not load tasks")
		return
	}
	writeJSON(w, http.StatusOK, BuildReport(tasks, start, end))
}
