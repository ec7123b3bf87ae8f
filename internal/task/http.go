package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sashankbanda/Focusly/internal/model"
)

type Handler struct {
	repo         Repo
	repoResolver func(*http.Request) Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

// SetRepoResolver installs a per-request repo lookup, used to scope the
// handler to the authenticated user.
func (h *Handler) SetRepoResolver(fn func(*http.Request) Repo) {
	h.repoResolver = fn
}

func (h *Handler) repoForRequest(r *http.Request) Repo {
	if h.repoResolver != nil {
		if repo := h.repoResolver(r); repo != nil {
			return repo
		}
	}
	return h.repo
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func badRequest(err error) bool {
	return errors.Is(err, ErrEmptyTitle) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrReminderWithoutDue) ||
		errors.Is(err, ErrNegativeLeadTime)
}

// TasksRoot serves /api/tasks (collection).
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	switch r.Method {
	case http.MethodGet:
		ts, err := repo.List(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not list tasks")
			return
		}
		writeJSON(w, http.StatusOK, EncodeDocs(ts))

	case http.MethodPost:
		var in CreateDoc
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		t, err := DecodeCreate(in)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := repo.Create(r.Context(), t)
		if err != nil {
			if badRequest(err) {
				writeErr(w, http.StatusBadRequest, err.Error())
				return
			}
			writeErr(w, http.StatusInternalServerError, "could not create task")
			return
		}
		writeJSON(w, http.StatusCreated, EncodeDoc(created))

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// TasksSub serves /api/tasks/{id}, /api/tasks/{id}/calendar.ics and
// /api/tasks/history.
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	if tail == "history" {
		if r.Method != http.MethodDelete {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		removed, err := repo.ClearHistory(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not clear history")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": removed})
		return
	}

	parts := strings.Split(tail, "/")
	id := parts[0]

	if len(parts) == 2 && parts[1] == "calendar.ics" {
		h.taskCalendar(w, r, repo, id)
		return
	}
	if len(parts) != 1 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := repo.Get(r.Context(), model.TaskID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not load task")
			return
		}
		writeJSON(w, http.StatusOK, EncodeDoc(t))

	case http.MethodPut:
		var in DocPatch
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		p, err := DecodePatch(in)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		t, err := repo.Update(r.Context(), model.TaskID(id), p)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			if badRequest(err) {
				writeErr(w, http.StatusBadRequest, err.Error())
				return
			}
			writeErr(w, http.StatusInternalServerError, "could not update task")
			return
		}
		writeJSON(w, http.StatusOK, EncodeDoc(t))

	case http.MethodDelete:
		err := repo.Delete(r.Context(), model.TaskID(id))
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not delete task")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) taskCalendar(w http.ResponseWriter, r *http.Request, repo Repo, id string) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	t, err := repo.Get(r.Context(), model.TaskID(id))
	if errors.Is(err, ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not load task")
		return
	}
	ics, err := BuildTaskCalendarICS(t, timeNow())
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="task.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics))
}
