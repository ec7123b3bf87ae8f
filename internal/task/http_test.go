package task

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sashankbanda/Focusly/internal/model"
)

func doJSON(t *testing.T, h http.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandler_CreateAndList(t *testing.T) {
	h := NewHandler(NewMemoryRepo())

	rec := doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{
		Title:    "write tests",
		Priority: model.PriorityHigh,
		Tag:      "Work",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Doc
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "write tests", created.Title)
	assert.False(t, created.Completed)

	rec = doJSON(t, h.TasksRoot, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []Doc
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestHandler_CreateRejectsBadInput(t *testing.T) {
	h := NewHandler(NewMemoryRepo())

	rec := doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{
		Title:    "bad reminder",
		Reminder: true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := "not a date"
	rec = doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{
		Title:   "bad due",
		DueDate: &bad,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UpdateCompletesTask(t *testing.T) {
	h := NewHandler(NewMemoryRepo())

	rec := doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{Title: "finish me"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Doc
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	done := true
	rec = doJSON(t, h.TasksSub, http.MethodPut, "/api/tasks/"+string(created.ID), DocPatch{Completed: &done})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated Doc
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletionDate)
}

func TestHandler_UnknownIDIs404(t *testing.T) {
	h := NewHandler(NewMemoryRepo())

	rec := doJSON(t, h.TasksSub, http.MethodGet, "/api/tasks/task_nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h.TasksSub, http.MethodDelete, "/api/tasks/task_nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	title := "x"
	rec = doJSON(t, h.TasksSub, http.MethodPut, "/api/tasks/task_nope", DocPatch{Title: &title})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ClearHistory(t *testing.T) {
	repo := NewMemoryRepo()
	h := NewHandler(repo)

	rec := doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{Title: "done soon"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Doc
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	done := true
	rec = doJSON(t, h.TasksSub, http.MethodPut, "/api/tasks/"+string(created.ID), DocPatch{Completed: &done})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.TasksSub, http.MethodDelete, "/api/tasks/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		OK      bool `json:"ok"`
		Deleted int  `json:"deleted"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, out.OK)
	assert.Equal(t, 1, out.Deleted)
}

func TestHandler_CalendarExport(t *testing.T) {
	repo := NewMemoryRepo()
	h := NewHandler(repo)

	due := "2026-06-01T10:00:00Z"
	rec := doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{
		Title:    "dentist",
		DueDate:  &due,
		Reminder: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Doc
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = doJSON(t, h.TasksSub, http.MethodGet, "/api/tasks/"+string(created.ID)+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")

	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:dentist")
	assert.Contains(t, body, "DTSTART:20260601T100000Z")
	assert.Contains(t, body, "TRIGGER:-PT15M")
}

func TestHandler_CalendarExportNeedsDueDate(t *testing.T) {
	repo := NewMemoryRepo()
	h := NewHandler(repo)

	rec := doJSON(t, h.TasksRoot, http.MethodPost, "/api/tasks", CreateDoc{Title: "no due"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Doc
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = doJSON(t, h.TasksSub, http.MethodGet, "/api/tasks/"+string(created.ID)+"/calendar.ics", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildTaskCalendarICS_RepeatDailyAndEscaping(t *testing.T) {
	due := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	ics, err := BuildTaskCalendarICS(model.Task{
		ID:          "task_1",
		Text:        "plan; review, iterate",
		Tag:         "Work",
		DueDate:     &due,
		RepeatDaily: true,
	}, time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, ics, "RRULE:FREQ=DAILY")
	assert.Contains(t, ics, `SUMMARY:plan\; review\, iterate`)
	assert.Contains(t, ics, "CATEGORIES:Work")
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
}
