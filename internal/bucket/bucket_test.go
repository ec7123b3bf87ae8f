package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sashankbanda/Focusly/internal/model"
)

var now = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC) // a Wednesday

func tp(t time.Time) *time.Time { return &t }

func TestPartition(t *testing.T) {
	dueToday := now.Add(4 * time.Hour)
	dueNextWeek := now.AddDate(0, 0, 6)
	doneAt := now.Add(-time.Hour)

	tasks := []model.Task{
		{ID: "t-nodue", Text: "no due date"},
		{ID: "t-today", Text: "due this afternoon", DueDate: &dueToday},
		{ID: "t-later", Text: "due next week", DueDate: &dueNextWeek},
		{ID: "t-done", Text: "already done", Completed: true, CompletionDate: &doneAt},
	}

	b := Partition(tasks, now, "")

	require.Len(t, b.Today, 2)
	assert.Equal(t, model.TaskID("t-nodue"), b.Today[0].ID)
	assert.Equal(t, model.TaskID("t-today"), b.Today[1].ID)

	require.Len(t, b.Scheduled, 1)
	assert.Equal(t, model.TaskID("t-later"), b.Scheduled[0].ID)

	require.Len(t, b.History, 1)
	assert.Equal(t, model.TaskID("t-done"), b.History[0].ID)
}

func TestPartition_OverdueStaysInToday(t *testing.T) {
	// An overdue task was due earlier today; it must not slip into
	// Scheduled.
	overdue := now.Add(-2 * time.Hour)
	b := Partition([]model.Task{
		{ID: "t-overdue", Text: "missed it", DueDate: &overdue},
	}, now, "")

	require.Len(t, b.Today, 1)
	assert.Empty(t, b.Scheduled)
}

func TestPartition_DueYesterdayIsScheduled(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	b := Partition([]model.Task{
		{ID: "t-old", Text: "due yesterday", DueDate: &yesterday},
	}, now, "")

	assert.Empty(t, b.Today)
	require.Len(t, b.Scheduled, 1)
}

func TestPartition_HistoryNewestCompletionFirst(t *testing.T) {
	b := Partition([]model.Task{
		{ID: "t-1", Completed: true, CompletionDate: tp(now.Add(-3 * time.Hour))},
		{ID: "t-2", Completed: true, CompletionDate: tp(now.Add(-1 * time.Hour))},
		{ID: "t-3", Completed: true, CompletionDate: tp(now.Add(-2 * time.Hour))},
	}, now, "")

	require.Len(t, b.History, 3)
	assert.Equal(t, model.TaskID("t-2"), b.History[0].ID)
	assert.Equal(t, model.TaskID("t-3"), b.History[1].ID)
	assert.Equal(t, model.TaskID("t-1"), b.History[2].ID)
}

func TestPartition_HistoryTiesKeepInputOrder(t *testing.T) {
	same := tp(now.Add(-time.Hour))
	b := Partition([]model.Task{
		{ID: "t-a", Completed: true, CompletionDate: same},
		{ID: "t-b", Completed: true, CompletionDate: same},
	}, now, "")

	require.Len(t, b.History, 2)
	assert.Equal(t, model.TaskID("t-a"), b.History[0].ID)
	assert.Equal(t, model.TaskID("t-b"), b.History[1].ID)
}

func TestPartition_TagFilter(t *testing.T) {
	b := Partition([]model.Task{
		{ID: "t-work", Tag: "Work"},
		{ID: "t-home", Tag: "Personal"},
		{ID: "t-untagged"},
	}, now, "Work")

	require.Len(t, b.Today, 1)
	assert.Equal(t, model.TaskID("t-work"), b.Today[0].ID)
}

func TestTags_FirstSeenOrder(t *testing.T) {
	tags := Tags([]model.Task{
		{Tag: "Work"},
		{Tag: ""},
		{Tag: "Personal"},
		{Tag: "Work"},
		{Tag: "Health"},
	})
	assert.Equal(t, []string{"Work", "Personal", "Health"}, tags)
}
