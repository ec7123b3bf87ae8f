package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sashankbanda/Focusly/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMemoryRepo_CreateGetList(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	t1, err := repo.Create(ctx, model.Task{Text: "pick up eggs"})
	require.NoError(t, err)
	assert.NotEmpty(t, t1.ID)
	assert.Equal(t, model.PriorityLow, t1.Priority)
	assert.False(t, t1.Completed)

	got, err := repo.Get(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, t1, got)

	_, err = repo.Create(ctx, model.Task{Text: "water plants"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemoryRepo_ListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := base
	repo.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := repo.Create(ctx, model.Task{Text: "first"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, model.Task{Text: "second"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestMemoryRepo_CreateRejectsEmptyTitle(t *testing.T) {
	repo := NewMemoryRepo()

	_, err := repo.Create(context.Background(), model.Task{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestMemoryRepo_CreateIgnoresClientCompletion(t *testing.T) {
	repo := NewMemoryRepo()
	done := time.Now()

	got, err := repo.Create(context.Background(), model.Task{
		Text:           "sneaky",
		Completed:      true,
		CompletionDate: &done,
	})
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletionDate)
}

func TestMemoryRepo_CreateReminderRequiresDueDate(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Task{Text: "call mom", ReminderEnabled: true})
	assert.ErrorIs(t, err, ErrReminderWithoutDue)

	due := time.Now().Add(2 * time.Hour)
	got, err := repo.Create(ctx, model.Task{Text: "call mom", DueDate: &due, ReminderEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultReminderLeadMinutes, got.ReminderLeadTime)
}

func TestMemoryRepo_CompletionDateTracksCompleted(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	completedAt := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	repo.Now = fixedClock(completedAt)

	created, err := repo.Create(ctx, model.Task{Text: "write report"})
	require.NoError(t, err)

	done := true
	got, err := repo.Update(ctx, created.ID, Patch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletionDate)
	assert.Equal(t, completedAt, *got.CompletionDate)

	// Completing an already-completed task must not move the stamp.
	repo.Now = fixedClock(completedAt.Add(time.Hour))
	again, err := repo.Update(ctx, created.ID, Patch{Completed: &done})
	require.NoError(t, err)
	require.NotNil(t, again.CompletionDate)
	assert.Equal(t, completedAt, *again.CompletionDate)

	undone := false
	back, err := repo.Update(ctx, created.ID, Patch{Completed: &undone})
	require.NoError(t, err)
	assert.False(t, back.Completed)
	assert.Nil(t, back.CompletionDate)
}

func TestMemoryRepo_UpdateClearDueDateDisarmsReminder(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	due := time.Now().Add(time.Hour)
	created, err := repo.Create(ctx, model.Task{Text: "standup", DueDate: &due, ReminderEnabled: true})
	require.NoError(t, err)
	require.True(t, created.ReminderEnabled)

	got, err := repo.Update(ctx, created.ID, Patch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	assert.False(t, got.ReminderEnabled)
}

func TestMemoryRepo_UpdateUnknownIDIsNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	text := "whatever"

	_, err := repo.Update(context.Background(), "task_missing", Patch{Text: &text})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_DeleteRemoves(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Task{Text: "old thing"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)
}

func TestMemoryRepo_ClearHistorySparesRepeatDaily(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	plain, err := repo.Create(ctx, model.Task{Text: "one-off"})
	require.NoError(t, err)
	daily, err := repo.Create(ctx, model.Task{Text: "morning run", RepeatDaily: true})
	require.NoError(t, err)
	open, err := repo.Create(ctx, model.Task{Text: "still open"})
	require.NoError(t, err)

	done := true
	_, err = repo.Update(ctx, plain.ID, Patch{Completed: &done})
	require.NoError(t, err)
	_, err = repo.Update(ctx, daily.ID, Patch{Completed: &done})
	require.NoError(t, err)

	removed, err := repo.ClearHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.Get(ctx, plain.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The repeat-daily task survives with its completion intact, and the
	// open task is untouched.
	keptDaily, err := repo.Get(ctx, daily.ID)
	require.NoError(t, err)
	assert.True(t, keptDaily.Completed)

	keptOpen, err := repo.Get(ctx, open.ID)
	require.NoError(t, err)
	assert.False(t, keptOpen.Completed)
}

func TestMemoryRepo_ForUserIsolation(t *testing.T) {
	root := NewMemoryRepo()
	ctx := context.Background()

	alice := root.ForUser("alice")
	bob := root.ForUser("bob")

	created, err := alice.Create(ctx, model.Task{Text: "alice only"})
	require.NoError(t, err)

	_, err = bob.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	bobList, err := bob.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bobList)
}
