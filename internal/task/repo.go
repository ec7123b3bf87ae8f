package task

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

var (
	ErrNotFound           = errors.New("task not found")
	ErrEmptyTitle         = errors.New("task title is required")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrReminderWithoutDue = errors.New("reminder requires a due date")
	ErrNegativeLeadTime   = errors.New("reminder lead time must not be negative")
)

// Patch is a partial update. nil pointer => "no change".
// ClearDueDate wins over DueDate and also disarms the reminder, keeping the
// reminder-implies-due-date invariant intact.
type Patch struct {
	Text             *string
	Completed        *bool
	DueDate          *time.Time
	ClearDueDate     bool
	Priority         *model.Priority
	Tag              *string // empty string clears
	ReminderEnabled  *bool
	ReminderLeadTime *int
	RepeatDaily      *bool
}

type Repo interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id model.TaskID) (model.Task, error)
	Update(ctx context.Context, id model.TaskID, p Patch) (model.Task, error)
	// List returns the user's tasks sorted newest-created-first.
	List(ctx context.Context) ([]model.Task, error)
	Delete(ctx context.Context, id model.TaskID) error
	// ClearHistory deletes every completed task except repeat-daily ones and
	// reports how many were removed.
	ClearHistory(ctx context.Context) (int, error)
}

// validateNew normalizes and checks a task before it is stored.
func validateNew(t *model.Task) error {
	t.Text = strings.TrimSpace(t.Text)
	if t.Text == "" {
		return ErrEmptyTitle
	}
	t.Priority = model.NormalizePriority(t.Priority)
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	t.Tag = strings.TrimSpace(t.Tag)
	if t.ReminderEnabled && t.DueDate == nil {
		return ErrReminderWithoutDue
	}
	if t.ReminderLeadTime < 0 {
		return ErrNegativeLeadTime
	}
	if t.ReminderEnabled && t.ReminderLeadTime == 0 {
		t.ReminderLeadTime = model.DefaultReminderLeadMinutes
	}
	// Completed/completionDate are owned by the update path.
	t.Completed = false
	t.CompletionDate = nil
	return nil
}

// applyPatch mutates t in place. The completed transition is the single place
// where completionDate is set or cleared (set to the transition instant).
func applyPatch(t *model.Task, p Patch, now time.Time) error {
	if p.Text != nil {
		text := strings.TrimSpace(*p.Text)
		if text == "" {
			return ErrEmptyTitle
		}
		t.Text = text
	}

	if p.ClearDueDate {
		t.DueDate = nil
		t.ReminderEnabled = false
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}

	if p.Priority != nil {
		pr := model.NormalizePriority(*p.Priority)
		if !pr.Valid() {
			return ErrInvalidPriority
		}
		t.Priority = pr
	}
	if p.Tag != nil {
		t.Tag = strings.TrimSpace(*p.Tag)
	}

	if p.ReminderEnabled != nil {
		if *p.ReminderEnabled && t.DueDate == nil {
			return ErrReminderWithoutDue
		}
		t.ReminderEnabled = *p.ReminderEnabled
	}
	if p.ReminderLeadTime != nil {
		if *p.ReminderLeadTime < 0 {
			return ErrNegativeLeadTime
		}
		t.ReminderLeadTime = *p.ReminderLeadTime
	}
	if p.RepeatDaily != nil {
		t.RepeatDaily = *p.RepeatDaily
	}

	if p.Completed != nil && *p.Completed != t.Completed {
		t.Completed = *p.Completed
		if t.Completed {
			at := now
			t.CompletionDate = &at
		} else {
			t.CompletionDate = nil
		}
	}

	t.UpdatedAt = now
	return nil
}

// clearable reports whether a history clear removes the task.
func clearable(t model.Task) bool {
	return t.Completed && !t.RepeatDaily
}

func sortNewestFirst(out []model.Task) {
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
}
