package model

import (
	"time"
)

type TaskID string

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// TagSuggestions is the set offered in creation forms. Tags are free text;
// this is not a closed set.
var TagSuggestions = []string{"Work", "Personal", "Study", "Health"}

// ReminderLeadChoices are the lead times (minutes before due) offered in
// creation forms. Any positive value is accepted on the wire.
var ReminderLeadChoices = []int{5, 15, 30}

const DefaultReminderLeadMinutes = 15

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NormalizePriority maps an absent priority to Low.
func NormalizePriority(p Priority) Priority {
	if p == "" {
		return PriorityLow
	}
	return p
}

type Task struct {
	ID        TaskID `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`

	CreatedAt      time.Time  `json:"createdAt"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`

	Priority Priority `json:"priority,omitempty"`
	Tag      string   `json:"tag,omitempty"`

	ReminderEnabled  bool `json:"reminderEnabled,omitempty"`
	ReminderLeadTime int  `json:"reminderLeadTime,omitempty"` // minutes before due

	RepeatDaily bool `json:"repeatDaily,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// ReminderAt returns the instant at which the task's reminder becomes
// eligible to fire: dueDate minus the lead time. The second return is false
// when the task has no armed reminder.
func (t *Task) ReminderAt() (time.Time, bool) {
	if !t.ReminderEnabled || t.DueDate == nil {
		return time.Time{}, false
	}
	return t.DueDate.Add(-time.Duration(t.ReminderLeadTime) * time.Minute), true
}

// DueWithin reports whether the task's due date falls inside [from, to).
func (t *Task) DueWithin(from, to time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return !t.DueDate.Before(from) && t.DueDate.Before(to)
}
