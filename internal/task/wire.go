package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

// The API and storage documents use the historical field names `title` and
// `reminder`; the model uses `Text` and `ReminderEnabled`. This file is the
// single place where the two vocabularies meet.

// Doc is a task as it appears on the wire.
type Doc struct {
	ID               model.TaskID   `json:"id"`
	Title            string         `json:"title"`
	Completed        bool           `json:"completed"`
	Priority         model.Priority `json:"priority,omitempty"`
	Tag              string         `json:"tag,omitempty"`
	DueDate          *time.Time     `json:"dueDate,omitempty"`
	CompletionDate   *time.Time     `json:"completionDate,omitempty"`
	Reminder         bool           `json:"reminder,omitempty"`
	ReminderLeadTime int            `json:"reminderLeadTime,omitempty"`
	RepeatDaily      bool           `json:"repeatDaily,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// CreateDoc is the POST /api/tasks request body.
type CreateDoc struct {
	Title            string         `json:"title"`
	Priority         model.Priority `json:"priority,omitempty"`
	Tag              string         `json:"tag,omitempty"`
	DueDate          *string        `json:"dueDate,omitempty"`
	Reminder         bool           `json:"reminder,omitempty"`
	ReminderLeadTime int            `json:"reminderLeadTime,omitempty"`
	RepeatDaily      bool           `json:"repeatDaily,omitempty"`
}

// DocPatch is the PUT /api/tasks/{id} request body. nil => "no change";
// an empty dueDate string clears the due date.
type DocPatch struct {
	Title            *string         `json:"title,omitempty"`
	Completed        *bool           `json:"completed,omitempty"`
	Priority         *model.Priority `json:"priority,omitempty"`
	Tag              *string         `json:"tag,omitempty"`
	DueDate          *string         `json:"dueDate,omitempty"`
	Reminder         *bool           `json:"reminder,omitempty"`
	ReminderLeadTime *int            `json:"reminderLeadTime,omitempty"`
	RepeatDaily      *bool           `json:"repeatDaily,omitempty"`
}

func EncodeDoc(t model.Task) Doc {
	return Doc{
		ID:               t.ID,
		Title:            t.Text,
		Completed:        t.Completed,
		Priority:         t.Priority,
		Tag:              t.Tag,
		DueDate:          t.DueDate,
		CompletionDate:   t.CompletionDate,
		Reminder:         t.ReminderEnabled,
		ReminderLeadTime: t.ReminderLeadTime,
		RepeatDaily:      t.RepeatDaily,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func EncodeDocs(tasks []model.Task) []Doc {
	out := make([]Doc, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, EncodeDoc(t))
	}
	return out
}

func DecodeDoc(d Doc) model.Task {
	return model.Task{
		ID:               d.ID,
		Text:             d.Title,
		Completed:        d.Completed,
		Priority:         d.Priority,
		Tag:              d.Tag,
		DueDate:          d.DueDate,
		CompletionDate:   d.CompletionDate,
		ReminderEnabled:  d.Reminder,
		ReminderLeadTime: d.ReminderLeadTime,
		RepeatDaily:      d.RepeatDaily,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// ParseDueDate accepts an RFC 3339 instant or a bare YYYY-MM-DD calendar day
// (interpreted at local midnight, matching date inputs in the client).
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local); err == nil {
		return ts, nil
	}
	if ts, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", raw)
}

// DecodeCreate maps a create document to a new (unstored) task.
func DecodeCreate(in CreateDoc) (model.Task, error) {
	t := model.Task{
		Text:             in.Title,
		Priority:         in.Priority,
		Tag:              in.Tag,
		ReminderEnabled:  in.Reminder,
		ReminderLeadTime: in.ReminderLeadTime,
		RepeatDaily:      in.RepeatDaily,
	}
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return model.Task{}, err
		}
		t.DueDate = &due
	}
	return t, nil
}

// DecodePatch maps a wire patch to a repo patch.
func DecodePatch(in DocPatch) (Patch, error) {
	p := Patch{
		Text:             in.Title,
		Completed:        in.Completed,
		Priority:         in.Priority,
		Tag:              in.Tag,
		ReminderEnabled:  in.Reminder,
		ReminderLeadTime: in.ReminderLeadTime,
		RepeatDaily:      in.RepeatDaily,
	}
	if in.DueDate != nil {
		if strings.TrimSpace(*in.DueDate) == "" {
			p.ClearDueDate = true
		} else {
			due, err := ParseDueDate(*in.DueDate)
			if err != nil {
				return Patch{}, err
			}
			p.DueDate = &due
		}
	}
	return p, nil
}

// EncodePatch maps a repo patch back to its wire form (client side).
func EncodePatch(p Patch) DocPatch {
	out := DocPatch{
		Title:            p.Text,
		Completed:        p.Completed,
		Priority:         p.Priority,
		Tag:              p.Tag,
		Reminder:         p.ReminderEnabled,
		ReminderLeadTime: p.ReminderLeadTime,
		RepeatDaily:      p.RepeatDaily,
	}
	if p.ClearDueDate {
		empty := ""
		out.DueDate = &empty
	} else if p.DueDate != nil {
		due := p.DueDate.Format(time.RFC3339)
		out.DueDate = &due
	}
	return out
}
