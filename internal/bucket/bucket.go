// Package bucket derives the display groupings (Today, Scheduled, History)
// from a flat task list. Everything here is a pure function of the input
// list and "now"; there is no hidden state.
package bucket

import (
	"sort"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

type Buckets struct {
	Today     []model.Task
	Scheduled []model.Task
	History   []model.Task
}

// Partition splits tasks into buckets:
//
//   - Today: not completed, and either no due date or due within today
//   - Scheduled: not completed, due date outside today
//   - History: completed, newest completion first
//
// When tag is non-empty, only tasks carrying that exact tag participate.
// History order on equal completion dates is the original list order.
func Partition(tasks []model.Task, now time.Time, tag string) Buckets {
	dayStart := model.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var b Buckets
	for _, t := range tasks {
		if tag != "" && t.Tag != tag {
			continue
		}
		switch {
		case t.Completed:
			b.History = append(b.History, t)
		case t.DueDate == nil || t.DueWithin(dayStart, dayEnd):
			b.Today = append(b.Today, t)
		default:
			b.Scheduled = append(b.Scheduled, t)
		}
	}

	sort.SliceStable(b.History, func(i, j int) bool {
		return completionOf(b.History[i]).After(completionOf(b.History[j]))
	})
	return b
}

func completionOf(t model.Task) time.Time {
	if t.CompletionDate == nil {
		return time.Time{}
	}
	return *t.CompletionDate
}

// Tags returns the distinct tags present in the list, in first-seen order.
func Tags(tasks []model.Task) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tasks {
		if t.Tag == "" || seen[t.Tag] {
			continue
		}
		seen[t.Tag] = true
		out = append(out, t.Tag)
	}
	return out
}
