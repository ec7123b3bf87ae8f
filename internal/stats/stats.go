// Package stats computes the productivity numbers shown next to the task
// list. All functions are pure over the input list; percentages round
// half-up and an empty window yields 0, never a division error.
package stats

import (
	"math"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

type Summary struct {
	CreatedToday             int `json:"createdToday"`
	CompletedToday           int `json:"completedToday"`
	OverallCompletionPercent int `json:"overallCompletionPercent"`
	WeeklyCompletionPercent  int `json:"weeklyCompletionPercent"`
}

func Summarize(tasks []model.Task, now time.Time) Summary {
	return Summary{
		CreatedToday:             CreatedToday(tasks, now),
		CompletedToday:           CompletedToday(tasks, now),
		OverallCompletionPercent: OverallCompletionPercent(tasks),
		WeeklyCompletionPercent:  WeeklyCompletionPercent(tasks, now),
	}
}

func CreatedToday(tasks []model.Task, now time.Time) int {
	dayStart := model.StartOfDay(now)
	n := 0
	for _, t := range tasks {
		if !t.CreatedAt.Before(dayStart) {
			n++
		}
	}
	return n
}

func CompletedToday(tasks []model.Task, now time.Time) int {
	dayStart := model.StartOfDay(now)
	n := 0
	for _, t := range tasks {
		if t.Completed && t.CompletionDate != nil && !t.CompletionDate.Before(dayStart) {
			n++
		}
	}
	return n
}

func OverallCompletionPercent(tasks []model.Task) int {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return percent(completed, len(tasks))
}

// WeeklyCompletionPercent restricts to tasks created or due on/after the
// most recent Monday, and counts completions whose completion date also
// falls inside that week.
func WeeklyCompletionPercent(tasks []model.Task, now time.Time) int {
	weekStart := model.StartOfWeek(now)

	inWindow := 0
	completed := 0
	for _, t := range tasks {
		created := !t.CreatedAt.Before(weekStart)
		due := t.DueDate != nil && !t.DueDate.Before(weekStart)
		if !created && !due {
			continue
		}
		inWindow++
		if t.Completed && t.CompletionDate != nil && !t.CompletionDate.Before(weekStart) {
			completed++
		}
	}
	return percent(completed, inWindow)
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
