package stats

import (
	"sort"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

// dayLabelLayout is the long localized calendar-day heading,
// e.g. "Monday, January 1, 2024".
const dayLabelLayout = "Monday, January 2, 2006"

type DayGroup struct {
	Label string       `json:"label"`
	Day   time.Time    `json:"day"`
	Tasks []model.Task `json:"tasks"`
}

type Report struct {
	Days  []DayGroup `json:"days"`
	Total int        `json:"total"`
}

// BuildReport groups the tasks completed within [start 00:00, end 23:59:59]
// by calendar day, most recent day first. Range and day boundaries follow
// start's location; completion instants are converted into it, so a
// completion stored in another zone lands on the viewer's calendar day.
// Task order inside a group follows the input list. An empty range is an
// empty report, not an error.
func BuildReport(tasks []model.Task, start, end time.Time) Report {
	loc := start.Location()
	from := model.StartOfDay(start)
	to := model.StartOfDay(end.In(loc)).AddDate(0, 0, 1)

	groups := map[time.Time]*DayGroup{}
	var order []time.Time
	total := 0

	for _, t := range tasks {
		if !t.Completed || t.CompletionDate == nil {
			continue
		}
		done := t.CompletionDate.In(loc)
		if done.Before(from) || !done.Before(to) {
			continue
		}
		day := model.StartOfDay(done)
		g, ok := groups[day]
		if !ok {
			g = &DayGroup{Label: day.Format(dayLabelLayout), Day: day}
			groups[day] = g
			order = append(order, day)
		}
		g.Tasks = append(g.Tasks, t)
		total++
	}

	sort.Slice(order, func(i, j int) bool { return order[i].After(order[j]) })

	days := make([]DayGroup, 0, len(order))
	for _, day := range order {
		days = append(days, *groups[day])
	}
	return Report{Days: days, Total: total}
}
