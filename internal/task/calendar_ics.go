package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

var timeNow = time.Now

// BuildTaskCalendarICS renders a task as a single-event iCalendar document.
// A due date is required so the event has a concrete start. Repeat-daily
// tasks export a daily recurrence rule; an armed reminder becomes a VALARM
// with the task's lead time.
func BuildTaskCalendarICS(t model.Task, now time.Time) (string, error) {
	if t.DueDate == nil {
		return "", fmt.Errorf("task due date required for calendar export")
	}
	due := *t.DueDate

	title := strings.TrimSpace(t.Text)
	if title == "" {
		title = "Focusly Task"
	}

	uid := fmt.Sprintf("task-%s@focusly", strings.TrimSpace(string(t.ID)))
	if strings.TrimSpace(string(t.ID)) == "" {
		uid = fmt.Sprintf("task-export-%d@focusly", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Focusly//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART:" + due.UTC().Format("20060102T150405Z"),
		"DTEND:" + due.Add(30*time.Minute).UTC().Format("20060102T150405Z"),
	}
	if t.Tag != "" {
		lines = append(lines, "CATEGORIES:"+escapeICSText(t.Tag))
	}
	if t.RepeatDaily {
		lines = append(lines, "RRULE:FREQ=DAILY")
	}
	if t.ReminderEnabled {
		lead := t.ReminderLeadTime
		if lead <= 0 {
			lead = model.DefaultReminderLeadMinutes
		}
		lines = append(lines,
			"BEGIN:VALARM",
			"ACTION:DISPLAY",
			"DESCRIPTION:"+escapeICSText(title),
			fmt.Sprintf("TRIGGER:-PT%dM", lead),
			"END:VALARM",
		)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func escapeICSText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
		"\r", "",
	)
	return r.Replace(s)
}
