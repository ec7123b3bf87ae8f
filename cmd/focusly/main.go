// Command focusly is the terminal client: it talks to a running server with
// a bearer token, keeps a local synchronized copy of the task list and shows
// it bucketed into Today, Scheduled and History.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sashankbanda/Focusly/internal/apiclient"
	"github.com/sashankbanda/Focusly/internal/bucket"
	"github.com/sashankbanda/Focusly/internal/config"
	"github.com/sashankbanda/Focusly/internal/logging"
	"github.com/sashankbanda/Focusly/internal/model"
	"github.com/sashankbanda/Focusly/internal/reminder"
	"github.com/sashankbanda/Focusly/internal/session"
	"github.com/sashankbanda/Focusly/internal/stats"
	"github.com/sashankbanda/Focusly/internal/store"
	"github.com/sashankbanda/Focusly/internal/task"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "list":
		err = cmdList(args)
	case "add":
		err = cmdAdd(args)
	case "done":
		err = cmdDone(args)
	case "rm":
		err = cmdRm(args)
	case "clear-history":
		err = cmdClearHistory(args)
	case "stats":
		err = cmdStats(args)
	case "report":
		err = cmdReport(args)
	case "watch":
		err = cmdWatch(args)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", cmd, err)
		os.Exit(1)
	}
}

func newStore(fs *flag.FlagSet, onRemove func(model.TaskID)) (*store.Store, error) {
	base := fs.Lookup("server").Value.String()
	token := os.Getenv("FOCUSLY_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("FOCUSLY_TOKEN is not set")
	}
	client, err := apiclient.New(base, apiclient.StaticToken(token))
	if err != nil {
		return nil, err
	}
	return store.New(client, store.Options{
		SnapshotPath: os.Getenv("FOCUSLY_SNAPSHOT"),
		OnRemove:     onRemove,
		Logger:       logging.Init("focusly"),
	}), nil
}

func serverFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("server", envOr("FOCUSLY_SERVER", "http://localhost:8080"), "server base URL")
	return fs
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func cmdList(args []string) error {
	fs := serverFlags("list")
	tag := fs.String("tag", "", "only show tasks with this tag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := newStore(fs, nil)
	if err != nil {
		return err
	}
	if err := st.Refresh(context.Background()); err != nil {
		return err
	}

	tasks := st.Tasks()
	now := time.Now()
	printBuckets(bucket.Partition(tasks, now, *tag), now)
	if tags := bucket.Tags(tasks); len(tags) > 0 {
		fmt.Println("tags:", strings.Join(tags, ", "))
	}
	return nil
}

func printBuckets(b bucket.Buckets, now time.Time) {
	fmt.Println(now.Format("Monday, January 2, 2006 15:04:05"))
	printSection("Today", b.Today)
	printSection("Scheduled", b.Scheduled)
	printSection("History", b.History)
}

func printSection(name string, tasks []model.Task) {
	fmt.Printf("\n%s (%d)\n", name, len(tasks))
	for _, t := range tasks {
		fmt.Println("  " + formatTask(t))
	}
}

func formatTask(t model.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s (%s)", mark, t.ID, t.Text, t.Priority)
	if t.Tag != "" {
		line += " #" + t.Tag
	}
	if t.DueDate != nil {
		line += " due " + t.DueDate.Local().Format("2006-01-02 15:04")
	}
	if t.ReminderEnabled {
		line += fmt.Sprintf(" (remind %dm before)", t.ReminderLeadTime)
	}
	if t.RepeatDaily {
		line += " (daily)"
	}
	return line
}

func cmdAdd(args []string) error {
	fs := serverFlags("add")
	title := fs.String("title", "", "task title (required)")
	due := fs.String("due", "", "due date (2006-01-02 or 2006-01-02T15:04)")
	priority := fs.String("priority", "", "Low, Medium or High")
	tag := fs.String("tag", "", "tag, e.g. Work")
	remind := fs.Bool("remind", false, "arm a reminder (requires --due)")
	lead := fs.Int("lead", model.DefaultReminderLeadMinutes, "reminder lead time in minutes")
	daily := fs.Bool("daily", false, "repeat every day")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := newStore(fs, nil)
	if err != nil {
		return err
	}

	doc := task.CreateDoc{
		Title:            *title,
		Priority:         model.Priority(*priority),
		Tag:              *tag,
		Reminder:         *remind,
		ReminderLeadTime: *lead,
		RepeatDaily:      *daily,
	}
	if *due != "" {
		doc.DueDate = due
	}
	return st.Add(context.Background(), doc)
}

func cmdDone(args []string) error {
	fs := serverFlags("done")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: focusly done <task-id>")
	}
	st, err := newStore(fs, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := st.Refresh(ctx); err != nil {
		return err
	}
	return st.Toggle(ctx, model.TaskID(fs.Arg(0)))
}

func cmdRm(args []string) error {
	fs := serverFlags("rm")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: focusly rm <task-id>")
	}
	st, err := newStore(fs, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := st.Refresh(ctx); err != nil {
		return err
	}
	return st.Delete(ctx, model.TaskID(fs.Arg(0)))
}

func cmdClearHistory(args []string) error {
	fs := serverFlags("clear-history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := newStore(fs, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := st.Refresh(ctx); err != nil {
		return err
	}
	return st.ClearHistory(ctx)
}

func cmdStats(args []string) error {
	fs := serverFlags("stats")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := newStore(fs, nil)
	if err != nil {
		return err
	}
	if err := st.Refresh(context.Background()); err != nil {
		return err
	}

	s := stats.Summarize(st.Tasks(), time.Now())
	fmt.Printf("created today:     %d\n", s.CreatedToday)
	fmt.Printf("completed today:   %d\n", s.CompletedToday)
	fmt.Printf("overall completed: %d%%\n", s.OverallCompletionPercent)
	fmt.Printf("this week:         %d%%\n", s.WeeklyCompletionPercent)
	return nil
}

func cmdReport(args []string) error {
	fs := serverFlags("report")
	start := fs.String("start", "", "range start (2006-01-02), default 6 days ago")
	end := fs.String("end", "", "range end (2006-01-02), default today")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := newStore(fs, nil)
	if err != nil {
		return err
	}
	if err := st.Refresh(context.Background()); err != nil {
		return err
	}

	now := time.Now()
	from := now.AddDate(0, 0, -6)
	to := now
	if *start != "" {
		if from, err = time.ParseInLocation("2006-01-02", *start, time.Local); err != nil {
			return fmt.Errorf("bad --start: %w", err)
		}
	}
	if *end != "" {
		if to, err = time.ParseInLocation("2006-01-02", *end, time.Local); err != nil {
			return fmt.Errorf("bad --end: %w", err)
		}
	}

	rep := stats.BuildReport(st.Tasks(), from, to)
	for _, day := range rep.Days {
		fmt.Printf("\n%s\n", day.Label)
		for _, t := range day.Tasks {
			fmt.Println("  " + formatTask(t))
		}
	}
	fmt.Printf("\n%d tasks in range\n", rep.Total)
	return nil
}

// cmdWatch keeps the session loops running: a clock line once per second and
// reminder notifications printed to the terminal as they fire.
func cmdWatch(args []string) error {
	fs := serverFlags("watch")
	poll := fs.Duration("poll", 0, "reminder poll interval (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	interval := *poll
	if interval <= 0 {
		cfg, err := config.Load("focusly.yml")
		if err != nil {
			return err
		}
		interval = cfg.ReminderPollInterval()
	}
	// Removed tasks must also drop any pending reminder state; the session
	// owns the evaluator, so wire it up through an indirection.
	var forget func(model.TaskID)
	st, err := newStore(fs, func(id model.TaskID) {
		if forget != nil {
			forget(id)
		}
	})
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := st.Refresh(ctx); err != nil {
		return err
	}

	sess := session.New(session.Options{
		Store: st,
		Notifier: reminder.NotifierFunc(func(n reminder.Notification) error {
			fmt.Printf("\n\a[reminder] %s is due at %s\n", n.Task.Text, n.Due.Local().Format("15:04"))
			return nil
		}),
		OnTick: func(now time.Time) {
			fmt.Printf("\r%s ", now.Format("Monday, January 2, 2006 15:04:05"))
		},
		PollInterval: interval,
	})
	forget = sess.Evaluator().Forget

	sess.Start(ctx)
	defer sess.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println()
	return nil
}

func printUsage() {
	fmt.Println("usage: focusly <command> [flags]")
	fmt.Println()
	fmt.Println("  list           show tasks bucketed into Today, Scheduled and History")
	fmt.Println("  add            create a task (--title required)")
	fmt.Println("  done <id>      toggle a task's completion")
	fmt.Println("  rm <id>        delete a task")
	fmt.Println("  clear-history  delete completed non-repeating tasks")
	fmt.Println("  stats          show completion statistics")
	fmt.Println("  report         completed tasks grouped by day over a date range")
	fmt.Println("  watch          run the clock and reminder loops")
	fmt.Println()
	fmt.Println("environment: FOCUSLY_SERVER, FOCUSLY_TOKEN, FOCUSLY_SNAPSHOT")
}
