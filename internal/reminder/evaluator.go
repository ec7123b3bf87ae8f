// Package reminder implements the client-side reminder poll: on each tick
// every armed, incomplete task is checked against the wall clock and a
// notification is raised at most once per task.
package reminder

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sashankbanda/Focusly/internal/model"
)

// Notification describes a reminder that is due to fire.
type Notification struct {
	Task model.Task
	Due  time.Time
}

// Notifier delivers a reminder to the user. An error means the delivery
// channel is unavailable (e.g. desktop notifications denied). A nil
// Notifier routes every delivery through the fallback instead.
type Notifier interface {
	Notify(n Notification) error
}

type NotifierFunc func(n Notification) error

func (f NotifierFunc) Notify(n Notification) error { return f(n) }

// Evaluator tracks which tasks have already been notified within this
// process. The notified set is never persisted; a reload starts fresh.
type Evaluator struct {
	mu       sync.Mutex
	notified map[model.TaskID]struct{}

	notifier Notifier
	// fallback is the degraded path used when the notifier fails; it must
	// not fail itself. Defaults to a log line.
	fallback func(n Notification)
	log      *logrus.Logger
}

type Option func(*Evaluator)

// WithFallback replaces the degraded delivery path (the "alert" path).
func WithFallback(fn func(n Notification)) Option {
	return func(e *Evaluator) { e.fallback = fn }
}

func WithLogger(log *logrus.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

func NewEvaluator(notifier Notifier, opts ...Option) *Evaluator {
	e := &Evaluator{
		notified: map[model.TaskID]struct{}{},
		notifier: notifier,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fallback == nil {
		e.fallback = func(n Notification) {
			e.log.WithField("task", string(n.Task.ID)).Warn("reminder (degraded delivery)")
		}
	}
	return e
}

// Evaluate runs one poll tick and returns the ids that fired.
//
// A reminder fires when its lead window has opened (due − lead ≤ now) and
// the due time itself has not yet passed. A task whose due time already
// elapsed never fires; the overdue state is visible elsewhere.
func (e *Evaluator) Evaluate(tasks []model.Task, now time.Time) []model.TaskID {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fired []model.TaskID
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		at, ok := t.ReminderAt()
		if !ok {
			continue
		}
		if _, seen := e.notified[t.ID]; seen {
			continue
		}
		if now.Before(at) || !now.Before(*t.DueDate) {
			continue
		}

		n := Notification{Task: t, Due: *t.DueDate}
		if e.notifier == nil {
			e.fallback(n)
		} else if err := e.notifier.Notify(n); err != nil {
			e.log.WithError(err).WithField("task", string(t.ID)).
				Warn("notifier unavailable, falling back to alert")
			e.fallback(n)
		}
		e.notified[t.ID] = struct{}{}
		fired = append(fired, t.ID)
	}
	return fired
}

// Forget purges a task from the notified set. Call it when the task is
// deleted so the set does not leak entries.
func (e *Evaluator) Forget(id model.TaskID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.notified, id)
}
