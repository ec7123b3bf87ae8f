// Package reconcile resets stale repeat-daily tasks on load: a repeat-daily
// task completed before the start of the current calendar day goes back to
// incomplete, then the list is fetched once more so the caller sees the
// post-reset state.
package reconcile

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sashankbanda/Focusly/internal/model"
	"github.com/sashankbanda/Focusly/internal/task"
)

// Store is the subset of task operations the reconciler needs. Both the
// server-side repositories and the REST client satisfy it.
type Store interface {
	List(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, id model.TaskID, p task.Patch) (model.Task, error)
}

type Reconciler struct {
	store Store
	log   *logrus.Logger

	// Now is overridable in tests.
	Now func() time.Time
}

func New(store Store, log *logrus.Logger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{store: store, log: log, Now: time.Now}
}

func stale(t model.Task, dayStart time.Time) bool {
	return t.RepeatDaily && t.Completed &&
		t.CompletionDate != nil && t.CompletionDate.Before(dayStart)
}

// Fetch lists the tasks, resets any stale repeat-daily ones, and re-fetches
// once if resets were issued. Resets are idempotent, so one refetch is
// enough: a second pass finds nothing left to reset.
//
// If the refetch fails the pre-reset list is returned; the caller sees a
// stale-but-consistent view rather than a partial reset.
func (r *Reconciler) Fetch(ctx context.Context) ([]model.Task, error) {
	tasks, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	dayStart := model.StartOfDay(r.Now())
	resets := 0
	for _, t := range tasks {
		if !stale(t, dayStart) {
			continue
		}
		incomplete := false
		if _, err := r.store.Update(ctx, t.ID, task.Patch{Completed: &incomplete}); err != nil {
			r.log.WithError(err).WithField("task", string(t.ID)).
				Warn("daily reset failed")
			continue
		}
		resets++
	}
	if resets == 0 {
		return tasks, nil
	}

	fresh, err := r.store.List(ctx)
	if err != nil {
		r.log.WithError(err).Warn("refetch after daily reset failed, serving prior state")
		return tasks, nil
	}
	return fresh, nil
}
