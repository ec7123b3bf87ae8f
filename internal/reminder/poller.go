package reminder

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sashankbanda/Focusly/internal/model"
)

// Source yields the current task list on each poll tick.
type Source func(ctx context.Context) ([]model.Task, error)

// Poller drives an Evaluator on a fixed interval until its context is
// cancelled. It owns no goroutine itself; the caller decides where Run
// executes (see the session package).
type Poller struct {
	Evaluator *Evaluator
	Source    Source
	Interval  time.Duration
	Log       *logrus.Logger

	// Now is overridable in tests.
	Now func() time.Time
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return 30 * time.Second
	}
	return p.Interval
}

// Run polls until ctx is done. A failed source read skips the tick; the
// loop never aborts on per-tick errors.
func (p *Poller) Run(ctx context.Context) {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tasks, err := p.Source(ctx)
			if err != nil {
				log.WithError(err).Debug("reminder poll: task fetch failed")
				continue
			}
			p.Evaluator.Evaluate(tasks, now())
		}
	}
}
