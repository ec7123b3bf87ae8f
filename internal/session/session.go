// Package session owns the periodic work a signed-in client runs: the
// 1-second clock tick for the display and the reminder poll. Both are
// explicitly started and stopped with the session instead of living as
// process-wide timers.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sashankbanda/Focusly/internal/model"
	"github.com/sashankbanda/Focusly/internal/reminder"
	"github.com/sashankbanda/Focusly/internal/store"
)

type Options struct {
	Store    *store.Store
	Notifier reminder.Notifier

	// OnTick receives the wall clock once per ClockInterval; display only,
	// it must not mutate task state.
	OnTick func(now time.Time)

	ClockInterval time.Duration // default 1s
	PollInterval  time.Duration // default 30s

	Logger *logrus.Logger
}

type Session struct {
	store     *store.Store
	evaluator *reminder.Evaluator
	onTick    func(time.Time)

	clockInterval time.Duration
	pollInterval  time.Duration
	log           *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	clockInterval := opts.ClockInterval
	if clockInterval <= 0 {
		clockInterval = time.Second
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Session{
		store:         opts.Store,
		evaluator:     reminder.NewEvaluator(opts.Notifier, reminder.WithLogger(log)),
		onTick:        opts.OnTick,
		clockInterval: clockInterval,
		pollInterval:  pollInterval,
		log:           log,
	}
}

// Evaluator exposes the reminder evaluator so callers can wire store
// removals to Forget.
func (s *Session) Evaluator() *reminder.Evaluator {
	return s.evaluator
}

// Start launches the clock and reminder loops. Calling Start on a running
// session is a no-op.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	if s.onTick != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ticker := time.NewTicker(s.clockInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					s.onTick(now)
				}
			}
		}()
	}

	poller := &reminder.Poller{
		Evaluator: s.evaluator,
		Interval:  s.pollInterval,
		Log:       s.log,
		Source: func(context.Context) ([]model.Task, error) {
			return s.store.Tasks(), nil
		},
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		poller.Run(ctx)
	}()
}

// Stop cancels both loops and waits for them to exit, releasing the timers.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}
