package schedule

import (
	"context"
	"time"
)

// SessionProber is the slice of the controller the watcher needs.
type SessionProber interface {
	CheckActiveSession(ctx context.Context) error
}

// defaultProbeExpression probes for a resumable session once a minute.
const defaultProbeExpression = "* * * * *"

// Watcher keeps the resume prompt fresh by probing the backend for an
// abandoned-but-live session on a recurring schedule.
type Watcher struct {
	scheduler *Scheduler
	prober    SessionProber
	handle    Handle
	timeout   time.Duration
}

// NewWatcher builds a watcher over an existing scheduler.
func NewWatcher(scheduler *Scheduler, prober SessionProber) *Watcher {
	return &Watcher{
		scheduler: scheduler,
		prober:    prober,
		timeout:   30 * time.Second,
	}
}

// Watch starts the recurring probe. Expression may be empty to use the
// default once-a-minute schedule.
func (w *Watcher) Watch(expression string) error {
	if expression == "" {
		expression = defaultProbeExpression
	}
	handle, err := w.scheduler.Every(expression, func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()
		return w.prober.CheckActiveSession(probeCtx)
	})
	if err != nil {
		return err
	}
	w.handle = handle
	return nil
}

// Stop cancels the recurring probe.
func (w *Watcher) Stop() {
	if w.handle != nil {
		w.handle.Cancel()
		w.handle = nil
	}
}
