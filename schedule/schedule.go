// Package schedule runs periodic background work for a convergence session:
// the active-session probe that keeps resume prompts fresh, and deferred
// one-shot jobs such as an expiry warning. Recurring jobs are driven by cron
// expressions.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	rcron "github.com/robfig/cron/v3"

	"github.com/goliatone/go-converge"
)

// Job is a unit of scheduled work. Failures are routed to the scheduler's
// error handler; they never stop the schedule.
type Job func(ctx context.Context) error

// Handle controls one scheduled job.
type Handle interface {
	Cancel()
	Status() Status
	Err() error
	Done() <-chan struct{}
}

// Status reports a handle's lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusRunning   Status = "running"
	StatusIdle      Status = "idle"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// Scheduler wraps a cron runner with handle bookkeeping.
type Scheduler struct {
	mu           sync.Mutex
	cron         *rcron.Cron
	location     *time.Location
	logger       converge.Logger
	errorHandler func(error)

	nextID  int64
	handles map[int64]*handle
}

// Option customizes scheduler construction.
type Option func(*Scheduler)

// WithLocation sets the timezone cron expressions are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(logger converge.Logger) Option {
	return func(s *Scheduler) {
		s.logger = converge.NormalizeLogger(logger)
	}
}

// WithErrorHandler sets the sink for job failures.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.errorHandler = fn
		}
	}
}

// NewScheduler creates a scheduler. Call Start to begin executing recurring
// jobs; one-shot jobs run regardless.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		location: time.Local,
		logger:   converge.NormalizeLogger(nil),
		handles:  map[int64]*handle{},
	}
	s.errorHandler = func(err error) {
		s.logger.Error("scheduled job failed: %v", err)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.cron = rcron.New(
		rcron.WithLocation(s.location),
		rcron.WithLogger(&cronLoggerAdapter{logger: s.logger}),
		rcron.WithChain(rcron.Recover(&cronLoggerAdapter{logger: s.logger})),
	)
	return s
}

// Every schedules a recurring job by cron expression.
func (s *Scheduler) Every(expression string, job Job) (Handle, error) {
	if expression == "" {
		return nil, errors.New("cron expression cannot be empty", errors.CategoryBadInput)
	}
	if job == nil {
		return nil, errors.New("job cannot be nil", errors.CategoryBadInput)
	}

	h := s.newHandle()
	entryID, err := s.cron.AddJob(expression, rcron.FuncJob(func() {
		s.runOnce(h, job, false)
	}))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid cron expression")
	}
	h.entryID = int(entryID)
	s.store(h)
	return h, nil
}

// After schedules one execution after delay.
func (s *Scheduler) After(delay time.Duration, job Job) (Handle, error) {
	if job == nil {
		return nil, errors.New("job cannot be nil", errors.CategoryBadInput)
	}
	if delay < 0 {
		delay = 0
	}

	h := s.newHandle()
	s.store(h)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-h.Done():
			return
		}
		s.runOnce(h, job, true)
		s.release(h.id)
	}()

	return h, nil
}

// Start begins executing recurring jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and marks live handles stopped. Jobs already
// running finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	live := make([]*handle, 0, len(s.handles))
	for _, h := range s.handles {
		live = append(live, h)
	}
	s.handles = map[int64]*handle{}
	s.mu.Unlock()

	for _, h := range live {
		if h.entryID > 0 {
			s.cron.Remove(rcron.EntryID(h.entryID))
		}
		if !isTerminal(h.Status()) {
			h.setTerminal(StatusStopped, nil)
		}
	}
}

func (s *Scheduler) runOnce(h *handle, job Job, oneShot bool) {
	if isTerminal(h.Status()) {
		return
	}
	h.setStatus(StatusRunning, nil)
	err := job(context.Background())
	switch {
	case err != nil && oneShot:
		h.setTerminal(StatusFailed, err)
		s.errorHandler(err)
	case err != nil:
		h.setStatus(StatusFailed, err)
		s.errorHandler(err)
	case oneShot:
		h.setTerminal(StatusCompleted, nil)
	default:
		if !isTerminal(h.Status()) {
			h.setStatus(StatusIdle, nil)
		}
	}
}

func (s *Scheduler) newHandle() *handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return &handle{
		scheduler: s,
		id:        s.nextID,
		status:    StatusScheduled,
		done:      make(chan struct{}),
	}
}

func (s *Scheduler) store(h *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[h.id] = h
}

func (s *Scheduler) release(id int64) *handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.handles[id]
	delete(s.handles, id)
	return h
}

func (s *Scheduler) remove(id int64) {
	h := s.release(id)
	if h == nil {
		return
	}
	if h.entryID > 0 {
		s.cron.Remove(rcron.EntryID(h.entryID))
	}
}

func isTerminal(status Status) bool {
	switch status {
	case StatusCompleted, StatusCanceled, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

type handle struct {
	scheduler *Scheduler
	id        int64
	entryID   int
	done      chan struct{}

	mu     sync.RWMutex
	status Status
	err    error
	once   sync.Once
}

func (h *handle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.scheduler != nil {
			h.scheduler.remove(h.id)
		}
		h.setTerminal(StatusCanceled, nil)
	})
}

func (h *handle) Status() Status {
	if h == nil {
		return StatusStopped
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *handle) Err() error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *handle) Done() <-chan struct{} {
	if h == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.done
}

func (h *handle) setStatus(status Status, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
	h.err = err
}

func (h *handle) setTerminal(status Status, err error) {
	h.setStatus(status, err)
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

type cronLoggerAdapter struct {
	logger converge.Logger
}

func (a *cronLoggerAdapter) Info(msg string, args ...any) {
	a.logger.Debug(msg, args...)
}

func (a *cronLoggerAdapter) Error(err error, msg string, args ...any) {
	if err != nil {
		a.logger.Error("%s: %v", msg, err)
		return
	}
	a.logger.Error(msg, args...)
}
