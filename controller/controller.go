// Package controller orchestrates the convergence session: it translates
// user intents into either a local state transition or a single outstanding
// remote call whose settlement is classified and dispatched into the
// reducer. The controller owns request cancellation; the reducer stays pure.
package controller

import (
	"context"
	"sync"

	"github.com/goliatone/go-converge"
	"github.com/goliatone/go-converge/api"
	"github.com/goliatone/go-converge/reducer"
)

// Observer receives a state snapshot after every dispatched action.
type Observer func(converge.SessionState)

// Controller exposes the imperative operation set to the presentation layer.
// State is read through snapshots; actions and the reducer are not exposed.
type Controller struct {
	mu      sync.Mutex
	state   converge.SessionState
	client  api.Client
	catalog *converge.Catalog
	logger  converge.Logger

	// Request supersession is enforced by token identity: a settling
	// handler must find its own token still current, or drop the result.
	nextToken uint64
	inflight  uint64
	cancel    context.CancelFunc

	nextObserver int
	observers    map[int]Observer

	recover converge.RecoverHandler
}

// Option customizes controller construction.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger converge.Logger) Option {
	return func(c *Controller) {
		c.logger = converge.NormalizeLogger(logger)
	}
}

// WithCatalog replaces the embedded static catalog.
func WithCatalog(cat *converge.Catalog) Option {
	return func(c *Controller) {
		if cat != nil {
			c.catalog = cat
		}
	}
}

// New builds a controller around a remote API client.
func New(client api.Client, opts ...Option) *Controller {
	c := &Controller{
		state:     converge.InitialState(),
		client:    client,
		catalog:   converge.DefaultCatalog(),
		logger:    converge.NormalizeLogger(nil),
		observers: map[int]Observer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.recover = converge.MakeRecoverHandler(c.logger)
	return c
}

// State returns the current session state snapshot.
func (c *Controller) State() converge.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers an observer and returns its unsubscribe function.
func (c *Controller) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	c.nextObserver++
	id := c.nextObserver
	c.observers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// dispatch serializes every transition through the single reducer writer
// and fans the resulting snapshot out to observers.
func (c *Controller) dispatch(action converge.Action) converge.SessionState {
	c.mu.Lock()
	c.state = reducer.Reduce(c.state, action)
	snapshot := c.state
	observers := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	c.logger.Debug("dispatched %s step=%s", action.Kind(), snapshot.Step)
	for _, fn := range observers {
		c.notify(fn, snapshot, action)
	}
	return snapshot
}

// notify shields the dispatch loop from a panicking observer.
func (c *Controller) notify(fn Observer, snapshot converge.SessionState, action converge.Action) {
	defer c.recover("observer", map[string]any{"action": action.Kind()})
	fn(snapshot)
}

// begin supersedes any in-flight request and opens a new cancellation
// handle. The previous request's eventual settlement will find its token
// stale and be ignored.
func (c *Controller) begin(ctx context.Context, operation string) (context.Context, uint64) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.nextToken++
	token := c.nextToken
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.inflight = token
	c.mu.Unlock()

	c.dispatch(converge.RequestStarted{Operation: operation, Token: token})
	return reqCtx, token
}

// settle reports whether the request identified by token is still the
// current one, releasing the handle when it is. A stale settlement must not
// dispatch at all.
func (c *Controller) settle(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != token {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.inflight = 0
	return true
}

// abortInflight cancels any outstanding request without dispatching.
func (c *Controller) abortInflight() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.inflight = 0
	c.mu.Unlock()
}

// fail funnels a failure through the classifier exactly once.
func (c *Controller) fail(operation string, err error) {
	c.mu.Lock()
	intent := c.state.Intent
	c.mu.Unlock()
	action := Classify(err, operation, c.catalog, intent)
	c.logger.Warn("operation %s failed: %v -> %s", operation, err, action.Kind())
	c.dispatch(action)
}
