// internal/lifecycle/lifecycle.go
//
// Two-phase startup and shutdown for process-wide resources.
//
// Context
// -------
//   - The host registers hooks (tracer provider, database pool, Redis) and
//     calls Start before serving and Stop after the server has drained.
//   - Start runs hooks in registration order and aborts on the first error;
//     the process must then exit without serving traffic.
//   - Stop runs every hook's stop side in reverse order, even after a failed
//     or skipped Start.  Errors are logged and counted, never returned, so
//     one stuck resource cannot block the release of the others.
//
// Notes
// -----
// Each transition happens at most once.  A second Start or Stop returns
// ErrState without running anything.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/talentflux/talentflux-api/internal/metrics"
)

// State of the coordinator.
type State int

const (
	Idle State = iota
	Starting
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrState is returned when Start or Stop is called out of order.
var ErrState = errors.New("lifecycle: invalid state transition")

// Hook is one resource.  Either side may be nil.
type Hook struct {
	Name  string
	Start func(context.Context) error
	Stop  func(context.Context) error
}

// Lifecycle sequences hooks.  Safe for concurrent use.
type Lifecycle struct {
	log *zap.Logger

	mu    sync.Mutex
	state State
	hooks []Hook
}

// New returns an Idle coordinator.
func New(log *zap.Logger) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{log: log.Named("lifecycle")}
}

// Append registers h.  Hooks added after Start are ignored by Start but
// still stopped.
func (l *Lifecycle) Append(h Hook) {
	l.mu.Lock()
	l.hooks = append(l.hooks, h)
	l.mu.Unlock()
}

// State reports the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start runs every start hook in order.  The first failure is logged and
// returned and the coordinator never reaches Running.
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.state != Idle {
		l.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrState, l.state)
	}
	l.state = Starting
	hooks := append([]Hook(nil), l.hooks...)
	l.mu.Unlock()

	l.log.Info("starting application")
	for _, h := range hooks {
		if h.Start == nil {
			continue
		}
		began := time.Now()
		if err := h.Start(ctx); err != nil {
			metrics.LifecycleHookFailures.WithLabelValues(h.Name, "start").Inc()
			l.log.Error("startup failed", zap.String("hook", h.Name), zap.Error(err))
			return fmt.Errorf("start %s: %w", h.Name, err)
		}
		l.log.Info("started", zap.String("hook", h.Name), zap.Duration("took", time.Since(began)))
	}

	l.mu.Lock()
	l.state = Running
	l.mu.Unlock()
	l.log.Info("application started")
	return nil
}

// Stop runs every stop hook in reverse order.  It is valid from any state
// except Stopping and Stopped, always completes, and swallows hook errors.
func (l *Lifecycle) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.state == Stopping || l.state == Stopped {
		l.mu.Unlock()
		return fmt.Errorf("%w: stop from %s", ErrState, l.state)
	}
	l.state = Stopping
	hooks := append([]Hook(nil), l.hooks...)
	l.mu.Unlock()

	l.log.Info("shutting down application")
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if h.Stop == nil {
			continue
		}
		if err := l.runStop(ctx, h); err != nil {
			metrics.LifecycleHookFailures.WithLabelValues(h.Name, "stop").Inc()
			l.log.Error("shutdown hook failed", zap.String("hook", h.Name), zap.Error(err))
		}
	}

	l.mu.Lock()
	l.state = Stopped
	l.mu.Unlock()
	l.log.Info("application stopped")
	return nil
}

// runStop converts a panicking stop hook into an error.
func (l *Lifecycle) runStop(ctx context.Context, h Hook) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return h.Stop(ctx)
}
