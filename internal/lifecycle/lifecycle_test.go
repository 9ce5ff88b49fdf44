package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/talentflux/talentflux-api/internal/metrics"
)

// recorder collects hook invocations in order.
type recorder struct{ calls []string }

func (r *recorder) hook(name string, startErr, stopErr error) Hook {
	return Hook{
		Name: name,
		Start: func(context.Context) error {
			r.calls = append(r.calls, "start:"+name)
			return startErr
		},
		Stop: func(context.Context) error {
			r.calls = append(r.calls, "stop:"+name)
			return stopErr
		},
	}
}

func TestStartStop_Order(t *testing.T) {
	rec := &recorder{}
	l := New(nil)
	l.Append(rec.hook("tracing", nil, nil))
	l.Append(rec.hook("database", nil, nil))
	l.Append(rec.hook("redis", nil, nil))

	require.NoError(t, l.Start(context.Background()))
	assert.Equal(t, Running, l.State())
	require.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, Stopped, l.State())

	assert.Equal(t, []string{
		"start:tracing", "start:database", "start:redis",
		"stop:redis", "stop:database", "stop:tracing",
	}, rec.calls)
}

func TestStart_FailureAbortsAndStopStillRuns(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recorder{}
	l := New(zap.New(core))
	l.Append(rec.hook("tracing", nil, nil))
	l.Append(rec.hook("database", errors.New("connection refused"), nil))
	l.Append(rec.hook("redis", nil, nil))

	before := testutil.ToFloat64(metrics.LifecycleHookFailures.WithLabelValues("database", "start"))

	err := l.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
	assert.Equal(t, Starting, l.State(), "never reaches Running")
	assert.Equal(t, 1, logs.FilterMessage("startup failed").Len())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LifecycleHookFailures.WithLabelValues("database", "start")))

	require.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, []string{
		"start:tracing", "start:database",
		"stop:redis", "stop:database", "stop:tracing",
	}, rec.calls)
}

func TestStop_SwallowsErrorsAndPanics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recorder{}
	l := New(zap.New(core))
	l.Append(rec.hook("database", nil, errors.New("close failed")))
	l.Append(Hook{Name: "flaky", Stop: func(context.Context) error { panic("boom") }})
	l.Append(rec.hook("redis", nil, nil))

	require.NoError(t, l.Stop(context.Background()))
	assert.Equal(t, []string{"stop:redis", "stop:database"}, rec.calls)
	assert.Equal(t, 2, logs.FilterMessage("shutdown hook failed").Len())
	assert.Equal(t, Stopped, l.State())
}

func TestTransitions_AtMostOnce(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Start(context.Background()))
	assert.ErrorIs(t, l.Start(context.Background()), ErrState)
	require.NoError(t, l.Stop(context.Background()))
	assert.ErrorIs(t, l.Stop(context.Background()), ErrState)
	assert.ErrorIs(t, l.Start(context.Background()), ErrState)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "state(9)", State(9).String())
}
