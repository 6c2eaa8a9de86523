package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTaskFinishedCountsOutcome(t *testing.T) {
	before := testutil.ToFloat64(tasksTotal.WithLabelValues("test_task", "error"))
	TaskFinished("test_task", time.Millisecond, errors.New("smtp down"))
	TaskFinished("test_task", time.Millisecond, nil)

	require.Equal(t, before+1, testutil.ToFloat64(tasksTotal.WithLabelValues("test_task", "error")))
	require.GreaterOrEqual(t, testutil.ToFloat64(tasksTotal.WithLabelValues("test_task", "success")), 1.0)
}

func TestInitTracing(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TraceConfig{ServiceName: "bakery", Exporter: "none"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = InitTracing(context.Background(), TraceConfig{Exporter: "jaeger"})
	require.Error(t, err)
}
