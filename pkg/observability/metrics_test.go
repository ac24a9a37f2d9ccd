package observability

import (
	"context"
	"io"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSchedule(t *testing.T) {
	RecordSchedule(map[string]int{"START": 1, "TSTEP": 4}, 0)
	RecordSchedule(map[string]int{"RESTART": 2, "DATES": 3}, 2)

	assert.InDelta(t, 3.0, promtest.ToFloat64(ScheduleBlocks.WithLabelValues("DATES")), 0)
	assert.InDelta(t, 2.0, promtest.ToFloat64(RestartOffset), 0)
	assert.Equal(t, 2, promtest.CollectAndCount(ScheduleBlocks))
}

func TestRecordActionEvaluation(t *testing.T) {
	before := promtest.ToFloat64(ActionEvaluationsTotal.WithLabelValues("METRIC_TEST", ResultSatisfied))

	RecordActionEvaluation("METRIC_TEST", ResultSatisfied, 0.001)
	RecordActionEvaluation("METRIC_TEST", ResultNotReady, 0)
	RecordActionRun("METRIC_TEST")

	assert.InDelta(t, before+1, promtest.ToFloat64(ActionEvaluationsTotal.WithLabelValues("METRIC_TEST", ResultSatisfied)), 0)
	assert.InDelta(t, 1.0, promtest.ToFloat64(ActionEvaluationsTotal.WithLabelValues("METRIC_TEST", ResultNotReady)), 0)
	assert.InDelta(t, 1.0, promtest.ToFloat64(ActionRunsTotal.WithLabelValues("METRIC_TEST")), 0)
}

func TestMetricsServer_StartStop(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	StartMetricsServer(log, "127.0.0.1:0")
	StartMetricsServer(log, "127.0.0.1:0")

	require.NoError(t, StopMetricsServer(context.Background()))
	require.NoError(t, StopMetricsServer(context.Background()))
}
