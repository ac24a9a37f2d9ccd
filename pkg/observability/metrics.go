package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Action evaluation results
const (
	ResultSatisfied    = "satisfied"
	ResultNotSatisfied = "not_satisfied"
	ResultNotReady     = "not_ready"
	ResultError        = "error"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// DeckLoadsTotal counts deck loads
	DeckLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedeck_deck_loads_total",
			Help: "Total number of deck loads",
		},
		[]string{"status"}, // status: success, failed
	)

	// DeckLoadDuration measures the time to load a deck and build its schedule
	DeckLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schedeck_deck_load_duration_seconds",
			Help:    "Deck load and schedule build duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	// ScheduleBlocks tracks the number of report steps in the loaded schedule
	ScheduleBlocks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schedeck_schedule_blocks",
			Help: "Number of report steps in the loaded schedule",
		},
		[]string{"time_type"},
	)

	// RestartOffset tracks the report step the run restarts from
	RestartOffset = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "schedeck_restart_offset",
			Help: "Report step the loaded schedule restarts from",
		},
	)

	// InputErrorsTotal counts rejected deck input
	InputErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedeck_input_errors_total",
			Help: "Total number of deck input errors",
		},
		[]string{"keyword"},
	)

	// ActionsRegistered tracks the number of ACTIONX blocks in the schedule
	ActionsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "schedeck_actions_registered",
			Help: "Number of ACTIONX blocks in the loaded schedule",
		},
	)

	// RequiredSummaryVectors tracks the number of summary vectors read by actions
	RequiredSummaryVectors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "schedeck_required_summary_vectors",
			Help: "Number of summary vectors read by ACTIONX conditions",
		},
	)

	// ActionEvaluationsTotal counts action condition evaluations
	ActionEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedeck_action_evaluations_total",
			Help: "Total ACTIONX condition evaluations",
		},
		[]string{"action", "result"}, // result: satisfied, not_satisfied, not_ready, error
	)

	// ActionEvaluationDuration measures condition evaluation duration
	ActionEvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schedeck_action_evaluation_duration_seconds",
			Help:    "ACTIONX condition evaluation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		},
		[]string{"action"},
	)

	// ActionRunsTotal counts recorded action runs
	ActionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedeck_action_runs_total",
			Help: "Total number of recorded ACTIONX runs",
		},
		[]string{"action"},
	)

	// ErrorsTotal counts total errors by component
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedeck_errors_total",
			Help: "Total errors by component",
		},
		[]string{"component", "error_type"},
	)
)

// RecordDeckLoad records a deck load
func RecordDeckLoad(status string, duration float64) {
	DeckLoadsTotal.WithLabelValues(status).Inc()
	DeckLoadDuration.Observe(duration)
}

// RecordSchedule records the shape of a freshly built schedule
func RecordSchedule(blocksByType map[string]int, restartOffset int) {
	ScheduleBlocks.Reset()

	for timeType, count := range blocksByType {
		ScheduleBlocks.WithLabelValues(timeType).Set(float64(count))
	}

	RestartOffset.Set(float64(restartOffset))
}

// RecordInputError records a rejected deck keyword
func RecordInputError(keyword string) {
	InputErrorsTotal.WithLabelValues(keyword).Inc()
}

// RecordActions records the registered actions and the vectors they read
func RecordActions(actions, vectors int) {
	ActionsRegistered.Set(float64(actions))
	RequiredSummaryVectors.Set(float64(vectors))
}

// RecordActionEvaluation records one condition evaluation
func RecordActionEvaluation(action, result string, duration float64) {
	ActionEvaluationsTotal.WithLabelValues(action, result).Inc()

	if result != ResultNotReady {
		ActionEvaluationDuration.WithLabelValues(action).Observe(duration)
	}
}

// RecordActionRun records a satisfied action being run
func RecordActionRun(action string) {
	ActionRunsTotal.WithLabelValues(action).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
