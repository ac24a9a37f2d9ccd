package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
	"github.com/ethpandaops/schedeck/pkg/action/state"
	"github.com/ethpandaops/schedeck/pkg/api"
	"github.com/ethpandaops/schedeck/pkg/deck"
	"github.com/ethpandaops/schedeck/pkg/dependencies"
	"github.com/ethpandaops/schedeck/pkg/observability"
	"github.com/ethpandaops/schedeck/pkg/rendering"
	"github.com/ethpandaops/schedeck/pkg/schedule"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotLoaded is returned when the deck has not been loaded yet
	ErrNotLoaded = errors.New("deck not loaded")
	// ErrActionNotFound is returned for an unknown action name
	ErrActionNotFound = errors.New("action not found")
)

// Service owns the schedule of one simulation run and the bookkeeping of
// its ACTIONX blocks
type Service struct {
	config *Config
	log    logrus.FieldLogger
	runID  string

	tracker state.Tracker
	graph   *dependencies.Graph
	reports *rendering.TemplateEngine
	api     api.Service

	mu          sync.RWMutex
	schedule    *schedule.Deck
	actions     *action.Actions
	actionSteps map[string]int

	healthServer *http.Server
	watcher      *deckWatcher
}

var _ api.Engine = (*Service)(nil)

// NewService creates the engine. A nil tracker is replaced by the one
// selected in the state configuration.
func NewService(log logrus.FieldLogger, cfg *Config, tracker state.Tracker) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	runID := uuid.NewString()
	log = log.WithField("run_id", runID)

	if tracker == nil {
		var err error

		tracker, err = state.NewTracker(log, &cfg.State, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to create action tracker: %w", err)
		}
	}

	s := &Service{
		config:      cfg,
		log:         log.WithField("component", "engine"),
		runID:       runID,
		tracker:     tracker,
		graph:       dependencies.NewGraph(),
		reports:     rendering.NewTemplateEngine(),
		actions:     &action.Actions{},
		actionSteps: make(map[string]int),
	}

	s.api = api.NewService(&cfg.API, s, log)

	return s, nil
}

// RunID identifies this run in logs and tracker keys
func (s *Service) RunID() string {
	return s.runID
}

// Load reads the configured deck and builds its schedule
func (s *Service) Load(_ context.Context) error {
	d, err := deck.LoadFile(s.config.Deck)
	if err != nil {
		observability.RecordDeckLoad("failed", 0)
		return err
	}

	return s.LoadDeck(d)
}

// LoadDeck builds the schedule of d and registers the ACTIONX blocks of
// every report step. A successful load replaces the previous one.
func (s *Service) LoadDeck(d *deck.Deck) error {
	begin := time.Now()

	sched, actions, steps, err := s.build(d)
	if err != nil {
		var inputErr *deck.InputError
		if errors.As(err, &inputErr) {
			observability.RecordInputError(inputErr.Location.Keyword)
		}

		observability.RecordDeckLoad("failed", time.Since(begin).Seconds())

		return err
	}

	if err := s.graph.Build(slices.Collect(actions.All())); err != nil {
		observability.RecordDeckLoad("failed", time.Since(begin).Seconds())
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}

	s.mu.Lock()
	s.schedule = sched
	s.actions = actions
	s.actionSteps = steps
	s.mu.Unlock()

	blocksByType := make(map[string]int)
	for _, block := range sched.All() {
		blocksByType[block.TimeType().String()]++
	}

	required := actions.RequiredSummary()

	observability.RecordSchedule(blocksByType, sched.RestartOffset())
	observability.RecordActions(actions.Len(), len(required))
	observability.RecordDeckLoad("success", time.Since(begin).Seconds())

	s.log.WithFields(logrus.Fields{
		"deck":             d.Filename,
		"blocks":           sched.Size(),
		"actions":          actions.Len(),
		"required_summary": len(required),
	}).Info("Loaded deck")

	return nil
}

func (s *Service) build(d *deck.Deck) (*schedule.Deck, *action.Actions, map[string]int, error) {
	start, err := d.StartTime()
	if err != nil {
		return nil, nil, nil, err
	}

	rst, err := s.config.Restart.Info(d)
	if err != nil {
		return nil, nil, nil, err
	}

	sched, err := schedule.New(s.log, start, d, rst)
	if err != nil {
		return nil, nil, nil, err
	}

	actions := &action.Actions{}
	steps := make(map[string]int)

	for index, block := range sched.All() {
		_, found, err := action.Extract(block.Keywords(), block.StartTime())
		if err != nil {
			return nil, nil, nil, err
		}

		for _, act := range found {
			actions.Add(act)
			steps[act.Name()] = index

			s.log.WithFields(logrus.Fields{
				"action":    act.Name(),
				"step":      index,
				"condition": act.ConditionString(),
			}).Debug("Registered action")
		}
	}

	return sched, actions, steps, nil
}

// Schedule returns the loaded schedule, nil before Load
func (s *Service) Schedule() *schedule.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.schedule
}

// Actions returns the registered actions
func (s *Service) Actions() *action.Actions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.actions
}

// loaded returns the schedule and actions of the same load
func (s *Service) loaded() (*schedule.Deck, *action.Actions) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.schedule, s.actions
}

// ActionStep returns the report step an action was declared in
func (s *Service) ActionStep(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	step, ok := s.actionSteps[name]

	return step, ok
}

// RequiredSummary returns the summary vectors read by any action
func (s *Service) RequiredSummary() []string {
	return s.Actions().RequiredSummary()
}

// Graph returns the summary vector to action dependency graph
func (s *Service) Graph() *dependencies.Graph {
	return s.graph
}

// Runs returns the bookkeeping of every action that has run
func (s *Service) Runs(ctx context.Context) (map[string]action.RunState, error) {
	return s.tracker.All(ctx)
}

// EvaluateAction evaluates the condition of one action without recording a run
func (s *Service) EvaluateAction(name string, c action.Context) (action.Result, error) {
	act, ok := s.Actions().Get(name)
	if !ok {
		return action.Result{}, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}

	begin := time.Now()

	result, err := act.Eval(c)
	if err != nil {
		observability.RecordActionEvaluation(name, observability.ResultError, time.Since(begin).Seconds())
		return action.Result{}, fmt.Errorf("failed to evaluate action %s: %w", name, err)
	}

	observability.RecordActionEvaluation(name, resultLabel(result), time.Since(begin).Seconds())

	return result, nil
}

// EvaluateStep evaluates every action that is ready at the start of report
// step against c. Satisfied actions are recorded as run.
func (s *Service) EvaluateStep(ctx context.Context, step int, c action.Context) ([]Outcome, error) {
	sched, actions := s.loaded()
	if sched == nil {
		return nil, ErrNotLoaded
	}

	block, err := sched.At(step)
	if err != nil {
		return nil, err
	}

	simTime := block.StartTime()

	runs, err := s.tracker.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read action runs: %w", err)
	}

	pending := actions.Pending(runs, simTime)

	for act := range actions.All() {
		if !slices.Contains(pending, act) && !simTime.Before(act.StartTime()) {
			observability.RecordActionEvaluation(act.Name(), observability.ResultNotReady, 0)
		}
	}

	outcomes := make([]Outcome, 0, len(pending))

	for _, act := range pending {
		begin := time.Now()

		result, err := act.Eval(c)
		if err != nil {
			observability.RecordActionEvaluation(act.Name(), observability.ResultError, time.Since(begin).Seconds())
			s.log.WithError(err).WithField("action", act.Name()).Error("Failed to evaluate action")

			return nil, fmt.Errorf("failed to evaluate action %s: %w", act.Name(), err)
		}

		observability.RecordActionEvaluation(act.Name(), resultLabel(result), time.Since(begin).Seconds())

		outcome := Outcome{
			Action: act.Name(),
			Step:   step,
			Time:   simTime,
			Result: result,
			Run:    runs[act.Name()],
		}

		if result.ConditionSatisfied() {
			run, err := s.tracker.Record(ctx, act.Name(), simTime, result.Matches().Wells())
			if err != nil {
				return nil, err
			}

			observability.RecordActionRun(act.Name())

			outcome.Run = run
			outcome.Keywords = act.Keywords()
			outcome.WellPI = act.WellPIWells(c, result.Matches())

			s.log.WithFields(logrus.Fields{
				"action": act.Name(),
				"step":   step,
				"count":  run.Count,
				"wells":  result.Matches().Wells(),
			}).Info("Action condition satisfied")
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// ScheduleReport renders the loaded schedule as text
func (s *Service) ScheduleReport() (string, error) {
	sched := s.Schedule()
	if sched == nil {
		return "", ErrNotLoaded
	}

	return s.reports.Render(rendering.ScheduleTemplate, s.reports.BuildScheduleVariables(sched))
}

// OutcomeReport renders the outcomes of one EvaluateStep call as text
func (s *Service) OutcomeReport(step int, outcomes []Outcome) (string, error) {
	sched := s.Schedule()
	if sched == nil {
		return "", ErrNotLoaded
	}

	block, err := sched.At(step)
	if err != nil {
		return "", err
	}

	rows := make([]rendering.OutcomeRow, 0, len(outcomes))
	for _, outcome := range outcomes {
		rows = append(rows, outcome.row())
	}

	return s.reports.Render(rendering.OutcomeTemplate, s.reports.BuildOutcomeVariables(step, block.StartTime(), rows))
}

// Start initializes and starts the servers of the engine
func (s *Service) Start(ctx context.Context) error {
	s.log.Info("Starting schedeck engine...")

	observability.StartMetricsServer(s.log, s.config.MetricsAddr)

	if s.config.HealthCheckAddr != "" {
		s.startHealthCheck()
	}

	if err := s.api.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API service: %w", err)
	}

	if s.config.WatchDeck {
		watcher, err := newDeckWatcher(s.log, s.config.Deck, defaultReloadDebounce, s.Load)
		if err != nil {
			return err
		}

		watcher.Start(ctx)

		s.mu.Lock()
		s.watcher = watcher
		s.mu.Unlock()
	}

	s.log.Info("Schedeck engine started successfully")

	return nil
}

// Stop gracefully shuts down the engine
func (s *Service) Stop() error {
	s.log.Info("Shutting down engine...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopService := func(name string, stopFunc func() error) {
		if stopFunc == nil {
			return
		}
		if err := stopFunc(); err != nil {
			s.log.WithError(err).Errorf("Failed to stop %s", name)
		}
	}

	// 1. Stop reloading and the API (no new evaluations)
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if watcher != nil {
		stopService("deck watcher", watcher.Stop)
	}

	if s.api != nil {
		stopService("API service", s.api.Stop)
	}

	// 2. Close tracker (now safe, nothing is using it)
	if s.tracker != nil {
		stopService("action tracker", s.tracker.Close)
	}

	// Stop HTTP servers
	if s.healthServer != nil {
		stopService("health check server", func() error { return s.healthServer.Shutdown(ctx) })
	}

	stopService("metrics server", func() error { return observability.StopMetricsServer(ctx) })

	return nil
}

func (s *Service) startHealthCheck() {
	s.log.WithField("addr", s.config.HealthCheckAddr).Info("Starting health check server")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		if s.Schedule() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("deck not loaded"))

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.healthServer = &http.Server{
		Addr:              s.config.HealthCheckAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Health check server failed")
		}
	}()
}

func resultLabel(result action.Result) string {
	if result.ConditionSatisfied() {
		return observability.ResultSatisfied
	}

	return observability.ResultNotSatisfied
}
