// Package handlers implements the read-only inspection API over a loaded
// schedule and its ACTIONX blocks.
package handlers

import (
	"context"

	"github.com/ethpandaops/schedeck/pkg/action"
	"github.com/ethpandaops/schedeck/pkg/dependencies"
	"github.com/ethpandaops/schedeck/pkg/schedule"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// Engine is the view of the engine the handlers need
type Engine interface {
	Schedule() *schedule.Deck
	Actions() *action.Actions
	ActionStep(name string) (int, bool)
	RequiredSummary() []string
	Graph() *dependencies.Graph
	Runs(ctx context.Context) (map[string]action.RunState, error)
	EvaluateAction(name string, c action.Context) (action.Result, error)
}

// Server holds the request handlers
type Server struct {
	engine Engine
	log    logrus.FieldLogger
}

// NewServer creates a new API server instance
func NewServer(engine Engine, log logrus.FieldLogger) *Server {
	return &Server{
		engine: engine,
		log:    log.WithField("component", "api.handlers"),
	}
}

// Register mounts every handler on router
func (s *Server) Register(router fiber.Router) {
	router.Get("/schedule", s.GetSchedule)
	router.Get("/schedule/blocks/:index", s.GetBlock)
	router.Get("/schedule/seconds/:index", s.GetSeconds)
	router.Get("/actions", s.ListActions)
	router.Get("/actions/dependencies", s.GetDependencies)
	router.Get("/actions/runs", s.ListRuns)
	router.Post("/actions/:name/eval", s.EvaluateAction)
	router.Get("/summary/required", s.GetRequiredSummary)
}

func (s *Server) loadedSchedule() (*schedule.Deck, error) {
	sched := s.engine.Schedule()
	if sched == nil {
		return nil, ErrNotLoaded
	}

	return sched, nil
}
