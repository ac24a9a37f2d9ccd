package handlers

import (
	"sort"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
	"github.com/ethpandaops/schedeck/pkg/summary"
	"github.com/gofiber/fiber/v3"
)

// ActionSummary describes one registered action
type ActionSummary struct {
	Name            string    `json:"name"`
	Step            int       `json:"step"`
	MaxRun          int       `json:"maxRun"`
	MinWaitSeconds  float64   `json:"minWaitSeconds"`
	StartTime       time.Time `json:"startTime"`
	Condition       string    `json:"condition"`
	Keywords        []string  `json:"keywords"`
	RequiredSummary []string  `json:"requiredSummary"`
}

// ListActions handles GET /api/v1/actions
func (s *Server) ListActions(c fiber.Ctx) error {
	if _, err := s.loadedSchedule(); err != nil {
		return err
	}

	actions := make([]ActionSummary, 0, s.engine.Actions().Len())

	for act := range s.engine.Actions().All() {
		actions = append(actions, s.summarizeAction(act))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"actions": actions,
		"total":   len(actions),
	})
}

func (s *Server) summarizeAction(act *action.ActionX) ActionSummary {
	step, _ := s.engine.ActionStep(act.Name())

	required := make(map[string]struct{})
	act.RequiredSummary(required)

	vectors := make([]string, 0, len(required))
	for vector := range required {
		vectors = append(vectors, vector)
	}

	sort.Strings(vectors)

	keywords := make([]string, 0)
	for _, kw := range act.Keywords() {
		keywords = append(keywords, kw.Name)
	}

	return ActionSummary{
		Name:            act.Name(),
		Step:            step,
		MaxRun:          act.MaxRun(),
		MinWaitSeconds:  act.MinWait().Seconds(),
		StartTime:       act.StartTime(),
		Condition:       act.ConditionString(),
		Keywords:        keywords,
		RequiredSummary: vectors,
	}
}

// GetDependencies handles GET /api/v1/actions/dependencies
func (s *Server) GetDependencies(c fiber.Ctx) error {
	if _, err := s.loadedSchedule(); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(s.engine.Graph().GetInfo())
}

// ListRuns handles GET /api/v1/actions/runs
func (s *Server) ListRuns(c fiber.Ctx) error {
	runs, err := s.engine.Runs(c.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to read action runs")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read action runs")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"runs":  runs,
		"total": len(runs),
	})
}

// EvaluateAction handles POST /api/v1/actions/:name/eval. The body is a
// summary snapshot in YAML or JSON.
func (s *Server) EvaluateAction(c fiber.Ctx) error {
	if _, err := s.loadedSchedule(); err != nil {
		return err
	}

	name := c.Params("name")
	if _, ok := s.engine.Actions().Get(name); !ok {
		return ErrActionNotFound
	}

	snap, err := summary.ParseSnapshot(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	st, err := snap.State()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := s.engine.EvaluateAction(name, st)
	if err != nil {
		s.log.WithError(err).WithField("action", name).Debug("Evaluation failed")
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"action": name,
		"result": result,
	})
}

// GetRequiredSummary handles GET /api/v1/summary/required
func (s *Server) GetRequiredSummary(c fiber.Ctx) error {
	if _, err := s.loadedSchedule(); err != nil {
		return err
	}

	vectors := s.engine.RequiredSummary()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"vectors": vectors,
		"total":   len(vectors),
	})
}
