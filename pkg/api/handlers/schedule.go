package handlers

import (
	"strconv"
	"time"

	"github.com/ethpandaops/schedeck/pkg/deck"
	"github.com/ethpandaops/schedeck/pkg/schedule"
	"github.com/gofiber/fiber/v3"
)

// BlockSummary describes one report step
type BlockSummary struct {
	Index    int        `json:"index"`
	Type     string     `json:"type"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Keywords []string   `json:"keywords"`
}

// BlockDetail is a report step with its full keywords
type BlockDetail struct {
	BlockSummary
	Location deck.Location  `json:"location"`
	Records  []deck.Keyword `json:"records"`
}

// ScheduleResponse describes the whole schedule
type ScheduleResponse struct {
	RestartOffset int            `json:"restartOffset"`
	RestartTime   *time.Time     `json:"restartTime,omitempty"`
	Location      deck.Location  `json:"location"`
	Total         int            `json:"total"`
	Blocks        []BlockSummary `json:"blocks"`
}

// GetSchedule handles GET /api/v1/schedule
func (s *Server) GetSchedule(c fiber.Ctx) error {
	sched, err := s.loadedSchedule()
	if err != nil {
		return err
	}

	response := ScheduleResponse{
		RestartOffset: sched.RestartOffset(),
		Location:      sched.Location(),
		Total:         sched.Size(),
		Blocks:        make([]BlockSummary, 0, sched.Size()),
	}

	if rt := sched.RestartTime(); !rt.IsZero() {
		response.RestartTime = &rt
	}

	for index, block := range sched.All() {
		response.Blocks = append(response.Blocks, summarizeBlock(index, block))
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetBlock handles GET /api/v1/schedule/blocks/:index
func (s *Server) GetBlock(c fiber.Ctx) error {
	sched, err := s.loadedSchedule()
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return ErrInvalidIndex
	}

	block, err := sched.At(index)
	if err != nil {
		s.log.WithError(err).WithField("index", index).Debug("Block lookup failed")
		return ErrBlockNotFound
	}

	return c.Status(fiber.StatusOK).JSON(BlockDetail{
		BlockSummary: summarizeBlock(index, block),
		Location:     block.Location(),
		Records:      block.Keywords(),
	})
}

// GetSeconds handles GET /api/v1/schedule/seconds/:index
func (s *Server) GetSeconds(c fiber.Ctx) error {
	sched, err := s.loadedSchedule()
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return ErrInvalidIndex
	}

	seconds, err := sched.Seconds(index)
	if err != nil {
		return ErrBlockNotFound
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"index":   index,
		"seconds": seconds,
	})
}

func summarizeBlock(index int, block *schedule.Block) BlockSummary {
	summary := BlockSummary{
		Index:    index,
		Type:     block.TimeType().String(),
		Start:    block.StartTime(),
		Keywords: make([]string, 0, block.Size()),
	}

	if end, ok := block.EndTime(); ok {
		summary.End = &end
	}

	for _, kw := range block.Keywords() {
		summary.Keywords = append(summary.Keywords, kw.Name)
	}

	return summary
}
