// Package schedule partitions the SCHEDULE section of a deck into report steps
package schedule

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/ethpandaops/schedeck/pkg/deck"
	"github.com/sirupsen/logrus"
)

const (
	keywordDates = "DATES"
	keywordTStep = "TSTEP"

	calendarLayout = "02-Jan-2006 15:04:05"
)

// skipRestInclude lists the keywords which are kept while skipping report
// steps before the restart time.
//
//nolint:gochecknoglobals // Fixed allow-list
var skipRestInclude = map[string]struct{}{
	"VFPPROD":  {},
	"VFPINJ":   {},
	"RPTSCHED": {},
	"RPTRST":   {},
	"TUNING":   {},
	"MESSAGES": {},
}

// RestartInfo describes where a restarted run resumes.
type RestartInfo struct {
	// Time is the simulated time stored in the restart file
	Time time.Time `yaml:"time"`
	// ReportStep is the number of report steps already simulated
	ReportStep int `yaml:"reportStep"`
	// SkipRest requires the deck to replay the full history and hit Time exactly
	SkipRest bool `yaml:"skipRest"`
}

// IsRestart reports whether the run resumes from a restart file.
func (r RestartInfo) IsRestart() bool {
	return r.ReportStep > 0
}

// RestartInfoFromDeck reads the report step from the RESTART keyword and
// the SKIPREST flag from the deck. The restart time lives in the restart
// file, so the caller provides it.
func RestartInfoFromDeck(d *deck.Deck, restartTime time.Time) (RestartInfo, error) {
	info := RestartInfo{SkipRest: d.HasKeyword(deck.KeywordSkipRest)}

	kw, ok := d.First(deck.KeywordRestart)
	if !ok || kw.Size() == 0 {
		return info, nil
	}

	step, err := kw.Records[0].Int(1, 0)
	if err != nil {
		return RestartInfo{}, deck.WrapInputError(err, kw.Location)
	}

	if step < 0 {
		return RestartInfo{}, &deck.InputError{
			Msg:      fmt.Sprintf("restart report step %d must be non-negative", step),
			Location: kw.Location,
			Err:      ErrInvalidRestartStep,
		}
	}

	info.ReportStep = step
	info.Time = restartTime

	return info, nil
}

// Deck is the SCHEDULE section split into one block per report step.
type Deck struct {
	blocks        []*Block
	restartTime   time.Time
	restartOffset int
	skipRest      bool
	location      deck.Location
}

// ingestState is the mutable state threaded through a single pass over the
// SCHEDULE keywords.
type ingestState struct {
	rstSkip  bool
	lastTime time.Time
}

// New builds the report step partition for the SCHEDULE section of d.
func New(log logrus.FieldLogger, start time.Time, d *deck.Deck, rst RestartInfo) (*Deck, error) {
	log = log.WithField("component", "schedule")

	s := &Deck{
		restartTime:   rst.Time,
		restartOffset: rst.ReportStep,
		skipRest:      rst.SkipRest,
	}

	if s.restartOffset > 0 {
		for i := 0; i < s.restartOffset; i++ {
			timeType := TimeRestart
			if i == 0 {
				timeType = TimeStart
			}

			block := NewBlock(deck.Location{}, timeType, start)
			block.SetEndTime(start)
			s.blocks = append(s.blocks, block)
		}

		if !s.skipRest {
			s.last().SetEndTime(s.restartTime)
			s.blocks = append(s.blocks, NewBlock(deck.Location{}, TimeRestart, s.restartTime))
		}
	} else {
		s.blocks = append(s.blocks, NewBlock(deck.Location{}, TimeStart, start))
	}

	state := &ingestState{
		rstSkip:  s.skipRest && s.restartOffset > 0,
		lastTime: s.last().StartTime(),
	}

	for _, kw := range d.ScheduleSection() {
		var err error

		switch kw.Name {
		case keywordDates:
			err = s.addDates(kw, state)
		case keywordTStep:
			err = s.addTStep(kw, state)
		case deck.KeywordSchedule:
			s.location = kw.Location
		default:
			if !state.rstSkip {
				s.last().PushBack(kw)
			} else if _, ok := skipRestInclude[kw.Name]; ok {
				s.blocks[0].PushBack(kw)
			}
		}

		if err != nil {
			logInputError(log, err)
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"blocks":         len(s.blocks),
		"restart_offset": s.restartOffset,
	}).Debug("Built schedule")

	return s, nil
}

func (s *Deck) addDates(kw deck.Keyword, state *ingestState) error {
	for _, record := range kw.Records {
		next, err := deck.TimeFromRecord(record)
		if err != nil {
			return deck.WrapInputError(err, kw.Location)
		}

		if next.Before(state.lastTime) {
			msg := fmt.Sprintf("Keyword DATES specifies a time %s earlier than the end time of previous report step %s",
				next.Format(calendarLayout), state.lastTime.Format(calendarLayout))

			// Under SKIPREST the misalignment is reported by addBlock.
			if s.restartOffset > 0 && !s.skipRest {
				msg += "\nin a RESTARTing simulation, Please check whether SKIPREST is supposed to be used for this circumstance"
			}

			return &deck.InputError{Msg: msg, Location: kw.Location, Err: ErrDatesNotMonotonic}
		}

		if err := s.addBlock(TimeDates, next, state, kw.Location); err != nil {
			return err
		}
	}

	return nil
}

func (s *Deck) addTStep(kw deck.Keyword, state *ingestState) error {
	if kw.Size() == 0 {
		return &deck.InputError{Msg: "TSTEP requires at least one time step", Location: kw.Location, Err: ErrEmptyTStep}
	}

	steps, err := kw.Records[0].Float64s()
	if err != nil {
		return deck.WrapInputError(err, kw.Location)
	}

	for _, step := range steps {
		if step < 0 {
			return &deck.InputError{
				Msg:      fmt.Sprintf("a negative TSTEP value %v is input", step),
				Location: kw.Location,
				Err:      ErrNegativeTStep,
			}
		}

		span, err := deck.DaysToDuration(step)
		if err != nil {
			return &deck.InputError{
				Msg:      fmt.Sprintf("TSTEP value %v is too large", step),
				Location: kw.Location,
				Err:      err,
			}
		}

		next := state.lastTime.Add(span)
		if err := s.addBlock(TimeTStep, next, state, kw.Location); err != nil {
			return err
		}
	}

	return nil
}

func (s *Deck) addBlock(timeType TimeType, t time.Time, state *ingestState, location deck.Location) error {
	state.lastTime = t

	if state.rstSkip {
		switch {
		case t.Before(s.restartTime):
			return nil
		case t.Equal(s.restartTime):
			state.rstSkip = false
		default:
			if s.skipRest {
				return &deck.InputError{
					Msg:      formatSkipRestError(timeType, s.restartTime, t),
					Location: location,
					Err:      ErrRestartMisaligned,
				}
			}

			state.rstSkip = false
		}
	}

	s.last().SetEndTime(t)
	s.blocks = append(s.blocks, NewBlock(location, timeType, t))

	return nil
}

func formatSkipRestError(timeType TimeType, restartTime, t time.Time) string {
	keyword, record := keywordTStep, "report step"
	if timeType == TimeDates {
		keyword, record = keywordDates, "record"
	}

	return fmt.Sprintf("In a restarted simulation using SKIPREST, the %[1]s keyword must have\n"+
		"a %[2]s corresponding to the RESTART time %[3]s.\n"+
		"Reached time %[4]s without an intervening %[2]s.",
		keyword, record, restartTime.Format(calendarLayout), t.Format(calendarLayout))
}

func logInputError(log logrus.FieldLogger, err error) {
	var inputErr *deck.InputError
	if !errors.As(err, &inputErr) {
		log.WithError(err).Error("Failed to build schedule")
		return
	}

	log.WithFields(logrus.Fields{
		"keyword": inputErr.Location.Keyword,
		"file":    inputErr.Location.Filename,
		"line":    inputErr.Location.Line,
	}).Error(inputErr.Msg)
}

func (s *Deck) last() *Block {
	return s.blocks[len(s.blocks)-1]
}

// Size returns the number of report steps.
func (s *Deck) Size() int {
	return len(s.blocks)
}

// At returns block index.
func (s *Deck) At(index int) (*Block, error) {
	if index < 0 || index >= len(s.blocks) {
		return nil, fmt.Errorf("%w: %d not in [0,%d>", ErrBlockOutOfRange, index, len(s.blocks))
	}

	return s.blocks[index], nil
}

// All iterates over the blocks in time order.
func (s *Deck) All() iter.Seq2[int, *Block] {
	return slices.All(s.blocks)
}

// Blocks returns the blocks in time order.
func (s *Deck) Blocks() []*Block {
	return slices.Clone(s.blocks)
}

// Seconds returns the time elapsed between the first block and block step.
func (s *Deck) Seconds(step int) (float64, error) {
	if len(s.blocks) == 0 {
		return 0, nil
	}

	if step < 0 || step >= len(s.blocks) {
		return 0, fmt.Errorf("%w: seconds(%d) - invalid timeStep. Valid range [0,%d>", ErrInvalidStep, step, len(s.blocks))
	}

	elapsed := s.blocks[step].StartTime().Sub(s.blocks[0].StartTime())

	return float64(elapsed / time.Second), nil
}

// RestartOffset returns the number of report steps simulated before restart.
func (s *Deck) RestartOffset() int {
	return s.restartOffset
}

// RestartTime returns the restart time, zero when not restarting.
func (s *Deck) RestartTime() time.Time {
	return s.restartTime
}

// Location returns the location of the SCHEDULE keyword.
func (s *Deck) Location() deck.Location {
	return s.location
}

// DumpDeck writes the schedule back out as deck keywords.
func (s *Deck) DumpDeck(w io.Writer) error {
	if _, err := io.WriteString(w, "SCHEDULE\n\n"); err != nil {
		return err
	}

	current := s.blocks[0].StartTime()
	for _, block := range s.blocks {
		if err := block.dump(w, &current); err != nil {
			return err
		}
	}

	return nil
}
