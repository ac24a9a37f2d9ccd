package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethpandaops/schedeck/pkg/deck"
)

// TimeType records why a block boundary was created
type TimeType int

const (
	// TimeStart is the block opened at the simulation start
	TimeStart TimeType = iota
	// TimeDates is a block opened by a DATES record
	TimeDates
	// TimeTStep is a block opened by a TSTEP value
	TimeTStep
	// TimeRestart is a block synthesized for a restarted run
	TimeRestart
)

func (t TimeType) String() string {
	switch t {
	case TimeStart:
		return "START"
	case TimeDates:
		return "DATES"
	case TimeTStep:
		return "TSTEP"
	case TimeRestart:
		return "RESTART"
	default:
		return fmt.Sprintf("TimeType(%d)", int(t))
	}
}

// MarshalText renders the time type by name.
func (t TimeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Block holds the keywords of one report step.
type Block struct {
	timeType  TimeType
	startTime time.Time
	endTime   *time.Time
	location  deck.Location
	keywords  []deck.Keyword
}

// NewBlock creates an empty block starting at start.
func NewBlock(location deck.Location, timeType TimeType, start time.Time) *Block {
	return &Block{
		timeType:  timeType,
		startTime: start,
		location:  location,
	}
}

// TimeType returns the reason this block was opened.
func (b *Block) TimeType() TimeType {
	return b.timeType
}

// StartTime returns the time the report step begins.
func (b *Block) StartTime() time.Time {
	return b.startTime
}

// EndTime returns the end of the report step. It is unset for the last
// block of a schedule.
func (b *Block) EndTime() (time.Time, bool) {
	if b.endTime == nil {
		return time.Time{}, false
	}

	return *b.endTime, true
}

// SetEndTime closes the block at t.
func (b *Block) SetEndTime(t time.Time) {
	b.endTime = &t
}

// Location returns the DATES/TSTEP keyword that opened the block.
func (b *Block) Location() deck.Location {
	return b.location
}

// PushBack appends a keyword to the block.
func (b *Block) PushBack(kw deck.Keyword) {
	b.keywords = append(b.keywords, kw)
}

// Keywords returns the block keywords in deck order.
func (b *Block) Keywords() []deck.Keyword {
	out := make([]deck.Keyword, len(b.keywords))
	copy(out, b.keywords)

	return out
}

// Size returns the number of keywords in the block.
func (b *Block) Size() int {
	return len(b.keywords)
}

// Get returns the first keyword called name.
func (b *Block) Get(name string) (deck.Keyword, bool) {
	for _, kw := range b.keywords {
		if kw.Name == name {
			return kw, true
		}
	}

	return deck.Keyword{}, false
}

// dump writes the keyword that opened the block followed by its keywords.
// current is the start of the previous block and is advanced to this one.
func (b *Block) dump(w io.Writer, current *time.Time) error {
	var sb strings.Builder

	switch b.timeType {
	case TimeDates:
		fmt.Fprintf(&sb, "DATES\n  %d '%s' %d %s /\n/\n\n",
			b.startTime.Day(),
			strings.ToUpper(b.startTime.Format("Jan")),
			b.startTime.Year(),
			b.startTime.Format("15:04:05"))
	case TimeTStep:
		days := b.startTime.Sub(*current).Hours() / 24
		fmt.Fprintf(&sb, "TSTEP\n  %g /\n\n", days)
	case TimeStart, TimeRestart:
	}

	for _, kw := range b.keywords {
		sb.WriteString(kw.String())
		sb.WriteString("\n")
	}

	*current = b.startTime

	_, err := io.WriteString(w, sb.String())

	return err
}
