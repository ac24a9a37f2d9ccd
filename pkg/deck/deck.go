// Package deck holds the keyword-level view of a simulation input deck
package deck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// KeywordSchedule opens the SCHEDULE section
	KeywordSchedule = "SCHEDULE"
	// KeywordStart holds the simulation start date
	KeywordStart = "START"
	// KeywordRestart names the restart case and report step
	KeywordRestart = "RESTART"
	// KeywordSkipRest asks for pre-restart schedule steps to be skipped
	KeywordSkipRest = "SKIPREST"
)

// Location identifies where a keyword was read from.
type Location struct {
	Keyword  string `yaml:"keyword" json:"keyword"`
	Filename string `yaml:"filename" json:"filename"`
	Line     int    `yaml:"line" json:"line"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s in %s line %d", l.Keyword, l.Filename, l.Line)
}

// Record is one slash-terminated record of a keyword. Items are kept as raw
// tokens; a token of the form "N*" or "*" marks defaulted items.
type Record struct {
	Items []string
}

// NewRecord builds a record from raw tokens.
func NewRecord(items ...string) Record {
	return Record{Items: items}
}

// UnmarshalYAML accepts either a sequence of scalars or a single scalar.
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		r.Items = []string{value.Value}
	case yaml.SequenceNode:
		r.Items = make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: line %d: record items must be scalars", ErrInvalidRecord, item.Line)
			}
			r.Items = append(r.Items, item.Value)
		}
	default:
		return fmt.Errorf("%w: line %d: expected a sequence of items", ErrInvalidRecord, value.Line)
	}

	return nil
}

// MarshalJSON renders the record as a plain array of items.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Items == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(r.Items)
}

// Len returns the number of raw items.
func (r Record) Len() int {
	return len(r.Items)
}

// Item returns item i, reporting false when it is absent or defaulted.
func (r Record) Item(i int) (string, bool) {
	if i < 0 || i >= len(r.Items) {
		return "", false
	}

	item := r.Items[i]
	if isDefaulted(item) {
		return "", false
	}

	return item, true
}

// Text returns item i with surrounding quotes removed, or def.
func (r Record) Text(i int, def string) string {
	item, ok := r.Item(i)
	if !ok {
		return def
	}

	return strings.Trim(item, "'\"")
}

// Int returns item i as an integer, or def when defaulted.
func (r Record) Int(i, def int) (int, error) {
	item, ok := r.Item(i)
	if !ok {
		return def, nil
	}

	v, err := strconv.Atoi(strings.Trim(item, "'"))
	if err != nil {
		return 0, fmt.Errorf("%w: item %d = %q", ErrInvalidNumber, i+1, item)
	}

	return v, nil
}

// Float returns item i as a float, or def when defaulted.
func (r Record) Float(i int, def float64) (float64, error) {
	item, ok := r.Item(i)
	if !ok {
		return def, nil
	}

	return parseFloat(item)
}

// MaxRecordValues bounds the number of values one record may expand to.
const MaxRecordValues = 1_000_000

// Float64s expands every item into numbers, honouring "N*value" repeats.
// Defaulted items are an error since there is no default to fall back on.
func (r Record) Float64s() ([]float64, error) {
	values := make([]float64, 0, len(r.Items))

	for _, item := range r.Items {
		count, raw, repeated := strings.Cut(item, "*")
		if !repeated {
			v, err := parseFloat(item)
			if err != nil {
				return nil, err
			}

			values = append(values, v)

			continue
		}

		n := 1
		if count != "" {
			parsed, err := strconv.Atoi(count)
			if err != nil || parsed < 1 {
				return nil, fmt.Errorf("%w: bad repeat count in %q", ErrInvalidNumber, item)
			}
			n = parsed
		}

		if n > MaxRecordValues-len(values) {
			return nil, fmt.Errorf("%w: %q expands beyond %d values", ErrTooManyValues, item, MaxRecordValues)
		}

		if raw == "" {
			return nil, fmt.Errorf("%w: defaulted value %q", ErrMissingItem, item)
		}

		v, err := parseFloat(raw)
		if err != nil {
			return nil, err
		}

		for j := 0; j < n; j++ {
			values = append(values, v)
		}
	}

	return values, nil
}

func (r Record) String() string {
	if len(r.Items) == 0 {
		return "/"
	}

	return strings.Join(r.Items, " ") + " /"
}

// Keyword is a named keyword together with its records.
type Keyword struct {
	Name     string   `yaml:"name" json:"name"`
	Records  []Record `yaml:"records,omitempty" json:"records"`
	Location Location `yaml:"-" json:"location"`
}

// NewKeyword creates a keyword with the given records.
func NewKeyword(name string, records ...Record) Keyword {
	return Keyword{
		Name:     name,
		Records:  records,
		Location: Location{Keyword: name},
	}
}

// UnmarshalYAML decodes a keyword and records the line it was declared on.
func (k *Keyword) UnmarshalYAML(value *yaml.Node) error {
	type plain Keyword

	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}

	*k = Keyword(decoded)
	k.Name = strings.ToUpper(strings.TrimSpace(k.Name))
	k.Location = Location{Keyword: k.Name, Line: value.Line}

	return nil
}

// Size returns the number of records.
func (k Keyword) Size() int {
	return len(k.Records)
}

// Record returns record i.
func (k Keyword) Record(i int) (Record, bool) {
	if i < 0 || i >= len(k.Records) {
		return Record{}, false
	}

	return k.Records[i], true
}

func (k Keyword) String() string {
	var sb strings.Builder

	sb.WriteString(k.Name)
	sb.WriteString("\n")

	for _, record := range k.Records {
		sb.WriteString("  ")
		sb.WriteString(record.String())
		sb.WriteString("\n")
	}

	if len(k.Records) > 0 {
		sb.WriteString("/\n")
	}

	return sb.String()
}

// Deck is the ordered keyword stream of one input file.
type Deck struct {
	Filename string    `yaml:"filename"`
	Keywords []Keyword `yaml:"keywords"`
}

// HasKeyword reports whether any keyword is called name.
func (d *Deck) HasKeyword(name string) bool {
	_, ok := d.First(name)
	return ok
}

// First returns the first keyword called name.
func (d *Deck) First(name string) (Keyword, bool) {
	for _, kw := range d.Keywords {
		if kw.Name == name {
			return kw, true
		}
	}

	return Keyword{}, false
}

// ScheduleSection returns the keywords from SCHEDULE (inclusive) to the end
// of the deck, or nil when the deck has no SCHEDULE section.
func (d *Deck) ScheduleSection() []Keyword {
	for i, kw := range d.Keywords {
		if kw.Name == KeywordSchedule {
			return d.Keywords[i:]
		}
	}

	return nil
}

// DefaultStartTime is used when the deck has no START keyword.
func DefaultStartTime() time.Time {
	return time.Date(1983, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// StartTime reads the START keyword, falling back to DefaultStartTime.
func (d *Deck) StartTime() (time.Time, error) {
	kw, ok := d.First(KeywordStart)
	if !ok || kw.Size() == 0 {
		return DefaultStartTime(), nil
	}

	start, err := TimeFromRecord(kw.Records[0])
	if err != nil {
		return time.Time{}, WrapInputError(err, kw.Location)
	}

	return start, nil
}

// Dequote strips a pair of single quotes from token. A token that opens a
// quote without closing it is an error.
func Dequote(token string) (string, error) {
	if !strings.HasPrefix(token, "'") {
		return token, nil
	}

	if len(token) >= 2 && strings.HasSuffix(token, "'") {
		return token[1 : len(token)-1], nil
	}

	return "", fmt.Errorf("%w: Unbalanced quote for token: %s", ErrUnbalancedQuote, token)
}

func isDefaulted(item string) bool {
	if item == "" || item == "*" {
		return true
	}

	count, rest, found := strings.Cut(item, "*")
	if !found || rest != "" {
		return false
	}

	_, err := strconv.Atoi(count)

	return err == nil
}

func parseFloat(item string) (float64, error) {
	normalized := strings.NewReplacer("D", "E", "d", "e").Replace(item)

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, item)
	}

	return v, nil
}
