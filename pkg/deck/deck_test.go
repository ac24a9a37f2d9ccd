package deck

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDeck = `
keywords:
  - name: start
    records:
      - [1, JAN, 2020]
  - name: SCHEDULE
  - name: TSTEP
    records:
      - ["5*1"]
  - name: DATES
    records:
      - [10, JAN, 2020]
      - [15, JLY, 2020, "12:30:00"]
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleDeck), "CASE.yaml")
	require.NoError(t, err)

	require.Len(t, d.Keywords, 4)
	assert.Equal(t, "START", d.Keywords[0].Name)
	assert.Equal(t, Location{Keyword: "START", Filename: "CASE.yaml", Line: 3}, d.Keywords[0].Location)
	assert.Equal(t, "CASE.yaml", d.Keywords[3].Location.Filename)
	assert.Equal(t, 2, d.Keywords[3].Size())

	section := d.ScheduleSection()
	require.Len(t, section, 3)
	assert.Equal(t, KeywordSchedule, section[0].Name)
}

func TestParse_InvalidRecord(t *testing.T) {
	_, err := Parse([]byte("keywords:\n  - name: DATES\n    records:\n      - [[1, 2]]\n"), "bad.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDeck_StartTime(t *testing.T) {
	tests := []struct {
		name     string
		deck     Deck
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "defaults when START is missing",
			deck:     Deck{},
			expected: time.Date(1983, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "reads START",
			deck: Deck{Keywords: []Keyword{
				NewKeyword(KeywordStart, NewRecord("1", "MAR", "2015")),
			}},
			expected: time.Date(2015, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "invalid START",
			deck: Deck{Keywords: []Keyword{
				NewKeyword(KeywordStart, NewRecord("31", "FEB", "2015")),
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := tt.deck.StartTime()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInput)
				assert.ErrorIs(t, err, ErrInvalidDate)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, start)
		})
	}
}

func TestTimeFromRecord(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		expected time.Time
		wantErr  error
	}{
		{
			name:     "plain date",
			record:   NewRecord("10", "JAN", "2020"),
			expected: time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "quoted month and JLY alias",
			record:   NewRecord("4", "'JLY'", "2021"),
			expected: time.Date(2021, time.July, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "with time of day",
			record:   NewRecord("1", "feb", "2020", "'06:15:30'"),
			expected: time.Date(2020, time.February, 1, 6, 15, 30, 0, time.UTC),
		},
		{
			name:    "unknown month",
			record:  NewRecord("1", "XYZ", "2020"),
			wantErr: ErrInvalidMonth,
		},
		{
			name:    "day out of range",
			record:  NewRecord("32", "JAN", "2020"),
			wantErr: ErrInvalidDate,
		},
		{
			name:    "missing year",
			record:  NewRecord("1", "JAN"),
			wantErr: ErrInvalidDate,
		},
		{
			name:    "bad time of day",
			record:  NewRecord("1", "JAN", "2020", "noon"),
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimeFromRecord(tt.record)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRecord_Float64s(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		expected []float64
		wantErr  bool
	}{
		{name: "plain values", record: NewRecord("1.0", "2", "3.5"), expected: []float64{1, 2, 3.5}},
		{name: "repeat counts", record: NewRecord("3*1", "2"), expected: []float64{1, 1, 1, 2}},
		{name: "fortran exponent", record: NewRecord("1.5D1"), expected: []float64{15}},
		{name: "defaulted value", record: NewRecord("2*"), wantErr: true},
		{name: "garbage", record: NewRecord("abc"), wantErr: true},
		{name: "repeat count at limit", record: NewRecord("1000000*0"), expected: make([]float64, MaxRecordValues)},
		{name: "huge repeat count", record: NewRecord("100000000*1"), wantErr: true},
		{name: "repeats summing past limit", record: NewRecord("600000*1", "600000*2"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.record.Float64s()
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDaysToDuration(t *testing.T) {
	tests := []struct {
		name     string
		days     float64
		expected time.Duration
		wantErr  bool
	}{
		{name: "zero", days: 0, expected: 0},
		{name: "whole days", days: 10, expected: 240 * time.Hour},
		{name: "half day", days: 0.5, expected: 12 * time.Hour},
		{name: "negative", days: -1, expected: -24 * time.Hour},
		{name: "largest representable", days: 106751, expected: 106751 * 24 * time.Hour},
		{name: "overflow", days: 106752, wantErr: true},
		{name: "far overflow", days: 1e12, wantErr: true},
		{name: "nan", days: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysToDuration(tt.days)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDaysOutOfRange)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRecord_Accessors(t *testing.T) {
	r := NewRecord("'ACT1'", "1*", "10")

	assert.Equal(t, "ACT1", r.Text(0, ""))
	assert.Equal(t, "dflt", r.Text(1, "dflt"))

	n, err := r.Int(1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	f, err := r.Float(2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, f, 1e-12)

	_, ok := r.Item(5)
	assert.False(t, ok)

	assert.Equal(t, "'ACT1' 1* 10 /", r.String())
}

func TestDequote(t *testing.T) {
	v, err := Dequote("'OP*'")
	require.NoError(t, err)
	assert.Equal(t, "OP*", v)

	v, err = Dequote("WOPR")
	require.NoError(t, err)
	assert.Equal(t, "WOPR", v)

	_, err = Dequote("'OP*")
	assert.ErrorIs(t, err, ErrUnbalancedQuote)
}

func TestInputError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapInputError(cause, Location{Keyword: "DATES", Filename: "CASE.DATA", Line: 12})

	assert.Equal(t, "Problem with keyword DATES\nIn CASE.DATA line 12\nboom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInput)

	var inputErr *InputError
	require.ErrorAs(t, error(err), &inputErr)
	assert.Equal(t, 12, inputErr.Location.Line)
}

func TestKeyword_JSON(t *testing.T) {
	kw := NewKeyword("WELOPEN", NewRecord("'OP1'", "SHUT"))

	data, err := json.Marshal(kw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"WELOPEN","records":[["'OP1'","SHUT"]],"location":{"keyword":"WELOPEN","filename":"","line":0}}`, string(data))

	assert.Equal(t, "WELOPEN\n  'OP1' SHUT /\n/\n", kw.String())
}
