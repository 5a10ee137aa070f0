package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthFormat is the format used to represent months as strings.
//
// The lexical order of formatted months equals their chronological order, a
// property callers rely on when comparing month strings directly.
const MonthFormat = "2006-01"

// Month represents a calendar month, the granularity at which holdings
// snapshots are recorded.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns a normalized Month for the given year and month.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	y, m, _ := t.Date()
	return Month{y: y, m: m}
}

// ThisMonth returns the current calendar month.
func ThisMonth() Month { return Today().MonthOf() }

func (m Month) time() time.Time { return time.Date(m.y, m.m, 1, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the month.
func (m Month) Year() int { return m.y }

// Month returns the month of the year.
func (m Month) Month() time.Month { return m.m }

// Before reports whether the month m is before x.
func (m Month) Before(x Month) bool { return m.time().Before(x.time()) }

// After reports whether the month m is after x.
func (m Month) After(x Month) bool { return m.time().After(x.time()) }

// Compare returns -1, 0 or 1 depending on whether m is before, equal to, or
// after x. It is suitable for slices.SortFunc.
func (m Month) Compare(x Month) int {
	switch {
	case m.Before(x):
		return -1
	case m.After(x):
		return 1
	default:
		return 0
	}
}

// Add returns a new Month with the given number of months added.
func (m Month) Add(i int) Month { return NewMonth(m.y, m.m+time.Month(i)) }

// FirstDay returns the first calendar day of the month.
func (m Month) FirstDay() Date { return New(m.y, m.m, 1) }

// LastDay returns the last calendar day of the month.
//
// Dated events like policy version starts are compared against the last day,
// so a version starting anywhere inside a month is in force for that month.
func (m Month) LastDay() Date { return New(m.y, m.m+1, 0) }

// IsZero reports whether the month is the zero value.
func (m Month) IsZero() bool { return m == Month{} }

// String formats the month in its standard "YYYY-MM" form.
func (m Month) String() string { return m.time().Format(MonthFormat) }

// ParseMonth parses a Month from its "YYYY-MM" form.
func ParseMonth(str string) (Month, error) {
	on, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, MonthFormat, err)
	}
	y, m, _ := on.Date()
	return Month{y: y, m: m}, nil
}

// MustParseMonth is like ParseMonth but panics on error.
func MustParseMonth(str string) Month {
	m, err := ParseMonth(str)
	if err != nil {
		panic(err.Error())
	}
	return m
}

func (m *Month) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	parsed, err := ParseMonth(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Month) MarshalJSON() ([]byte, error) {
	str := m.String()
	return json.Marshal(&str)
}

var _ json.Marshaler = (*Month)(nil)
var _ json.Unmarshaler = (*Month)(nil)

// Range represents an inclusive range of months. A zero From or To leaves
// that side of the range open.
type Range struct{ From, To Month }

// Contains reports whether the month is included in the range (boundaries included).
func (r Range) Contains(m Month) bool {
	if !r.From.IsZero() && m.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && m.After(r.To) {
		return false
	}
	return true
}

// IsOpen reports whether the range covers all history.
func (r Range) IsOpen() bool { return r.From.IsZero() && r.To.IsZero() }
