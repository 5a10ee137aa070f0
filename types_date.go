package folioplan

import (
	"time"

	"github.com/mfld/folioplan/date"
)

// Re-export the calendar types so engine callers rarely need to import the
// date package directly.

type Date = date.Date
type Month = date.Month
type Range = date.Range

func NewDate(year, month, day int) Date {
	return date.New(year, time.Month(month), day)
}

func NewMonth(year, month int) Month {
	return date.NewMonth(year, time.Month(month))
}
