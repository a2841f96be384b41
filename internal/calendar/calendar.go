package calendar

import (
	"fmt"
	"time"
)

// Public holidays for 2026 (KR), substitute holidays included.
var krHolidays2026 = map[string]string{
	"2026-01-01": "sinjeong",
	"2026-01-27": "seollal-eve",
	"2026-01-28": "seollal",
	"2026-01-29": "seollal+1",
	"2026-03-01": "samiljeol",
	"2026-03-02": "samiljeol-sub",
	"2026-05-05": "children-day",
	"2026-05-24": "buddha-birthday",
	"2026-05-25": "buddha-sub",
	"2026-06-06": "memorial-day",
	"2026-08-15": "liberation-day",
	"2026-08-17": "liberation-sub",
	"2026-09-14": "chuseok-eve",
	"2026-09-15": "chuseok",
	"2026-09-16": "chuseok+1",
	"2026-10-03": "gaecheonjeol",
	"2026-10-05": "gaecheonjeol-sub",
	"2026-10-09": "hangul-day",
	"2026-12-25": "christmas",
}

const dateLayout = "2006-01-02"

// Calendar answers holiday and business-day questions for the channel's
// locale. Dates are compared by their calendar day in the caller's location.
type Calendar struct {
	holidays map[string]string
}

// New builds a calendar from the builtin holiday table plus extra dates
// ("2006-01-02") from config.
func New(extraDates []string) (*Calendar, error) {
	holidays := make(map[string]string, len(krHolidays2026)+len(extraDates))
	for k, v := range krHolidays2026 {
		holidays[k] = v
	}
	for _, d := range extraDates {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, fmt.Errorf("cannot parse extra holiday %q: %w", d, err)
		}
		holidays[d] = "extra"
	}
	return &Calendar{holidays: holidays}, nil
}

// Holiday returns the holiday name for the given day, if any.
func (c *Calendar) Holiday(t time.Time) (string, bool) {
	name, ok := c.holidays[t.Format(dateLayout)]
	return name, ok
}

// IsBusinessDay reports whether the given day is a weekday and not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.Holiday(t)
	return !holiday
}
