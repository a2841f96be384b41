package report

import (
	"strings"
	"time"
)

type Type string

const (
	TypeDaily  Type = "daily"
	TypeWeekly Type = "weekly"
)

// DecideType picks the report type for today. An explicit force value wins,
// otherwise the configured weekly weekday produces a weekly report and every
// other day a daily one.
func DecideType(today time.Time, force string, weeklyWeekday time.Weekday) Type {
	switch Type(force) {
	case TypeDaily:
		return TypeDaily
	case TypeWeekly:
		return TypeWeekly
	}
	if today.Weekday() == weeklyWeekday {
		return TypeWeekly
	}
	return TypeDaily
}

// Window returns the message collection range and its human label.
//
// Daily covers yesterday (00:00:00 through 23:59:59), labeled YYYY-MM-DD.
// Weekly covers this week's Monday through yesterday, labeled MM/DD~MM/DD.
func Window(today time.Time, typ Type) (start, end time.Time, label string) {
	loc := today.Location()
	yesterday := today.AddDate(0, 0, -1)

	if typ == TypeDaily {
		start = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, loc)
		end = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 23, 59, 59, 0, loc)
		return start, end, yesterday.Format("2006-01-02")
	}

	sinceMonday := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -sinceMonday)
	start = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
	end = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 23, 59, 59, 0, loc)
	return start, end, monday.Format("01/02") + "~" + yesterday.Format("01/02")
}

// ArchiveName maps a window label to a storage object name.
func ArchiveName(label string) string {
	return strings.ReplaceAll(label, "/", "-") + ".md"
}
