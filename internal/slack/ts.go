package slack

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slack timestamps are "seconds.microseconds" strings; they double as
// message IDs and must be carried around verbatim.

func ParseTS(ts string) (time.Time, error) {
	sec, micro, ok := strings.Cut(ts, ".")
	if !ok {
		micro = "0"
	}
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse slack ts %q: %w", ts, err)
	}
	// right-pad to microseconds ("17089." -> "000000")
	for len(micro) < 6 {
		micro += "0"
	}
	us, err := strconv.ParseInt(micro[:6], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse slack ts %q: %w", ts, err)
	}
	return time.Unix(s, us*1000), nil
}

func FormatTS(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// CompareTS orders two Slack timestamps chronologically.
func CompareTS(a, b string) int {
	ta, errA := ParseTS(a)
	tb, errB := ParseTS(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ta.Compare(tb)
}
