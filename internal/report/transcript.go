package report

import (
	"sort"
	"strings"
	"time"

	"github.com/hashmap-kz/slackrep/internal/slack"
)

// SortByTS orders messages chronologically in place.
func SortByTS(msgs []slack.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return slack.CompareTS(msgs[i].TS, msgs[j].TS) < 0
	})
}

// Transcript renders messages into the plain-text form the model consumes.
// Thread replies are marked and empty messages dropped.
func Transcript(msgs []slack.Message, loc *time.Location) string {
	var sb strings.Builder
	for _, m := range msgs {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		ts, err := slack.ParseTS(m.TS)
		if err != nil {
			continue
		}
		prefix := ""
		if m.IsThreadReply() {
			prefix = "  [reply] "
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("[" + ts.In(loc).Format("01/02 15:04") + "] " + prefix + text)
	}
	return sb.String()
}
