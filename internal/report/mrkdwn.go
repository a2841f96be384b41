package report

import (
	"regexp"
	"strings"
)

var (
	headerRe  = regexp.MustCompile(`^#{1,6}\s+`)
	dividerRe = regexp.MustCompile(`^-{3,}$`)
)

// ToMrkdwn force-converts standard Markdown leftovers into Slack mrkdwn:
// headers are stripped, double-asterisk bold collapsed, horizontal rules
// replaced with a box-drawing divider.
func ToMrkdwn(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = headerRe.ReplaceAllString(line, "")
		line = strings.ReplaceAll(line, "**", "*")
		if dividerRe.MatchString(strings.TrimSpace(line)) {
			line = "───"
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
