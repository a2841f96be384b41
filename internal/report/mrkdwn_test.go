package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMrkdwn(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips headers",
			input: "## 주간 요약\ntext",
			want:  "주간 요약\ntext",
		},
		{
			name:  "collapses bold",
			input: "**important** and **more**",
			want:  "*important* and *more*",
		},
		{
			name:  "replaces horizontal rule",
			input: "above\n-----\nbelow",
			want:  "above\n───\nbelow",
		},
		{
			name:  "leaves list dashes alone",
			input: "- item one\n- item two",
			want:  "- item one\n- item two",
		},
		{
			name:  "leaves mrkdwn bold alone",
			input: "*section title*",
			want:  "*section title*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMrkdwn(tt.input))
		})
	}
}

func TestUserPrompt_IncludesFeedbackBlock(t *testing.T) {
	p := UserPrompt(TypeWeekly, "02/09~02/12", "[02/09 09:30] hello", "[2026-02-01] [포맷/형식 변경] 더 짧게")
	assert.Contains(t, p, "[Case B] weekly operation report format")
	assert.Contains(t, p, "---ACCUMULATED TEAM FEEDBACK---")
	assert.Contains(t, p, "더 짧게")
	assert.Contains(t, p, "---SLACK MESSAGES START---")
}

func TestUserPrompt_NoFeedback(t *testing.T) {
	p := UserPrompt(TypeDaily, "2026-02-09", "transcript", "")
	assert.Contains(t, p, "[Case A] daily quick report format")
	assert.NotContains(t, p, "ACCUMULATED TEAM FEEDBACK")
}

func TestSystemPrompt_EmbedsGuide(t *testing.T) {
	p := SystemPrompt("the guide body")
	assert.Contains(t, p, "the guide body")
	assert.Contains(t, p, "Use Slack mrkdwn format")
}
