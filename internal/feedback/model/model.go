package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CategoryCorrection     = "correction"
	CategoryCategorization = "categorization"
	CategoryFormat         = "format"
	CategoryGeneral        = "general"
)

var categoryLabels = map[string]string{
	CategoryCorrection:     "사실 오류 수정",
	CategoryCategorization: "분류 기준 변경",
	CategoryFormat:         "포맷/형식 변경",
	CategoryGeneral:        "기타 의견",
}

// CategoryLabel returns the human label for a category, falling back to the
// raw value for unknown ones.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

func ValidCategory(category string) bool {
	_, ok := categoryLabels[category]
	return ok
}

func Categories() []string {
	return []string{
		CategoryCorrection,
		CategoryCategorization,
		CategoryFormat,
		CategoryGeneral,
	}
}

// Entry is one piece of reviewer feedback on a generated report.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	User      string    `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *Entry) Validate() error {
	if !ValidCategory(e.Category) {
		return fmt.Errorf("unknown feedback category: %q", e.Category)
	}
	if strings.TrimSpace(e.Text) == "" {
		return fmt.Errorf("feedback text is required")
	}
	return nil
}

// FormatForPrompt renders entries into the line format the model prompt
// consumes: one "[date] [label] text" per entry.
func FormatForPrompt(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		lines = append(lines, fmt.Sprintf("[%s] [%s] %s", e.Date, CategoryLabel(e.Category), e.Text))
	}
	return strings.Join(lines, "\n")
}
