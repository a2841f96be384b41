package slack

// Minimal Block Kit surface: enough to post a feedback button and open the
// feedback modal.

type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type BlockElement struct {
	Type      string      `json:"type"`
	Text      *TextObject `json:"text,omitempty"`
	ActionID  string      `json:"action_id,omitempty"`
	Style     string      `json:"style,omitempty"`
	Options   []Option    `json:"options,omitempty"`
	Multiline bool        `json:"multiline,omitempty"`
}

type Option struct {
	Text  *TextObject `json:"text"`
	Value string      `json:"value"`
}

type Block struct {
	Type     string         `json:"type"`
	BlockID  string         `json:"block_id,omitempty"`
	Elements []BlockElement `json:"elements,omitempty"`
	Element  *BlockElement  `json:"element,omitempty"`
	Label    *TextObject    `json:"label,omitempty"`
}

// View is a modal definition for views.open.
type View struct {
	Type            string      `json:"type"`
	CallbackID      string      `json:"callback_id,omitempty"`
	PrivateMetadata string      `json:"private_metadata,omitempty"`
	Title           *TextObject `json:"title,omitempty"`
	Submit          *TextObject `json:"submit,omitempty"`
	Close           *TextObject `json:"close,omitempty"`
	Blocks          []Block     `json:"blocks,omitempty"`
}

func PlainText(text string) *TextObject {
	return &TextObject{Type: "plain_text", Text: text, Emoji: true}
}

// FeedbackButtonBlocks renders the actions block posted under each report.
func FeedbackButtonBlocks(actionID, label string) []Block {
	return []Block{
		{
			Type: "actions",
			Elements: []BlockElement{
				{
					Type:     "button",
					Text:     PlainText(label),
					ActionID: actionID,
					Style:    "primary",
				},
			},
		},
	}
}
