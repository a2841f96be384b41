package slack

import "encoding/json"

// Message is the subset of the Slack message object this daemon reads.
type Message struct {
	TS          string            `json:"ts"`
	ThreadTS    string            `json:"thread_ts,omitempty"`
	Text        string            `json:"text,omitempty"`
	User        string            `json:"user,omitempty"`
	BotID       string            `json:"bot_id,omitempty"`
	Username    string            `json:"username,omitempty"`
	ReplyCount  int               `json:"reply_count,omitempty"`
	Files       []File            `json:"files,omitempty"`
	Attachments []json.RawMessage `json:"attachments,omitempty"`
	Reactions   []Reaction        `json:"reactions,omitempty"`
}

// IsThreadReply reports whether the message lives inside a thread
// (the thread parent itself carries thread_ts == ts).
func (m *Message) IsThreadReply() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

type Reaction struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type File struct {
	Name string `json:"name,omitempty"`
}

type responseMetadata struct {
	NextCursor string `json:"next_cursor"`
}

// apiEnvelope is embedded in every Web API response.
type apiEnvelope struct {
	OK       bool             `json:"ok"`
	Error    string           `json:"error,omitempty"`
	Metadata responseMetadata `json:"response_metadata,omitempty"`
}

type authTestResponse struct {
	apiEnvelope
	BotID  string `json:"bot_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type historyResponse struct {
	apiEnvelope
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

type userInfoResponse struct {
	apiEnvelope
	User struct {
		Profile struct {
			DisplayName string `json:"display_name"`
			RealName    string `json:"real_name"`
		} `json:"profile"`
	} `json:"user"`
}

type postMessageResponse struct {
	apiEnvelope
	TS string `json:"ts"`
}

type openViewResponse struct {
	apiEnvelope
}
