package reportmode

// SlackrepStatus is the /status response.
type SlackrepStatus struct {
	Mode      string            `json:"mode"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Scheduler string            `json:"scheduler,omitempty"`
	Workers   map[string]string `json:"workers,omitempty"`
}
