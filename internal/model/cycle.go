package model

import "time"

// CycleRecord is the history entry kept for one dispatch cycle.
type CycleRecord struct {
	RunID     string         `json:"run_id"`
	Trigger   string         `json:"trigger"` // loop, http, event, cli
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Result    DispatchResult `json:"result"`
	Error     string         `json:"error,omitempty"`
	Watermark string         `json:"watermark"`
}
