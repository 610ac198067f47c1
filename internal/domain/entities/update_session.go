package entities

import (
	"encoding/json"
	"time"
)

// Update session lifecycle states. A session transitions from running to
// exactly one terminal state and is never re-opened.
const (
	SessionStatusRunning   = "running"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
)

// Trigger types for a pipeline run.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// UpdateSession is the audit record for one batch synchronization run.
type UpdateSession struct {
	ID             string          `json:"id" db:"id"`
	SessionType    string          `json:"session_type" db:"session_type"`
	TriggerType    string          `json:"trigger_type" db:"trigger_type"`
	TriggeredBy    string          `json:"triggered_by" db:"triggered_by"`
	StartTime      time.Time       `json:"start_time" db:"start_time"`
	EndTime        *time.Time      `json:"end_time,omitempty" db:"end_time"`
	Status         string          `json:"status" db:"status"`
	RecordsAdded   int             `json:"records_added" db:"records_added"`
	RecordsUpdated int             `json:"records_updated" db:"records_updated"`
	TotalAPICalls  int             `json:"total_api_calls" db:"total_api_calls"`
	SuccessRate    float64         `json:"success_rate" db:"success_rate"`
	SummaryReport  json.RawMessage `json:"summary_report,omitempty" db:"summary_report"`
}
