package events

import (
	"time"
)

// ActivityAction represents different kinds of import activity
type ActivityAction string

const (
	ActionImportCreated    ActivityAction = "import.created"
	ActionImportValidated  ActivityAction = "import.validated"
	ActionImportStarted    ActivityAction = "import.started"
	ActionImportCompleted  ActivityAction = "import.completed"
	ActionImportPartial    ActivityAction = "import.partial"
	ActionImportFailed     ActivityAction = "import.failed"
	ActionImportDeleted    ActivityAction = "import.deleted"
	ActionExportDownloaded ActivityAction = "export.downloaded"
)

// ActivityEvent is the record sent to the external activity log for
// every job state transition. Publishing is fire-and-forget: a failed
// publish is logged and swallowed, never surfaced to the caller.
type ActivityEvent struct {
	ID           string         `json:"id"`
	Actor        string         `json:"actor"`
	Action       ActivityAction `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Summary      string         `json:"summary"`
	Timestamp    time.Time      `json:"timestamp"`
	Source       string         `json:"source"`
}
