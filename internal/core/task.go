package core

import "time"

type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// TaskEntry is a client-observable audit record of one lifecycle operation.
// Entries are kept in a bounded in-process ring and are not authoritative.
type TaskEntry struct {
	ID          string     `json:"id"`
	Action      Action     `json:"action"`
	Workspace   string     `json:"workspace"`
	Status      TaskStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}
