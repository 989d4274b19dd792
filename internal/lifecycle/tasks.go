package lifecycle

import (
	"sync"
	"time"

	"github.com/lzjever/mbos-wso/internal/core"
)

// taskCap bounds the recent-task ring; older entries fall off.
const taskCap = 50

// Recorder keeps the most recent lifecycle operations for operator
// visibility. It is process-local and not authoritative state.
type Recorder struct {
	mu      sync.Mutex
	entries []core.TaskEntry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Begin records a running operation and returns its entry id.
func (r *Recorder) Begin(action core.Action, workspace string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := core.TaskEntry{
		ID:        core.NewID(),
		Action:    action,
		Workspace: workspace,
		Status:    core.TaskRunning,
		StartedAt: time.Now().UTC(),
	}
	r.entries = append(r.entries, entry)
	if len(r.entries) > taskCap {
		r.entries = r.entries[len(r.entries)-taskCap:]
	}
	return entry.ID
}

// Complete marks an entry terminal. A nil err means success.
func (r *Recorder) Complete(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID != id {
			continue
		}
		now := time.Now().UTC()
		r.entries[i].CompletedAt = &now
		if err != nil {
			r.entries[i].Status = core.TaskFailed
			r.entries[i].Error = err.Error()
		} else {
			r.entries[i].Status = core.TaskCompleted
		}
		return
	}
}

// Recent returns the entries newest first.
func (r *Recorder) Recent() []core.TaskEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.TaskEntry, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}
