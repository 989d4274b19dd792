// Package pipeline tracks multi-step workspace creation runs: per-step
// status, an append-only log, and a broadcast feed consumed live by
// clients. One writer (the lifecycle operation) per uid, any number of
// subscribers.
package pipeline

import (
	"sync"
)

type StepID string

const (
	StepProvisioning StepID = "provisioning"
	StepCloning      StepID = "cloning"
	StepFeatures     StepID = "features"
	StepPostCreate   StepID = "postcreate"
)

// stepOrder is the fixed phase order of every creation run.
var stepOrder = []StepID{StepProvisioning, StepCloning, StepFeatures, StepPostCreate}

var stepTitles = map[StepID]string{
	StepProvisioning: "Provisioning storage",
	StepCloning:      "Cloning repository",
	StepFeatures:     "Applying features",
	StepPostCreate:   "Running post-create commands",
}

type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in-progress"
	StatusCompleted  StepStatus = "completed"
	StatusError      StepStatus = "error"
)

type Step struct {
	ID     StepID     `json:"id"`
	Title  string     `json:"title"`
	Status StepStatus `json:"status"`
}

// RunStatus is the terminal state of a creation run; empty while running.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

type EventType string

const (
	EventSteps EventType = "steps"
	EventLog   EventType = "log"
	EventDone  EventType = "done"
)

type Event struct {
	Type   EventType `json:"type"`
	Steps  []Step    `json:"steps,omitempty"`
	Line   string    `json:"line,omitempty"`
	Status RunStatus `json:"status,omitempty"`
}

// subscriberBuffer bounds how far a slow consumer may lag before it is
// dropped. Dropping keeps the pipeline from ever blocking on delivery.
const subscriberBuffer = 256

type run struct {
	steps  []Step
	log    []string
	status RunStatus
	done   bool
	subs   map[int]chan Event
	nextID int
}

// Tracker holds creation run state per uid. All mutations go through one
// mutex, which serializes event emission so every subscriber observes a
// consistent prefix of the run's event sequence.
type Tracker struct {
	mu   sync.Mutex
	runs map[string]*run
}

func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*run)}
}

func freshSteps() []Step {
	steps := make([]Step, len(stepOrder))
	for i, id := range stepOrder {
		steps[i] = Step{ID: id, Title: stepTitles[id], Status: StatusPending}
	}
	return steps
}

// Init allocates a fresh run for a uid, discarding any prior run and
// closing its remaining subscribers.
func (t *Tracker) Init(uid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.runs[uid]; ok {
		for id, ch := range old.subs {
			close(ch)
			delete(old.subs, id)
		}
	}
	t.runs[uid] = &run{
		steps: freshSteps(),
		subs:  make(map[int]chan Event),
	}
}

// UpdateStep sets one step's status and broadcasts the full step array.
// Ignored after the run is terminal or for unknown uids.
func (t *Tracker) UpdateStep(uid string, step StepID, status StepStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.runs[uid]
	if !ok || r.done {
		return
	}
	for i := range r.steps {
		if r.steps[i].ID == step {
			r.steps[i].Status = status
			break
		}
	}
	t.broadcast(r, Event{Type: EventSteps, Steps: cloneSteps(r.steps)})
}

// AppendLog appends one line to the run's log and broadcasts it.
func (t *Tracker) AppendLog(uid, line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.runs[uid]
	if !ok || r.done {
		return
	}
	r.log = append(r.log, line)
	t.broadcast(r, Event{Type: EventLog, Line: line})
}

// Finish marks the run terminal, emits the done event and closes every
// subscriber. No further mutations are accepted for this run.
func (t *Tracker) Finish(uid string, status RunStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.runs[uid]
	if !ok || r.done {
		return
	}
	r.status = status
	r.done = true
	t.broadcast(r, Event{Type: EventDone, Status: status})
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

// Snapshot returns the run's log, steps and terminal status at a point
// in time. ok is false when no run exists for the uid.
func (t *Tracker) Snapshot(uid string) (lines []string, steps []Step, status RunStatus, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, found := t.runs[uid]
	if !found {
		return nil, nil, "", false
	}
	lines = append([]string(nil), r.log...)
	return lines, cloneSteps(r.steps), r.status, true
}

// Active reports whether a non-terminal run exists for the uid.
func (t *Tracker) Active(uid string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.runs[uid]
	return ok && !r.done
}

// Subscribe attaches a consumer to the run's event feed. The current
// steps and log are replayed first, then live events arrive in emission
// order, exactly once each. The channel closes after the done event, or
// earlier if the consumer falls too far behind. cancel detaches without
// affecting the run.
func (t *Tracker) Subscribe(uid string) (<-chan Event, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	r, ok := t.runs[uid]
	if !ok {
		close(ch)
		return ch, func() {}
	}

	// Replay under the lock so no live event can interleave.
	ch <- Event{Type: EventSteps, Steps: cloneSteps(r.steps)}
	for _, line := range r.log {
		if len(ch) >= subscriberBuffer-1 {
			break // best-effort log replay
		}
		ch <- Event{Type: EventLog, Line: line}
	}
	if r.done {
		ch <- Event{Type: EventDone, Status: r.status}
		close(ch)
		return ch, func() {}
	}

	id := r.nextID
	r.nextID++
	r.subs[id] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if sub, live := r.subs[id]; live {
			close(sub)
			delete(r.subs, id)
		}
	}
	return ch, cancel
}

// broadcast delivers an event to every subscriber, dropping any whose
// buffer is full rather than blocking the run. Caller holds t.mu.
func (t *Tracker) broadcast(r *run, ev Event) {
	for id, ch := range r.subs {
		select {
		case ch <- ev:
		default:
			close(ch)
			delete(r.subs, id)
		}
	}
}

func cloneSteps(steps []Step) []Step {
	return append([]Step(nil), steps...)
}
