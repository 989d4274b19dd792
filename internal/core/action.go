package core

import "fmt"

// Action is the closed set of lifecycle operations a caller can request,
// singly or through the bulk endpoint.
type Action string

const (
	// ActionCreate is recorded for task visibility only; creation has a
	// dedicated endpoint and is never dispatched by name.
	ActionCreate    Action = "create"
	ActionStart     Action = "start"
	ActionStop      Action = "stop"
	ActionDelete    Action = "delete"
	ActionResize    Action = "resize"
	ActionRebuild   Action = "rebuild"
	ActionDuplicate Action = "duplicate"
)

// ParseAction maps a wire string to an Action, rejecting unknown values
// so dispatch switches stay exhaustive.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionStart, ActionStop, ActionDelete, ActionResize, ActionRebuild, ActionDuplicate:
		return Action(s), nil
	}
	return "", NewAppError(ErrBadRequest, fmt.Sprintf("unknown action %q", s))
}
