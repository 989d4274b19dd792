package core

import (
	"fmt"
	"time"
)

// ScheduleAction is the subset of actions a schedule may trigger.
type ScheduleAction string

const (
	ScheduleStart ScheduleAction = "start"
	ScheduleStop  ScheduleAction = "stop"
)

// Schedule is a recurring day/time rule that starts or stops a workspace.
// At most one schedule exists per (workspace, action) pair.
type Schedule struct {
	Workspace string         `json:"workspace"`
	PodName   string         `json:"pod_name"`
	Action    ScheduleAction `json:"action"`
	Days      []int          `json:"days"` // 0 = Sunday, per time.Weekday
	Hour      int            `json:"hour"`
	Minute    int            `json:"minute"`
}

// Matches reports whether the schedule fires at the given instant:
// the weekday is listed and the hour/minute match exactly.
func (s Schedule) Matches(now time.Time) bool {
	if now.Hour() != s.Hour || now.Minute() != s.Minute {
		return false
	}
	day := int(now.Weekday())
	for _, d := range s.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Validate checks the rule's fields are in range.
func (s Schedule) Validate() error {
	if s.Workspace == "" {
		return NewAppError(ErrBadRequest, "schedule workspace is required")
	}
	if s.Action != ScheduleStart && s.Action != ScheduleStop {
		return NewAppError(ErrBadRequest, fmt.Sprintf("invalid schedule action %q", s.Action))
	}
	if len(s.Days) == 0 {
		return NewAppError(ErrBadRequest, "schedule needs at least one day")
	}
	for _, d := range s.Days {
		if d < 0 || d > 6 {
			return NewAppError(ErrBadRequest, fmt.Sprintf("invalid schedule day %d", d))
		}
	}
	if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
		return NewAppError(ErrBadRequest, "schedule time out of range")
	}
	return nil
}
