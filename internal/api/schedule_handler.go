package api

import (
	"encoding/json"
	"net/http"

	"github.com/lzjever/mbos-wso/internal/core"
)

func (a *API) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := a.store.Schedules(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}

// SetSchedule upserts the rule for its (workspace, action) pair.
func (a *API) SetSchedule(w http.ResponseWriter, r *http.Request) {
	var sched core.Schedule
	if err := json.NewDecoder(r.Body).Decode(&sched); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	if err := sched.Validate(); err != nil {
		WriteError(w, err)
		return
	}
	if err := a.store.SetSchedule(r.Context(), sched); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "schedule saved")
}

func (a *API) RemoveSchedule(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Workspace string              `json:"workspace"`
		Action    core.ScheduleAction `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	if in.Workspace == "" {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "workspace is required"))
		return
	}
	if err := a.store.RemoveSchedule(r.Context(), in.Workspace, in.Action); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "schedule removed")
}

func (a *API) GetExpiryDays(w http.ResponseWriter, r *http.Request) {
	days, err := a.store.ExpiryDays(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"days": days})
}

func (a *API) SetExpiryDays(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	if in.Days < 1 {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "expiry must be at least one day"))
		return
	}
	if err := a.store.SetExpiryDays(r.Context(), in.Days); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "expiry updated")
}
