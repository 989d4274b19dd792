package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/observability"
	"github.com/lzjever/mbos-wso/internal/pipeline"
)

type creationSnapshot struct {
	UID    string             `json:"uid"`
	Steps  []pipeline.Step    `json:"steps"`
	Log    []string           `json:"log"`
	Status pipeline.RunStatus `json:"status,omitempty"`
	Active bool               `json:"active"`
}

// GetCreationLog returns the point-in-time state of a creation run: step
// statuses plus the full log so far.
func (a *API) GetCreationLog(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "ref")

	lines, steps, status, ok := a.manager.Tracker().Snapshot(uid)
	if !ok {
		WriteError(w, core.NewAppError(core.ErrNotFound, "no creation run for this workspace"))
		return
	}

	WriteJSON(w, http.StatusOK, creationSnapshot{
		UID:    uid,
		Steps:  steps,
		Log:    lines,
		Status: status,
		Active: status == "",
	})
}

// StreamCreation serves the creation feed as server-sent events. The
// subscriber first receives a replay of everything so far, then live
// events until the run finishes or the client goes away.
func (a *API) StreamCreation(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "ref")

	if _, _, _, ok := a.manager.Tracker().Snapshot(uid); !ok {
		WriteError(w, core.NewAppError(core.ErrNotFound, "no creation run for this workspace"))
		return
	}

	events, cancel := a.manager.Tracker().Subscribe(uid)
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, core.NewAppError(core.ErrInternal, "streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	observability.FeedSubscribers.Inc()
	defer observability.FeedSubscribers.Dec()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				a.log.Error("marshal creation event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
			if ev.Type == pipeline.EventDone {
				return
			}
		}
	}
}
