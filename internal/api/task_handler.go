package api

import (
	"net/http"
)

// ListTasks returns the most recent lifecycle operations, newest first.
func (a *API) ListTasks(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": a.manager.Recorder().Recent()})
}
