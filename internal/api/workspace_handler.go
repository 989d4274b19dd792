package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/lifecycle"
)

// CreateWorkspace accepts the request, allocates a uid and returns 202
// while provisioning continues in the background. Progress is served by
// the creation endpoints under /workspaces/{ref}/creation.
func (a *API) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}

	uid, err := a.manager.Create(r.Context(), in)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{"uid": uid})
}

func (a *API) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	list, err := a.manager.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"workspaces": list})
}

func (a *API) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "ref")
	ws, err := a.manager.Get(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}
	if ws == nil {
		WriteError(w, core.NewAppError(core.ErrNotFound, fmt.Sprintf("workspace %q not found", name)))
		return
	}
	WriteJSON(w, http.StatusOK, ws)
}

func (a *API) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Delete(r.Context(), chi.URLParam(r, "ref")); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "workspace deleted")
}

func (a *API) StartWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Start(r.Context(), chi.URLParam(r, "ref")); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "workspace started")
}

func (a *API) StopWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Stop(r.Context(), chi.URLParam(r, "ref")); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "workspace stopped")
}

func (a *API) RebuildWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Rebuild(r.Context(), chi.URLParam(r, "ref")); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "workspace rebuild started")
}

func (a *API) ResizeWorkspace(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Sizing core.Sizing `json:"sizing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	if err := a.manager.Resize(r.Context(), chi.URLParam(r, "ref"), in.Sizing); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "workspace resized")
}

func (a *API) DuplicateWorkspace(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	uid, err := a.manager.Duplicate(r.Context(), chi.URLParam(r, "ref"), in.Name)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"uid": uid})
}

func (a *API) BulkAction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Action  string   `json:"action"`
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}

	action, err := core.ParseAction(in.Action)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := a.manager.Bulk(r.Context(), action, in.Targets)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
