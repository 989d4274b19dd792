package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lzjever/mbos-wso/internal/core"
)

func (a *API) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := a.store.Presets(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"presets": presets})
}

func (a *API) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var p core.Preset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}
	if p.Name == "" {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "preset name is required"))
		return
	}
	saved, err := a.store.SavePreset(r.Context(), p)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, saved)
}

func (a *API) DeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeletePreset(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, "preset deleted")
}
