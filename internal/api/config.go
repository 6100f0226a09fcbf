package api

import (
	"encoding/json"
	"net/http"

	"github.com/cardapioweb/activation-board/internal/boardconfig"
)

// ConfigHandler reads and writes the roster and blacklist.
type ConfigHandler struct {
	Configs ConfigStore
	Engine  BoardEngine
}

func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, h.Configs.Load(r.Context()))
}

// Set persists the provided fields only, then pushes the new config into
// the engine so the next poll uses it.
func (h *ConfigHandler) Set(w http.ResponseWriter, r *http.Request) {
	var update boardconfig.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if update.Roster == nil && update.Blacklist == nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "body must set roster or blacklist"})
		return
	}

	if err := h.Configs.Save(r.Context(), update); err != nil {
		sendJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	if h.Engine != nil {
		h.Engine.ReloadConfig(r.Context())
	}

	sendJSON(w, http.StatusOK, successResponse{Success: true})
}
