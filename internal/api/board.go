package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cardapioweb/activation-board/internal/calsync"
	"github.com/cardapioweb/activation-board/internal/filter"
	"github.com/cardapioweb/activation-board/internal/ticket"
)

// BoardHandler serves the live board: the engine's snapshot plus the
// operator's view filters.
type BoardHandler struct {
	Engine  BoardEngine
	Configs ConfigStore
	Now     func() time.Time
}

type boardResponse struct {
	State      calsync.State   `json:"state"`
	LastUpdate *time.Time      `json:"lastUpdate,omitempty"`
	LastError  string          `json:"lastError,omitempty"`
	Tickets    []ticket.Ticket `json:"tickets"`
	Counts     map[string]int  `json:"counts"`
}

func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sel := filter.Selection{
		NoTechnicianOnly: query.Get("noTechnician") == "true",
		FromNowOnly:      query.Get("fromNow") == "true",
	}
	if raw := strings.TrimSpace(query.Get("technicians")); raw != "" {
		sel.Technicians = strings.Split(raw, ",")
		sel.NoTechnicianOnly = false
	}

	now := h.Now()
	snapshot := h.Engine.Snapshot()
	cfg := h.Configs.Load(r.Context())

	state, lastUpdate, lastErr := h.Engine.Status()
	resp := boardResponse{
		State:   state,
		Tickets: filter.Visible(snapshot, sel, now),
		Counts:  filter.CountByTechnician(snapshot, cfg.Roster, sel.FromNowOnly, now),
	}
	if !lastUpdate.IsZero() {
		resp.LastUpdate = &lastUpdate
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	if resp.Tickets == nil {
		resp.Tickets = []ticket.Ticket{}
	}

	sendJSON(w, http.StatusOK, resp)
}
