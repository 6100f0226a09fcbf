package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cardapioweb/activation-board/internal/calendar"
	"github.com/cardapioweb/activation-board/internal/calsync"
	"github.com/cardapioweb/activation-board/internal/filter"
	"github.com/cardapioweb/activation-board/internal/ticket"
)

// TicketHandler serves the board's ticket operations.
type TicketHandler struct {
	Engine   BoardEngine
	Source   TicketSource
	Configs  ConfigStore
	Location *time.Location
	Now      func() time.Time
}

// List performs a stateless window query against the calendar, applying
// the configured blacklist.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	window, err := calendar.ResolveWindow(
		strings.TrimSpace(r.URL.Query().Get("view")),
		strings.TrimSpace(r.URL.Query().Get("start")),
		strings.TrimSpace(r.URL.Query().Get("end")),
		h.Now(),
		h.Location,
	)
	if err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	fetched, err := h.Source.List(r.Context(), calendar.Query{Window: window})
	if err != nil {
		sendJSON(w, remoteErrorStatus(err), errorResponse{Error: err.Error()})
		return
	}

	cfg := h.Configs.Load(r.Context())
	sendJSON(w, http.StatusOK, filter.ApplyBlacklist(fetched, cfg.Blacklist))
}

type ticketUpdate struct {
	Status         *ticket.Status `json:"status,omitempty"`
	AddAttendee    *string        `json:"addAttendee,omitempty"`
	RemoveAttendee *string        `json:"removeAttendee,omitempty"`
}

type patchTicketRequest struct {
	ID     string       `json:"id"`
	Update ticketUpdate `json:"update"`
}

// Update applies one mutation to a snapshot ticket: a status move or an
// attendee add/remove.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req patchTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "missing field: id"})
		return
	}

	var err error
	switch {
	case req.Update.Status != nil:
		if !validStatus(*req.Update.Status) {
			sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid status"})
			return
		}
		err = h.Engine.MoveStatus(r.Context(), req.ID, *req.Update.Status)
	case req.Update.AddAttendee != nil:
		err = h.Engine.AddAttendee(r.Context(), req.ID, *req.Update.AddAttendee)
	case req.Update.RemoveAttendee != nil:
		err = h.Engine.RemoveAttendee(r.Context(), req.ID, *req.Update.RemoveAttendee)
	default:
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "update must set status, addAttendee or removeAttendee"})
		return
	}
	if err != nil {
		sendJSON(w, mutationErrorStatus(err), errorResponse{Error: err.Error()})
		return
	}

	sendJSON(w, http.StatusOK, successResponse{Success: true})
}

// Create inserts a new slot through the engine and returns the stored
// ticket.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req calsync.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	created, err := h.Engine.Create(r.Context(), req)
	if err != nil {
		sendJSON(w, mutationErrorStatus(err), errorResponse{Error: err.Error()})
		return
	}

	sendJSON(w, http.StatusCreated, created)
}

func validStatus(s ticket.Status) bool {
	switch s {
	case ticket.StatusPending, ticket.StatusInProgress, ticket.StatusNoShow, ticket.StatusDone:
		return true
	}
	return false
}

func remoteErrorStatus(err error) int {
	switch {
	case errors.Is(err, calendar.ErrRejected):
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}

func mutationErrorStatus(err error) int {
	var verr *calsync.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, calsync.ErrUnknownTicket):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrRejected):
		return http.StatusBadGateway
	case errors.Is(err, calsync.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusServiceUnavailable
	}
}
