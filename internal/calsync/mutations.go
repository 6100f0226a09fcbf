package calsync

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cardapioweb/activation-board/internal/calendar"
	"github.com/cardapioweb/activation-board/internal/ticket"
)

// ValidationError marks mutation input the engine refused before talking
// to the calendar service.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

const createTimeLayout = "2006-01-02T15:04:05"

// CreateRequest describes a new activation slot. Start and End are local
// wall-clock stamps without offset; the calendar client attaches the
// configured timezone.
type CreateRequest struct {
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Attendees   []ticket.Attendee `json:"attendees"`
}

// MoveStatus rewrites a ticket's summary markers for the target status.
// The snapshot is updated first; a rejected patch rolls it back.
func (e *Engine) MoveStatus(ctx context.Context, id string, status ticket.Status) error {
	e.mu.Lock()
	idx := indexByID(e.snapshot, id)
	if idx < 0 {
		e.mu.Unlock()
		return ErrUnknownTicket
	}
	rollback := cloneTickets(e.snapshot)
	encoded := ticket.EncodeSummary(e.snapshot[idx].Summary, status)
	e.snapshot[idx].Summary = encoded
	e.snapshot[idx].Status = status
	e.mu.Unlock()

	if err := e.source.Patch(ctx, id, calendar.EventPatch{Summary: &encoded}); err != nil {
		e.restore(rollback)
		return err
	}
	return nil
}

// AddAttendee assigns a technician to a ticket. Adding an email that is
// already attending is a no-op.
func (e *Engine) AddAttendee(ctx context.Context, id, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}

	e.mu.Lock()
	idx := indexByID(e.snapshot, id)
	if idx < 0 {
		e.mu.Unlock()
		return ErrUnknownTicket
	}
	if e.snapshot[idx].HasAttendee(email) {
		e.mu.Unlock()
		return nil
	}
	rollback := cloneTickets(e.snapshot)
	updated := append(append([]ticket.Attendee(nil), e.snapshot[idx].Attendees...), ticket.Attendee{Email: email})
	e.snapshot[idx].Attendees = updated
	e.mu.Unlock()

	if err := e.source.Patch(ctx, id, calendar.EventPatch{Attendees: &updated}); err != nil {
		e.restore(rollback)
		return err
	}
	return nil
}

// RemoveAttendee unassigns a technician from a ticket.
func (e *Engine) RemoveAttendee(ctx context.Context, id, email string) error {
	e.mu.Lock()
	idx := indexByID(e.snapshot, id)
	if idx < 0 {
		e.mu.Unlock()
		return ErrUnknownTicket
	}
	rollback := cloneTickets(e.snapshot)
	updated := make([]ticket.Attendee, 0, len(e.snapshot[idx].Attendees))
	for _, a := range e.snapshot[idx].Attendees {
		if !strings.EqualFold(a.Email, email) {
			updated = append(updated, a)
		}
	}
	e.snapshot[idx].Attendees = updated
	e.mu.Unlock()

	if err := e.source.Patch(ctx, id, calendar.EventPatch{Attendees: &updated}); err != nil {
		e.restore(rollback)
		return err
	}
	return nil
}

// Create inserts a new slot and refreshes the board in the foreground so
// the caller sees the stored version.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (ticket.Ticket, error) {
	if strings.TrimSpace(req.Summary) == "" {
		return ticket.Ticket{}, &ValidationError{Field: "summary", Reason: "must not be empty"}
	}
	start, err := time.Parse(createTimeLayout, req.Start)
	if err != nil {
		return ticket.Ticket{}, &ValidationError{Field: "start", Reason: "must be YYYY-MM-DDTHH:MM:SS"}
	}
	end, err := time.Parse(createTimeLayout, req.End)
	if err != nil {
		return ticket.Ticket{}, &ValidationError{Field: "end", Reason: "must be YYYY-MM-DDTHH:MM:SS"}
	}
	if !end.After(start) {
		return ticket.Ticket{}, &ValidationError{Field: "end", Reason: "must be after start"}
	}

	created, err := e.source.Insert(ctx, calendar.EventInsert{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		Attendees:   req.Attendees,
	})
	if err != nil {
		return ticket.Ticket{}, err
	}

	if _, err := e.RunOnce(ctx, false); err != nil {
		log.Printf("calsync: refresh after create failed: %v", err)
	}
	return created, nil
}

func (e *Engine) restore(snapshot []ticket.Ticket) {
	e.mu.Lock()
	e.snapshot = snapshot
	e.mu.Unlock()
}
