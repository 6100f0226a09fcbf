package calendar

import (
	"time"

	"github.com/cardapioweb/activation-board/internal/ticket"
)

// EventDateTime mirrors the calendar API's start/end shape. Timed events
// carry DateTime, all-day events carry Date.
type EventDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Event is the raw wire representation of one calendar event.
type Event struct {
	ID          string            `json:"id"`
	Summary     string            `json:"summary"`
	Description string            `json:"description,omitempty"`
	Attendees   []ticket.Attendee `json:"attendees,omitempty"`
	Start       *EventDateTime    `json:"start,omitempty"`
	End         *EventDateTime    `json:"end,omitempty"`
	Created     string            `json:"created,omitempty"`
}

type eventList struct {
	Items []Event `json:"items"`
}

// EventPatch is a partial update; nil fields are not sent.
type EventPatch struct {
	Summary   *string            `json:"summary,omitempty"`
	Attendees *[]ticket.Attendee `json:"attendees,omitempty"`
}

// EventInsert is the payload for creating an event. Start and End are
// local civil stamps ("2006-01-02T15:04:05"); the client attaches the
// configured timezone on the wire.
type EventInsert struct {
	Summary     string
	Description string
	Start       string
	End         string
	Attendees   []ticket.Attendee
}

// FromEvent decodes a raw event into a Ticket at the boundary: the status
// is classified here, once, and never re-derived from raw text deeper in
// the pipeline.
func FromEvent(ev Event) (ticket.Ticket, bool) {
	start, ok := parseEventTime(ev.Start)
	if !ok {
		return ticket.Ticket{}, false
	}

	summary := ev.Summary
	if summary == "" {
		summary = ticket.DefaultSummary
	}

	t := ticket.Ticket{
		ID:          ev.ID,
		Summary:     summary,
		Description: ev.Description,
		Attendees:   ev.Attendees,
		Start:       start,
		Status:      ticket.Classify(summary),
	}
	if ev.Attendees == nil {
		t.Attendees = []ticket.Attendee{}
	}
	if created, err := time.Parse(time.RFC3339, ev.Created); err == nil {
		t.Created = &created
	}
	return t, true
}

func parseEventTime(dt *EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	if dt.Date != "" {
		parsed, err := time.Parse("2006-01-02", dt.Date)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
