package ticket

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Status is a ticket's workflow stage, stored on the wire as marker
// substrings inside the event summary. The enum values are the column
// labels the board shows.
type Status string

const (
	StatusPending    Status = "A FAZER"
	StatusInProgress Status = "ATENDENDO"
	StatusNoShow     Status = "NOSHOW"
	StatusDone       Status = "FINALIZADO"
)

const (
	noShowPrefix     = "🚨 - "
	donePrefix       = "OK ✅ - "
	inProgressPrefix = "⭐ - "

	// AdHocMarker tags tickets squeezed into the schedule out-of-band.
	AdHocMarker = "ENCAIXE"

	// DefaultSummary replaces an empty title at decode time.
	DefaultSummary = "Sem Título"
)

// summaryMarkers strips every known status token from a title. The
// tokens match anywhere, including inside words, which mirrors how the
// board has always cleaned titles.
var summaryMarkers = regexp.MustCompile(`(?i)ATENDENDO|NOSHOW|OK|FINALIZADO|🚨|✅|⭐| - `)

// Attendee is one calendar guest. Position 0 is the client; later
// positions are technicians.
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Ticket is a classified calendar event.
type Ticket struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Attendees   []Attendee `json:"attendees"`
	Start       time.Time  `json:"start"`
	Created     *time.Time `json:"created,omitempty"`
	Status      Status     `json:"status"`
}

// Unassigned reports whether the ticket is still waiting for a
// technician. Not a stored status: a pending ticket with at most the
// client attending.
func (t Ticket) Unassigned() bool {
	return t.Status == StatusPending && len(t.Attendees) <= 1
}

// AdHoc reports whether the ticket was squeezed in out-of-band.
func (t Ticket) AdHoc() bool {
	return strings.Contains(strings.ToUpper(t.Summary), AdHocMarker)
}

// Technicians returns the emails of every attendee after the client.
func (t Ticket) Technicians() []string {
	if len(t.Attendees) <= 1 {
		return nil
	}
	emails := make([]string, 0, len(t.Attendees)-1)
	for _, a := range t.Attendees[1:] {
		emails = append(emails, a.Email)
	}
	return emails
}

// HasAttendee reports whether email already attends the ticket, at any
// position.
func (t Ticket) HasAttendee(email string) bool {
	for _, a := range t.Attendees {
		if strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

// Classify derives the workflow status from a summary. Checked in fixed
// priority order; in-progress first so a starred title never reads as
// done, no-show before done so an alarm always wins.
func Classify(summary string) Status {
	upper := strings.ToUpper(summary)
	switch {
	case strings.Contains(upper, "⭐") || strings.Contains(upper, "ATENDENDO"):
		return StatusInProgress
	case strings.Contains(upper, "🚨") || strings.Contains(upper, "NOSHOW"):
		return StatusNoShow
	case strings.Contains(upper, "OK") || strings.Contains(upper, "FINALIZADO"):
		return StatusDone
	default:
		return StatusPending
	}
}

// CleanSummary strips all status markers and separators from a summary,
// leaving the bare title.
func CleanSummary(summary string) string {
	return strings.TrimSpace(summaryMarkers.ReplaceAllString(summary, ""))
}

// EncodeSummary rewrites a summary for the target status: strip every
// old marker, then prepend the new one. Idempotent for a given status.
func EncodeSummary(summary string, status Status) string {
	title := CleanSummary(summary)
	switch status {
	case StatusNoShow:
		return noShowPrefix + title
	case StatusDone:
		return donePrefix + title
	case StatusInProgress:
		return inProgressPrefix + title
	default:
		return title
	}
}

// DisplayName derives a readable name from an email: local part split on
// dots, each segment capitalized.
func DisplayName(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	parts := strings.Split(local, ".")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

// AttendeeName prefers the upstream display name, falling back to the
// email-derived one.
func AttendeeName(a Attendee) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return DisplayName(a.Email)
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
