// Package filter computes the visible subset of a board snapshot. Pure
// functions only; the sync engine owns the snapshot itself.
package filter

import (
	"strings"
	"time"

	"github.com/cardapioweb/activation-board/internal/ticket"
)

// fallbackWords hide the worst of the calendar noise before any
// blacklist has been configured. Used only when the blacklist is empty.
var fallbackWords = []string{"ocupado", "sem ativação"}

// Selection is the operator's current view filter. Technicians and
// NoTechnicianOnly are mutually exclusive; the Toggle helpers keep that
// invariant.
type Selection struct {
	Technicians      []string `json:"technicians"`
	NoTechnicianOnly bool     `json:"noTechnicianOnly"`
	FromNowOnly      bool     `json:"fromNowOnly"`
}

// ApplyBlacklist drops tickets whose lowercased summary contains any
// blacklist word. An empty blacklist falls back to the hardcoded noise
// words rather than showing everything.
func ApplyBlacklist(tickets []ticket.Ticket, blacklist []string) []ticket.Ticket {
	words := blacklist
	if len(words) == 0 {
		words = fallbackWords
	}
	return keep(tickets, func(t ticket.Ticket) bool {
		summary := strings.ToLower(t.Summary)
		for _, w := range words {
			if w == "" {
				continue
			}
			if strings.Contains(summary, strings.ToLower(w)) {
				return false
			}
		}
		return true
	})
}

// Toggle flips one technician in the selection. Selecting any technician
// clears the no-technician flag.
func Toggle(sel Selection, email string) Selection {
	for i, existing := range sel.Technicians {
		if strings.EqualFold(existing, email) {
			sel.Technicians = append(append([]string(nil), sel.Technicians[:i]...), sel.Technicians[i+1:]...)
			return sel
		}
	}
	sel.Technicians = append(append([]string(nil), sel.Technicians...), email)
	sel.NoTechnicianOnly = false
	return sel
}

// ToggleNoTechnician flips the unassigned-only view, clearing any
// technician selection.
func ToggleNoTechnician(sel Selection) Selection {
	sel.NoTechnicianOnly = !sel.NoTechnicianOnly
	if sel.NoTechnicianOnly {
		sel.Technicians = nil
	}
	return sel
}

// ToggleAll selects the whole roster, or clears the selection when the
// roster is already fully selected. The result preserves roster order.
func ToggleAll(sel Selection, roster []string) Selection {
	if len(sel.Technicians) == len(roster) && len(roster) > 0 {
		sel.Technicians = nil
		return sel
	}
	sel.Technicians = append([]string(nil), roster...)
	sel.NoTechnicianOnly = false
	return sel
}

// Visible applies the selection to an already blacklist-filtered set.
func Visible(tickets []ticket.Ticket, sel Selection, now time.Time) []ticket.Ticket {
	out := tickets
	if sel.NoTechnicianOnly {
		out = keep(out, func(t ticket.Ticket) bool { return len(t.Attendees) <= 1 })
	} else if len(sel.Technicians) > 0 {
		out = keep(out, func(t ticket.Ticket) bool {
			for _, email := range sel.Technicians {
				if t.HasAttendee(email) {
					return true
				}
			}
			return false
		})
	}
	if sel.FromNowOnly {
		out = keep(out, func(t ticket.Ticket) bool { return !t.Start.Before(now) })
	}
	return out
}

// CountByTechnician counts each roster member's tickets against the
// technician-unfiltered set, so counts reflect volume rather than the
// current selection. The from-now filter still applies when set.
func CountByTechnician(tickets []ticket.Ticket, roster []string, fromNow bool, now time.Time) map[string]int {
	pool := tickets
	if fromNow {
		pool = keep(pool, func(t ticket.Ticket) bool { return !t.Start.Before(now) })
	}
	counts := make(map[string]int, len(roster))
	for _, email := range roster {
		counts[email] = 0
		for _, t := range pool {
			if t.HasAttendee(email) {
				counts[email]++
			}
		}
	}
	return counts
}

func keep(tickets []ticket.Ticket, pred func(ticket.Ticket) bool) []ticket.Ticket {
	out := make([]ticket.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
