// Package report aggregates a fetched ticket batch into the numbers the
// performance dashboard renders. Pure; the caller fetches the batch.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/cardapioweb/activation-board/internal/ticket"
)

// RankBy selects the primary ranking key for technician stats.
type RankBy string

const (
	RankByEfficiency RankBy = "efficiency"
	RankByVolume     RankBy = "volume"
)

// Options configure one aggregation run.
type Options struct {
	// Roster seeds the technician table so zero-activity members still
	// appear.
	Roster []string
	// OrgDomain admits historical technicians: attendee emails under
	// this domain that are no longer on the roster.
	OrgDomain string
	RankBy    RankBy
	// Location for the weekday and hour buckets. Defaults to the
	// tickets' own zone when nil.
	Location *time.Location
}

// TechnicianStats is one row of the ranking table.
type TechnicianStats struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Historical bool    `json:"historical,omitempty"`
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	InProgress int     `json:"inProgress"`
	NoShow     int     `json:"noShow"`
	Done       int     `json:"done"`
	Efficiency float64 `json:"efficiency"`
}

// TimeBucket counts tickets landing in one weekday or hour slot.
type TimeBucket struct {
	Total int `json:"total"`
	AdHoc int `json:"adHoc"`
}

// Totals are the board-wide bucket counts. Ad-hoc insertions are counted
// apart from the status buckets.
type Totals struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	InProgress     int     `json:"inProgress"`
	NoShow         int     `json:"noShow"`
	Done           int     `json:"done"`
	Unassigned     int     `json:"unassigned"`
	AdHoc          int     `json:"adHoc"`
	NoShowRate     float64 `json:"noShowRate"`
	CompletionRate float64 `json:"completionRate"`
}

// Report is the full aggregation result.
type Report struct {
	Totals      Totals            `json:"totals"`
	Technicians []TechnicianStats `json:"technicians"`
	ByWeekday   [7]TimeBucket     `json:"byWeekday"`
	ByHour      [24]TimeBucket    `json:"byHour"`
}

// Aggregate groups tickets by status, technician, weekday and hour.
func Aggregate(tickets []ticket.Ticket, opts Options) Report {
	var r Report

	stats := make(map[string]*TechnicianStats, len(opts.Roster))
	order := make([]string, 0, len(opts.Roster))
	for _, email := range opts.Roster {
		key := strings.ToLower(email)
		if _, ok := stats[key]; ok {
			continue
		}
		stats[key] = &TechnicianStats{Email: email, Name: ticket.DisplayName(email)}
		order = append(order, key)
	}

	for _, t := range tickets {
		r.Totals.Total++
		if t.AdHoc() {
			r.Totals.AdHoc++
		} else {
			switch t.Status {
			case ticket.StatusInProgress:
				r.Totals.InProgress++
			case ticket.StatusNoShow:
				r.Totals.NoShow++
			case ticket.StatusDone:
				r.Totals.Done++
			default:
				r.Totals.Pending++
			}
			if t.Unassigned() {
				r.Totals.Unassigned++
			}
		}

		start := t.Start
		if opts.Location != nil {
			start = start.In(opts.Location)
		}
		weekday := int(start.Weekday())
		hour := start.Hour()
		r.ByWeekday[weekday].Total++
		r.ByHour[hour].Total++
		if t.AdHoc() {
			r.ByWeekday[weekday].AdHoc++
			r.ByHour[hour].AdHoc++
		}

		for _, a := range t.Attendees {
			key := strings.ToLower(a.Email)
			row, ok := stats[key]
			if !ok {
				if !inDomain(a.Email, opts.OrgDomain) {
					continue
				}
				row = &TechnicianStats{
					Email:      a.Email,
					Name:       ticket.AttendeeName(a),
					Historical: true,
				}
				stats[key] = row
				order = append(order, key)
			}
			row.Total++
			switch t.Status {
			case ticket.StatusInProgress:
				row.InProgress++
			case ticket.StatusNoShow:
				row.NoShow++
			case ticket.StatusDone:
				row.Done++
			default:
				row.Pending++
			}
		}
	}

	if r.Totals.Total > 0 {
		r.Totals.NoShowRate = float64(r.Totals.NoShow) / float64(r.Totals.Total) * 100
		r.Totals.CompletionRate = float64(r.Totals.Done) / float64(r.Totals.Total) * 100
	}

	r.Technicians = make([]TechnicianStats, 0, len(order))
	for _, key := range order {
		row := stats[key]
		if row.Total > 0 {
			row.Efficiency = float64(row.Done) / float64(row.Total) * 100
		}
		r.Technicians = append(r.Technicians, *row)
	}
	rank(r.Technicians, opts.RankBy)
	return r
}

func rank(rows []TechnicianStats, by RankBy) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if by == RankByVolume {
			if a.Total != b.Total {
				return a.Total > b.Total
			}
			return a.Efficiency > b.Efficiency
		}
		if a.Efficiency != b.Efficiency {
			return a.Efficiency > b.Efficiency
		}
		return a.Total > b.Total
	})
}

func inDomain(email, domain string) bool {
	if domain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain))
}
