package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cardapioweb/activation-board/internal/calendar"
	"github.com/cardapioweb/activation-board/internal/filter"
	"github.com/cardapioweb/activation-board/internal/report"
)

// ReportHandler aggregates a window of tickets into the performance
// report. Uses the lighter fields selection on the calendar query.
type ReportHandler struct {
	Source    TicketSource
	Configs   ConfigStore
	OrgDomain string
	Location  *time.Location
	Now       func() time.Time
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	window, err := calendar.ResolveWindow(
		strings.TrimSpace(query.Get("view")),
		strings.TrimSpace(query.Get("start")),
		strings.TrimSpace(query.Get("end")),
		h.Now(),
		h.Location,
	)
	if err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rankBy := report.RankByEfficiency
	switch strings.TrimSpace(query.Get("rankBy")) {
	case "", string(report.RankByEfficiency):
	case string(report.RankByVolume):
		rankBy = report.RankByVolume
	default:
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rankBy"})
		return
	}

	fetched, err := h.Source.List(r.Context(), calendar.Query{Window: window, Report: true})
	if err != nil {
		sendJSON(w, remoteErrorStatus(err), errorResponse{Error: err.Error()})
		return
	}

	cfg := h.Configs.Load(r.Context())
	tickets := filter.ApplyBlacklist(fetched, cfg.Blacklist)

	sendJSON(w, http.StatusOK, report.Aggregate(tickets, report.Options{
		Roster:    cfg.Roster,
		OrgDomain: h.OrgDomain,
		RankBy:    rankBy,
		Location:  h.Location,
	}))
}
