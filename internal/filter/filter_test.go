package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardapioweb/activation-board/internal/ticket"
)

func tk(id, summary string, start time.Time, attendees ...string) ticket.Ticket {
	t := ticket.Ticket{ID: id, Summary: summary, Start: start, Status: ticket.Classify(summary)}
	for _, email := range attendees {
		t.Attendees = append(t.Attendees, ticket.Attendee{Email: email})
	}
	return t
}

var noon = time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

func TestApplyBlacklistDropsMatches(t *testing.T) {
	tickets := []ticket.Ticket{
		tk("1", "Pizzaria Bella", noon),
		tk("2", "OCUPADO - reunião interna", noon),
		tk("3", "Almoço", noon),
	}

	got := ApplyBlacklist(tickets, []string{"ocupado", "almoço"})
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)
}

func TestApplyBlacklistFallbackOnlyWhenEmpty(t *testing.T) {
	tickets := []ticket.Ticket{
		tk("1", "Pizzaria Bella", noon),
		tk("2", "ocupado", noon),
		tk("3", "sem ativação hoje", noon),
	}

	got := ApplyBlacklist(tickets, nil)
	require.Len(t, got, 1)

	// A configured blacklist replaces the fallback entirely.
	got = ApplyBlacklist(tickets, []string{"pizzaria"})
	require.Len(t, got, 2)
}

func TestApplyBlacklistNeverGrowsVisibleSet(t *testing.T) {
	tickets := []ticket.Ticket{
		tk("1", "Pizzaria Bella", noon),
		tk("2", "Hamburgueria Central", noon),
		tk("3", "Sushi Já", noon),
	}

	base := ApplyBlacklist(tickets, []string{"xyz"})
	narrowed := ApplyBlacklist(tickets, []string{"xyz", "sushi"})
	require.LessOrEqual(t, len(narrowed), len(base))
	for _, n := range narrowed {
		require.Contains(t, base, n)
	}
}

func TestToggleSelectsAndClears(t *testing.T) {
	sel := Selection{NoTechnicianOnly: true}

	sel = Toggle(sel, "ana.lima@cardapioweb.com")
	require.Equal(t, []string{"ana.lima@cardapioweb.com"}, sel.Technicians)
	require.False(t, sel.NoTechnicianOnly)

	sel = Toggle(sel, "ana.lima@cardapioweb.com")
	require.Empty(t, sel.Technicians)
}

func TestToggleNoTechnicianClearsSelection(t *testing.T) {
	sel := Selection{Technicians: []string{"ana.lima@cardapioweb.com"}}

	sel = ToggleNoTechnician(sel)
	require.True(t, sel.NoTechnicianOnly)
	require.Empty(t, sel.Technicians)

	sel = ToggleNoTechnician(sel)
	require.False(t, sel.NoTechnicianOnly)
}

func TestToggleAllRoundTrip(t *testing.T) {
	roster := []string{"ana.lima@cardapioweb.com", "bruno.costa@cardapioweb.com"}

	sel := ToggleAll(Selection{}, roster)
	require.Equal(t, roster, sel.Technicians)

	sel = ToggleAll(sel, roster)
	require.Empty(t, sel.Technicians)
}

func TestVisibleBySelection(t *testing.T) {
	tickets := []ticket.Ticket{
		tk("1", "Pizzaria Bella", noon, "dono@pizzariabella.com.br", "ana.lima@cardapioweb.com"),
		tk("2", "Hamburgueria Central", noon, "chefe@hamburgueria.com.br", "bruno.costa@cardapioweb.com"),
		tk("3", "Sushi Já", noon, "contato@sushija.com.br"),
		tk("4", "Açaí do Porto", noon),
	}

	all := Visible(tickets, Selection{}, noon)
	require.Len(t, all, 4)

	ana := Visible(tickets, Selection{Technicians: []string{"ana.lima@cardapioweb.com"}}, noon)
	require.Len(t, ana, 1)
	require.Equal(t, "1", ana[0].ID)

	unassigned := Visible(tickets, Selection{NoTechnicianOnly: true}, noon)
	require.Len(t, unassigned, 2)
	require.Equal(t, "3", unassigned[0].ID)
	require.Equal(t, "4", unassigned[1].ID)
}

func TestVisibleFromNow(t *testing.T) {
	tickets := []ticket.Ticket{
		tk("past", "Pizzaria Bella", noon.Add(-time.Hour)),
		tk("now", "Hamburgueria Central", noon),
		tk("future", "Sushi Já", noon.Add(time.Hour)),
	}

	got := Visible(tickets, Selection{FromNowOnly: true}, noon)
	require.Len(t, got, 2)
	require.Equal(t, "now", got[0].ID)
	require.Equal(t, "future", got[1].ID)
}

func TestCountByTechnicianIgnoresSelection(t *testing.T) {
	roster := []string{"ana.lima@cardapioweb.com", "bruno.costa@cardapioweb.com", "carla.souza@cardapioweb.com"}
	tickets := []ticket.Ticket{
		tk("1", "Pizzaria Bella", noon.Add(-time.Hour), "dono@pizzariabella.com.br", "ana.lima@cardapioweb.com"),
		tk("2", "Hamburgueria Central", noon.Add(time.Hour), "chefe@hamburgueria.com.br", "ana.lima@cardapioweb.com"),
		tk("3", "Sushi Já", noon.Add(time.Hour), "contato@sushija.com.br", "bruno.costa@cardapioweb.com"),
	}

	counts := CountByTechnician(tickets, roster, false, noon)
	require.Equal(t, 2, counts["ana.lima@cardapioweb.com"])
	require.Equal(t, 1, counts["bruno.costa@cardapioweb.com"])
	require.Equal(t, 0, counts["carla.souza@cardapioweb.com"])

	fromNow := CountByTechnician(tickets, roster, true, noon)
	require.Equal(t, 1, fromNow["ana.lima@cardapioweb.com"])
}
