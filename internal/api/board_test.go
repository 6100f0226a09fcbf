package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardapioweb/activation-board/internal/calsync"
	"github.com/cardapioweb/activation-board/internal/ticket"
)

func TestBoardReturnsSnapshotAndCounts(t *testing.T) {
	engine := &fakeEngine{
		state:      calsync.StateReady,
		lastUpdate: testNow,
		snapshot: []ticket.Ticket{
			tk("1", "Pizzaria Bella", testNow, "dono@pizzariabella.com.br", "ana.lima@cardapioweb.com"),
			tk("2", "Hamburgueria Central", testNow),
		},
	}
	router := newTestRouter(engine, &fakeSource{}, &fakeConfigs{})

	rec := doRequest(t, router, http.MethodGet, "/api/board", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, calsync.StateReady, resp.State)
	require.NotNil(t, resp.LastUpdate)
	require.Len(t, resp.Tickets, 2)
	require.Equal(t, 1, resp.Counts["ana.lima@cardapioweb.com"])
}

func TestBoardSelectionFilters(t *testing.T) {
	engine := &fakeEngine{
		state: calsync.StateReady,
		snapshot: []ticket.Ticket{
			tk("1", "Pizzaria Bella", testNow, "dono@pizzariabella.com.br", "ana.lima@cardapioweb.com"),
			tk("2", "Hamburgueria Central", testNow),
		},
	}
	router := newTestRouter(engine, &fakeSource{}, &fakeConfigs{})

	rec := doRequest(t, router, http.MethodGet, "/api/board?technicians=ana.lima@cardapioweb.com", nil)
	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tickets, 1)
	require.Equal(t, "1", resp.Tickets[0].ID)
	// Counts stay selection-independent.
	require.Equal(t, 1, resp.Counts["ana.lima@cardapioweb.com"])

	rec = doRequest(t, router, http.MethodGet, "/api/board?noTechnician=true", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tickets, 1)
	require.Equal(t, "2", resp.Tickets[0].ID)
}

func TestBoardFromNowFilter(t *testing.T) {
	engine := &fakeEngine{
		state: calsync.StateReady,
		snapshot: []ticket.Ticket{
			tk("past", "Pizzaria Bella", testNow.Add(-time.Hour)),
			tk("future", "Hamburgueria Central", testNow.Add(time.Hour)),
		},
	}
	router := newTestRouter(engine, &fakeSource{}, &fakeConfigs{})

	rec := doRequest(t, router, http.MethodGet, "/api/board?fromNow=true", nil)
	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tickets, 1)
	require.Equal(t, "future", resp.Tickets[0].ID)
}

func TestBoardSurfacesLastError(t *testing.T) {
	engine := &fakeEngine{
		state:   calsync.StateReady,
		lastErr: errors.New("calendar down"),
	}
	router := newTestRouter(engine, &fakeSource{}, &fakeConfigs{})

	rec := doRequest(t, router, http.MethodGet, "/api/board", nil)
	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "calendar down", resp.LastError)
	require.NotNil(t, resp.Tickets)
	require.Nil(t, resp.LastUpdate)
}
