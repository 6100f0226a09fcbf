package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cardapioweb/activation-board/internal/boardconfig"
	"github.com/cardapioweb/activation-board/internal/calendar"
	"github.com/cardapioweb/activation-board/internal/calsync"
	"github.com/cardapioweb/activation-board/internal/ticket"
	"github.com/cardapioweb/activation-board/internal/ws"
)

var startTime = time.Now()

// BoardEngine is the slice of the sync engine the handlers use.
type BoardEngine interface {
	Snapshot() []ticket.Ticket
	Status() (calsync.State, time.Time, error)
	MoveStatus(ctx context.Context, id string, status ticket.Status) error
	AddAttendee(ctx context.Context, id, email string) error
	RemoveAttendee(ctx context.Context, id, email string) error
	Create(ctx context.Context, req calsync.CreateRequest) (ticket.Ticket, error)
	ReloadConfig(ctx context.Context) boardconfig.Config
	RunOnce(ctx context.Context, background bool) ([]ticket.Ticket, error)
}

// TicketSource serves the stateless ticket and report queries.
type TicketSource interface {
	List(ctx context.Context, q calendar.Query) ([]ticket.Ticket, error)
}

// ConfigStore reads and writes the board configuration.
type ConfigStore interface {
	Load(ctx context.Context) boardconfig.Config
	Save(ctx context.Context, update boardconfig.Update) error
}

// Deps wires the router's collaborators.
type Deps struct {
	Engine    BoardEngine
	Source    TicketSource
	Configs   ConfigStore
	Hub       *ws.Hub
	OrgDomain string
	Location  *time.Location
	Now       func() time.Time
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func NewRouter(deps Deps) http.Handler {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handleHealth)
	r.Get("/", handleRoot)
	if deps.Hub != nil {
		r.Handle("/ws", &ws.Handler{Hub: deps.Hub})
	}

	tickets := &TicketHandler{
		Engine:   deps.Engine,
		Source:   deps.Source,
		Configs:  deps.Configs,
		Location: deps.Location,
		Now:      deps.Now,
	}
	r.Get("/api/tickets", tickets.List)
	r.Patch("/api/tickets", tickets.Update)
	r.Post("/api/tickets", tickets.Create)

	board := &BoardHandler{Engine: deps.Engine, Configs: deps.Configs, Now: deps.Now}
	r.Get("/api/board", board.Get)

	configs := &ConfigHandler{Configs: deps.Configs, Engine: deps.Engine}
	r.Get("/api/config", configs.Get)
	r.Post("/api/config", configs.Set)

	reports := &ReportHandler{
		Source:    deps.Source,
		Configs:   deps.Configs,
		OrgDomain: deps.OrgDomain,
		Location:  deps.Location,
		Now:       deps.Now,
	}
	r.Get("/api/reports", reports.Get)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Version:   getVersion(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{
		"name":   "Activation Board",
		"health": "/health",
	})
}

func getVersion() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
