package calsync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cardapioweb/activation-board/internal/boardconfig"
	"github.com/cardapioweb/activation-board/internal/calendar"
	"github.com/cardapioweb/activation-board/internal/filter"
	"github.com/cardapioweb/activation-board/internal/ticket"
)

// ErrNotLoaded is returned when a fetch is requested before configuration
// has been loaded at least once.
var ErrNotLoaded = errors.New("calsync: configuration not loaded")

// ErrUnknownTicket is returned by mutations targeting an id that is not in
// the current snapshot.
var ErrUnknownTicket = errors.New("calsync: unknown ticket")

// Source is the slice of the calendar client the engine uses.
type Source interface {
	List(ctx context.Context, q calendar.Query) ([]ticket.Ticket, error)
	Patch(ctx context.Context, eventID string, patch calendar.EventPatch) error
	Insert(ctx context.Context, insert calendar.EventInsert) (ticket.Ticket, error)
}

// ConfigLoader supplies roster and blacklist configuration.
type ConfigLoader interface {
	Load(ctx context.Context) boardconfig.Config
}

// Notifier receives board events from the engine. Refreshed fires after
// every successful fetch; NewArrivals fires at most once per background
// tick, only when unseen pending tickets appeared.
type Notifier interface {
	Refreshed(total int, updatedAt time.Time)
	NewArrivals(count int)
}

type stdIntervalTicker struct {
	ticker *time.Ticker
}

func (t stdIntervalTicker) C() <-chan time.Time { return t.ticker.C }
func (t stdIntervalTicker) Stop()               { t.ticker.Stop() }

// Engine keeps a live snapshot of the board window in sync with the
// calendar service.
type Engine struct {
	source   Source
	configs  ConfigLoader
	notifier Notifier
	schedule Schedule
	loc      *time.Location

	now       func() time.Time
	newTicker func(s Schedule) intervalTicker

	mu            sync.Mutex
	state         State
	cfg           boardconfig.Config
	cfgLoaded     bool
	view          string
	rangeStart    string
	rangeEnd      string
	snapshot      []ticket.Ticket
	prev          []ticket.Ticket
	lastUpdate    time.Time
	lastErr       error
	firstLoadDone bool
}

// Option adjusts Engine construction.
type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithSchedule(s Schedule) Option {
	return func(e *Engine) { e.schedule = s }
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func withTicker(newTicker func(s Schedule) intervalTicker) Option {
	return func(e *Engine) { e.newTicker = newTicker }
}

func NewEngine(source Source, configs ConfigLoader, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		configs:  configs,
		schedule: Schedule{interval: DefaultInterval},
		loc:      time.Local,
		now:      time.Now,
		state:    StateIdle,
		view:     calendar.ViewDay,
	}
	e.newTicker = func(s Schedule) intervalTicker {
		if s.cron != nil {
			return newScheduleTicker(s, e.now)
		}
		interval := s.interval
		if interval <= 0 {
			interval = DefaultInterval
		}
		return stdIntervalTicker{ticker: time.NewTicker(interval)}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReloadConfig pulls configuration from the loader. The engine stays Idle
// until this has happened once.
func (e *Engine) ReloadConfig(ctx context.Context) boardconfig.Config {
	cfg := e.configs.Load(ctx)

	e.mu.Lock()
	e.cfg = cfg
	e.cfgLoaded = true
	e.state = transition(e.state, eventConfigLoaded)
	e.mu.Unlock()

	return cfg
}

// SetWindow changes the window the engine polls. An explicit start/end
// pair overrides the named view.
func (e *Engine) SetWindow(view, rangeStart, rangeEnd string) {
	e.mu.Lock()
	e.view = view
	e.rangeStart = rangeStart
	e.rangeEnd = rangeEnd
	e.mu.Unlock()
}

// Start loads configuration, performs a foreground fetch, then keeps
// polling in the background until ctx is done.
func (e *Engine) Start(ctx context.Context) {
	if e == nil || e.source == nil || e.configs == nil {
		return
	}

	e.ReloadConfig(ctx)
	if _, err := e.RunOnce(ctx, false); err != nil {
		log.Printf("calsync: initial fetch failed: %v", err)
	}

	ticker := e.newTicker(e.schedule)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			_, _ = e.RunOnce(ctx, true)
		}
	}
}

// RunOnce performs a single fetch of the current window. Background ticks
// swallow failures into lastErr and leave the snapshot untouched;
// foreground fetches additionally mark the first load as done, which arms
// new-arrival notifications for later background ticks.
func (e *Engine) RunOnce(ctx context.Context, background bool) ([]ticket.Ticket, error) {
	e.mu.Lock()
	if !e.cfgLoaded {
		e.mu.Unlock()
		return nil, ErrNotLoaded
	}
	view, rangeStart, rangeEnd := e.view, e.rangeStart, e.rangeEnd
	blacklist := append([]string(nil), e.cfg.Blacklist...)
	e.mu.Unlock()

	window, err := calendar.ResolveWindow(view, rangeStart, rangeEnd, e.now(), e.loc)
	if err != nil {
		return nil, err
	}

	fetched, err := e.source.List(ctx, calendar.Query{Window: window})
	if err != nil {
		e.mu.Lock()
		e.lastErr = err
		e.state = transition(e.state, eventFetchFailed)
		e.mu.Unlock()
		if background {
			log.Printf("calsync: background fetch failed: %v", err)
		}
		return nil, err
	}

	filtered := filter.ApplyBlacklist(fetched, blacklist)

	e.mu.Lock()
	arrivals := countNewArrivals(e.prev, filtered)
	notify := background && e.firstLoadDone && arrivals > 0
	e.prev = cloneTickets(filtered)
	e.snapshot = cloneTickets(filtered)
	e.lastUpdate = e.now()
	e.lastErr = nil
	e.state = transition(e.state, eventFetchSucceeded)
	if !background {
		e.firstLoadDone = true
	}
	updatedAt := e.lastUpdate
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.Refreshed(len(filtered), updatedAt)
		if notify {
			e.notifier.NewArrivals(arrivals)
		}
	}
	return cloneTickets(filtered), nil
}

// Snapshot returns a copy of the current board.
func (e *Engine) Snapshot() []ticket.Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTickets(e.snapshot)
}

// Status reports the engine's lifecycle state, last successful update and
// last fetch error.
func (e *Engine) Status() (State, time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.lastUpdate, e.lastErr
}

// Config returns the config loaded by the most recent ReloadConfig.
func (e *Engine) Config() boardconfig.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return boardconfig.Config{
		Roster:    append([]string(nil), e.cfg.Roster...),
		Blacklist: append([]string(nil), e.cfg.Blacklist...),
	}
}

// countNewArrivals counts pending tickets in next whose id was absent
// from prev.
func countNewArrivals(prev, next []ticket.Ticket) int {
	seen := make(map[string]struct{}, len(prev))
	for _, t := range prev {
		seen[t.ID] = struct{}{}
	}
	count := 0
	for _, t := range next {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		if t.Status == ticket.StatusPending {
			count++
		}
	}
	return count
}

func cloneTickets(tickets []ticket.Ticket) []ticket.Ticket {
	if tickets == nil {
		return nil
	}
	out := make([]ticket.Ticket, len(tickets))
	copy(out, tickets)
	for i := range out {
		if out[i].Attendees != nil {
			out[i].Attendees = append([]ticket.Attendee(nil), out[i].Attendees...)
		}
	}
	return out
}

func indexByID(tickets []ticket.Ticket, id string) int {
	for i := range tickets {
		if tickets[i].ID == id {
			return i
		}
	}
	return -1
}
