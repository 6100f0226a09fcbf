// Package boardconfig loads and persists the two mutable configuration
// lists against the key-value collaborator: the technician roster and the
// summary-keyword blacklist.
package boardconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/cardapioweb/activation-board/internal/store"
)

const (
	keyRoster    = "config:roster"
	keyBlacklist = "config:blacklist"
)

// Defaults used when the store is unreachable or a key was never written.
// The dashboard must stay usable on stale configuration rather than block.
var (
	DefaultRoster = []string{
		"mickael.maciel@cardapioweb.com",
		"samara.patricio@cardapioweb.com",
		"thalysson.lucas@cardapioweb.com",
		"carlos.isaac@cardapioweb.com",
		"gustavo.ribeiro@cardapioweb.com",
		"nicolas.alves@cardapioweb.com",
	}
	DefaultBlacklist = []string{"ocupado", "🟣", "[sup]", "sem ativação", "almoço"}
)

// KV is the boundary to the external key-value collaborator.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Config is the pair of lists the board runs on. Roster order is
// meaningful: "select all" follows it.
type Config struct {
	Roster    []string `json:"roster"`
	Blacklist []string `json:"blacklist"`
}

// Update carries a partial write; nil fields are left untouched in the
// store.
type Update struct {
	Roster    *[]string `json:"roster,omitempty"`
	Blacklist *[]string `json:"blacklist,omitempty"`
}

// Client reads and writes board configuration.
type Client struct {
	kv KV
}

// NewClient wraps a KV collaborator.
func NewClient(kv KV) *Client {
	return &Client{kv: kv}
}

// Load fetches both lists. A missing key or an unreachable store degrades
// to the defaults; Load never fails the caller.
func (c *Client) Load(ctx context.Context) Config {
	return Config{
		Roster:    c.loadList(ctx, keyRoster, DefaultRoster),
		Blacklist: c.loadList(ctx, keyBlacklist, DefaultBlacklist),
	}
}

func (c *Client) loadList(ctx context.Context, key string, fallback []string) []string {
	raw, err := c.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return append([]string(nil), fallback...)
	}
	if err != nil {
		log.Printf("boardconfig: %s unavailable, using defaults: %v", key, err)
		return append([]string(nil), fallback...)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Printf("boardconfig: %s malformed, using defaults: %v", key, err)
		return append([]string(nil), fallback...)
	}
	if list == nil {
		list = []string{}
	}
	return list
}

// Save persists the fields present in the update.
func (c *Client) Save(ctx context.Context, update Update) error {
	if update.Roster != nil {
		if err := c.saveList(ctx, keyRoster, *update.Roster); err != nil {
			return err
		}
	}
	if update.Blacklist != nil {
		if err := c.saveList(ctx, keyBlacklist, *update.Blacklist); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) saveList(ctx context.Context, key string, list []string) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
