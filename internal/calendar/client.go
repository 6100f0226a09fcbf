// Package calendar is the client for the external calendar collaborator,
// the authoritative store for every ticket on the board.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cardapioweb/activation-board/internal/ticket"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/calendar/v3"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultTimezone = "America/Sao_Paulo"

	maxResults = 2500

	fieldsFull   = "items(id,summary,description,attendees,start,created)"
	fieldsReport = "items(id,summary,attendees,start,created)"
)

// Credentials is the OAuth2 refresh-token grant the collaborator expects.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Option configures a Client.
type Option func(*Client)

// Client talks to the calendar collaborator over REST.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	tokenURL   string
	calendarID string
	creds      Credentials
	timezone   string
	now        func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient builds a client for one calendar.
func NewClient(calendarID string, creds Credentials, options ...Option) (*Client, error) {
	if strings.TrimSpace(calendarID) == "" {
		return nil, fmt.Errorf("calendar id is required")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokenURL:   defaultTokenURL,
		calendarID: calendarID,
		creds:      creds,
		timezone:   defaultTimezone,
		now:        time.Now,
	}
	client.baseURL, _ = url.Parse(defaultBaseURL)

	for _, option := range options {
		option(client)
	}
	return client, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if parsed, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && parsed.Host != "" {
			c.baseURL = parsed
		}
	}
}

// WithTokenURL points the OAuth2 exchange at a different endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(tokenURL) != "" {
			c.tokenURL = tokenURL
		}
	}
}

// WithTimezone sets the civil timezone attached to created events.
func WithTimezone(tz string) Option {
	return func(c *Client) {
		if strings.TrimSpace(tz) != "" {
			c.timezone = tz
		}
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Query selects which events List fetches.
type Query struct {
	Window Window
	// Report requests the lighter payload without descriptions.
	Report bool
}

// List fetches the events inside the query window, decoded into tickets.
// Events without a parsable start are dropped.
func (c *Client) List(ctx context.Context, q Query) ([]ticket.Ticket, error) {
	fields := fieldsFull
	if q.Report {
		fields = fieldsReport
	}

	params := url.Values{}
	params.Set("timeMin", q.Window.Min.Format(time.RFC3339))
	params.Set("timeMax", q.Window.Max.Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")
	params.Set("maxResults", fmt.Sprint(maxResults))
	params.Set("fields", fields)

	body, err := c.do(ctx, http.MethodGet, c.eventsPath()+"?"+params.Encode(), nil, "list events")
	if err != nil {
		return nil, err
	}

	var list eventList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("list events: %w: %v", ErrMalformed, err)
	}

	tickets := make([]ticket.Ticket, 0, len(list.Items))
	for _, ev := range list.Items {
		if t, ok := FromEvent(ev); ok {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

// Patch applies a partial update to one event.
func (c *Client) Patch(ctx context.Context, eventID string, patch EventPatch) error {
	if strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("patch event: event id is required")
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("patch event: %w", err)
	}
	_, err = c.do(ctx, http.MethodPatch, c.eventsPath()+"/"+url.PathEscape(eventID), payload, "patch event")
	return err
}

// Insert creates an event and returns it decoded, with the id the
// collaborator assigned.
func (c *Client) Insert(ctx context.Context, insert EventInsert) (ticket.Ticket, error) {
	payload, err := json.Marshal(map[string]any{
		"summary":     insert.Summary,
		"description": insert.Description,
		"start":       EventDateTime{DateTime: insert.Start, TimeZone: c.timezone},
		"end":         EventDateTime{DateTime: insert.End, TimeZone: c.timezone},
		"attendees":   insert.Attendees,
	})
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("insert event: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.eventsPath(), payload, "insert event")
	if err != nil {
		return ticket.Ticket{}, err
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return ticket.Ticket{}, fmt.Errorf("insert event: %w: %v", ErrMalformed, err)
	}
	created, ok := FromEvent(ev)
	if !ok {
		return ticket.Ticket{}, fmt.Errorf("insert event: %w: created event has no start", ErrMalformed)
	}
	return created, nil
}

func (c *Client) eventsPath() string {
	return "/calendars/" + url.PathEscape(c.calendarID) + "/events"
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, op string) ([]byte, error) {
	requestURL := strings.TrimRight(c.baseURL.String(), "/") + endpoint

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(op, resp.StatusCode, responseBody)
	}
	return responseBody, nil
}

// token returns a cached access token, refreshing it when expired. With no
// credentials configured the request goes out unauthenticated, which is
// what local fakes expect.
func (c *Client) token(ctx context.Context) (string, error) {
	if c.creds.RefreshToken == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)
	form.Set("refresh_token", c.creds.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus("refresh token", resp.StatusCode, body)
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return "", fmt.Errorf("refresh token: %w: %v", ErrMalformed, err)
	}
	if tokenResponse.AccessToken == "" {
		return "", fmt.Errorf("refresh token: %w: empty access token", ErrMalformed)
	}

	c.accessToken = tokenResponse.AccessToken
	// Refresh a little early so an in-flight request never carries an
	// expired token.
	c.tokenExpiry = c.now().Add(time.Duration(tokenResponse.ExpiresIn)*time.Second - 30*time.Second)
	return c.accessToken, nil
}
