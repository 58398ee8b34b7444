package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/s1natex/taskboard-GO/internal/tasks"
)

const (
	DefaultBaseURL = "https://reqres.in/api"

	// accent color given to tasks synthesized from remote users
	remoteColor = "#764ba2"

	minPlaceholderBudget = 100
	maxPlaceholderBudget = 10000
)

// Client mirrors tasks to a reqres-style users API. Every call is a single
// HTTP round trip with no retry. The remote side is never authoritative.
type Client struct {
	baseURL    string
	apiKey     string
	owner      string
	httpClient *http.Client
	now        func() time.Time
	budget     func() float64
}

type Option func(*Client)

func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// WithBudget replaces the placeholder budget generator used by List.
func WithBudget(fn func() float64) Option { return func(c *Client) { c.budget = fn } }

func NewClient(baseURL, owner string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		owner:   owner,
		// no Timeout: the caller's context decides how long a call may hang
		httpClient: &http.Client{},
		now:        time.Now,
		budget: func() float64 {
			return float64(minPlaceholderBudget + rand.IntN(maxPlaceholderBudget-minPlaceholderBudget+1))
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Record is what the remote side echoes back for a created task.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type remoteUser struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type usersPage struct {
	Data []remoteUser `json:"data"`
}

// List fetches remote users and maps each one to a task-shaped record.
func (c *Client) List(ctx context.Context) ([]tasks.Task, error) {
	ctx, span := otel.Tracer("mirror").Start(ctx, "mirror.list", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, err := c.do(ctx, "list", http.MethodGet, "/users", nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, err
	}

	var page usersPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &RemoteError{Op: "list", Err: fmt.Errorf("parse users: %w", err)}
	}

	start := c.now().Truncate(time.Minute)
	out := make([]tasks.Task, 0, len(page.Data))
	for _, u := range page.Data {
		out = append(out, tasks.Task{
			ID:          fmt.Sprintf("remote-%d", u.ID),
			UserID:      c.owner,
			Important:   tasks.Important,
			Title:       strings.TrimSpace(u.FirstName + " " + u.LastName),
			Description: u.Email,
			Color:       remoteColor,
			StartDate:   start,
			Status:      tasks.StatusNew,
			Budget:      c.budget(),
		})
	}
	span.SetAttributes(attribute.Int("mirror.count", len(out)))
	return out, nil
}

// Create posts t to the remote side.
func (c *Client) Create(ctx context.Context, t tasks.Task) (Record, error) {
	ctx, span := otel.Tracer("mirror").Start(ctx, "mirror.create", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("task.id", t.ID))

	payload, err := json.Marshal(t)
	if err != nil {
		return Record{}, &RemoteError{Op: "create", Err: err}
	}
	body, err := c.do(ctx, "create", http.MethodPost, "/users", payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return Record{}, err
	}

	// The remote accepted the task; an odd body only costs the record details.
	rec, err := parseRecord(body)
	if err != nil {
		span.RecordError(fmt.Errorf("parse record: %w", err))
	}
	return rec, nil
}

// parseRecord reads the echo of a create. The id may be a string or a
// number and createdAt may be missing or in any format.
func parseRecord(body []byte) (Record, error) {
	var raw struct {
		ID        any    `json:"id"`
		CreatedAt string `json:"createdAt"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Record{}, err
	}

	var rec Record
	if raw.ID != nil {
		rec.ID = fmt.Sprint(raw.ID)
	}
	if raw.CreatedAt == "" {
		return rec, nil
	}
	created, err := time.Parse(time.RFC3339Nano, raw.CreatedAt)
	if err != nil {
		return rec, err
	}
	rec.CreatedAt = created
	return rec, nil
}

// Clear reports whether the remote collection was cleared. The remote API
// has no bulk delete, so there is nothing to call and it always succeeds.
func (c *Client) Clear(ctx context.Context) bool {
	_, span := otel.Tracer("mirror").Start(ctx, "mirror.clear", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	return true
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode}
	}
	return body, nil
}
