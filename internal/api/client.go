package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error taxonomy for the read-only surface. Callers branch with errors.Is;
// none of these is ever fatal to the process.
var (
	// ErrUnavailable: the request was rejected, timed out, or returned a
	// non-success status. Retried implicitly by the next poll tick.
	ErrUnavailable = errors.New("api: server unavailable")
	// ErrMalformed: the response arrived but failed schema validation.
	ErrMalformed = errors.New("api: malformed payload")
	// ErrNotAvailable: the server explicitly reported that results do not
	// exist yet for the current run.
	ErrNotAvailable = errors.New("api: results not yet available")
	// ErrNotFound: the server explicitly reported an unknown run id.
	ErrNotFound = errors.New("api: run not found")
)

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 8 << 20 // cap on any single response body
)

// Client talks to the simulation server's REST surface. All methods are
// read-only and safe to call from any goroutine.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// NewClient builds a client for the given base URL ("http://host:port").
func NewClient(base string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: defaultTimeout},
		log:  log,
	}
}

// State fetches the current simulation snapshot.
func (c *Client) State(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.get(ctx, "/api/state", nil, compiledState, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// RecentEvents fetches the n most recent events. The window is always fetched
// fresh; the client never accumulates events across polls.
func (c *Client) RecentEvents(ctx context.Context, n int) ([]EventRecord, error) {
	var body struct {
		Events []EventRecord `json:"events"`
	}
	q := url.Values{"n": []string{strconv.Itoa(n)}}
	if err := c.get(ctx, "/api/events", q, compiledEvents, &body); err != nil {
		return nil, err
	}
	return body.Events, nil
}

// Results fetches the current run's attack progress report. Returns
// ErrNotAvailable when the server signals there is nothing to report yet.
func (c *Client) Results(ctx context.Context) (*ResultsSnapshot, error) {
	return c.results(ctx, "/api/results", ErrNotAvailable)
}

// Runs fetches the archived run list.
func (c *Client) Runs(ctx context.Context) ([]RunSummary, error) {
	var body struct {
		Runs []RunSummary `json:"runs"`
	}
	if err := c.get(ctx, "/api/runs", nil, compiledRuns, &body); err != nil {
		return nil, err
	}
	return body.Runs, nil
}

// RunResults fetches the stored report for a specific archived run. Returns
// ErrNotFound when the server does not know the id.
func (c *Client) RunResults(ctx context.Context, runID string) (*ResultsSnapshot, error) {
	return c.results(ctx, "/api/runs/"+url.PathEscape(runID)+"/results", ErrNotFound)
}

func (c *Client) results(ctx context.Context, path string, missing error) (*ResultsSnapshot, error) {
	raw, err := c.fetch(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	// A 2xx payload carrying an "error" field is the server's explicit
	// "nothing here" indicator, distinct from a malformed response.
	var probe struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &probe) == nil && probe.Error != "" {
		return nil, fmt.Errorf("%w: %s", missing, probe.Error)
	}
	var res ResultsSnapshot
	if err := decodeValidated(raw, compiledResults, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// get fetches path, schema-checks the body and decodes it into out.
func (c *Client) get(ctx context.Context, path string, q url.Values, schema *jsonschema.Schema, out any) error {
	raw, err := c.fetch(ctx, path, q)
	if err != nil {
		return err
	}
	return decodeValidated(raw, schema, out)
}

func (c *Client) fetch(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Debug("non-success status", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return raw, nil
}

// decodeValidated is the single place payload structure is checked.
func decodeValidated(raw []byte, schema *jsonschema.Schema, out any) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
