// Package planapi talks to the admin plan REST resource.
//
//	GET    {base}       list all plans
//	POST   {base}       create
//	PUT    {base}{id}/  full replace
//	DELETE {base}{id}/  remove
package planapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/plandesk/internal/plan"
)

const (
	// DefaultBaseURL matches the development backend the admin panel ships against.
	DefaultBaseURL = "http://127.0.0.1:8000/api/admin/plan/"
	// DefaultTimeout bounds each request when no override is configured.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 512
)

// Client issues plan requests against a single base URL.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	userAgent string
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero disables the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(ua)
	}
}

// New validates baseURL and returns a client. The base always ends in "/".
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("planapi: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("planapi: base url %q must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("planapi: base url %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c := &Client{
		base:      u,
		http:      http.DefaultClient,
		timeout:   DefaultTimeout,
		userAgent: "plandesk",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the normalized collection URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// List fetches the whole collection in server order. An empty or null body
// is an empty collection.
func (c *Client) List(ctx context.Context) ([]plan.Plan, error) {
	var plans []plan.Plan
	err := c.do(ctx, http.MethodGet, c.collectionURL(), nil, &plans)
	if err != nil && !errors.Is(err, ErrEmptyBody) {
		return nil, err
	}
	if plans == nil {
		plans = []plan.Plan{}
	}
	return plans, nil
}

// Create submits a new plan and returns the record with its server-assigned id.
// A success response without a record is ErrEmptyBody.
func (c *Client) Create(ctx context.Context, in plan.Input) (plan.Plan, error) {
	var created plan.Plan
	if err := c.do(ctx, http.MethodPost, c.collectionURL(), in, &created); err != nil {
		return plan.Plan{}, err
	}
	return created, nil
}

// Update replaces the plan with the given id.
func (c *Client) Update(ctx context.Context, id int64, in plan.Input) (plan.Plan, error) {
	var updated plan.Plan
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), in, &updated); err != nil {
		return plan.Plan{}, err
	}
	return updated, nil
}

// Delete removes the plan. Any response body is ignored.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) collectionURL() string {
	return c.base.String()
}

func (c *Client) itemURL(id int64) string {
	return c.base.JoinPath(strconv.FormatInt(id, 10)).String() + "/"
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("planapi: encode %s %s: %w", method, target, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("planapi: build %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("planapi: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrEmptyBody
		}
		return fmt.Errorf("planapi: decode %s %s: %w", method, target, err)
	}
	return nil
}
