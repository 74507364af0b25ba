// Package client talks to the session persistence API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/session-editor/internal/auth"
	"github.com/debemdeboas/session-editor/internal/config"
	"github.com/debemdeboas/session-editor/internal/model"
	"github.com/debemdeboas/session-editor/internal/routes"
)

const maxErrorBody = 4 << 10
const maxResponseBody = 1 << 20

type Client struct {
	baseURL      string
	resourcePath string

	httpClient *http.Client
	timeout    time.Duration
	authorizer auth.Authorizer
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithAuthorizer(a auth.Authorizer) Option {
	return func(c *Client) { c.authorizer = a }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL, resourcePath string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		resourcePath: "/" + strings.Trim(resourcePath, "/"),
		httpClient:   &http.Client{},
		authorizer:   auth.None{},
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get loads the session stored under id.
func (c *Client) Get(ctx context.Context, id model.SessionID) (model.Record, error) {
	var rec model.Record
	err := c.do(ctx, http.MethodGet, c.endpoint("/"+url.PathEscape(string(id))), nil, &rec)
	if err != nil {
		return model.Record{}, fmt.Errorf("get session %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}

// SaveDraft upserts rec; an empty ID creates a new session.
func (c *Client) SaveDraft(ctx context.Context, rec model.Record) (model.Record, error) {
	out, err := c.save(ctx, routes.SaveDraft, rec)
	if err != nil {
		return model.Record{}, fmt.Errorf("save draft: %w", err)
	}
	return out, nil
}

func (c *Client) Publish(ctx context.Context, rec model.Record) (model.Record, error) {
	out, err := c.save(ctx, routes.Publish, rec)
	if err != nil {
		return model.Record{}, fmt.Errorf("publish: %w", err)
	}
	return out, nil
}

// save posts rec and overlays whatever the server echoes back on it, so an
// empty body or a bare {"id": ...} both yield a complete record.
func (c *Client) save(ctx context.Context, suffix string, rec model.Record) (model.Record, error) {
	out := rec
	if err := c.do(ctx, http.MethodPost, c.endpoint(suffix), rec, &out); err != nil {
		return model.Record{}, err
	}
	return out, nil
}

func (c *Client) endpoint(suffix string) string {
	return c.baseURL + c.resourcePath + suffix
}

func (c *Client) do(ctx context.Context, method, target string, body any, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(config.HAccept, config.CTypeJSON)
	req.Header.Set(config.HUserAgent, config.UserAgent)
	if body != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}

	if err := c.authorizer.Authorize(ctx, req); err != nil {
		return fmt.Errorf("authorize request: %w", err)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer res.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", res.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API request")

	if res.StatusCode == http.StatusUnauthorized {
		c.authorizer.Reset()
		return ErrUnauthenticated
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
