package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/securelay/api/internal/domain"
)

// Version is the Securelay API release whose endpoint descriptor is loaded
// by default.
const Version = "0.0.5"

// DefaultDirectoryURL is where New fetches the endpoint directory from.
var DefaultDirectoryURL = "https://cdn.jsdelivr.net/gh/securelay/api@v" + Version + "/endpoints.json"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client talks to Securelay through the endpoints of its directory.
// It is safe for concurrent use.
type Client struct {
	dir     *Directory
	keyring *Keyring
	rnd     Rand
	HTTP    *http.Client
	log     *zap.Logger

	directoryURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTP = hc
		}
	}
}

// WithRand sets the randomness used for endpoint and mirror selection.
func WithRand(r Rand) Option {
	return func(c *Client) {
		if r != nil {
			c.rnd = r
		}
	}
}

// WithLogger sets a logger for request tracing. The default logs nothing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithKeyring shares an existing keyring with the client.
func WithKeyring(k *Keyring) Option {
	return func(c *Client) {
		if k != nil {
			c.keyring = k
		}
	}
}

// WithDirectoryURL overrides where New loads the endpoint directory from.
func WithDirectoryURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.directoryURL = u
		}
	}
}

func newClient(opts []Option) *Client {
	c := &Client{
		keyring:      NewKeyring(),
		rnd:          globalRand{},
		HTTP:         http.DefaultClient,
		log:          zap.NewNop(),
		directoryURL: DefaultDirectoryURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New loads the endpoint directory and returns a ready client.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	c := newClient(opts)
	body, err := c.do(ctx, 0, http.MethodGet, c.directoryURL, "", nil)
	if err != nil {
		return nil, fmt.Errorf("load endpoint directory: %w", err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode endpoint directory: %w", err)
	}
	dir, err := NewDirectory(raw)
	if err != nil {
		return nil, err
	}
	c.dir = dir
	c.log.Debug("endpoint directory loaded", zap.Int("endpoints", len(dir.ids)))
	return c, nil
}

// NewWithDirectory returns a client over an already loaded directory.
func NewWithDirectory(dir *Directory, opts ...Option) (*Client, error) {
	if dir == nil || len(dir.ids) == 0 {
		return nil, errEmptyDirectory
	}
	c := newClient(opts)
	c.dir = dir
	return c, nil
}

// Directory returns the client's endpoint directory.
func (c *Client) Directory() *Directory { return c.dir }

// Keyring returns the client's keyring.
func (c *Client) Keyring() *Keyring { return c.keyring }

// Endpoint returns a base URL and the endpoint ID it belongs to. An empty id
// picks a random endpoint. Nothing is cached: every call draws again.
func (c *Client) Endpoint(id domain.EndpointID) (string, domain.EndpointID, error) {
	return c.dir.resolve(id, c.rnd)
}

// do sends one request and returns the response body of a 2xx reply.
// A non-zero timeout bounds the call on top of ctx; a negative one has
// already elapsed.
func (c *Client) do(
	ctx context.Context,
	timeout time.Duration,
	method, u, contentType string,
	body []byte,
) ([]byte, error) {
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Prefer the context's verdict so callers can errors.Is it.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("relay %s %s: %w", method, req.URL.Host, ctxErr)
		}
		return nil, err
	}
	defer resp.Body.Close()

	c.log.Debug("relay request",
		zap.String("method", method),
		zap.String("host", req.URL.Host),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{
			Method: method,
			URL:    redact(req),
			Code:   resp.StatusCode,
			Status: resp.Status,
		}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("relay %s %s: %w", method, req.URL.Host, ctxErr)
		}
		return nil, err
	}
	return b, nil
}

// redact drops the query, which may carry a password.
func redact(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

// rawJSON returns b as a JSON value, or nil when the relay sent no body.
func rawJSON(b []byte) (json.RawMessage, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, nil
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("relay: response is not valid JSON")
	}
	return json.RawMessage(b), nil
}

var _ domain.RelayClient = (*Client)(nil)
