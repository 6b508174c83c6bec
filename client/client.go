package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// Requests that outlive this fail with a timeout kind instead of
	// hanging their caller.
	defaultTimeout = 20 * time.Second

	refreshPath  = "/auth/refresh"
	identityPath = "/users/me"
)

// Client is the shared HTTP client every API call flows through. It carries
// the session cookies, applies the fixed timeout and runs the refresh-replay
// policy on 401s.
type Client struct {
	http    *http.Client
	baseURL string

	// refreshGroup collapses concurrent 401s into a single in-flight
	// refresh call shared by all waiters.
	refreshGroup singleflight.Group

	// atLoginRoot reports whether the UI currently sits on the login
	// root, where a 401 means "not signed in yet", not "session lost".
	atLoginRoot func() bool
	// onAuthLost navigates the UI to the login root after an
	// unrecoverable session loss.
	onAuthLost func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Mostly for tests; the
// cookie jar is preserved unless the replacement brings its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

// WithLoginRootCheck installs the login-root predicate.
func WithLoginRootCheck(fn func() bool) Option {
	return func(c *Client) { c.atLoginRoot = fn }
}

// WithAuthLostHandler installs the navigation hook invoked when the session
// cannot be recovered.
func WithAuthLostHandler(fn func()) Option {
	return func(c *Client) { c.onAuthLost = fn }
}

// New creates a client for the given API base URL, for example
// "https://api.example.com/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		atLoginRoot: func() bool { return false },
		onAuthLost:  func() {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// do runs one logical request through the refresh-replay policy. The retried
// flag is explicit and local, so a replay can never trigger a second refresh.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindUnknown, cause: err}
		}
	}

	err := c.send(ctx, method, path, payload, out)
	if err == nil {
		return nil
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		return err
	}

	// A failing refresh call is never retried with another refresh; the
	// session is gone and the UI goes back to the login root.
	if path == refreshPath {
		c.onAuthLost()
		return err
	}

	// One silent refresh, then one replay. Skipped for the identity
	// bootstrap call (expected to 401 for anonymous users) and while the
	// UI already sits on the login root.
	if apiErr.StatusCode == http.StatusUnauthorized && path != identityPath && !c.atLoginRoot() {
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			c.onAuthLost()
			return refreshErr
		}
		return c.send(ctx, method, path, payload, out)
	}

	return err
}

// refresh calls the refresh endpoint, deduplicating concurrent attempts:
// simultaneous 401s all wait on one refresh call and share its outcome.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.send(ctx, http.MethodPost, refreshPath, nil, nil)
	})
	return err
}

// errorEnvelope is the body every non-2xx response carries.
type errorEnvelope struct {
	Detail string `json:"detail"`
}

// send performs a single HTTP exchange with no retry logic.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return &APIError{Kind: KindUnknown, cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: transportKind(err), cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Decode the error envelope once, here, and nowhere else.
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{
			Kind:       statusKind(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Detail:     envelope.Detail,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Kind: KindUnknown, cause: err}
		}
	}
	return nil
}
