package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultUserAgent = "sessioncli"
	HeaderRequestID  = "X-Request-Id"
)

// Logger receives diagnostic lines from the client. *output.Printer satisfies it.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}

// Response is a reply as read off the wire.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Request    *Request
}

// Interceptor observes the outcome of every request sent through Client.Do
// and may replace it. resp is non-nil whenever a reply arrived, even on error.
type Interceptor func(ctx context.Context, req *Request, resp *Response, err error) (*Response, error)

type registration struct {
	id   uint64
	name string
	fn   Interceptor
}

// Client is the shared transport for the backend. Build one per process and
// pass it around; it is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	jar        http.CookieJar
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     Logger

	withCreds *http.Client
	noCreds   *http.Client

	mu           sync.RWMutex
	interceptors []registration
	nextID       uint64
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// NewClient creates a new API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.jar == nil {
		c.jar = c.httpClient.Jar
	}
	if c.jar == nil {
		// cookiejar.New only fails on a bad PublicSuffixList.
		c.jar, _ = cookiejar.New(nil)
	}

	withCreds := *c.httpClient
	withCreds.Jar = c.jar
	noCreds := *c.httpClient
	noCreds.Jar = nil
	c.withCreds = &withCreds
	c.noCreds = &noCreds
	return c
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url = strings.TrimRight(strings.TrimSpace(url), "/"); url != "" {
			c.baseURL = url
		}
	}
}

// WithCookieJar sets the jar that carries session credentials.
func WithCookieJar(jar http.CookieJar) ClientOption {
	return func(c *Client) { c.jar = jar }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimiter paces outgoing requests. A nil limiter disables pacing.
func WithRateLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// BaseURL returns the address every request path is joined onto.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Use registers an interceptor under name. A second registration under the
// same name replaces the first, so attaching twice never stacks handlers.
// The returned func detaches this registration only.
func (c *Client) Use(name string, fn Interceptor) (detach func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	reg := registration{id: c.nextID, name: name, fn: fn}

	replaced := false
	for i, r := range c.interceptors {
		if r.name == name {
			c.interceptors[i] = reg
			replaced = true
			break
		}
	}
	if !replaced {
		c.interceptors = append(c.interceptors, reg)
	}

	return func() { c.remove(reg.id) }
}

// Interceptors returns the names of the registered interceptors in order.
func (c *Client) Interceptors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.interceptors))
	for i, r := range c.interceptors {
		names[i] = r.name
	}
	return names
}

func (c *Client) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.interceptors {
		if r.id == id {
			c.interceptors = append(c.interceptors[:i:i], c.interceptors[i+1:]...)
			return
		}
	}
}

// chain returns a snapshot so registrations made mid-flight don't affect
// requests already being handled.
func (c *Client) chain() []registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]registration(nil), c.interceptors...)
}

// Do sends req and runs the outcome through every registered interceptor.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.Send(ctx, req)
	for _, r := range c.chain() {
		resp, err = r.fn(ctx, req, resp, err)
	}
	return resp, err
}

// Get issues a credentialed GET through Do.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	req, err := NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Send performs req without interceptors. Non-2xx replies return both the
// Response and an *APIError; no reply at all returns a *TransportError.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Request: req, Err: err}
		}
	}

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(c.baseURL), bodyReader)
	if err != nil {
		return nil, &TransportError{Request: req, Err: err}
	}

	httpReq.Header.Set("Accept", "application/json")
	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.RequestID != "" {
		httpReq.Header.Set(HeaderRequestID, req.RequestID)
	}
	for k, vals := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}

	hc := c.noCreds
	if req.Credentials {
		hc = c.withCreds
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Request: req, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Request: req, Err: err}
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Request:    req,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &APIError{
			StatusCode: resp.StatusCode,
			Envelope:   decodeFailure(body),
			Request:    req,
		}
	}
	return out, nil
}

// Call sends a credentialed request through Do and decodes the envelope.
func Call[T any](ctx context.Context, c *Client, method, path string, body interface{}) (*Envelope[T], error) {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return Decode[T](resp)
}
