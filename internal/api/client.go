package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Executor is the contract the domain facades depend on. *Client implements
// it; tests substitute counting fakes.
type Executor interface {
	Do(ctx context.Context, method, endpoint string, body any) (Response, error)
	Upload(ctx context.Context, method, endpoint string, form Form) (Response, error)
}

// Pinger performs a bare reachability request and reports the HTTP status.
type Pinger interface {
	Ping(ctx context.Context, rawURL string) (int, error)
}

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

// Ensure Client implements Executor and Pinger at compile time.
var (
	_ Executor = (*Client)(nil)
	_ Pinger   = (*Client)(nil)
)

// Client talks to the remote administration API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	timeout   time.Duration
	tokens    TokenSource
	log       zerolog.Logger
}

const (
	defaultUserAgent = "bodega/0.1"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 10 << 20
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTokenSource attaches a bearer token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client rooted at baseURL (e.g. "https://host/api").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		timeout:   defaultTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Response is a successful (2xx) reply with its raw body.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the body into dest, classifying failures as UnexpectedFormat.
func (r Response) Decode(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return &Error{Kind: KindUnexpectedFormat, Status: r.Status, Message: "Respuesta inesperada del servidor", Err: err}
	}
	return nil
}

// Do sends an optional JSON body to endpoint and returns the parsed reply.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any) (Response, error) {
	if c == nil {
		return Response{}, fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/json")
	return c.execute(ctx, method, endpoint, reader, header)
}

// FormFile is one file part of a multipart upload.
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Form is a multipart payload: plain fields plus files.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// Upload submits form as multipart/form-data. Only Accept is set explicitly;
// the content type comes from the multipart writer so it carries the boundary.
func (c *Client) Upload(ctx context.Context, method, endpoint string, form Form) (Response, error) {
	if c == nil {
		return Response{}, fmt.Errorf("client is nil")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range form.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return Response{}, fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	for _, f := range form.Files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return Response{}, fmt.Errorf("create form file %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return Response{}, fmt.Errorf("copy form file %s: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return Response{}, fmt.Errorf("close multipart: %w", err)
	}
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", mw.FormDataContentType())
	return c.execute(ctx, method, endpoint, &buf, header)
}

// Ping issues a GET against rawURL (absolute, or relative to the base URL)
// and returns the status code without interpreting the body. The caller's
// context bounds the request.
func (c *Client) Ping(ctx context.Context, rawURL string) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	target, err := c.resolve(rawURL)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}

func (c *Client) execute(ctx context.Context, method, endpoint string, body io.Reader, header http.Header) (Response, error) {
	op := method + " " + endpoint
	target, err := c.resolve(endpoint)
	if err != nil {
		return Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header = header
	req.Header.Set("User-Agent", c.userAgent)
	if c.tokens != nil {
		if tok := strings.TrimSpace(c.tokens.Token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := transportError(ctx, op, err)
		c.log.Debug().Str("op", op).Str("kind", apiErr.Kind.String()).Dur("elapsed", time.Since(start)).Err(err).Msg("request failed")
		return Response{}, apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, transportError(ctx, op, err)
	}
	c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request finished")

	return interpret(op, resp, raw)
}

// interpret negotiates the body by content type and maps non-2xx statuses.
func interpret(op string, resp *http.Response, raw []byte) (Response, error) {
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	isJSON := strings.Contains(contentType, "json")
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	trimmed := bytes.TrimSpace(raw)

	if !isJSON && len(trimmed) > 0 {
		if bytes.Contains(bytes.ToLower(trimmed), []byte("<html")) {
			return Response{}, &Error{
				Kind:    KindServerError,
				Op:      op,
				Status:  resp.StatusCode,
				Message: "El servidor respondió con una página HTML: el endpoint es incorrecto o la petición fue rechazada por CORS",
			}
		}
		if ok {
			return Response{}, &Error{
				Kind:    KindUnexpectedFormat,
				Op:      op,
				Status:  resp.StatusCode,
				Message: "Respuesta inesperada del servidor: " + truncate(string(trimmed), 120),
			}
		}
	}

	if !ok {
		return Response{}, errorFromBody(op, resp.StatusCode, resp.Status, trimmed, isJSON)
	}

	if isJSON && len(trimmed) > 0 && !json.Valid(trimmed) {
		return Response{}, &Error{
			Kind:    KindServerError,
			Op:      op,
			Status:  resp.StatusCode,
			Message: "El servidor devolvió una respuesta malformada",
		}
	}

	return Response{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: trimmed}, nil
}

func transportError(ctx context.Context, op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Message: "La solicitud excedió el tiempo de espera", Err: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Message: "La solicitud excedió el tiempo de espera", Err: err}
	}
	return &Error{Kind: KindNetworkUnavailable, Op: op, Message: "No se pudo conectar con el servidor", Err: err}
}

func (c *Client) resolve(endpoint string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if rel.IsAbs() {
		return rel, nil
	}
	out := *c.baseURL
	out.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(rel.Path, "/")
	out.RawQuery = rel.RawQuery
	return &out, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
