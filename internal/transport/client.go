// Package transport is the single configured HTTP client used to reach the
// finchat backend. It attaches the stored bearer credential to outgoing
// requests and invalidates it when the backend answers 401.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/model"
)

// CredentialProvider supplies the credential to attach to a request.
type CredentialProvider interface {
	Credential(ctx context.Context) (model.Credential, error)
}

// CredentialInvalidator drops the stored credential after a 401.
type CredentialInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Doer is implemented by Client; consumers depend on it so tests can
// substitute their own.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Config configures a Client.
type Config struct {
	Credentials CredentialProvider
	Invalidator CredentialInvalidator
	HTTPClient  *http.Client
	Hooks       Hooks
	BaseURL     string
	Timeout     time.Duration
}

// Client sends requests relative to a base URL.
type Client struct {
	credentials CredentialProvider
	invalidator CredentialInvalidator
	httpClient  *http.Client
	baseURL     *url.URL
	hooks       Hooks
}

// Request describes one backend call.
type Request struct {
	Header    http.Header
	Body      any // JSON-encoded when non-nil
	Method    string
	Path      string
	FileField string
	Files     []FilePart // sent as multipart/form-data when non-empty
	// NoInvalidate keeps the stored credential when the answer is 401.
	// Used for login and registration, where 401 means bad credentials.
	NoInvalidate bool
}

// Response is a fully read backend response.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

var _ Doer = (*Client)(nil)

// NewClient creates a transport client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL", common.ErrMissingConfig)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", common.ErrInvalidConfig, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:     base,
		httpClient:  httpClient,
		credentials: cfg.Credentials,
		invalidator: cfg.Invalidator,
		hooks:       cfg.Hooks,
	}, nil
}

// ResolveURL joins path onto the base URL.
func (c *Client) ResolveURL(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// Do sends req and returns the response when the status is 2xx. Any other
// outcome is a *common.RequestError. There is no retry at this layer.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	c.attachCredential(ctx, httpReq)

	c.hooks.request(httpReq)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.hooks.failure(httpReq, err)
		return nil, &common.RequestError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.hooks.failure(httpReq, err)
		return nil, &common.RequestError{Method: req.Method, Path: req.Path, StatusCode: resp.StatusCode, Err: err}
	}

	c.hooks.response(httpReq, resp, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && !req.NoInvalidate {
		c.invalidate(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &common.RequestError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Payload:    body,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case len(req.Files) > 0:
		buf, ct, err := encodeMultipart(req.FileField, req.Files)
		if err != nil {
			return nil, &common.RequestError{Method: method, Path: req.Path, Err: err}
		}
		body, contentType = buf, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.ResolveURL(req.Path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	return httpReq, nil
}

func (c *Client) attachCredential(ctx context.Context, httpReq *http.Request) {
	if c.credentials == nil {
		return
	}

	cred, err := c.credentials.Credential(ctx)
	if err != nil {
		slog.Warn("Failed to read credential, sending request without it", "error", err)
		return
	}
	if cred.IsZero() {
		return
	}

	cred.OAuth2().SetAuthHeader(httpReq)
}

func (c *Client) invalidate(ctx context.Context) {
	if c.invalidator == nil {
		return
	}

	// The caller's context may already be done; clearing must still happen.
	if err := c.invalidator.Invalidate(context.WithoutCancel(ctx)); err != nil {
		slog.Error("Failed to invalidate credential after 401", "error", err)
		return
	}
	slog.Info("Session expired, credential cleared")
}
