// Package shoplo implements a client for the Shoplo e-commerce platform
// REST API. Every shop is a tenant with its own subdomain, so a Client is
// bound to one shop at construction and authenticates with HTTP basic auth.
package shoplo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shoplo-hq/shoplo-go/pkg/httpclient"
)

// Version identifies this library in the default User-Agent header.
const Version = "1.0.0"

const (
	// apiHostSuffix completes the per-shop API host, e.g. acme.api.shoplo.com.
	apiHostSuffix = ".api.shoplo.com"

	// legacyContentType is the content type the platform expects on every
	// request. It is not a registered MIME type but the API checks for it.
	legacyContentType = "multiform/post-data"

	// maxRedirects caps how many redirect hops a single call may follow.
	maxRedirects = 5

	// requestTimeout bounds a single call end to end.
	requestTimeout = 30 * time.Second
)

// defaultUserAgent is sent when the caller does not supply an agent.
const defaultUserAgent = "shoplo-go/" + Version

// Logger is the minimal logging surface the client uses for wire
// diagnostics. *zap.SugaredLogger satisfies it.
type Logger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

// Config carries the identity and credentials for one shop.
type Config struct {
	// Shop is the tenant subdomain, e.g. "acme" for acme.api.shoplo.com.
	Shop string

	// Username and APIKey form the basic auth pair issued per shop.
	// APIKey may be empty for endpoints that only check the username.
	Username string
	APIKey   string

	// UserAgent overrides the library's default identification header.
	UserAgent string

	// Secure switches the base URL to https. The platform default is
	// plain http, matching its legacy integrations.
	Secure bool

	// ResponseFormat is "json" or "xml"; empty selects json.
	ResponseFormat string

	// Logger, when set, receives transport-level diagnostics.
	Logger Logger
}

// Client performs authenticated calls against one shop's API.
//
// A Client is not safe for concurrent use: the fluent setters and the
// last-response field mutate shared state without locking. Callers that
// need parallel requests should build one Client per goroutine.
type Client struct {
	http            *resty.Client
	baseURL         string
	format          string
	processResponse bool
	lastResponse    any
}

// New builds a Client for the shop named in cfg. Construction performs no
// network I/O; bad credentials only surface on the first call.
func New(cfg Config) (*Client, error) {
	shop := strings.TrimSpace(cfg.Shop)
	if shop == "" {
		return nil, errors.New("shop is required")
	}
	format := strings.ToLower(strings.TrimSpace(cfg.ResponseFormat))
	if format == "" {
		format = FormatJSON
	}
	if !isSupportedFormat(format) {
		return nil, fmt.Errorf("%w %q", ErrInvalidFormat, cfg.ResponseFormat)
	}

	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}
	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = defaultUserAgent
	}

	hc := httpclient.NewRestyHTTPClient(requestTimeout)
	hc.SetBasicAuth(cfg.Username, cfg.APIKey)
	hc.SetHeader("User-Agent", agent)
	hc.SetHeader("Content-Type", legacyContentType)
	hc.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	hc.SetDisableWarn(true)
	if cfg.Logger != nil {
		hc.SetLogger(cfg.Logger)
	}

	return &Client{
		http:            hc,
		baseURL:         scheme + "://" + shop + apiHostSuffix,
		format:          format,
		processResponse: true,
	}, nil
}

// BaseURL returns the shop's API root, e.g. "https://acme.api.shoplo.com".
func (c *Client) BaseURL() string { return c.baseURL }

// HTTPClient exposes the underlying resty client so callers can tune the
// transport (proxies, TLS config) before issuing requests.
func (c *Client) HTTPClient() *resty.Client { return c.http }

// SetResponseFormat switches the format requested from the API and used to
// decode bodies. It returns the client for chaining and ErrInvalidFormat
// for anything other than "json" or "xml", leaving the format unchanged.
func (c *Client) SetResponseFormat(format string) (*Client, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if !isSupportedFormat(normalized) {
		return c, fmt.Errorf("%w %q", ErrInvalidFormat, format)
	}
	c.format = normalized
	return c, nil
}

// ResponseFormat returns the format sent in the Accept header.
func (c *Client) ResponseFormat() string { return c.format }

// SetProcessResponse toggles automatic decoding of response bodies. With
// processing off, calls return the raw body string. Returns the client
// for chaining.
func (c *Client) SetProcessResponse(process bool) *Client {
	c.processResponse = process
	return c
}

// LastResponse returns the body of the most recent call, decoded when
// processing is on. Every call overwrites it; a call that fails in the
// transport leaves the previous value in place, and one that fails during
// decoding leaves the raw body.
func (c *Client) LastResponse() any { return c.lastResponse }

// EndpointURL resolves path against the shop's base URL with exactly one
// separating slash. Absolute http/https URLs pass through unchanged so
// callers can follow links returned by the API.
func (c *Client) EndpointURL(path string) string {
	if isAbsoluteURL(path) {
		return path
	}
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// isAbsoluteURL reports whether raw already carries an http or https scheme.
func isAbsoluteURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Execute performs one API call and returns the decoded body, or the raw
// string when processing is off. Only GET, POST, PUT and DELETE are
// accepted; anything else fails with ErrUnsupportedMethod before touching
// the network. Data is form-encoded under a single "data" key and only
// sent with POST and PUT.
//
// HTTP status codes are not inspected: a 4xx or 5xx response with a body
// decodes like any other, and the caller checks the payload for
// application-level errors. Only transport failures return a
// *TransportError. A nil ctx is treated as context.Background.
func (c *Client) Execute(ctx context.Context, method, path string, data map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	verb := strings.ToUpper(strings.TrimSpace(method))
	switch verb {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedMethod, method)
	}

	endpoint := c.EndpointURL(path)
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/"+c.format)
	if verb == http.MethodPost || verb == http.MethodPut {
		if body := encodeFormData(data); body != "" {
			req.SetBody(body)
		}
	}

	resp, err := req.Execute(verb, endpoint)
	if err != nil {
		return nil, &TransportError{Method: verb, URL: endpoint, Err: err}
	}

	raw := resp.String()
	c.lastResponse = raw
	if !c.processResponse {
		return raw, nil
	}
	decoded, err := decodeBody(c.format, raw)
	if err != nil {
		return nil, err
	}
	c.lastResponse = decoded
	return decoded, nil
}

// Get fetches path.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	return c.Execute(ctx, http.MethodGet, path, nil)
}

// Post creates a resource at path from data.
func (c *Client) Post(ctx context.Context, path string, data map[string]any) (any, error) {
	return c.Execute(ctx, http.MethodPost, path, data)
}

// Put updates the resource at path from data.
func (c *Client) Put(ctx context.Context, path string, data map[string]any) (any, error) {
	return c.Execute(ctx, http.MethodPut, path, data)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) (any, error) {
	return c.Execute(ctx, http.MethodDelete, path, nil)
}
