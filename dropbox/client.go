package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the root of the Dropbox API v2 routes.
	DefaultBaseURL = "https://api.dropboxapi.com/2"
	// DefaultUserAgent is sent on every request unless overridden.
	DefaultUserAgent = "paperbox/1.0"

	// ArgHeader carries the JSON argument of upload and download calls.
	ArgHeader = "Dropbox-API-Arg"
	// ResultHeader carries the JSON result of download calls.
	ResultHeader = "Dropbox-API-Result"
)

type style int

const (
	styleRPC style = iota
	styleUpload
	styleDownload
)

func (s style) String() string {
	switch s {
	case styleUpload:
		return "upload"
	case styleDownload:
		return "download"
	default:
		return "rpc"
	}
}

// credentials authorize an outgoing request.
type credentials interface {
	apply(req *http.Request)
}

type bearerToken string

func (t bearerToken) apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+string(t))
}

type appCredentials struct {
	key    string
	secret string
}

func (a appCredentials) apply(req *http.Request) {
	req.SetBasicAuth(a.key, a.secret)
}

// Client issues authenticated Dropbox API calls. The credential it holds is
// never modified after construction, so a Client can be shared freely between
// goroutines and namespace clients.
type Client struct {
	creds      credentials
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
	validate   *validator.Validate
}

// New creates a client that authenticates with an OAuth2 bearer token.
func New(accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrInvalidConfig)
	}
	return newClient(bearerToken(accessToken), opts...)
}

// NewAppClient creates a client that authenticates as the app itself using
// HTTP basic auth, as required by app-level routes such as token migration.
func NewAppClient(appKey, appSecret string, opts ...Option) (*Client, error) {
	if appKey == "" || appSecret == "" {
		return nil, fmt.Errorf("%w: app key and secret are required", ErrInvalidConfig)
	}
	return newClient(appCredentials{key: appKey, secret: appSecret}, opts...)
}

func newClient(creds credentials, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := url.ParseRequestURI(o.baseURL); err != nil {
		return nil, fmt.Errorf("%w: base URL: %v", ErrInvalidConfig, err)
	}

	httpClient := &http.Client{}
	if o.httpClient != nil {
		// Copy so that instrumentation never mutates the caller's client.
		c := *o.httpClient
		httpClient = &c
	}
	if o.timeout > 0 {
		httpClient.Timeout = o.timeout
	}
	if o.registerer != nil {
		rt, err := instrumentTransport(o.registerer, httpClient.Transport)
		if err != nil {
			return nil, err
		}
		httpClient.Transport = rt
	}

	return &Client{
		creds:      creds,
		baseURL:    o.baseURL,
		userAgent:  o.userAgent,
		httpClient: httpClient,
		logger:     o.logger,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Logger returns the logger the client traces requests with.
func (c *Client) Logger() zerolog.Logger {
	return c.logger
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// validateArg runs struct tag validation on arg. Non-struct arguments pass.
func (c *Client) validateArg(arg any) error {
	if arg == nil {
		return nil
	}
	v := reflect.ValueOf(arg)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	if err := c.validate.Struct(v.Interface()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

// newRequest builds the HTTP request for route. Validation and serialization
// happen here, so any failure is reported before the network is touched.
func (c *Client) newRequest(ctx context.Context, st style, route string, arg any, content io.Reader) (*http.Request, error) {
	if err := c.validateArg(arg); err != nil {
		return nil, err
	}

	endpoint, err := url.JoinPath(c.baseURL, route)
	if err != nil {
		return nil, &TransportError{Op: "build url", Err: err}
	}

	var req *http.Request
	switch st {
	case styleRPC:
		body, err := json.Marshal(arg)
		if err != nil {
			return nil, &TransportError{Op: "encode request body", Err: err}
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, &TransportError{Op: "create request", Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
	default:
		header, err := EncodeArg(arg)
		if err != nil {
			return nil, &TransportError{Op: "encode " + ArgHeader, Err: err}
		}
		if content == nil {
			content = http.NoBody
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, content)
		if err != nil {
			return nil, &TransportError{Op: "create request", Err: err}
		}
		if st == styleUpload {
			req.Header.Set("Content-Type", "application/octet-stream")
		}
		req.Header.Set(ArgHeader, header)
	}

	c.creds.apply(req)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// send performs req. The caller owns the response body.
func (c *Client) send(req *http.Request, st style, route string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("route", route).
			Str("style", st.String()).
			Msg("Dropbox API request failed")
		return nil, &TransportError{Op: "send request", Err: err}
	}

	c.logger.Debug().
		Str("route", route).
		Str("style", st.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Dropbox API request")

	return resp, nil
}
