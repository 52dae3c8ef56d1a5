package requestconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hilthontt/devtea/api-sdk/internal"
	"github.com/hilthontt/devtea/api-sdk/internal/apierror"
	"github.com/tidwall/gjson"
)

const (
	DefaultMaxAttempts    = 3
	DefaultRequestTimeout = 10 * time.Second
	DefaultRetryDelay     = time.Second
	MaxRetryDelay         = 5 * time.Second
)

// This interface is primarily used to describe an [*http.Client], but also
// supports custom HTTP implementations.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestConfig represents all the state related to one request.
//
// Editing the variables inside RequestConfig directly is unstable api. Prefer
// composing the RequestOption instead if possible.
type RequestConfig struct {
	MaxAttempts    int
	RequestTimeout time.Duration
	RetryDelay     time.Duration
	Context        context.Context
	Method         string
	Path           string
	BaseURL        *url.URL
	// DefaultBaseURL will be used if BaseURL is not explicitly overridden using
	// WithBaseURL.
	DefaultBaseURL *url.URL
	CustomHTTPDoer HTTPDoer
	HTTPClient     *http.Client
	Middlewares    []middleware
	Header         http.Header
	Body           []byte
	// If ResponseBodyInto not nil, then we will attempt to deserialize into
	// ResponseBodyInto. If Destination is a *[]byte, then it will return the
	// body as is.
	ResponseBodyInto any
	// ResponseInto copies the \*http.Response of the corresponding request into the
	// given address
	ResponseInto **http.Response
	// Attempts records how many round trips the request took.
	Attempts int
}

// middleware is exactly the same type as the Middleware type found in the [option] package,
// but it is redeclared here for circular dependency issues.
type middleware = func(*http.Request, middlewareNext) (*http.Response, error)

// middlewareNext is exactly the same type as the MiddlewareNext type found in the [option] package,
// but it is redeclared here for circular dependency issues.
type middlewareNext = func(*http.Request) (*http.Response, error)

type RequestOption interface {
	Apply(*RequestConfig) error
}

type RequestOptionFunc func(*RequestConfig) error

func (s RequestOptionFunc) Apply(r *RequestConfig) error {
	return s(r)
}

func getDefaultHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", fmt.Sprintf("DevTea/Client %s", internal.PackageVersion))
	h.Set("Accept", "application/json")
	for k, v := range getPlatformProperties() {
		h.Set(k, v)
	}
	return h
}

func getNormalizedOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "MacOS"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	default:
		return fmt.Sprintf("Other:%s", runtime.GOOS)
	}
}

func getPlatformProperties() map[string]string {
	return map[string]string{
		"X-DevTea-Lang":            "go",
		"X-DevTea-Package-Version": internal.PackageVersion,
		"X-DevTea-OS":              getNormalizedOS(),
		"X-DevTea-Runtime-Version": runtime.Version(),
	}
}

func NewRequestConfig(ctx context.Context, method, path string, body, dst any, opts ...RequestOption) (*RequestConfig, error) {
	var encoded []byte
	if body != nil {
		var err error
		if encoded, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	defaultBaseURL, _ := url.Parse("http://localhost:8080/api/")

	cfg := &RequestConfig{
		MaxAttempts:      DefaultMaxAttempts,
		RequestTimeout:   DefaultRequestTimeout,
		RetryDelay:       DefaultRetryDelay,
		Context:          ctx,
		Method:           method,
		Path:             path,
		DefaultBaseURL:   defaultBaseURL,
		HTTPClient:       http.DefaultClient,
		Header:           getDefaultHeaders(),
		Body:             encoded,
		ResponseBodyInto: dst,
	}
	if encoded != nil {
		cfg.Header.Set("Content-Type", "application/json")
	}

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *RequestConfig) Apply(opts ...RequestOption) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.Apply(cfg); err != nil {
			return err
		}
	}
	return nil
}

// URL resolves Path against the configured base.
func (cfg *RequestConfig) URL() (*url.URL, error) {
	base := cfg.BaseURL
	if base == nil {
		base = cfg.DefaultBaseURL
	}
	return base.Parse(cfg.Path)
}

// backOff waits RetryDelay before the second attempt and doubles up to
// MaxRetryDelay after that.
func (cfg *RequestConfig) backOff() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.RetryDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         MaxRetryDelay,
	}
	b.Reset()
	return b
}

func (cfg *RequestConfig) Execute() error {
	target, err := cfg.URL()
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", cfg.Path, err)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	body, err := backoff.Retry(cfg.Context, func() ([]byte, error) {
		cfg.Attempts++
		return cfg.attempt(target)
	},
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(uint(maxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}

	return cfg.decode(body)
}

// attempt performs one round trip. Every failure that is not a transport
// error is wrapped as permanent so that it stops the retry loop.
func (cfg *RequestConfig) attempt(target *url.URL) ([]byte, error) {
	if err := cfg.Context.Err(); err != nil {
		return nil, backoff.Permanent(err)
	}

	ctx, cancel := context.WithTimeout(cfg.Context, cfg.RequestTimeout)
	defer cancel()

	var reader io.Reader
	if cfg.Body != nil {
		reader = bytes.NewReader(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, target.String(), reader)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header = cfg.Header.Clone()

	resp, err := cfg.roundTrip(req)
	if err != nil {
		if cfg.Context.Err() != nil {
			return nil, backoff.Permanent(cfg.Context.Err())
		}
		return nil, cfg.transportError(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if cfg.Context.Err() != nil {
			return nil, backoff.Permanent(cfg.Context.Err())
		}
		return nil, cfg.transportError(0, err)
	}

	if cfg.ResponseInto != nil {
		*cfg.ResponseInto = resp
	}

	return body, classify(cfg, resp.StatusCode, body)
}

func (cfg *RequestConfig) roundTrip(req *http.Request) (*http.Response, error) {
	var doer HTTPDoer = cfg.HTTPClient
	if cfg.CustomHTTPDoer != nil {
		doer = cfg.CustomHTTPDoer
	}

	handler := doer.Do
	for i := len(cfg.Middlewares) - 1; i >= 0; i-- {
		mw, next := cfg.Middlewares[i], handler
		handler = func(r *http.Request) (*http.Response, error) {
			return mw(r, next)
		}
	}
	return handler(req)
}

func (cfg *RequestConfig) transportError(status int, err error) error {
	return &apierror.TransportError{
		Method:     cfg.Method,
		Path:       cfg.Path,
		StatusCode: status,
		Err:        err,
	}
}

// classify turns a response into nil, a retryable TransportError or a
// permanent CommandError.
func classify(cfg *RequestConfig, status int, body []byte) error {
	envelope := gjson.ValidBytes(body) && gjson.GetBytes(body, "success").Exists()

	switch {
	case !envelope && (status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout):
		return cfg.transportError(status, errors.New(http.StatusText(status)))

	case envelope && !gjson.GetBytes(body, "success").Bool():
		return backoff.Permanent(&apierror.CommandError{
			StatusCode: status,
			Message:    errorMessage(status, body, envelope),
		})

	case status >= http.StatusBadRequest:
		return backoff.Permanent(&apierror.CommandError{
			StatusCode: status,
			Message:    errorMessage(status, body, envelope),
		})
	}
	return nil
}

// errorMessage prefers the detail of REST errors and the error text of
// command envelopes.
func errorMessage(status int, body []byte, envelope bool) string {
	paths := []string{"message", "error"}
	if envelope {
		paths = []string{"error"}
	}

	if gjson.ValidBytes(body) {
		for _, path := range paths {
			if msg := gjson.GetBytes(body, path); msg.Type == gjson.String && msg.Str != "" {
				return msg.Str
			}
		}
	}
	return http.StatusText(status)
}

func (cfg *RequestConfig) decode(body []byte) error {
	switch dst := cfg.ResponseBodyInto.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = body
		return nil
	default:
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

func ExecuteNewRequest(ctx context.Context, method, path string, body, dst any, opts ...RequestOption) error {
	cfg, err := NewRequestConfig(ctx, method, path, body, dst, opts...)
	if err != nil {
		return err
	}
	return cfg.Execute()
}
