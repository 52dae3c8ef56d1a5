package option

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hilthontt/devtea/api-sdk/internal/requestconfig"
)

// RequestOption is an option for the requests made by the DevTea API Client
// which can be supplied to clients, services, and methods.
type RequestOption = requestconfig.RequestOption

type Middleware = func(*http.Request, MiddlewareNext) (*http.Response, error)
type MiddlewareNext = func(*http.Request) (*http.Response, error)

// WithBaseURL points the client at another server. The path of base is kept,
// so "http://chat.example.com/api" resolves commands under /api.
func WithBaseURL(base string) RequestOption {
	u, err := url.Parse(base)
	if err == nil && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		if err != nil {
			return fmt.Errorf("requestoption: WithBaseURL failed to parse url %s: %w", base, err)
		}
		r.BaseURL = u
		return nil
	})
}

func WithEnvironmentDev() RequestOption {
	return WithBaseURL("http://localhost:8080/api/")
}

func WithHTTPClient(client *http.Client) RequestOption {
	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		if client == nil {
			return fmt.Errorf("requestoption: custom http client cannot be nil")
		}
		r.HTTPClient = client
		return nil
	})
}

// WithMaxAttempts bounds the number of tries per request, the first one
// included. Only transport failures are retried.
func WithMaxAttempts(attempts int) RequestOption {
	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		if attempts < 1 {
			return fmt.Errorf("requestoption: max attempts must be at least 1, got %d", attempts)
		}
		r.MaxAttempts = attempts
		return nil
	})
}

// WithRequestTimeout bounds every single attempt, not the request as a whole.
func WithRequestTimeout(timeout time.Duration) RequestOption {
	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		r.RequestTimeout = timeout
		return nil
	})
}

// WithRetryDelay sets the wait before the second attempt. Later waits double,
// capped at five seconds.
func WithRetryDelay(delay time.Duration) RequestOption {
	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		r.RetryDelay = delay
		return nil
	})
}

// WithMiddleware appends middlewares; the first one added runs outermost.
func WithMiddleware(middlewares ...Middleware) RequestOption {
	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		r.Middlewares = append(r.Middlewares, middlewares...)
		return nil
	})
}

func WithHeader(key, value string) RequestOption {
	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		r.Header.Set(key, value)
		return nil
	})
}

// WithResponseInto captures the raw response of the last attempt.
func WithResponseInto(dst **http.Response) RequestOption {
	return requestconfig.RequestOptionFunc(func(r *requestconfig.RequestConfig) error {
		r.ResponseInto = dst
		return nil
	})
}
