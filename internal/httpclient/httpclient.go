package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/logger"
)

// New returns a client with its own transport. Callers own its connections and
// should call CloseIdleConnections when the call is done.
// A nil proxy means a direct connection; proxy environment variables are resolved by config.
func New(proxy *url.URL) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{Transport: &LoggingTransport{Base: transport}}
}

// LoggingTransport logs each round trip at debug level through the request's context logger.
type LoggingTransport struct {
	Base http.RoundTripper
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	ctx := req.Context()
	if err != nil {
		logger.Debug(ctx, "http round trip failed",
			"method", req.Method,
			"host", req.URL.Host,
			"duration_ms", duration,
			"err", err)
		return nil, err
	}

	logger.Debug(ctx, "http round trip",
		"method", req.Method,
		"host", req.URL.Host,
		"status", resp.StatusCode,
		"duration_ms", duration)
	return resp, nil
}

// CloseIdle releases pooled connections of clients built by New.
func CloseIdle(c *http.Client) {
	if c != nil {
		c.CloseIdleConnections()
	}
}

// ClassifyError maps a transport failure onto the error taxonomy. ctx is the context
// the request ran under; an expired deadline is always a timeout, whatever the
// transport reported. A cancelled context is returned unchanged.
func ClassifyError(ctx context.Context, err error, host string, timeout time.Duration) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domainErrors.NewTimeoutError(timeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domainErrors.NewConnectivityError(host, err).WithContext("syscall", "getaddrinfo")
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return domainErrors.NewConnectivityError(host, err).WithContext("syscall", "connect")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domainErrors.NewTimeoutError(timeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domainErrors.NewConnectivityError(host, err)
	}

	return err
}
