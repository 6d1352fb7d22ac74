// Package httputil provides shared HTTP client construction with connection
// pooling. All outbound clients (agent-to-agent calls, model providers,
// weather data sources) are built here so pool sizing and timeout defaults
// stay in one place.
package httputil

import (
	"net"
	"net/http"
	"time"
)

// Default outbound timeouts. Connect covers dial plus TLS, response covers
// time to first header byte so streaming bodies are not cut off.
const (
	DefaultConnectTimeout  = 30 * time.Second
	DefaultResponseTimeout = 120 * time.Second
)

const (
	maxIdleConns        = 20
	maxIdleConnsPerHost = 10
	maxConnsPerHost     = 20
	idleConnTimeout     = 120 * time.Second
)

// NewPooledTransport creates an http.Transport with connection pooling
// suitable for repeated calls against a small set of upstream hosts.
func NewPooledTransport(connTimeout, respTimeout time.Duration) *http.Transport {
	if connTimeout <= 0 {
		connTimeout = DefaultConnectTimeout
	}
	if respTimeout <= 0 {
		respTimeout = DefaultResponseTimeout
	}

	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: respTimeout,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// NewClient creates an *http.Client backed by a pooled transport. No overall
// client timeout is set; long-lived streaming responses stay open while the
// response header timeout still bounds unresponsive upstreams.
func NewClient(connTimeout, respTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewPooledTransport(connTimeout, respTimeout),
	}
}
