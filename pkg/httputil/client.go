// Package httputil provides shared HTTP plumbing for the Beacon gateway:
// a pooled transport, tiered timeouts, and safe response-body handling for
// the external collaborators (Gemini, WhatsApp relay).
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxResponseSize bounds response-body reads from external services.
// Collaborators are untrusted; a misbehaving endpoint must not OOM us.
const MaxResponseSize = 4 * 1024 * 1024 // 4MB

// sharedTransport pools TCP connections across all outbound calls. Every
// assessment may fan out to the LLM scorer plus up to two notification
// channels, so connection reuse matters more than usual here.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// TimeoutTier defines standard timeout categories for collaborator calls.
type TimeoutTier int

const (
	// TierFast for notification stubs and health probes (5s)
	TierFast TimeoutTier = iota
	// TierMedium for standard API calls (30s)
	TierMedium
	// TierSlow for LLM scoring calls that may take longer (60s)
	TierSlow
)

// Timeout returns the duration of a tier. Unknown tiers resolve to medium.
func (t TimeoutTier) Timeout() time.Duration {
	switch t {
	case TierFast:
		return 5 * time.Second
	case TierSlow:
		return 60 * time.Second
	default:
		return 30 * time.Second
	}
}

var (
	tierClients map[TimeoutTier]*http.Client
	clientOnce  sync.Once
)

// Client returns the shared HTTP client for a timeout tier. Tier clients
// are singletons over one connection pool; use them instead of constructing
// http.Client instances per call site.
func Client(tier TimeoutTier) *http.Client {
	clientOnce.Do(func() {
		tierClients = make(map[TimeoutTier]*http.Client, 3)
		for _, t := range []TimeoutTier{TierFast, TierMedium, TierSlow} {
			tierClients[t] = &http.Client{Timeout: t.Timeout(), Transport: sharedTransport}
		}
	})
	if c, ok := tierClients[tier]; ok {
		return c
	}
	return tierClients[TierMedium]
}

// NewClient returns a client with a caller-chosen timeout on the shared
// transport. Use when the timeout is configuration-driven (e.g. the Gemini
// scorer's BEACON_GEMINI_TIMEOUT_MS) rather than one of the fixed tiers.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = TierMedium.Timeout()
	}
	return &http.Client{Timeout: timeout, Transport: sharedTransport}
}

// ReadResponseBody reads an HTTP response body with a size limit.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadErrorBody reads a response body for error reporting with a small limit.
func ReadErrorBody(r io.Reader) ([]byte, error) {
	const maxErrorSize = 1 * 1024 * 1024 // 1MB
	return io.ReadAll(io.LimitReader(r, maxErrorSize))
}

// DrainAndClose drains and closes a response body so the connection can be
// returned to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}
