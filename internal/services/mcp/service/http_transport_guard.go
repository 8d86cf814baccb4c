package service

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/louisbranch/les-coureurs/internal/platform/metrics"
)

var errRateLimited = errors.New("rate limit exceeded")

// RequestRateLimiter decides whether a request may proceed.
type RequestRateLimiter interface {
	Allow(*http.Request) error
}

// tokenBucketLimiter shares one token bucket across every client.
type tokenBucketLimiter struct {
	limiter *rate.Limiter
}

// newTokenBucketLimiter returns nil when perSecond is not positive.
// A missing burst defaults to one second worth of requests.
func newTokenBucketLimiter(perSecond float64, burst int) RequestRateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(math.Ceil(perSecond))
	}
	return &tokenBucketLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *tokenBucketLimiter) Allow(*http.Request) error {
	if !l.limiter.Allow() {
		return errRateLimited
	}
	return nil
}

// admit runs the host guard and the rate limiter, writing the rejection itself.
func (t *HTTPTransport) admit(w http.ResponseWriter, r *http.Request) bool {
	if err := t.validateLocalRequest(r); err != nil {
		t.log.Warn().Err(err).Str("host", r.Host).Str("origin", r.Header.Get("Origin")).Msg("rejected request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if t.rateLimiter != nil {
		if err := t.rateLimiter.Allow(r); err != nil {
			metrics.MCPRateLimited.Inc()
			http.Error(w, err.Error(), http.StatusTooManyRequests)
			return false
		}
	}
	return true
}

// validateLocalRequest enforces host access to mitigate DNS rebinding.
// Host and Origin must both resolve to an allowed host so a remote page
// cannot reach a local server through a rebound name.
func (t *HTTPTransport) validateLocalRequest(r *http.Request) error {
	if r == nil {
		return fmt.Errorf("invalid request")
	}

	if !t.isAllowedHostHeader(r.Host) {
		return fmt.Errorf("invalid host")
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin")
	}

	originHost := parsed.Host
	if originHost == "" {
		return fmt.Errorf("invalid origin")
	}

	if !t.isAllowedHostHeader(originHost) {
		return fmt.Errorf("invalid origin")
	}

	return nil
}

// isAllowedHostHeader reports whether a Host/Origin header resolves to an allowed host.
// Loopback always passes; anything else must be configured.
func (t *HTTPTransport) isAllowedHostHeader(host string) bool {
	resolvedHost, ok := normalizeHost(host)
	if !ok {
		return false
	}

	if isLoopbackHost(resolvedHost) {
		return true
	}

	if len(t.allowedHosts) == 0 {
		return false
	}

	_, ok = t.allowedHosts[strings.ToLower(resolvedHost)]
	return ok
}

// isLoopbackHost reports whether a host is one of the literal loopback names.
func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

// parseAllowedHosts parses allowed hosts from env-loaded values.
func parseAllowedHosts(hosts []string) map[string]struct{} {
	result := make(map[string]struct{}, len(hosts))
	for _, entry := range hosts {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		result[strings.ToLower(trimmed)] = struct{}{}
	}
	return result
}

// normalizeHost extracts the hostname portion from Host/Origin headers.
func normalizeHost(host string) (string, bool) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false
	}

	if strings.HasPrefix(host, "[") {
		if splitHost, _, err := net.SplitHostPort(host); err == nil {
			return splitHost, true
		}
		if strings.HasSuffix(host, "]") {
			return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"), true
		}
		return "", false
	}

	if strings.Count(host, ":") > 1 {
		return host, true
	}

	if strings.Contains(host, ":") {
		splitHost, _, err := net.SplitHostPort(host)
		if err != nil {
			return "", false
		}
		return splitHost, true
	}

	return host, true
}

// handleHealth handles GET /mcp/health for health checks.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !t.admit(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		t.log.Debug().Err(err).Msg("write health response")
	}
}

// handleMetrics serves prometheus metrics behind the host guard only.
func (t *HTTPTransport) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.Handler().ServeHTTP(w, r)
}
