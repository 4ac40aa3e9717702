package gateway

import (
	"crypto/tls"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const forwardTimeout = 30 * time.Second

// Hop-by-hop and size/identity-sensitive headers never forwarded to backends.
var excludedRequestHeaders = map[string]struct{}{
	"Host":            {},
	"Connection":      {},
	"Content-Length":  {},
	"Accept-Encoding": {},
	"Cookie":          {},
	"Referer":         {},
}

// Response headers that would be invalid to replay verbatim.
var excludedResponseHeaders = map[string]struct{}{
	"Content-Encoding":  {},
	"Transfer-Encoding": {},
	"Connection":        {},
}

// Forwarder translates an inbound request into an outbound call against the
// owning backend and echoes the response byte-exact: no re-encoding, no
// re-serialization.
type Forwarder struct {
	registry *Registry
	client   *http.Client
	logger   *slog.Logger
}

func NewForwarder(registry *Registry, client *http.Client, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		registry: registry,
		client:   client,
		logger:   logger,
	}
}

// NewForwardClient builds the HTTP client used for downstream calls: bounded
// timeout, TLS verification off (internal traffic only), traced transport.
func NewForwardClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- internal service mesh
	return &http.Client{
		Timeout:   forwardTimeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

// Forward proxies r to the named service at path, writing the backend's
// response (or a synthesized error) to w.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, service, path string) {
	base, ok := f.registry.BaseURL(service)
	if !ok {
		f.writeError(w, http.StatusBadRequest, "unknown service")
		return
	}

	target := base + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		f.logger.Error("failed to build downstream request", "error", err, "service", service, "path", path)
		f.writeError(w, http.StatusInternalServerError, "internal gateway error")
		return
	}

	f.prepareHeaders(req, r)

	f.logger.Info("forwarding request", "method", r.Method, "service", service, "path", path)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("downstream service unreachable", "error", err, "service", service)
		f.writeError(w, http.StatusServiceUnavailable, "service unreachable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for key, values := range resp.Header {
		if _, excluded := excludedResponseHeaders[http.CanonicalHeaderKey(key)]; excluded {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		f.logger.Error("failed to copy response body", "error", err, "service", service)
	}
}

func (f *Forwarder) prepareHeaders(req *http.Request, r *http.Request) {
	for key, values := range r.Header {
		if _, excluded := excludedRequestHeaders[http.CanonicalHeaderKey(key)]; excluded {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	if userID := IdentityFromContext(r.Context()); userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	req.Host = req.URL.Host
}

func (f *Forwarder) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message}); err != nil {
		f.logger.Error("failed to encode error response", "error", err)
	}
}
