package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler is the gateway's HTTP surface: health, banner, the merged API
// description, and the generic proxy over the discovered route table.
type Handler struct {
	forwarder *Forwarder
	discovery *DiscoveryResult
	logger    *slog.Logger
}

func NewHandler(forwarder *Forwarder, discovery *DiscoveryResult, logger *slog.Logger) *Handler {
	return &Handler{
		forwarder: forwarder,
		discovery: discovery,
		logger:    logger,
	}
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Ecommerce Gateway API",
		"status":  "running",
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	mode := "complete"
	if h.discovery.Degraded() {
		mode = "degraded"
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"discovery": mode,
	})
}

func (h *Handler) HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.discovery.Doc)
}

// HandleProxy matches the request against the discovered route table and
// forwards it to the owning service, substituting extracted path parameters
// back into the template.
func (h *Handler) HandleProxy(w http.ResponseWriter, r *http.Request) {
	route, params, ok := h.discovery.Routes.Match(r.Method, r.URL.Path)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "route not found",
		})
		return
	}

	h.forwarder.Forward(w, r, route.Service, route.Expand(params))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
