package api

import (
	"context"
	"net/http"
	"time"

	"github.com/daecheol96/funcagent/internal/tools"
)

const healthProbeTimeout = 5 * time.Second

// HealthResponse is the body of GET /health. Status is "ok" when the
// inference endpoint answered the model-list probe, "degraded" otherwise;
// the HTTP status is 200 either way so orchestrators keep the pod while the
// endpoint recovers.
type HealthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	VLLMConnected bool   `json:"vllm_connected"`
	ToolsCount    int    `json:"tools_count"`
}

type healthHandler struct {
	client      InferenceClient
	registry    *tools.Registry
	serviceName string
	version     string
}

func (h *healthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	_, err := h.client.Models(ctx)
	connected := err == nil

	status := "ok"
	if !connected {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Service:       h.serviceName,
		Version:       h.version,
		VLLMConnected: connected,
		ToolsCount:    h.registry.Len(),
	})
}
