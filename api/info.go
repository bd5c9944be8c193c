package api

import (
	"net/http"

	"github.com/daecheol96/funcagent/internal/log"
	"github.com/daecheol96/funcagent/internal/tools"
	"github.com/daecheol96/funcagent/internal/vllm"
)

// InfoResponse is the body of GET /api/info.
type InfoResponse struct {
	Service         string `json:"service"`
	Version         string `json:"version"`
	Environment     string `json:"environment"`
	VLLMBaseURL     string `json:"vllm_base_url"`
	Model           string `json:"model"`
	MaxToolRounds   int    `json:"max_tool_rounds"`
	ToolsCount      int    `json:"tools_count"`
	LegacyFunctions bool   `json:"legacy_functions"`
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models []vllm.Model `json:"models"`
}

type infoHandler struct {
	client      InferenceClient
	registry    *tools.Registry
	serviceName string
	version     string
	environment string
	baseURL     string
	maxRounds   int
	logger      log.Logger
}

func (h *infoHandler) info(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Service:         h.serviceName,
		Version:         h.version,
		Environment:     h.environment,
		VLLMBaseURL:     h.baseURL,
		Model:           h.client.ModelName(),
		MaxToolRounds:   h.maxRounds,
		ToolsCount:      h.registry.Len(),
		LegacyFunctions: h.client.UsesLegacyFunctions(),
	})
}

func (h *infoHandler) models(w http.ResponseWriter, r *http.Request) {
	models, err := h.client.Models(r.Context())
	if err != nil {
		h.logger.Error("listing models failed", "error", err)
		writeError(w, http.StatusBadGateway, "models_unavailable", "could not list models from the inference endpoint")
		return
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Models: models})
}
