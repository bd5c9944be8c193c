package api

import (
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/daecheol96/funcagent/internal/tools"
)

// ToolInfo describes one registered tool in GET /api/tools.
type ToolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// ToolsResponse is the body of GET /api/tools.
type ToolsResponse struct {
	Tools []ToolInfo `json:"tools"`
	Count int        `json:"count"`
}

type toolsHandler struct {
	registry *tools.Registry
}

func (h *toolsHandler) list(w http.ResponseWriter, _ *http.Request) {
	list := h.registry.List()
	infos := make([]ToolInfo, len(list))
	for i, t := range list {
		infos[i] = ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		}
	}
	writeJSON(w, http.StatusOK, ToolsResponse{Tools: infos, Count: len(infos)})
}
