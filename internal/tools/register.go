package tools

import (
	"fmt"

	"github.com/daecheol96/funcagent/internal/log"
)

// InferenceBackend is what the inference-backed tools need from the model
// client.
type InferenceBackend interface {
	ModelLister
	ChatCompleter
}

// RegisterBuiltin registers the full builtin tool set: http_get, http_post,
// current_time, calculate, vllm_models, and vllm_chat.
func RegisterBuiltin(r *Registry, val httpValidator, backend InferenceBackend, logger log.Logger) error {
	var all []Tool
	all = append(all, SystemTools()...)
	all = append(all, NetworkTools(val, logger)...)
	all = append(all, ModelListTool(backend), ChatTool(backend))

	for _, t := range all {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("registering builtin tools: %w", err)
		}
	}
	return nil
}
