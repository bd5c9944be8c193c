package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/daecheol96/funcagent/internal/vllm"
)

// ModelLister is the slice of the inference client the vllm_models tool
// needs.
type ModelLister interface {
	Models(ctx context.Context) ([]vllm.Model, error)
}

// VLLMModelsInput is the argument object for the vllm_models tool. The tool
// takes no arguments.
type VLLMModelsInput struct{}

// ModelListTool builds the vllm_models tool, which reports the models served
// by the configured inference endpoint.
func ModelListTool(lister ModelLister) Tool {
	return New("vllm_models",
		"List the models available on the inference endpoint.",
		func(ctx context.Context, _ VLLMModelsInput) (string, error) {
			models, err := lister.Models(ctx)
			if err != nil {
				return "", fmt.Errorf("listing models: %w", err)
			}
			out, err := json.MarshalIndent(models, "", "  ")
			if err != nil {
				return "", fmt.Errorf("encoding model list: %w", err)
			}
			return string(out), nil
		})
}
