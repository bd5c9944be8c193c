package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/daecheol96/funcagent/internal/vllm"
)

type fakeLister struct {
	models []vllm.Model
	err    error
}

func (f fakeLister) Models(context.Context) ([]vllm.Model, error) {
	return f.models, f.err
}

func TestModelListTool(t *testing.T) {
	lister := fakeLister{models: []vllm.Model{
		{ID: "openai/gpt-oss-20b", Object: "model", OwnedBy: "vllm"},
	}}

	tool := ModelListTool(lister)
	if tool.Name() != "vllm_models" {
		t.Errorf("Name() = %q", tool.Name())
	}

	out, err := tool.Call(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("vllm_models failed: %v", err)
	}
	if !strings.Contains(out, "openai/gpt-oss-20b") {
		t.Errorf("output = %q", out)
	}
}

func TestModelListTool_Error(t *testing.T) {
	tool := ModelListTool(fakeLister{err: fmt.Errorf("endpoint down")})

	_, err := tool.Call(context.Background(), map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "endpoint down") {
		t.Fatalf("err = %v, want listing failure", err)
	}
}
