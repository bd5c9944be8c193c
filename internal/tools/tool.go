// Package tools implements the function-calling tool registry and the
// built-in tools the agent exposes to the model: HTTP fetches, current time,
// arithmetic, and endpoint model listing.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool is one callable function. Schema describes the argument object the
// model must produce; Call receives the already-validated arguments.
type Tool interface {
	Name() string
	Description() string
	Schema() *jsonschema.Schema
	Call(ctx context.Context, args map[string]any) (string, error)
}

// funcTool adapts a typed Go function into a Tool. The argument schema is
// derived from the input struct's json and jsonschema tags.
type funcTool[In any] struct {
	name        string
	description string
	schema      *jsonschema.Schema
	fn          func(context.Context, In) (string, error)
}

// New builds a Tool from a typed handler. It panics when the input type
// cannot be reflected into a schema, which is a programming error caught at
// startup since all tools are registered in main.
func New[In any](name, description string, fn func(context.Context, In) (string, error)) Tool {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		panic(fmt.Sprintf("tools: deriving schema for %s: %v", name, err))
	}
	return &funcTool[In]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

func (t *funcTool[In]) Name() string               { return t.name }
func (t *funcTool[In]) Description() string        { return t.description }
func (t *funcTool[In]) Schema() *jsonschema.Schema { return t.schema }

func (t *funcTool[In]) Call(ctx context.Context, args map[string]any) (string, error) {
	// Round-trip through JSON to get the typed input. Arguments arrived as
	// model-produced JSON anyway, so this adds no new failure modes.
	raw, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encoding arguments: %w", err)
	}
	var in In
	if err := json.Unmarshal(raw, &in); err != nil {
		return "", fmt.Errorf("decoding arguments: %w", err)
	}
	return t.fn(ctx, in)
}
