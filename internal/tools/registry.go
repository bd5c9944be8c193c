package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/daecheol96/funcagent/internal/log"
)

// Sentinel errors for registry operations; match with errors.Is().
var (
	ErrDuplicateTool    = errors.New("tool already registered")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrToolExecution    = errors.New("tool execution failed")
)

// Result is the outcome of one tool invocation. Err is set for execution
// failures that should be reported back to the model as the tool's output
// rather than aborting the turn.
type Result struct {
	Tool   string
	Output string
	Err    error
}

// registration pairs a tool with its resolved schema so argument validation
// does not re-resolve on every call.
type registration struct {
	tool     Tool
	resolved *jsonschema.Resolved
}

// Registry holds the registered tools. Registration happens at startup;
// lookup and invocation are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]registration
	logger log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		byName: make(map[string]registration),
		logger: logger,
	}
}

// Register adds a tool. Tool names are unique; registering a second tool
// under an existing name fails with ErrDuplicateTool.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("nil tool")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool has empty name")
	}

	resolved, err := t.Schema().Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolving schema for %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.byName[name] = registration{tool: t, resolved: resolved}
	r.logger.Debug("tool registered", "tool", name)
	return nil
}

// List returns the registered tools sorted by name, so schema payloads and
// API listings are deterministic.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.byName))
	for _, reg := range r.byName {
		out = append(out, reg.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Invoke runs the named tool with the model-produced argument JSON.
//
// Unknown names and argument JSON that fails to parse or validate return an
// error with no Result. Execution failures return a Result whose Err wraps
// ErrToolExecution; the caller folds that into the conversation so the model
// can react. A panicking tool is caught and reported the same way.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) (Result, error) {
	r.mu.RLock()
	reg, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if argsJSON == "" {
		argsJSON = "{}"
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}
	if err := reg.resolved.Validate(args); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}

	output, err := r.call(ctx, reg.tool, args)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", name, "error", err)
		return Result{Tool: name, Err: fmt.Errorf("%w: %s: %v", ErrToolExecution, name, err)}, nil
	}

	return Result{Tool: name, Output: output}, nil
}

// call isolates the panic recovery so Invoke's deferred state stays simple.
func (r *Registry) call(ctx context.Context, t Tool, args map[string]any) (output string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return t.Call(ctx, args)
}
