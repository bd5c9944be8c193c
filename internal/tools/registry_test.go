package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/daecheol96/funcagent/internal/log"
)

type echoInput struct {
	Text string `json:"text" jsonschema:"Text to echo back"`
}

func echoTool() Tool {
	return New("echo", "Echo the input text.", func(_ context.Context, in echoInput) (string, error) {
		return in.Text, nil
	})
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry(log.NewNop())

	if err := r.Register(echoTool()); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}
	err := r.Register(echoTool())
	if !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("second Register() = %v, want ErrDuplicateTool", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestList_Sorted(t *testing.T) {
	r := NewRegistry(log.NewNop())

	for _, name := range []string{"zeta", "alpha", "mike"} {
		tool := New(name, "test tool", func(_ context.Context, _ echoInput) (string, error) {
			return "", nil
		})
		if err := r.Register(tool); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	got := r.List()
	want := []string{"alpha", "mike", "zeta"}
	for i, tool := range got {
		if tool.Name() != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, tool.Name(), want[i])
		}
	}
}

func TestInvoke(t *testing.T) {
	r := NewRegistry(log.NewNop())
	if err := r.Register(echoTool()); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	res, err := r.Invoke(context.Background(), "echo", `{"text":"hello"}`)
	if err != nil {
		t.Fatalf("Invoke() failed: %v", err)
	}
	if res.Output != "hello" || res.Err != nil {
		t.Errorf("result = %+v", res)
	}
}

func TestInvoke_UnknownTool(t *testing.T) {
	r := NewRegistry(log.NewNop())

	_, err := r.Invoke(context.Background(), "no_such_tool", "{}")
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("Invoke() = %v, want ErrUnknownTool", err)
	}
}

func TestInvoke_InvalidArguments(t *testing.T) {
	r := NewRegistry(log.NewNop())
	if err := r.Register(echoTool()); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	tests := []struct {
		name string
		args string
	}{
		{"broken json", `{"text":`},
		{"wrong type", `{"text":42}`},
		{"not an object", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Invoke(context.Background(), "echo", tt.args)
			if !errors.Is(err, ErrInvalidArguments) {
				t.Fatalf("Invoke() = %v, want ErrInvalidArguments", err)
			}
		})
	}
}

func TestInvoke_EmptyArguments(t *testing.T) {
	r := NewRegistry(log.NewNop())

	tool := New("no_args", "Needs nothing.", func(_ context.Context, _ struct{}) (string, error) {
		return "ok", nil
	})
	if err := r.Register(tool); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	res, err := r.Invoke(context.Background(), "no_args", "")
	if err != nil {
		t.Fatalf("Invoke() with empty args failed: %v", err)
	}
	if res.Output != "ok" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestInvoke_ExecutionError(t *testing.T) {
	r := NewRegistry(log.NewNop())

	tool := New("failing", "Always fails.", func(_ context.Context, _ struct{}) (string, error) {
		return "", fmt.Errorf("backend exploded")
	})
	if err := r.Register(tool); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	res, err := r.Invoke(context.Background(), "failing", "{}")
	if err != nil {
		t.Fatalf("Invoke() = %v, want nil (execution failures come back in the Result)", err)
	}
	if !errors.Is(res.Err, ErrToolExecution) {
		t.Errorf("Result.Err = %v, want ErrToolExecution", res.Err)
	}
}

func TestInvoke_PanicRecovered(t *testing.T) {
	r := NewRegistry(log.NewNop())

	tool := New("panicking", "Always panics.", func(_ context.Context, _ struct{}) (string, error) {
		panic("boom")
	})
	if err := r.Register(tool); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	res, err := r.Invoke(context.Background(), "panicking", "{}")
	if err != nil {
		t.Fatalf("Invoke() = %v, want nil", err)
	}
	if !errors.Is(res.Err, ErrToolExecution) {
		t.Errorf("Result.Err = %v, want ErrToolExecution", res.Err)
	}
}
