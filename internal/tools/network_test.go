package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/daecheol96/funcagent/internal/log"
)

// permissiveValidator lets everything through so tests can hit httptest
// servers on loopback. maxSize is configurable to exercise the body cap.
type permissiveValidator struct {
	maxSize int64
}

func (permissiveValidator) ValidateURL(string) error { return nil }
func (permissiveValidator) Client() *http.Client     { return &http.Client{} }
func (v permissiveValidator) MaxResponseSize() int64 {
	if v.maxSize > 0 {
		return v.maxSize
	}
	return 1 << 20
}

// blockingValidator refuses every URL.
type blockingValidator struct{}

func (blockingValidator) ValidateURL(string) error { return fmt.Errorf("blocked for testing") }
func (blockingValidator) Client() *http.Client     { return &http.Client{} }
func (blockingValidator) MaxResponseSize() int64   { return 1 << 20 }

func findTool(t *testing.T, list []Tool, name string) Tool {
	t.Helper()
	for _, tool := range list {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestHTTPGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("X-Test header = %q, want yes", got)
		}
		fmt.Fprint(w, "plain body")
	}))
	defer srv.Close()

	tool := findTool(t, NetworkTools(permissiveValidator{}, log.NewNop()), "http_get")
	out, err := tool.Call(context.Background(), map[string]any{
		"url":     srv.URL,
		"headers": map[string]any{"X-Test": "yes"},
	})
	if err != nil {
		t.Fatalf("http_get failed: %v", err)
	}
	if out != "plain body" {
		t.Errorf("output = %q", out)
	}
}

func TestHTTPGet_PrettyPrintsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"a":1,"b":[2,3]}`)
	}))
	defer srv.Close()

	tool := findTool(t, NetworkTools(permissiveValidator{}, log.NewNop()), "http_get")
	out, err := tool.Call(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("http_get failed: %v", err)
	}
	if !strings.Contains(out, "\n") || !strings.Contains(out, `"a": 1`) {
		t.Errorf("output not indented: %q", out)
	}
}

func TestHTTPGet_Blocked(t *testing.T) {
	tool := findTool(t, NetworkTools(blockingValidator{}, log.NewNop()), "http_get")
	_, err := tool.Call(context.Background(), map[string]any{"url": "http://example.com/"})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestHTTPGet_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := findTool(t, NetworkTools(permissiveValidator{}, log.NewNop()), "http_get")
	_, err := tool.Call(context.Background(), map[string]any{"url": srv.URL})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want status 404 failure", err)
	}
}

func TestHTTPGet_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	tool := findTool(t, NetworkTools(permissiveValidator{maxSize: 1024}, log.NewNop()), "http_get")
	_, err := tool.Call(context.Background(), map[string]any{"url": srv.URL})
	if err == nil || !strings.Contains(err.Error(), "size limit") {
		t.Fatalf("err = %v, want size limit failure", err)
	}
}

func TestHTTPPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding post body: %v", err)
		}
		if body["name"] != "test" {
			t.Errorf("body = %v", body)
		}
		fmt.Fprint(w, "created")
	}))
	defer srv.Close()

	tool := findTool(t, NetworkTools(permissiveValidator{}, log.NewNop()), "http_post")
	out, err := tool.Call(context.Background(), map[string]any{
		"url":  srv.URL,
		"data": map[string]any{"name": "test"},
	})
	if err != nil {
		t.Fatalf("http_post failed: %v", err)
	}
	if out != "created" {
		t.Errorf("output = %q", out)
	}
}

func TestHTTPPost_EmptyBodyDefaultsToObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding post body: %v", err)
		}
		if len(body) != 0 {
			t.Errorf("body = %v, want empty object", body)
		}
	}))
	defer srv.Close()

	tool := findTool(t, NetworkTools(permissiveValidator{}, log.NewNop()), "http_post")
	if _, err := tool.Call(context.Background(), map[string]any{"url": srv.URL}); err != nil {
		t.Fatalf("http_post failed: %v", err)
	}
}
