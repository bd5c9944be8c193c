package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/daecheol96/funcagent/internal/log"
)

// httpValidator is the security surface the network tools require. Satisfied
// by *security.HTTP; tests inject a permissive fake.
type httpValidator interface {
	ValidateURL(url string) error
	Client() *http.Client
	MaxResponseSize() int64
}

// HTTPGetInput is the argument object for the http_get tool.
type HTTPGetInput struct {
	URL     string            `json:"url" jsonschema:"The URL to fetch"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Optional request headers"`
}

// HTTPPostInput is the argument object for the http_post tool.
type HTTPPostInput struct {
	URL     string            `json:"url" jsonschema:"The URL to post to"`
	Data    map[string]any    `json:"data,omitempty" jsonschema:"JSON body to send"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Optional request headers"`
}

// NetworkTools builds the http_get and http_post tools. Both validate the
// target URL against SSRF before any connection is made, cap response bodies
// at the validator's size limit, and pretty-print JSON responses.
func NetworkTools(val httpValidator, logger log.Logger) []Tool {
	if logger == nil {
		logger = log.NewNop()
	}
	nt := &networkTools{val: val, logger: logger}
	return []Tool{
		New("http_get",
			"Send an HTTP GET request to a URL and return the response body. "+
				"Requests to private networks and internal services are blocked.",
			nt.get),
		New("http_post",
			"Send an HTTP POST request with a JSON body and return the response body. "+
				"Requests to private networks and internal services are blocked.",
			nt.post),
	}
}

type networkTools struct {
	val    httpValidator
	logger log.Logger
}

func (nt *networkTools) get(ctx context.Context, in HTTPGetInput) (string, error) {
	if in.URL == "" {
		return "", fmt.Errorf("url is required")
	}
	if err := nt.val.ValidateURL(in.URL); err != nil {
		nt.logger.Warn("http_get blocked", "url", in.URL, "error", err)
		return "", fmt.Errorf("url validation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.URL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	return nt.do(req)
}

func (nt *networkTools) post(ctx context.Context, in HTTPPostInput) (string, error) {
	if in.URL == "" {
		return "", fmt.Errorf("url is required")
	}
	if err := nt.val.ValidateURL(in.URL); err != nil {
		nt.logger.Warn("http_post blocked", "url", in.URL, "error", err)
		return "", fmt.Errorf("url validation failed: %w", err)
	}

	data := in.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, in.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	return nt.do(req)
}

// do executes the request and renders the response body. Bodies are read
// through a size limit; JSON payloads come back indented for the model.
func (nt *networkTools) do(req *http.Request) (string, error) {
	res, err := nt.val.Client().Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	maxSize := nt.val.MaxResponseSize()
	body, err := io.ReadAll(io.LimitReader(res.Body, maxSize))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) == maxSize {
		extra := make([]byte, 1)
		if n, _ := res.Body.Read(extra); n > 0 {
			return "", fmt.Errorf("response exceeds size limit (%d bytes)", maxSize)
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("request returned status %d", res.StatusCode)
	}

	nt.logger.Info("fetched url",
		"method", req.Method,
		"url", req.URL.String(),
		"status", res.StatusCode,
		"body_size", len(body))

	if strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			return pretty.String(), nil
		}
	}
	return string(body), nil
}
