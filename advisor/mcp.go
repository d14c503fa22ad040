package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultModel is the model requested from the chat completions server.
const DefaultModel = "phi-3-local"

// DefaultTimeout bounds every request to the chat completions server.
const DefaultTimeout = 30 * time.Second

// ErrNoResponse is returned when the server answers without any choice.
var ErrNoResponse = errors.New("no response generated")

// MCP is a client of a chat completions server.
type MCP struct {
	server string
	model  string
	http   *http.Client
	now    func() time.Time
}

// MCPOption configures an MCP client.
type MCPOption func(*MCP)

// WithModel sets the model requested.
func WithModel(model string) MCPOption { return func(c *MCP) { c.model = model } }

// WithHTTPClient sets the http client, one with DefaultTimeout otherwise.
func WithHTTPClient(h *http.Client) MCPOption { return func(c *MCP) { c.http = h } }

// NewMCP returns a client of the server at server.
func NewMCP(server string, opts ...MCPOption) *MCP {
	c := &MCP{
		server: strings.TrimSuffix(server, "/"),
		model:  DefaultModel,
		http:   &http.Client{Timeout: DefaultTimeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int32         `json:"max_tokens"`
}

// Chat sends prompt as a single user message.
//
// The server wraps the usual completion object in an envelope:
// {"success": true, "model": "...", "data": {"choices": [...]}}.
func (c *MCP) Chat(ctx context.Context, prompt string, p Params) (Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return Response{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var jobj any
	if err := c.do(req, &jobj); err != nil {
		return Response{}, err
	}

	choices, _ := jsonpath.Get("$.data.choices", jobj)
	if list, ok := choices.([]any); !ok || len(list) == 0 {
		return Response{}, ErrNoResponse
	}
	resp := Response{
		Content:      str(jobj, "$.data.choices[0].message.content", ""),
		FinishReason: str(jobj, "$.data.choices[0].finish_reason", "unknown"),
		Model:        str(jobj, "$.model", c.model),
		Time:         c.now(),
	}
	return resp, nil
}

// Health returns the status document of the server.
func (c *MCP) Health(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server+"/", nil)
	if err != nil {
		return nil, err
	}
	var status map[string]any
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// do sends req and unmarshals the JSON response into data.
func (c *MCP) do(req *http.Request, data any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cannot http %s %v%v: %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, data); err != nil {
		return fmt.Errorf("invalid response from %v: %w", req.URL.Host, err)
	}
	return nil
}

// str returns the string at path in jobj, or def.
func str(jobj any, path, def string) string {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return def
	}
	s, ok := jval.(string)
	if !ok {
		return def
	}
	return s
}
