package provider_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/Mithul-Joseph/mcp-project/chat"
	"github.com/Mithul-Joseph/mcp-project/internal/provider"
)

type capture struct {
	method string
	url    string
	body   []byte
}

type fakeTransport struct {
	respStatus int
	respBody   []byte
	captured   *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newClientWithTransport(rt http.RoundTripper) *anthropic.Client {
	c := anthropic.NewClient(
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
	)
	return &c
}

const emptyAssistant = `{"role":"assistant","content":[]}`

func TestChat_EmptyCatalog_OmitsTools(t *testing.T) {
	capReq := &capture{}
	fake := &fakeTransport{respStatus: 200, respBody: []byte(emptyAssistant), captured: capReq}
	c := provider.NewClient(newClientWithTransport(fake), provider.DefaultModel)

	_, err := c.Chat(context.Background(), []chat.Turn{chat.UserTurn("hi")}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if capReq.body == nil {
		t.Fatal("no request captured")
	}
	if gjson.GetBytes(capReq.body, "tools").Exists() {
		t.Fatalf("expected no tools key for empty catalog, body=%s", capReq.body)
	}
}

func TestChat_CatalogForwardedVerbatim(t *testing.T) {
	capReq := &capture{}
	fake := &fakeTransport{respStatus: 200, respBody: []byte(emptyAssistant), captured: capReq}
	c := provider.NewClient(newClientWithTransport(fake), provider.DefaultModel)

	catalog := []chat.ToolDescriptor{{
		Name:        "add",
		Description: "Add two numbers.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []any{"a", "b"},
		},
	}}

	_, err := c.Chat(context.Background(), []chat.Turn{chat.UserTurn("what is 2+2")}, catalog)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	body := capReq.body
	if got := gjson.GetBytes(body, "tools.0.name").String(); got != "add" {
		t.Fatalf("want tool name add, got %q (body=%s)", got, body)
	}
	if got := gjson.GetBytes(body, "tools.0.description").String(); got != "Add two numbers." {
		t.Fatalf("unexpected description %q", got)
	}
	if got := gjson.GetBytes(body, "tools.0.input_schema.type").String(); got != "object" {
		t.Fatalf("want input_schema.type object, got %q", got)
	}
	if !gjson.GetBytes(body, "tools.0.input_schema.properties.a").Exists() {
		t.Fatalf("missing forwarded schema property, body=%s", body)
	}
	req := gjson.GetBytes(body, "tools.0.input_schema.required")
	if len(req.Array()) != 2 {
		t.Fatalf("want 2 required fields, got %s", req.Raw)
	}
}

func TestChat_ToolTurnsCollapseIntoOneUserMessage(t *testing.T) {
	capReq := &capture{}
	fake := &fakeTransport{respStatus: 200, respBody: []byte(emptyAssistant), captured: capReq}
	c := provider.NewClient(newClientWithTransport(fake), provider.DefaultModel)

	transcript := []chat.Turn{
		chat.UserTurn("two tools please"),
		{
			Role: chat.RoleAssistant,
			ToolCalls: []chat.ToolCallRequest{
				{ID: "t1", Name: "add", Arguments: map[string]any{"a": 1.0, "b": 2.0}},
				{ID: "t2", Name: "add", Arguments: map[string]any{"a": 3.0, "b": 4.0}},
			},
		},
		chat.ToolTurn("t1", "3", false),
		chat.ToolTurn("t2", "boom", true),
	}

	_, err := c.Chat(context.Background(), transcript, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	body := capReq.body
	msgs := gjson.GetBytes(body, "messages")
	if n := len(msgs.Array()); n != 3 {
		t.Fatalf("want 3 messages (user, assistant, tool results), got %d: %s", n, body)
	}

	// Assistant message carries both tool_use blocks.
	if got := gjson.GetBytes(body, "messages.1.role").String(); got != "assistant" {
		t.Fatalf("want assistant role at index 1, got %q", got)
	}
	if got := gjson.GetBytes(body, "messages.1.content.#").Int(); got != 2 {
		t.Fatalf("want 2 tool_use blocks, got %d", got)
	}
	if got := gjson.GetBytes(body, "messages.1.content.0.input.a").Float(); got != 1.0 {
		t.Fatalf("want forwarded tool_use input, got %v", got)
	}

	// Both tool results land in a single trailing user message.
	if got := gjson.GetBytes(body, "messages.2.role").String(); got != "user" {
		t.Fatalf("want user role for tool results, got %q", got)
	}
	if got := gjson.GetBytes(body, "messages.2.content.#").Int(); got != 2 {
		t.Fatalf("want 2 tool_result blocks in one message, got %d", got)
	}
	if got := gjson.GetBytes(body, "messages.2.content.0.tool_use_id").String(); got != "t1" {
		t.Fatalf("want tool_use_id t1, got %q", got)
	}
	if !gjson.GetBytes(body, "messages.2.content.1.is_error").Bool() {
		t.Fatalf("want is_error on failed tool result, body=%s", body)
	}
}

func TestChat_DecodesTextAndToolUse(t *testing.T) {
	resp := `{
		"role": "assistant",
		"content": [
			{"type": "text", "text": "Let me add those."},
			{"type": "tool_use", "id": "t9", "name": "add", "input": {"a": 2, "b": 2}}
		]
	}`
	fake := &fakeTransport{respStatus: 200, respBody: []byte(resp), captured: &capture{}}
	c := provider.NewClient(newClientWithTransport(fake), provider.DefaultModel)

	turn, err := c.Chat(context.Background(), []chat.Turn{chat.UserTurn("what is 2+2")}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if turn.Role != chat.RoleAssistant {
		t.Fatalf("want assistant turn, got %q", turn.Role)
	}
	if turn.Text != "Let me add those." {
		t.Fatalf("unexpected text %q", turn.Text)
	}
	if len(turn.ToolCalls) != 1 {
		t.Fatalf("want 1 tool call, got %d", len(turn.ToolCalls))
	}
	call := turn.ToolCalls[0]
	if call.ID != "t9" || call.Name != "add" {
		t.Fatalf("unexpected call %+v", call)
	}
	if call.Arguments["a"] != float64(2) || call.Arguments["b"] != float64(2) {
		t.Fatalf("unexpected arguments %+v", call.Arguments)
	}
}

func TestChat_TextOnlyResponse_NoToolCalls(t *testing.T) {
	resp := `{"role":"assistant","content":[{"type":"text","text":"4"}]}`
	fake := &fakeTransport{respStatus: 200, respBody: []byte(resp), captured: &capture{}}
	c := provider.NewClient(newClientWithTransport(fake), provider.DefaultModel)

	turn, err := c.Chat(context.Background(), []chat.Turn{chat.UserTurn("what is 2+2")}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if turn.HasToolCalls() {
		t.Fatalf("expected no tool calls, got %+v", turn.ToolCalls)
	}
	if turn.Text != "4" {
		t.Fatalf("want text 4, got %q", turn.Text)
	}
}

func TestChat_HTTPError_ReturnsError(t *testing.T) {
	fake := &fakeTransport{respStatus: 500, respBody: []byte(`{"error":{"type":"api_error","message":"boom"}}`)}
	c := provider.NewClient(newClientWithTransport(fake), provider.DefaultModel)

	_, err := c.Chat(context.Background(), []chat.Turn{chat.UserTurn("hi")}, nil)
	if err == nil {
		t.Fatal("expected error from failing API call")
	}
}
