package llmutils_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/effective-security/dairinin/pkg/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_JSONIndent(t *testing.T) {
	assert.Equal(t, "{\n  \"city\": \"Paris\"\n}", llmutils.JSONIndent([]byte(`{"city":"Paris"}`)))
	assert.Equal(t, "{}", llmutils.JSONIndent(nil))
	assert.Equal(t, "{}", llmutils.JSONIndent([]byte("  ")))
	assert.Equal(t, "not json", llmutils.JSONIndent([]byte("not json")))
}

func Test_ToJSON(t *testing.T) {
	assert.Equal(t, `{"a":"<b>"}`, llmutils.ToJSON(map[string]string{"a": "<b>"}))
	assert.Equal(t, `null`, llmutils.ToJSON(nil))
	assert.Empty(t, llmutils.ToJSON(make(chan int)))
}

func Test_ToJSONIndent(t *testing.T) {
	val := map[string]any{"error": "Tool execution failed"}
	assert.Equal(t, "{\n  \"error\": \"Tool execution failed\"\n}", llmutils.ToJSONIndent(val))

	raw := json.RawMessage(`[{"type":"text","text":"sunny"}]`)
	assert.Equal(t, "[\n  {\n    \"type\": \"text\",\n    \"text\": \"sunny\"\n  }\n]", llmutils.ToJSONIndent(raw))
}

func Test_CountMessagesContentSize(t *testing.T) {
	msgs := []llms.Message{
		llms.UserMessage("hello"),
		llms.AssistantMessage("hi"),
	}
	assert.Equal(t, uint64(len("user")+5+len("assistant")+2), llmutils.CountMessagesContentSize(msgs))
	assert.Equal(t, uint64(0), llmutils.CountMessagesContentSize(nil))
}

func Test_CountResponseContentSize(t *testing.T) {
	resp := &llms.ContentResponse{
		Blocks: []llms.ContentBlock{
			llms.ThinkingBlock{Thinking: "abc"},
			llms.TextBlock{Text: "hello"},
			llms.ToolUseBlock{ID: "1", Name: "tt", Input: json.RawMessage(`{}`)},
			llms.OtherBlock{Type: "x", Raw: json.RawMessage(`{"a":1}`)},
		},
	}
	assert.Equal(t, uint64(3+5+1+2+2+7), llmutils.CountResponseContentSize(resp))
	assert.Equal(t, uint64(0), llmutils.CountResponseContentSize(nil))
}

func Test_CountTokens(t *testing.T) {
	in, out, total := llmutils.CountTokens(&llms.ContentResponse{
		Usage: llms.Usage{InputTokens: 10, OutputTokens: 5},
	})
	assert.Equal(t, int64(10), in)
	assert.Equal(t, int64(5), out)
	assert.Equal(t, int64(15), total)

	in, out, total = llmutils.CountTokens(nil)
	assert.Zero(t, in+out+total)
}

func TestPrintMessages(t *testing.T) {
	var w strings.Builder
	llmutils.PrintMessages(&w, []llms.Message{
		llms.UserMessage("hello"),
		llms.AssistantMessage("hi"),
	})
	assert.Equal(t, "USER: hello\nASSISTANT: hi\n", w.String())
}
