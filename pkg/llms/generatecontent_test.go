package llms_test

import (
	"encoding/json"
	"testing"

	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockKinds(t *testing.T) {
	blocks := []llms.ContentBlock{
		llms.ThinkingBlock{Thinking: "hmm"},
		llms.TextBlock{Text: "hi"},
		llms.ToolUseBlock{ID: "1", Name: "t"},
		llms.OtherBlock{Type: "web_search_tool_result"},
	}
	kinds := make([]llms.BlockKind, 0, len(blocks))
	for _, b := range blocks {
		kinds = append(kinds, b.Kind())
	}
	assert.Equal(t, []llms.BlockKind{
		llms.BlockKindThinking,
		llms.BlockKindText,
		llms.BlockKindToolUse,
		"web_search_tool_result",
	}, kinds)
}

func TestToolUseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		exp     map[string]any
		wantErr bool
	}{
		{name: "empty", input: "", exp: map[string]any{}},
		{name: "null", input: "null", exp: map[string]any{}},
		{name: "object", input: `{"city":"Paris","days":2}`, exp: map[string]any{"city": "Paris", "days": float64(2)}},
		{name: "array", input: `[1,2]`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := llms.ToolUseBlock{ID: "id", Name: "weather", Input: json.RawMessage(tc.input)}
			params, err := b.Params()
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "weather")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, params)
		})
	}
}

func TestContentResponse(t *testing.T) {
	resp := &llms.ContentResponse{
		Blocks: []llms.ContentBlock{
			llms.ThinkingBlock{Thinking: "hmm"},
			llms.TextBlock{Text: "one"},
			llms.ToolUseBlock{ID: "1", Name: "t"},
			llms.TextBlock{Text: "two"},
		},
	}
	assert.Len(t, resp.TextBlocks(), 2)
	assert.Equal(t, "one\n\ntwo", resp.GetContent())

	empty := &llms.ContentResponse{}
	assert.Empty(t, empty.GetContent())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "user: hi", llms.UserMessage("hi").String())
	assert.Equal(t, llms.RoleAssistant, llms.AssistantMessage("x").Role)
}

func TestCallOptions(t *testing.T) {
	tools := []llms.Tool{{Type: "function", Function: &llms.FunctionDefinition{Name: "t"}}}
	opts := llms.NewCallOptions(
		llms.WithModel("m"),
		llms.WithMaxTokens(10),
		llms.WithTemperature(0.5),
		llms.WithSystemPrompt("sys"),
		llms.WithTools(tools),
		llms.WithWebSearch(5),
		llms.WithMetadata(map[string]any{"k": "v"}),
	)
	assert.Equal(t, "m", opts.Model)
	assert.Equal(t, 10, opts.MaxTokens)
	assert.Equal(t, 0.5, opts.Temperature)
	assert.Equal(t, "sys", opts.SystemPrompt)
	assert.Equal(t, tools, opts.Tools)
	assert.Equal(t, 5, opts.WebSearchMaxUses)
	assert.Equal(t, "v", opts.Metadata["k"])
}
