package llms

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Role is the author of a chat message.
type Role string

const (
	// RoleUser is a message sent by the human, or a synthetic record on
	// the human side of the conversation.
	RoleUser Role = "user"
	// RoleAssistant is a message sent by the model.
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage returns a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns a message authored by the assistant.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}

// BlockKind is the tag of a content block in a model response.
type BlockKind string

const (
	BlockKindThinking BlockKind = "thinking"
	BlockKindText     BlockKind = "text"
	BlockKindToolUse  BlockKind = "tool_use"
)

// ContentBlock is one tagged unit of a model response.
// The set of implementations is closed: ThinkingBlock, TextBlock,
// ToolUseBlock and OtherBlock.
type ContentBlock interface {
	Kind() BlockKind
	isBlock()
}

// ThinkingBlock is internal reasoning of the model, never shown to the user.
type ThinkingBlock struct {
	Thinking  string `json:"thinking"`
	Signature string `json:"signature,omitempty"`
}

func (ThinkingBlock) Kind() BlockKind { return BlockKindThinking }
func (ThinkingBlock) isBlock()        {}

// TextBlock is natural language output.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) Kind() BlockKind { return BlockKindText }
func (TextBlock) isBlock()        {}

func (b TextBlock) String() string {
	return b.Text
}

// ToolUseBlock is a request from the model to invoke a tool.
type ToolUseBlock struct {
	// ID is the identifier of the tool use assigned by the model.
	ID string `json:"id"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Input is the JSON object with tool parameters.
	Input json.RawMessage `json:"input"`
}

func (ToolUseBlock) Kind() BlockKind { return BlockKindToolUse }
func (ToolUseBlock) isBlock()        {}

func (b ToolUseBlock) String() string {
	return fmt.Sprintf("ToolUse: %s (%s), input: %s", b.ID, b.Name, string(b.Input))
}

// Params decodes the tool input into a parameter object.
// Empty input yields an empty object.
func (b ToolUseBlock) Params() (map[string]any, error) {
	params := map[string]any{}
	if len(b.Input) == 0 || string(b.Input) == "null" {
		return params, nil
	}
	if err := json.Unmarshal(b.Input, &params); err != nil {
		return nil, errors.Wrapf(err, "failed to decode input of tool %s", b.Name)
	}
	return params, nil
}

// OtherBlock is any block kind this package does not model,
// for example server side tool results.
type OtherBlock struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

func (b OtherBlock) Kind() BlockKind { return BlockKind(b.Type) }
func (OtherBlock) isBlock()          {}

// Usage is the token accounting of one model call.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// ContentResponse is the response returned by a GenerateContent call.
type ContentResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Blocks     []ContentBlock `json:"-"`
	Usage      Usage          `json:"usage"`
}

// TextBlocks returns the text blocks of the response in order.
func (r *ContentResponse) TextBlocks() []TextBlock {
	var list []TextBlock
	for _, b := range r.Blocks {
		if tb, ok := b.(TextBlock); ok {
			list = append(list, tb)
		}
	}
	return list
}

// GetContent returns all text of the response, blocks separated by a blank line.
func (r *ContentResponse) GetContent() string {
	var buf strings.Builder
	for i, tb := range r.TextBlocks() {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(tb.Text)
	}
	return buf.String()
}
