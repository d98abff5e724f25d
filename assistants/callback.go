package assistants

import (
	"context"

	"github.com/effective-security/dairinin/pkg/llms"
)

// Callback receives events of a turn
type Callback interface {
	OnTurnStart(ctx context.Context, a IAssistant, input string)
	OnTurnEnd(ctx context.Context, a IAssistant, input string, res *TurnResult)
	OnTurnError(ctx context.Context, a IAssistant, input string, err error)
	OnStateChange(ctx context.Context, a IAssistant, from, to State)

	OnLLMCallStart(ctx context.Context, a IAssistant, llm llms.Model, messages []llms.Message)
	OnLLMCallEnd(ctx context.Context, a IAssistant, llm llms.Model, resp *llms.ContentResponse)

	// OnThinking is called for internal reasoning of the model
	OnThinking(ctx context.Context, a IAssistant, block llms.ThinkingBlock)
	// OnUnknownBlock is called for a response block that is ignored
	OnUnknownBlock(ctx context.Context, a IAssistant, block llms.OtherBlock)
	// OnReply is called for each reply appended to the transcript
	OnReply(ctx context.Context, a IAssistant, reply string)

	OnToolStart(ctx context.Context, a IAssistant, call llms.ToolUseBlock)
	OnToolEnd(ctx context.Context, a IAssistant, call llms.ToolUseBlock, result any)
	OnToolError(ctx context.Context, a IAssistant, call llms.ToolUseBlock, err error)
	OnToolNotFound(ctx context.Context, a IAssistant, call llms.ToolUseBlock)
}

type noopCallback struct{}

var _ Callback = noopCallback{}

func (noopCallback) OnTurnStart(context.Context, IAssistant, string)                             {}
func (noopCallback) OnTurnEnd(context.Context, IAssistant, string, *TurnResult)                  {}
func (noopCallback) OnTurnError(context.Context, IAssistant, string, error)                      {}
func (noopCallback) OnStateChange(context.Context, IAssistant, State, State)                     {}
func (noopCallback) OnLLMCallStart(context.Context, IAssistant, llms.Model, []llms.Message)      {}
func (noopCallback) OnLLMCallEnd(context.Context, IAssistant, llms.Model, *llms.ContentResponse) {}
func (noopCallback) OnThinking(context.Context, IAssistant, llms.ThinkingBlock)                  {}
func (noopCallback) OnUnknownBlock(context.Context, IAssistant, llms.OtherBlock)                 {}
func (noopCallback) OnReply(context.Context, IAssistant, string)                                 {}
func (noopCallback) OnToolStart(context.Context, IAssistant, llms.ToolUseBlock)                  {}
func (noopCallback) OnToolEnd(context.Context, IAssistant, llms.ToolUseBlock, any)               {}
func (noopCallback) OnToolError(context.Context, IAssistant, llms.ToolUseBlock, error)           {}
func (noopCallback) OnToolNotFound(context.Context, IAssistant, llms.ToolUseBlock)               {}
