package assistants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/chatmodel"
	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/effective-security/dairinin/pkg/llmutils"
	"github.com/effective-security/dairinin/pkg/metricskey"
	"github.com/effective-security/dairinin/tools"
	"github.com/effective-security/dairinin/transcript"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
)

// toolFailedResult is recorded when a tool invocation fails or returns nothing
var toolFailedResult = map[string]any{"error": "Tool execution failed"}

// Assistant executes conversation turns against the model,
// resolving tool requests through the registry.
type Assistant struct {
	LLM llms.Model

	registry  ToolRegistry
	cfg       *Config
	sysprompt string
}

var _ IAssistant = (*Assistant)(nil)

// NewAssistant returns the Assistant.
// registry can be nil, then no tools are advertised.
func NewAssistant(llmModel llms.Model, registry ToolRegistry, sysprompt string, options ...Option) *Assistant {
	cfg := NewConfig(options...)
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.CallbackHandler == nil {
		cfg.CallbackHandler = noopCallback{}
	}
	return &Assistant{
		LLM:       llmModel,
		registry:  registry,
		cfg:       cfg,
		sysprompt: sysprompt,
	}
}

// Name returns the name of the Assistant.
func (a *Assistant) Name() string {
	return a.cfg.Name
}

// SystemPrompt returns the instruction sent with every request
func (a *Assistant) SystemPrompt() string {
	return a.sysprompt
}

// turn holds the state of one Run
type turn struct {
	*Assistant
	transcript *transcript.Transcript
	input      string
	state      State
	result     *TurnResult
}

// Run performs one turn.
// On error the returned result holds replies produced before the failure.
func (a *Assistant) Run(ctx context.Context, t *transcript.Transcript, input string) (*TurnResult, error) {
	started := time.Now()
	defer metricskey.PerfTurn.MeasureSince(started, a.Name())

	callback := a.cfg.CallbackHandler
	callback.OnTurnStart(ctx, a, input)

	tr := &turn{
		Assistant:  a,
		transcript: t,
		input:      input,
		state:      StateDone,
		result:     &TurnResult{},
	}

	err := tr.run(ctx)
	if err != nil {
		metricskey.StatsTurnsFailed.IncrCounter(1, a.Name())
		logger.ContextKV(ctx, xlog.WARNING,
			"assistant", a.Name(),
			"status", "turn_failed",
			"input", slices.StringUpto(input, 64),
			"replies", len(tr.result.Replies),
			"tool_calls", tr.result.ToolCalls,
			"err", err.Error(),
		)
		callback.OnTurnError(ctx, a, input, err)
		return tr.result, err
	}

	metricskey.StatsTurnsSucceeded.IncrCounter(1, a.Name())
	callback.OnTurnEnd(ctx, a, input, tr.result)
	return tr.result, nil
}

func (t *turn) setState(ctx context.Context, s State) {
	if t.state == s {
		return
	}
	from := t.state
	t.state = s
	t.cfg.CallbackHandler.OnStateChange(ctx, t.Assistant, from, s)
}

func (t *turn) run(ctx context.Context) error {
	input := strings.TrimSpace(t.input)
	if input == "" {
		return errors.WithStack(ErrEmptyInput)
	}
	if t.transcript == nil {
		return errors.WithMessagef(transcript.ErrInvalidMessage, "transcript is required")
	}

	if err := t.transcript.Append(llms.UserMessage(t.input)); err != nil {
		return err
	}

	callOpts := append(t.cfg.GetCallOptions(), llms.WithSystemPrompt(t.sysprompt))
	if chatID := chatmodel.GetChatID(ctx); chatID != "" {
		callOpts = append(callOpts, llms.WithMetadata(map[string]any{llms.MetadataUserID: chatID}))
	}
	submitOpts := append([]llms.CallOption{}, callOpts...)
	if t.registry != nil {
		if list := tools.LLMTools(t.registry.Tools()); len(list) > 0 {
			submitOpts = append(submitOpts, llms.WithTools(list))
		}
	}
	if t.cfg.WebSearchMaxUses > 0 && t.LLM.GetProviderType().Supports(llms.CapabilityWebSearch) {
		submitOpts = append(submitOpts, llms.WithWebSearch(t.cfg.WebSearchMaxUses))
	}

	resp, err := t.generate(ctx, submitOpts)
	if err != nil {
		return err
	}

	t.setState(ctx, StateInterpretingResponse)
	for _, block := range resp.Blocks {
		switch b := block.(type) {
		case llms.ThinkingBlock:
			t.cfg.CallbackHandler.OnThinking(ctx, t.Assistant, b)

		case llms.TextBlock:
			text := strings.TrimSpace(b.Text)
			if text == "" {
				logger.ContextKV(ctx, xlog.DEBUG,
					"assistant", t.Name(),
					"status", "skip_empty_text",
				)
				continue
			}
			if err = t.reply(ctx, text); err != nil {
				return err
			}

		case llms.ToolUseBlock:
			if err = t.resolveTool(ctx, b, callOpts); err != nil {
				return err
			}

		case llms.OtherBlock:
			logger.ContextKV(ctx, xlog.DEBUG,
				"assistant", t.Name(),
				"status", "ignored_block",
				"type", b.Type,
			)
			t.cfg.CallbackHandler.OnUnknownBlock(ctx, t.Assistant, b)
		}
	}
	t.setState(ctx, StateDone)

	if len(t.result.Replies) == 0 {
		logger.ContextKV(ctx, xlog.WARNING,
			"assistant", t.Name(),
			"status", "no_reply",
			"blocks", len(resp.Blocks),
			"stop_reason", resp.StopReason,
		)
		return errors.WithStack(ErrUnexpectedModelResponse)
	}
	return nil
}

// generate submits the whole transcript to the model
func (t *turn) generate(ctx context.Context, opts []llms.CallOption) (*llms.ContentResponse, error) {
	t.setState(ctx, StateAwaitingModel)

	messages := t.transcript.Messages()
	assistantName := t.Name()
	modelName := t.LLM.GetName()

	started := time.Now()
	defer metricskey.PerfLLMCall.MeasureSince(started, assistantName, modelName)

	bytesSent := llmutils.CountMessagesContentSize(messages)
	metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(messages)), assistantName, modelName)
	metricskey.StatsLLMBytesSent.IncrCounter(float64(bytesSent), assistantName, modelName)

	t.cfg.CallbackHandler.OnLLMCallStart(ctx, t.Assistant, t.LLM, messages)

	resp, err := t.LLM.GenerateContent(ctx, messages, opts...)
	if err != nil {
		metricskey.StatsLLMCallsFailed.IncrCounter(1, assistantName, modelName)
		return nil, errors.Mark(errors.Wrap(err, "failed to generate content from LLM"), ErrRemoteCallFailed)
	}
	if resp == nil {
		metricskey.StatsLLMCallsFailed.IncrCounter(1, assistantName, modelName)
		return nil, errors.WithStack(ErrUnexpectedModelResponse)
	}

	t.cfg.CallbackHandler.OnLLMCallEnd(ctx, t.Assistant, t.LLM, resp)

	metricskey.StatsLLMBytesReceived.IncrCounter(float64(llmutils.CountResponseContentSize(resp)), assistantName, modelName)
	tokensIn, tokensOut, _ := llmutils.CountTokens(resp)
	metricskey.StatsLLMInputTokens.IncrCounter(float64(tokensIn), assistantName, modelName)
	metricskey.StatsLLMOutputTokens.IncrCounter(float64(tokensOut), assistantName, modelName)

	logger.ContextKV(ctx, xlog.DEBUG,
		"assistant", assistantName,
		"model", modelName,
		"status", "llm_response",
		"messages", len(messages),
		"blocks", len(resp.Blocks),
		"stop_reason", resp.StopReason,
		"tokens_in", tokensIn,
		"tokens_out", tokensOut,
	)
	return resp, nil
}

// reply appends the assistant message and records it as the turn output
func (t *turn) reply(ctx context.Context, text string) error {
	if err := t.transcript.Append(llms.AssistantMessage(text)); err != nil {
		return err
	}
	t.result.Replies = append(t.result.Replies, text)
	t.cfg.CallbackHandler.OnReply(ctx, t.Assistant, text)
	return nil
}

// resolveTool invokes the requested tool, records the round-trip into the
// transcript and asks the model to answer with the result.
func (t *turn) resolveTool(ctx context.Context, call llms.ToolUseBlock, callOpts []llms.CallOption) error {
	t.setState(ctx, StateAwaitingTool)
	callback := t.cfg.CallbackHandler

	if t.registry == nil {
		callback.OnToolNotFound(ctx, t.Assistant, call)
		return errors.WithMessagef(tools.ErrToolNotFound, "tool %q", call.Name)
	}
	if _, ok := t.registry.Lookup(call.Name); !ok {
		callback.OnToolNotFound(ctx, t.Assistant, call)
		return errors.WithMessagef(tools.ErrToolNotFound, "tool %q", call.Name)
	}

	callback.OnToolStart(ctx, t.Assistant, call)
	t.result.ToolCalls++

	var result any
	params, err := call.Params()
	if err == nil {
		result, err = t.registry.Invoke(ctx, call.Name, params)
	}
	if err == nil && result == nil {
		err = errors.WithMessagef(tools.ErrToolInvocationFailed, "tool %s: empty result", call.Name)
	}
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"assistant", t.Name(),
			"status", "tool_failed",
			"tool", call.Name,
			"id", call.ID,
			"err", err.Error(),
		)
		callback.OnToolError(ctx, t.Assistant, call, err)
		result = toolFailedResult
	} else {
		callback.OnToolEnd(ctx, t.Assistant, call, result)
	}

	err = t.transcript.Append(llms.AssistantMessage(
		fmt.Sprintf("I will use the tool %s with id %s and following input parameters %s",
			call.Name, call.ID, llmutils.JSONIndent(call.Input))))
	if err != nil {
		return err
	}
	err = t.transcript.Append(llms.UserMessage(
		fmt.Sprintf("The tool call with id %s responded with the following result %s",
			call.ID, llmutils.ToJSONIndent(result))))
	if err != nil {
		return err
	}

	// the follow-up never advertises tools, so a tool call resolves in one round-trip
	resp, err := t.generate(ctx, callOpts)
	if err != nil {
		return err
	}

	var texts []string
	for _, b := range resp.TextBlocks() {
		if text := strings.TrimSpace(b.Text); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		logger.ContextKV(ctx, xlog.WARNING,
			"assistant", t.Name(),
			"status", "unexpected_tool_followup",
			"tool", call.Name,
			"id", call.ID,
			"blocks", len(resp.Blocks),
		)
		return errors.WithMessagef(ErrUnexpectedToolFollowup, "tool %s", call.Name)
	}

	t.setState(ctx, StateInterpretingResponse)
	return t.reply(ctx, strings.Join(texts, "\n\n"))
}
