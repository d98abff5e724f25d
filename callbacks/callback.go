package callbacks

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/effective-security/dairinin/assistants"
	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/effective-security/dairinin/pkg/llmutils"
	"github.com/effective-security/dairinin/pkg/prompts"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/fatih/color"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ assistants.Callback = (*Noop)(nil)
	_ assistants.Callback = (*Printer)(nil)
	_ assistants.Callback = (*PackageLogger)(nil)
	_ assistants.Callback = (*Fanout)(nil)
	_ assistants.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

var gray = color.New(color.FgHiBlack)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []assistants.Callback
}

func NewFanout(callbacks ...assistants.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback assistants.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnTurnStart(ctx context.Context, a assistants.IAssistant, input string) {
	for _, callback := range l.callbacks {
		callback.OnTurnStart(ctx, a, input)
	}
}

func (l *Fanout) OnTurnEnd(ctx context.Context, a assistants.IAssistant, input string, res *assistants.TurnResult) {
	for _, callback := range l.callbacks {
		callback.OnTurnEnd(ctx, a, input, res)
	}
}

func (l *Fanout) OnTurnError(ctx context.Context, a assistants.IAssistant, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnTurnError(ctx, a, input, err)
	}
}

func (l *Fanout) OnStateChange(ctx context.Context, a assistants.IAssistant, from, to assistants.State) {
	for _, callback := range l.callbacks {
		callback.OnStateChange(ctx, a, from, to)
	}
}

func (l *Fanout) OnLLMCallStart(ctx context.Context, a assistants.IAssistant, llm llms.Model, messages []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallStart(ctx, a, llm, messages)
	}
}

func (l *Fanout) OnLLMCallEnd(ctx context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallEnd(ctx, a, llm, resp)
	}
}

func (l *Fanout) OnThinking(ctx context.Context, a assistants.IAssistant, block llms.ThinkingBlock) {
	for _, callback := range l.callbacks {
		callback.OnThinking(ctx, a, block)
	}
}

func (l *Fanout) OnUnknownBlock(ctx context.Context, a assistants.IAssistant, block llms.OtherBlock) {
	for _, callback := range l.callbacks {
		callback.OnUnknownBlock(ctx, a, block)
	}
}

func (l *Fanout) OnReply(ctx context.Context, a assistants.IAssistant, reply string) {
	for _, callback := range l.callbacks {
		callback.OnReply(ctx, a, reply)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, a, call)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, result any) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, a, call, result)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, a, call, err)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, a, call)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnTurnStart(ctx context.Context, a assistants.IAssistant, input string) {}
func (l *Noop) OnTurnEnd(ctx context.Context, a assistants.IAssistant, input string, res *assistants.TurnResult) {
}
func (l *Noop) OnTurnError(ctx context.Context, a assistants.IAssistant, input string, err error) {}
func (l *Noop) OnStateChange(ctx context.Context, a assistants.IAssistant, from, to assistants.State) {
}
func (l *Noop) OnLLMCallStart(ctx context.Context, a assistants.IAssistant, llm llms.Model, messages []llms.Message) {
}
func (l *Noop) OnLLMCallEnd(ctx context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
}
func (l *Noop) OnThinking(ctx context.Context, a assistants.IAssistant, block llms.ThinkingBlock)  {}
func (l *Noop) OnUnknownBlock(ctx context.Context, a assistants.IAssistant, block llms.OtherBlock) {}
func (l *Noop) OnReply(ctx context.Context, a assistants.IAssistant, reply string)                 {}
func (l *Noop) OnToolStart(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock)   {}
func (l *Noop) OnToolEnd(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, result any) {
}
func (l *Noop) OnToolError(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, err error) {
}
func (l *Noop) OnToolNotFound(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
}

// Printer is a callback handler that prints progress indicators of the turn
// to the terminal. Replies are printed by the session.
type Printer struct {
	// Out receives the indicators
	Out io.Writer
	// Err receives the diagnostics in verbose mode
	Err io.Writer
	// Persona is the name of the assistant shown to the user
	Persona string
	Mode    Mode

	lock sync.Mutex
}

func NewPrinter(out, errOut io.Writer, persona string, mode Mode) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	if persona == "" {
		persona = prompts.DefaultPersona
	}
	return &Printer{Out: out, Err: errOut, Persona: persona, Mode: mode}
}

func (l *Printer) OnTurnStart(ctx context.Context, a assistants.IAssistant, input string) {}
func (l *Printer) OnTurnEnd(ctx context.Context, a assistants.IAssistant, input string, res *assistants.TurnResult) {
}
func (l *Printer) OnTurnError(ctx context.Context, a assistants.IAssistant, input string, err error) {}
func (l *Printer) OnStateChange(ctx context.Context, a assistants.IAssistant, from, to assistants.State) {
}
func (l *Printer) OnLLMCallStart(ctx context.Context, a assistants.IAssistant, llm llms.Model, messages []llms.Message) {
}
func (l *Printer) OnLLMCallEnd(ctx context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
}
func (l *Printer) OnReply(ctx context.Context, a assistants.IAssistant, reply string) {}
func (l *Printer) OnToolEnd(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, result any) {
}
func (l *Printer) OnToolError(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, err error) {
}
func (l *Printer) OnToolNotFound(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
}

func (l *Printer) OnThinking(ctx context.Context, a assistants.IAssistant, block llms.ThinkingBlock) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.Mode == ModeVerbose {
		_, _ = gray.Fprintf(l.Err, "Internal thought: %s\n", llmutils.ToJSONIndent(map[string]string{
			"type":      string(llms.BlockKindThinking),
			"thinking":  block.Thinking,
			"signature": block.Signature,
		}))
	}
	_, _ = gray.Fprintln(l.Out, "(thinking...)")
}

func (l *Printer) OnUnknownBlock(ctx context.Context, a assistants.IAssistant, block llms.OtherBlock) {
	if l.Mode != ModeVerbose {
		return
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = gray.Fprintf(l.Err, "Internal thought: %s\n", block.Type)
}

func (l *Printer) OnToolStart(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
	if l.Mode != ModeVerbose {
		return
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = gray.Fprintf(l.Out, "\n%s: [Using tool: %s]\n\n", l.Persona, call.Name)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnTurnStart(ctx context.Context, a assistants.IAssistant, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "turn_start",
		"assistant", a.Name(),
		"input", slices.StringUpto(input, 64),
	)
}

func (l *PackageLogger) OnTurnEnd(ctx context.Context, a assistants.IAssistant, input string, res *assistants.TurnResult) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "turn_end",
		"assistant", a.Name(),
		"replies", len(res.Replies),
		"tool_calls", res.ToolCalls,
	)
}

func (l *PackageLogger) OnTurnError(ctx context.Context, a assistants.IAssistant, input string, err error) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "turn_error",
		"assistant", a.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnStateChange(ctx context.Context, a assistants.IAssistant, from, to assistants.State) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "state_change",
		"assistant", a.Name(),
		"from", from.String(),
		"to", to.String(),
	)
}

func (l *PackageLogger) OnLLMCallStart(ctx context.Context, a assistants.IAssistant, llm llms.Model, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_start",
		"assistant", a.Name(),
		"model", llm.GetName(),
		"messages", len(messages),
	)
}

func (l *PackageLogger) OnLLMCallEnd(ctx context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	in, out, _ := llmutils.CountTokens(resp)
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_end",
		"assistant", a.Name(),
		"model", llm.GetName(),
		"blocks", len(resp.Blocks),
		"tokens_in", in,
		"tokens_out", out,
	)
}

func (l *PackageLogger) OnThinking(ctx context.Context, a assistants.IAssistant, block llms.ThinkingBlock) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "thinking",
		"assistant", a.Name(),
		"thinking", block.Thinking,
	)
}

func (l *PackageLogger) OnUnknownBlock(ctx context.Context, a assistants.IAssistant, block llms.OtherBlock) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "unknown_block",
		"assistant", a.Name(),
		"type", block.Type,
	)
}

func (l *PackageLogger) OnReply(ctx context.Context, a assistants.IAssistant, reply string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "reply",
		"assistant", a.Name(),
		"reply", slices.StringUpto(reply, 64),
	)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"assistant", a.Name(),
		"tool", call.Name,
		"id", call.ID,
		"input", string(call.Input),
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, result any) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"assistant", a.Name(),
		"tool", call.Name,
		"id", call.ID,
		"output", slices.StringUpto(llmutils.ToJSON(result), 256),
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, err error) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_error",
		"assistant", a.Name(),
		"tool", call.Name,
		"id", call.ID,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_not_found",
		"assistant", a.Name(),
		"tool", call.Name,
	)
}

