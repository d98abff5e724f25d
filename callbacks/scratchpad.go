package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/dairinin/assistants"
	"github.com/effective-security/dairinin/chatmodel"
	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/effective-security/dairinin/pkg/llmutils"
	"github.com/effective-security/x/slices"
)

var TimeNowFn = time.Now

// RunStats are the counters of one run of the session,
// a run is a single turn.
type RunStats struct {
	ChatID string
	RunID  string

	Duration        time.Duration
	TotalMessages   uint32
	LLMCalls        uint32
	LLMBytesOut     uint64
	LLMBytesIn      uint64
	LLMInputTokens  uint64
	LLMOutputTokens uint64
	LLMTotalTokens  uint64
	Replies         uint32
	TurnsFailed     uint32
	ThinkingBlocks  uint32
	IgnoredBlocks   uint32
	ToolCalls       uint32
	ToolCallsFailed uint32
	ToolNotFound    uint32
}

// Scratchpad is a callback handler that collects a trace of the run,
// keyed by the chat context of the request.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun begins the trace for the chat context of ctx
func (l *Scratchpad) StartRun(ctx context.Context) {
	chatCtx := chatmodel.GetChatContext(ctx)
	if chatCtx == nil {
		return
	}

	r := &run{
		stats: RunStats{
			ChatID: chatCtx.GetChatID(),
			RunID:  chatCtx.RunID(),
		},
		chatCtx: chatCtx,
		started: time.Now(),
	}

	l.lock.Lock()
	l.runs[chatCtx.GetChatID()] = r
	l.lock.Unlock()

	r.print("*** Run Started ***")
}

// EndRun completes the trace and returns the stats and the trace
func (l *Scratchpad) EndRun(ctx context.Context) (*RunStats, []byte) {
	run := l.getRun(ctx)
	if run == nil {
		return nil, nil
	}

	stats := run.stats
	stats.Duration = time.Since(run.started)

	run.print(fmt.Sprintf("Replies: %d, Failed: %d, Thinking: %d, Ignored blocks: %d",
		stats.Replies,
		stats.TurnsFailed,
		stats.ThinkingBlocks,
		stats.IgnoredBlocks,
	))
	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d",
		stats.ToolCalls,
		stats.ToolCallsFailed,
		stats.ToolNotFound,
	))
	run.print(fmt.Sprintf("LLM calls: %d, Messages: %d, Bytes Out: %d, Bytes In: %d, Input Tokens: %d, Output Tokens: %d, Total Tokens: %d",
		stats.LLMCalls,
		stats.TotalMessages,
		stats.LLMBytesOut,
		stats.LLMBytesIn,
		stats.LLMInputTokens,
		stats.LLMOutputTokens,
		stats.LLMTotalTokens,
	))

	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, run.chatCtx.GetChatID())
	l.lock.Unlock()

	return &stats, run.bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	chatCtx := chatmodel.GetChatContext(ctx)
	if chatCtx == nil {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[chatCtx.GetChatID()]
}

func (l *Scratchpad) OnTurnStart(ctx context.Context, a assistants.IAssistant, input string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	run.print(a.Name(), "*** Turn Start ***")
	run.print(a.Name(), "Input:", slices.StringUpto(input, 256))
}

func (l *Scratchpad) OnTurnEnd(ctx context.Context, a assistants.IAssistant, input string, res *assistants.TurnResult) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	run.print(a.Name(), "*** Turn End ***", fmt.Sprintf("%d replies, %d tool calls", len(res.Replies), res.ToolCalls))
}

func (l *Scratchpad) OnTurnError(ctx context.Context, a assistants.IAssistant, input string, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.TurnsFailed, 1)
	run.print(a.Name(), "*** Error ***", err.Error())
}

func (l *Scratchpad) OnStateChange(ctx context.Context, a assistants.IAssistant, from, to assistants.State) {
	if l.mode != ModeVerbose {
		return
	}
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	run.print(a.Name(), "State:", from.String(), "->", to.String())
}

func (l *Scratchpad) OnLLMCallStart(ctx context.Context, a assistants.IAssistant, llm llms.Model, messages []llms.Message) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	atomic.AddUint64(&run.stats.LLMBytesOut, llmutils.CountMessagesContentSize(messages))
	atomic.AddUint32(&run.stats.LLMCalls, 1)
	count := uint32(len(messages))
	atomic.AddUint32(&run.stats.TotalMessages, count)

	run.print(a.Name(), "*** LLM Call ***", fmt.Sprintf("%s model, %d messages", llm.GetName(), count))
	if l.mode == ModeVerbose {
		var buf bytes.Buffer
		llmutils.PrintMessages(&buf, messages)
		run.print(buf.String())
	}
}

func (l *Scratchpad) OnLLMCallEnd(ctx context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	atomic.AddUint64(&run.stats.LLMBytesIn, llmutils.CountResponseContentSize(resp))
	tokensIn, tokensOut, tokensTotal := llmutils.CountTokens(resp)
	atomic.AddUint64(&run.stats.LLMInputTokens, uint64(tokensIn))
	atomic.AddUint64(&run.stats.LLMOutputTokens, uint64(tokensOut))
	atomic.AddUint64(&run.stats.LLMTotalTokens, uint64(tokensTotal))

	run.print(a.Name(), "*** LLM Call End ***",
		fmt.Sprintf("%s model, %d blocks, %d input tokens, %d output tokens, %d total tokens",
			llm.GetName(), len(resp.Blocks), tokensIn, tokensOut, tokensTotal))
}

func (l *Scratchpad) OnThinking(ctx context.Context, a assistants.IAssistant, block llms.ThinkingBlock) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ThinkingBlocks, 1)
	if l.mode == ModeVerbose {
		run.print(a.Name(), "Thinking:", block.Thinking)
	}
}

func (l *Scratchpad) OnUnknownBlock(ctx context.Context, a assistants.IAssistant, block llms.OtherBlock) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.IgnoredBlocks, 1)
	run.print(a.Name(), "Ignored block:", block.Type)
}

func (l *Scratchpad) OnReply(ctx context.Context, a assistants.IAssistant, reply string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.Replies, 1)
	if l.mode == ModeVerbose {
		run.print(a.Name(), "Reply:", reply)
	}
}

func (l *Scratchpad) OnToolStart(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolCalls, 1)
	run.print(a.Name(), call.Name, "*** Tool Start ***", call.ID)
	run.print(a.Name(), call.Name, "Input:", string(call.Input))
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, result any) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	if l.mode == ModeVerbose {
		run.print(a.Name(), call.Name, "Output:", llmutils.ToJSON(result))
	}
	run.print(a.Name(), call.Name, "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolCallsFailed, 1)
	run.print(a.Name(), call.Name, "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, a assistants.IAssistant, call llms.ToolUseBlock) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolNotFound, 1)
	run.print(a.Name(), "*** Tool Not Found ***", call.Name)
}

type run struct {
	chatCtx chatmodel.ChatContext
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp chatID.runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.chatCtx.GetChatID())
	_, _ = r.w.WriteString(".")
	_, _ = r.w.WriteString(r.chatCtx.RunID())
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}

func (r *run) bytes() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	return bytes.Clone(r.w.Bytes())
}
