package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/assistants"
	"github.com/effective-security/dairinin/callbacks"
	"github.com/effective-security/dairinin/chatmodel"
	"github.com/effective-security/dairinin/pkg/prompts"
	"github.com/effective-security/dairinin/transcript"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin", "chat")

const (
	// ExitCommand ends the session, case-insensitive
	ExitCommand = "exit"
	// Prompt is printed before reading the user input
	Prompt = "\nYou: "
	// Farewell is printed when the session ends
	Farewell = "Goodbye! 👋"
	// InvalidInput is printed when the user enters a blank line
	InvalidInput = "Please enter a valid message"
)

// ErrSessionConfig is returned when the session is not configured
var ErrSessionConfig = errors.New("invalid session configuration")

// Session is the interactive read-eval loop.
// It owns the transcript, turns never overlap.
type Session struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Assistant  assistants.IAssistant
	Transcript *transcript.Transcript
	// Persona is the name the replies are prefixed with
	Persona string
	// Scratchpad collects the trace of each turn, optional
	Scratchpad *callbacks.Scratchpad
	// Verbose prints the trace of each turn to Err
	Verbose bool
}

// Run prints the greeting and processes the user input until
// the exit command, the end of input or the cancellation of ctx.
func (s *Session) Run(ctx context.Context) error {
	if s.Assistant == nil || s.In == nil || s.Out == nil {
		return errors.WithStack(ErrSessionConfig)
	}
	if s.Err == nil {
		s.Err = s.Out
	}
	if s.Transcript == nil {
		s.Transcript = transcript.New()
	}
	if s.Persona == "" {
		s.Persona = prompts.DefaultPersona
	}

	banner, err := prompts.Banner(s.Persona)
	if err != nil {
		return err
	}
	greeting, err := prompts.Greeting(s.Persona)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, banner)
	s.printReply(greeting)

	chatCtx := chatmodel.NewChatContext("")
	ctx = chatmodel.WithChatContext(ctx, chatCtx)

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "session_started",
		"chat_id", chatCtx.GetChatID(),
		"assistant", s.Assistant.Name(),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader := newLineReader(ctx, s.In)
	for {
		fmt.Fprint(s.Out, Prompt)

		line, ok, err := reader.ReadLine(ctx)
		if err != nil {
			fmt.Fprintln(s.Out)
			logger.ContextKV(ctx, xlog.DEBUG, "status", "session_cancelled", "chat_id", chatCtx.GetChatID())
			return err
		}
		if !ok {
			// end of input is handled as exit
			fmt.Fprintln(s.Out)
			fmt.Fprintln(s.Out, Farewell)
			return nil
		}

		input := strings.TrimSpace(line)
		if strings.EqualFold(input, ExitCommand) {
			fmt.Fprintln(s.Out, Farewell)
			logger.ContextKV(ctx, xlog.DEBUG,
				"status", "session_ended",
				"chat_id", chatCtx.GetChatID(),
				"messages", s.Transcript.Len(),
			)
			return nil
		}
		if input == "" {
			fmt.Fprintln(s.Out, InvalidInput)
			continue
		}

		s.turn(ctx, chatCtx, input)
	}
}

func (s *Session) turn(ctx context.Context, chatCtx chatmodel.ChatContext, input string) {
	runID := chatCtx.NewRun()
	if s.Scratchpad != nil {
		s.Scratchpad.StartRun(ctx)
	}

	res, err := s.Assistant.Run(ctx, s.Transcript, input)
	if res != nil {
		for _, reply := range res.Replies {
			s.printReply(reply)
		}
	}
	if err != nil {
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "turn_failed",
			"chat_id", chatCtx.GetChatID(),
			"run_id", runID,
			"input", slices.StringUpto(input, 64),
			"err", err.Error(),
		)
		fmt.Fprintf(s.Err, "Error getting AI response: %v\n", err)
	}

	if s.Scratchpad != nil {
		_, trace := s.Scratchpad.EndRun(ctx)
		if s.Verbose && len(trace) > 0 {
			_, _ = s.Err.Write(trace)
		}
	}
}

func (s *Session) printReply(reply string) {
	fmt.Fprintf(s.Out, "\n%s: %s\n\n", s.Persona, reply)
}

// lineReader reads one line of input per request, so nothing is consumed
// from the input while a turn is in flight.
type lineReader struct {
	requests chan struct{}
	lines    chan inputLine
}

type inputLine struct {
	text string
	ok   bool
}

// newLineReader starts the reader, it stops when ctx is cancelled
// or the input ends.
func newLineReader(ctx context.Context, r io.Reader) *lineReader {
	lr := &lineReader{
		requests: make(chan struct{}),
		lines:    make(chan inputLine, 1),
	}
	go lr.serve(ctx, r)
	return lr
}

func (lr *lineReader) serve(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		select {
		case <-ctx.Done():
			return
		case <-lr.requests:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.KV(xlog.ERROR, "status", "read_input", "err", err.Error())
			}
			lr.lines <- inputLine{}
			return
		}
		lr.lines <- inputLine{text: scanner.Text(), ok: true}
	}
}

// ReadLine returns the next line, ok is false at the end of input.
func (lr *lineReader) ReadLine(ctx context.Context) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case lr.requests <- struct{}{}:
	}

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case l := <-lr.lines:
		return l.text, l.ok, nil
	}
}
