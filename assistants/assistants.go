package assistants

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/tools"
	"github.com/effective-security/dairinin/transcript"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin", "assistants")

//go:generate mockgen -source=assistants.go -destination=../mocks/mockassistants/assistants_mock.gen.go -package mockassistants

var (
	// ErrUnexpectedModelResponse is returned when the model produced no text in a turn
	ErrUnexpectedModelResponse = errors.New("unable to generate a response")
	// ErrUnexpectedToolFollowup is returned when the reply after a tool call has no text
	ErrUnexpectedToolFollowup = errors.New("unexpected response format after tool call")
	// ErrRemoteCallFailed is returned when the model request fails
	ErrRemoteCallFailed = errors.New("failed to generate content from LLM")
	// ErrEmptyInput is returned when the turn input is blank
	ErrEmptyInput = errors.New("empty input")
)

// IAssistant runs conversation turns
type IAssistant interface {
	// Name returns the name of the Assistant.
	Name() string
	// Run performs one turn: appends the input to the transcript,
	// resolves tool requests and returns the replies.
	Run(ctx context.Context, t *transcript.Transcript, input string) (*TurnResult, error)
}

// ToolRegistry provides the tools available to the model
type ToolRegistry interface {
	// Tools returns the catalog in registration order
	Tools() []tools.Descriptor
	// Lookup returns the descriptor of the named tool
	Lookup(name string) (tools.Descriptor, bool)
	// Invoke calls the named tool
	Invoke(ctx context.Context, name string, params map[string]any) (any, error)
}

// TurnResult is the outcome of one turn
type TurnResult struct {
	// Replies are the texts shown to the user, in order
	Replies []string
	// ToolCalls is the number of tools invoked during the turn
	ToolCalls int
}

// Reply returns the last reply of the turn
func (r *TurnResult) Reply() string {
	if r == nil || len(r.Replies) == 0 {
		return ""
	}
	return r.Replies[len(r.Replies)-1]
}

// State of the turn
type State int

const (
	// StateAwaitingModel is waiting for the model response
	StateAwaitingModel State = iota
	// StateInterpretingResponse is processing blocks of the response
	StateInterpretingResponse
	// StateAwaitingTool is waiting for a tool result
	StateAwaitingTool
	// StateDone is the end of the turn
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "AwaitingModel"
	case StateInterpretingResponse:
		return "InterpretingResponse"
	case StateAwaitingTool:
		return "AwaitingTool"
	case StateDone:
		return "Done"
	}
	return "Unknown"
}
