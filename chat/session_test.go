package chat_test

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/assistants"
	"github.com/effective-security/dairinin/callbacks"
	"github.com/effective-security/dairinin/chat"
	"github.com/effective-security/dairinin/chatmodel"
	"github.com/effective-security/dairinin/mocks/mockassistants"
	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/effective-security/dairinin/pkg/prompts"
	"github.com/effective-security/dairinin/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func header(t *testing.T) string {
	banner, err := prompts.Banner("Dairinin")
	require.NoError(t, err)
	greeting, err := prompts.Greeting("Dairinin")
	require.NoError(t, err)
	return banner + "\n\nDairinin: " + greeting + "\n\n"
}

func newSession(t *testing.T, input string) (*chat.Session, *mockassistants.MockIAssistant, *bytes.Buffer, *bytes.Buffer) {
	ctrl := gomock.NewController(t)
	ast := mockassistants.NewMockIAssistant(ctrl)
	ast.EXPECT().Name().Return("dairinin").AnyTimes()

	var out, errOut bytes.Buffer
	s := &chat.Session{
		In:         strings.NewReader(input),
		Out:        &out,
		Err:        &errOut,
		Assistant:  ast,
		Transcript: transcript.New(),
		Persona:    "Dairinin",
	}
	return s, ast, &out, &errOut
}

func TestSession_Turn(t *testing.T) {
	s, ast, out, errOut := newSession(t, "hi\nexit\n")

	ast.EXPECT().Run(gomock.Any(), s.Transcript, "hi").
		DoAndReturn(func(ctx context.Context, tr *transcript.Transcript, input string) (*assistants.TurnResult, error) {
			assert.NotEmpty(t, chatmodel.GetChatID(ctx))
			require.NoError(t, tr.Append(llms.UserMessage(input)))
			require.NoError(t, tr.Append(llms.AssistantMessage("Hello")))
			return &assistants.TurnResult{Replies: []string{"Hello"}}, nil
		})

	err := s.Run(context.Background())
	require.NoError(t, err)

	exp := header(t) +
		"\nYou: " +
		"\nDairinin: Hello\n\n" +
		"\nYou: " +
		"Goodbye! 👋\n"
	assert.Equal(t, exp, out.String())
	assert.Empty(t, errOut.String())
	assert.Equal(t, 2, s.Transcript.Len())
}

func TestSession_ExitCaseInsensitive(t *testing.T) {
	for _, input := range []string{"exit\n", "EXIT\n", "  Exit  \n"} {
		s, _, out, _ := newSession(t, input)
		err := s.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(out.String(), "\nYou: Goodbye! 👋\n"), out.String())
		assert.Equal(t, 0, s.Transcript.Len())
	}
}

func TestSession_BlankInput(t *testing.T) {
	s, _, out, _ := newSession(t, "\n   \n\t\nexit\n")

	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out.String(), "Please enter a valid message\n"))
	assert.Equal(t, 0, s.Transcript.Len())
}

func TestSession_EndOfInput(t *testing.T) {
	s, ast, out, _ := newSession(t, "hi")

	ast.EXPECT().Run(gomock.Any(), gomock.Any(), "hi").
		Return(&assistants.TurnResult{Replies: []string{"Hello"}}, nil)

	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.String(), "\nYou: \nGoodbye! 👋\n"), out.String())
}

func TestSession_TurnError(t *testing.T) {
	s, ast, out, errOut := newSession(t, "weather?\nhi\nexit\n")

	gomock.InOrder(
		ast.EXPECT().Run(gomock.Any(), gomock.Any(), "weather?").
			Return(&assistants.TurnResult{Replies: []string{"Let me check."}}, errors.New("tool not found")),
		ast.EXPECT().Run(gomock.Any(), gomock.Any(), "hi").
			Return(&assistants.TurnResult{Replies: []string{"Hello"}}, nil),
	)

	err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Error getting AI response: tool not found\n", errOut.String())
	assert.Contains(t, out.String(), "\nDairinin: Let me check.\n\n")
	assert.Contains(t, out.String(), "\nDairinin: Hello\n\n")
}

func TestSession_TurnErrorWithoutResult(t *testing.T) {
	s, ast, _, errOut := newSession(t, "hi\nexit\n")

	ast.EXPECT().Run(gomock.Any(), gomock.Any(), "hi").
		Return(nil, errors.New("failed to generate content from LLM"))

	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Error getting AI response: failed to generate content from LLM\n", errOut.String())
}

func TestSession_Scratchpad(t *testing.T) {
	s, ast, _, errOut := newSession(t, "hi\nexit\n")
	s.Scratchpad = callbacks.NewScratchpad(callbacks.ModeVerbose)
	s.Verbose = true

	ast.EXPECT().Run(gomock.Any(), gomock.Any(), "hi").
		Return(&assistants.TurnResult{Replies: []string{"Hello"}}, nil)

	err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "*** Run Started ***")
	assert.Contains(t, errOut.String(), "*** Run Ended. Duration:")
}

func TestSession_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	s, _, _, _ := newSession(t, "")
	s.In = r

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
}

func TestSession_NoReadDuringTurn(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	s, ast, out, _ := newSession(t, "")
	s.In = r

	var readDuringTurn bool
	ast.EXPECT().Run(gomock.Any(), s.Transcript, "hi").
		DoAndReturn(func(ctx context.Context, tr *transcript.Transcript, input string) (*assistants.TurnResult, error) {
			written := make(chan struct{})
			go func() {
				_, _ = w.Write([]byte("exit\n"))
				close(written)
			}()
			select {
			case <-written:
				readDuringTurn = true
			case <-time.After(100 * time.Millisecond):
			}
			return &assistants.TurnResult{Replies: []string{"Hello"}}, nil
		})

	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background())
	}()

	_, err := w.Write([]byte("hi\n"))
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.False(t, readDuringTurn, "input was read while the turn was running")
	assert.True(t, strings.HasSuffix(out.String(), "\nDairinin: Hello\n\n\nYou: Goodbye! 👋\n"), out.String())
}

func TestSession_ReaderStops(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 5; i++ {
		s, _, _, _ := newSession(t, "exit\nmore\n")
		require.NoError(t, s.Run(context.Background()))
	}
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSession_Defaults(t *testing.T) {
	err := (&chat.Session{}).Run(context.Background())
	assert.True(t, errors.Is(err, chat.ErrSessionConfig))

	ctrl := gomock.NewController(t)
	ast := mockassistants.NewMockIAssistant(ctrl)
	ast.EXPECT().Name().Return("dairinin").AnyTimes()

	var out bytes.Buffer
	s := &chat.Session{
		In:        strings.NewReader("exit\n"),
		Out:       &out,
		Assistant: ast,
	}
	require.NoError(t, s.Run(context.Background()))
	assert.NotNil(t, s.Transcript)
	assert.Equal(t, prompts.DefaultPersona, s.Persona)
	assert.True(t, strings.HasPrefix(out.String(), header(t)))
}
