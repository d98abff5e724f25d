package transcript

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/pkg/llms"
)

// ErrInvalidMessage is returned when appending a message without role
var ErrInvalidMessage = errors.New("invalid message")

// Message is an entry of the conversation
type Message = llms.Message

// Transcript is the ordered, append-only history of one session.
// It is the only conversational context resent to the model on each request.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

// New returns an empty transcript
func New() *Transcript {
	return &Transcript{}
}

// Append adds the message to the end of the transcript
func (t *Transcript) Append(msg Message) error {
	switch msg.Role {
	case llms.RoleUser, llms.RoleAssistant:
	default:
		return errors.WithMessagef(ErrInvalidMessage, "role %q", msg.Role)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	return nil
}

// Messages returns a copy of the transcript in order
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return nil
	}
	return append([]Message(nil), t.messages...)
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the last message, if any
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}
