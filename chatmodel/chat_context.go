package chatmodel

import (
	"context"
	"strconv"
	"sync"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// ChatContext is the context of the interactive session,
// it carries the session ID and the ID of the current turn.
type ChatContext interface {
	GetChatID() string
	// RunID returns ID of the current turn
	RunID() string
	// NewRun starts a new turn and returns its ID
	NewRun() string
}

type chatContext struct {
	chatID string

	lock  sync.RWMutex
	runID string
}

func (c *chatContext) GetChatID() string {
	return c.chatID
}

func (c *chatContext) RunID() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.runID
}

func (c *chatContext) NewRun() string {
	id := NewChatID()
	c.lock.Lock()
	c.runID = id
	c.lock.Unlock()
	return id
}

// NewChatContext returns a new ChatContext,
// if chatID is empty, a new ID is generated.
func NewChatContext(chatID string) ChatContext {
	return &chatContext{
		chatID: values.StringsCoalesce(chatID, NewChatID()),
		runID:  NewChatID(),
	}
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithChatContext returns a new context with ChatContext value
func WithChatContext(ctx context.Context, chatCtx ChatContext) context.Context {
	return context.WithValue(ctx, keyContext, chatCtx)
}

// GetChatContext retrieves the ChatContext from the context
func GetChatContext(ctx context.Context) ChatContext {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v
	}
	return nil
}

// GetChatID retrieves the chat ID from the provided context.
// If the context does not contain a ChatContext, it returns an empty string.
func GetChatID(ctx context.Context) string {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v.GetChatID()
	}
	return ""
}

// NewChatID generates a new chat ID using the flake ID generator.
func NewChatID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}
