package tools

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/config"
	"github.com/effective-security/dairinin/mcp"
	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/invopop/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

var (
	// ErrToolServerConnect is returned when a tool server can not be spawned or initialized
	ErrToolServerConnect = errors.New("failed to connect to tool server")
	// ErrEmptyToolServer is returned when a tool server exposes no tools
	ErrEmptyToolServer = errors.New("tool server exposes no tools")
	// ErrToolNotFound is returned when the model requests an unknown tool
	ErrToolNotFound = errors.New("tool not found")
	// ErrToolInvocationFailed is returned when a tool call fails
	ErrToolInvocationFailed = errors.New("tool invocation failed")
)

// ToolServer is a connected session with a tool server
type ToolServer interface {
	// ListTools returns the tool catalog of the server
	ListTools(ctx context.Context) ([]*mcpsdk.Tool, error)
	// CallTool invokes the named tool
	CallTool(ctx context.Context, name string, args map[string]any) (*mcpsdk.CallToolResult, error)
	// Close terminates the session
	Close() error
}

// ConnectFunc establishes a session with a tool server
type ConnectFunc func(ctx context.Context, b config.Binding) (ToolServer, error)

// Connect spawns the server process of the binding
func Connect(ctx context.Context, b config.Binding) (ToolServer, error) {
	c, err := mcp.Connect(ctx, b)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Descriptor describes a tool available to the model
type Descriptor struct {
	// Name is unique across all connected servers
	Name string `json:"name"`
	// Description is shown to the model
	Description string `json:"description"`
	// InputSchema is the JSON schema of the parameter object
	InputSchema *jsonschema.Schema `json:"input_schema"`
	// Server is the name of the owning tool server
	Server string `json:"-"`
}

// LLMTool returns the tool definition sent to the model
func (d Descriptor) LLMTool() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.InputSchema,
		},
	}
}

// LLMTools returns the tool definitions sent to the model
func LLMTools(list []Descriptor) []llms.Tool {
	if len(list) == 0 {
		return nil
	}
	res := make([]llms.Tool, len(list))
	for i, d := range list {
		res[i] = d.LLMTool()
	}
	return res
}
