package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/config"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "test-server", Version: "test"}, nil)
	server.AddTool(&mcpsdk.Tool{
		Name:        "echo",
		Description: "Echo input",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []any{"text"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var payload map[string]string
		if err := json.Unmarshal(req.Params.Arguments, &payload); err != nil {
			return nil, err
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "echo:" + payload["text"]}},
		}, nil
	})
	server.AddTool(&mcpsdk.Tool{
		Name:        "ping",
		Description: "Health check",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "pong"}},
		}, nil
	})
	return server
}

func connectInMemory(t *testing.T) mcpsdk.Transport {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := newTestServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })
	return clientTransport
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	saved := transportBuilder
	t.Cleanup(func() { transportBuilder = saved })

	var got config.Binding
	clientTransport := connectInMemory(t)
	transportBuilder = func(b config.Binding) (mcpsdk.Transport, error) {
		got = b
		return clientTransport, nil
	}

	c, err := Connect(ctx, config.Binding{Name: "local", Command: "node", Args: []string{"server.js"}})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "local", c.Name())
	assert.Equal(t, "node server.js", got.String())

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	names := []string{tools[0].Name, tools[1].Name}
	assert.ElementsMatch(t, []string{"echo", "ping"}, names)

	res, err := c.CallTool(ctx, "echo", map[string]any{"text": "hi"})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "echo:hi", res.Content[0].(*mcpsdk.TextContent).Text)
	assert.False(t, res.IsError)

	res, err = c.CallTool(ctx, "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", res.Content[0].(*mcpsdk.TextContent).Text)

	_, err = c.CallTool(ctx, "missing", nil)
	require.Error(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.ListTools(ctx)
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = c.CallTool(ctx, "ping", nil)
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestConnectFailures(t *testing.T) {
	ctx := context.Background()

	_, err := Connect(ctx, config.Binding{Name: "empty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command is empty")

	_, err = Connect(ctx, config.Binding{Name: "bogus", Command: "/nonexistent/dairinin-test-server"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to bogus")

	var nilClient *Client
	assert.NoError(t, nilClient.Close())
}
