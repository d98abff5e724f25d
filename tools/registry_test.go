package tools_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/config"
	"github.com/effective-security/dairinin/mcp"
	"github.com/effective-security/dairinin/mocks/mocktools"
	"github.com/effective-security/dairinin/tools"
	"github.com/fatih/color"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	color.NoColor = true
}

func weatherSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string", "description": "City name"},
		},
		"required": []any{"city"},
	}
}

func connector(servers map[string]tools.ToolServer) tools.ConnectFunc {
	return func(_ context.Context, b config.Binding) (tools.ToolServer, error) {
		srv, ok := servers[b.Name]
		if !ok {
			return nil, errors.Newf("spawn %s: no such file or directory", b.Command)
		}
		return srv, nil
	}
}

func TestDiscover(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	weather := mocktools.NewMockToolServer(ctrl)
	weather.EXPECT().ListTools(gomock.Any()).Return([]*mcpsdk.Tool{
		{Name: "get_weather", Description: "Current weather", InputSchema: weatherSchema()},
		{Name: "get_forecast", Description: "Forecast"},
		{Name: "get_alerts", Description: "Alerts"},
		{Name: "get_radar", Description: "Radar"},
	}, nil)
	weather.EXPECT().Close().Return(nil)

	empty := mocktools.NewMockToolServer(ctrl)
	empty.EXPECT().ListTools(gomock.Any()).Return(nil, nil)
	empty.EXPECT().Close().Return(nil)

	broken := mocktools.NewMockToolServer(ctrl)
	broken.EXPECT().ListTools(gomock.Any()).Return(nil, errors.New("protocol error"))
	broken.EXPECT().Close().Return(nil)

	cfg := &config.Config{
		MCPServers: map[string]*config.MCPServer{
			"weather": {Command: "node", Args: []string{"weather.js"}},
			"empty":   {Command: "node", Args: []string{"empty.js"}},
			"broken":  {Command: "node", Args: []string{"broken.js"}},
			"missing": {Command: "nope"},
		},
	}

	var out, errOut bytes.Buffer
	r := tools.Discover(ctx, cfg.Bindings(),
		tools.WithConnector(connector(map[string]tools.ToolServer{
			"weather": weather,
			"empty":   empty,
			"broken":  broken,
		})),
		tools.WithOutput(&out, &errOut),
	)

	assert.Equal(t, "(🔌 MCP Server 'weather' [get_weather,get_forecast,get_alerts,...])\n", out.String())
	assert.Equal(t,
		"Failed to connect to MCP server 'broken': node broken.js: protocol error\n"+
			"Failed to connect to MCP server 'empty': node empty.js: tool server exposes no tools\n"+
			"Failed to connect to MCP server 'missing': nope: spawn nope: no such file or directory\n",
		errOut.String())

	assert.Equal(t, []string{"weather"}, r.Servers())

	list := r.Tools()
	require.Len(t, list, 4)
	assert.Equal(t, "get_weather", list[0].Name)
	assert.Equal(t, "weather", list[0].Server)
	require.NotNil(t, list[0].InputSchema)
	assert.Equal(t, "object", list[0].InputSchema.Type)
	assert.Equal(t, []string{"city"}, list[0].InputSchema.Required)
	city, ok := list[0].InputSchema.Properties.Get("city")
	require.True(t, ok)
	assert.Equal(t, "string", city.Type)

	// server without schema gets an empty object schema
	assert.Equal(t, "object", list[1].InputSchema.Type)

	d, ok := r.Lookup("get_radar")
	require.True(t, ok)
	assert.Equal(t, "Radar", d.Description)
	_, ok = r.Lookup("unknown")
	assert.False(t, ok)

	llmTools := tools.LLMTools(list)
	require.Len(t, llmTools, 4)
	assert.Equal(t, "get_weather", llmTools[0].Function.Name)
	assert.Equal(t, "Current weather", llmTools[0].Function.Description)
	assert.Nil(t, tools.LLMTools(nil))

	require.NoError(t, r.Close())
	assert.Empty(t, r.Servers())
}

func TestDiscoverNoServers(t *testing.T) {
	r := tools.Discover(context.Background(), nil)
	assert.Empty(t, r.Tools())
	assert.NoError(t, r.Close())
}

func TestDiscoverErrorKinds(t *testing.T) {
	ctrl := gomock.NewController(t)

	empty := mocktools.NewMockToolServer(ctrl)
	empty.EXPECT().ListTools(gomock.Any()).Return([]*mcpsdk.Tool{}, nil)
	empty.EXPECT().Close().Return(nil)

	var kinds []error
	connect := func(ctx context.Context, b config.Binding) (tools.ToolServer, error) {
		if b.Name == "empty" {
			return empty, nil
		}
		return nil, errors.New("exec: not found")
	}
	wrapped := func(ctx context.Context, b config.Binding) (tools.ToolServer, error) {
		srv, err := connect(ctx, b)
		if err != nil {
			kinds = append(kinds, err)
		}
		return srv, err
	}

	var errOut bytes.Buffer
	r := tools.Discover(context.Background(),
		[]config.Binding{{Name: "bad", Command: "x"}, {Name: "empty", Command: "y"}},
		tools.WithConnector(wrapped),
		tools.WithOutput(nil, &errOut),
	)
	assert.Empty(t, r.Tools())
	assert.Len(t, kinds, 1)
	assert.Contains(t, errOut.String(), "'bad'")
	assert.Contains(t, errOut.String(), "'empty'")
}

func TestRegisterDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocktools.NewMockToolServer(ctrl)
	second := mocktools.NewMockToolServer(ctrl)

	r := tools.NewRegistry()
	r.Register("a", first, []*mcpsdk.Tool{{Name: "search", Description: "first"}})
	r.Register("b", second, []*mcpsdk.Tool{{Name: "search", Description: "second"}, {Name: "fetch"}, nil})

	list := r.Tools()
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Description)
	assert.Equal(t, "a", list[0].Server)
	assert.Equal(t, "fetch", list[1].Name)

	first.EXPECT().CallTool(gomock.Any(), "search", map[string]any{"q": "go"}).
		Return(&mcpsdk.CallToolResult{StructuredContent: map[string]any{"hits": 1}}, nil)

	res, err := r.Invoke(context.Background(), "search", map[string]any{"q": "go"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hits": 1}, res)
}

func TestInvoke(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	srv := mocktools.NewMockToolServer(ctrl)
	r := tools.NewRegistry()
	r.Register("local", srv, []*mcpsdk.Tool{{Name: "echo"}})

	t.Run("not found", func(t *testing.T) {
		_, err := r.Invoke(ctx, "nope", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tools.ErrToolNotFound))
		assert.Contains(t, err.Error(), `"nope"`)
	})

	t.Run("content", func(t *testing.T) {
		srv.EXPECT().CallTool(gomock.Any(), "echo", gomock.Any()).
			Return(&mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "hi"}}}, nil)
		res, err := r.Invoke(ctx, "echo", map[string]any{"text": "hi"})
		require.NoError(t, err)
		assert.Equal(t, []any{map[string]any{"type": "text", "text": "hi"}}, res)
	})

	t.Run("empty content", func(t *testing.T) {
		srv.EXPECT().CallTool(gomock.Any(), "echo", gomock.Any()).
			Return(&mcpsdk.CallToolResult{}, nil)
		res, err := r.Invoke(ctx, "echo", nil)
		require.NoError(t, err)
		assert.Equal(t, []any{}, res)
	})

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("broken pipe")
		srv.EXPECT().CallTool(gomock.Any(), "echo", gomock.Any()).Return(nil, cause)
		_, err := r.Invoke(ctx, "echo", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tools.ErrToolInvocationFailed))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("nil result", func(t *testing.T) {
		srv.EXPECT().CallTool(gomock.Any(), "echo", gomock.Any()).Return(nil, nil)
		_, err := r.Invoke(ctx, "echo", nil)
		assert.True(t, errors.Is(err, tools.ErrToolInvocationFailed))
	})

	t.Run("tool error", func(t *testing.T) {
		srv.EXPECT().CallTool(gomock.Any(), "echo", gomock.Any()).
			Return(&mcpsdk.CallToolResult{IsError: true, Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "bad city"}}}, nil)
		res, err := r.Invoke(ctx, "echo", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"isError": true,
			"content": []any{map[string]any{"type": "text", "text": "bad city"}},
		}, res)
	})

	t.Run("tool error without content", func(t *testing.T) {
		srv.EXPECT().CallTool(gomock.Any(), "echo", gomock.Any()).
			Return(&mcpsdk.CallToolResult{IsError: true}, nil)
		res, err := r.Invoke(ctx, "echo", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"isError": true, "content": []any{}}, res)
	})

	srv.EXPECT().Close().Return(errors.New("already exited"))
	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exited")
}

func TestRegistryWithServer(t *testing.T) {
	ctx := context.Background()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "weather", Version: "test"}, nil)
	server.AddTool(&mcpsdk.Tool{
		Name:        "get_weather",
		Description: "Current weather",
		InputSchema: weatherSchema(),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var payload map[string]string
		if err := json.Unmarshal(req.Params.Arguments, &payload); err != nil {
			return nil, err
		}
		if payload["city"] == "Atlantis" {
			return &mcpsdk.CallToolResult{
				IsError: true,
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "unknown city"}},
			}, nil
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "sunny in " + payload["city"]}},
		}, nil
	})

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	connect := func(ctx context.Context, b config.Binding) (tools.ToolServer, error) {
		return mcp.ConnectTransport(ctx, b.Name, clientTransport)
	}

	var out bytes.Buffer
	r := tools.Discover(ctx, []config.Binding{{Name: "weather", Command: "weather-mcp"}},
		tools.WithConnector(connect),
		tools.WithOutput(&out, nil),
	)
	defer r.Close()

	assert.Equal(t, "(🔌 MCP Server 'weather' [get_weather,...])\n", out.String())

	res, err := r.Invoke(ctx, "get_weather", map[string]any{"city": "Paris"})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"type": "text", "text": "sunny in Paris"}}, res)

	_, err = r.Invoke(ctx, "get_weather", map[string]any{"city": "Atlantis"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrToolInvocationFailed))
}
