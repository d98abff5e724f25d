package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/config"
	"github.com/effective-security/dairinin/pkg/metricskey"
	"github.com/effective-security/xlog"
	"github.com/fatih/color"
	"github.com/invopop/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin", "tools")

var gray = color.New(color.FgHiBlack)

type server struct {
	name string
	srv  ToolServer
}

type entry struct {
	Descriptor
	srv ToolServer
}

// Registry is the catalog of tools from all connected servers.
// It is read-only after discovery.
type Registry struct {
	entries []*entry
	index   map[string]*entry
	servers []server
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		index: map[string]*entry{},
	}
}

// Option configures discovery
type Option func(*options)

type options struct {
	connect ConnectFunc
	out     io.Writer
	errOut  io.Writer
}

// WithConnector overrides how the tool servers are connected
func WithConnector(connect ConnectFunc) Option {
	return func(o *options) {
		o.connect = connect
	}
}

// WithOutput sets writers for the server summary and connection failures
func WithOutput(out, errOut io.Writer) Option {
	return func(o *options) {
		if out != nil {
			o.out = out
		}
		if errOut != nil {
			o.errOut = errOut
		}
	}
}

// Discover connects to every binding in order and registers its tools.
// A server that fails to connect, or exposes no tools, is reported and skipped,
// discovery never fails as a whole.
func Discover(ctx context.Context, bindings []config.Binding, opts ...Option) *Registry {
	o := &options{
		connect: Connect,
		out:     io.Discard,
		errOut:  io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}

	r := NewRegistry()
	for _, b := range bindings {
		list, err := r.discover(ctx, o.connect, b)
		if err != nil {
			metricskey.StatsToolServersFailed.IncrCounter(1, b.Name)
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "discover",
				"server", b.Name,
				"command", b.String(),
				"err", err.Error(),
			)
			fmt.Fprintf(o.errOut, "Failed to connect to MCP server '%s': %s: %v\n", b.Name, b.String(), err)
			continue
		}

		metricskey.StatsToolServersConnected.IncrCounter(1, b.Name)
		_, _ = gray.Fprintf(o.out, "(🔌 MCP Server '%s' [%s])\n", b.Name, summary(list))
	}
	return r
}

func (r *Registry) discover(ctx context.Context, connect ConnectFunc, b config.Binding) ([]*mcpsdk.Tool, error) {
	srv, err := connect(ctx, b)
	if err != nil {
		return nil, errors.Mark(err, ErrToolServerConnect)
	}

	list, err := srv.ListTools(ctx)
	if err != nil {
		_ = srv.Close()
		return nil, errors.Mark(err, ErrToolServerConnect)
	}
	if len(list) == 0 {
		_ = srv.Close()
		return nil, ErrEmptyToolServer
	}

	r.Register(b.Name, srv, list)
	return list, nil
}

// summary returns up to three tool names followed by ellipsis
func summary(list []*mcpsdk.Tool) string {
	names := make([]string, 0, 4)
	for _, t := range list {
		if len(names) == 3 {
			break
		}
		names = append(names, t.Name)
	}
	names = append(names, "...")
	return strings.Join(names, ",")
}

// Register adds tools of the connected server.
// Names are unique across servers: a tool with an already registered name
// is skipped.
func (r *Registry) Register(serverName string, srv ToolServer, list []*mcpsdk.Tool) {
	r.servers = append(r.servers, server{name: serverName, srv: srv})

	for _, t := range list {
		if t == nil {
			continue
		}
		if existing, ok := r.index[t.Name]; ok {
			logger.KV(xlog.WARNING,
				"status", "duplicate_tool",
				"tool", t.Name,
				"server", serverName,
				"registered_by", existing.Server,
			)
			continue
		}

		e := &entry{
			Descriptor: Descriptor{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: toSchema(t.Name, t.InputSchema),
				Server:      serverName,
			},
			srv: srv,
		}
		r.entries = append(r.entries, e)
		r.index[t.Name] = e
	}
}

// toSchema converts the schema advertised by the server.
// A schema that can not be represented is replaced with an empty object schema.
func toSchema(tool string, v any) *jsonschema.Schema {
	empty := &jsonschema.Schema{Type: "object"}
	if v == nil {
		return empty
	}

	js, err := json.Marshal(v)
	if err != nil {
		logger.KV(xlog.WARNING, "status", "invalid_schema", "tool", tool, "err", err.Error())
		return empty
	}

	s := new(jsonschema.Schema)
	if err = json.Unmarshal(js, s); err != nil {
		logger.KV(xlog.WARNING, "status", "invalid_schema", "tool", tool, "err", err.Error())
		return empty
	}
	if s.Type == "" {
		s.Type = "object"
	}
	return s
}

// Tools returns descriptors of all registered tools in registration order
func (r *Registry) Tools() []Descriptor {
	list := make([]Descriptor, len(r.entries))
	for i, e := range r.entries {
		list[i] = e.Descriptor
	}
	return list
}

// Lookup returns the descriptor of the named tool
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	e, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return e.Descriptor, true
}

// Servers returns names of the connected servers in discovery order
func (r *Registry) Servers() []string {
	names := make([]string, len(r.servers))
	for i, s := range r.servers {
		names[i] = s.name
	}
	return names
}

// Invoke calls the named tool on its owning server.
// The result is the structured content when the server returns one,
// otherwise the list of content items. A result flagged as error is
// returned whole, with its isError field.
func (r *Registry) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	e, ok := r.index[name]
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		return nil, errors.WithMessagef(ErrToolNotFound, "tool %q", name)
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, name)

	res, err := e.srv.CallTool(ctx, name, params)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		return nil, errors.Mark(errors.Wrapf(err, "tool %s", name), ErrToolInvocationFailed)
	}
	if res == nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		return nil, errors.WithMessagef(ErrToolInvocationFailed, "tool %s: empty result", name)
	}
	if res.IsError {
		// the error reported by the tool is returned as the result,
		// so the model can react to it
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_error_result",
			"tool", name,
		)
		if res.Content == nil {
			res.Content = []mcpsdk.Content{}
		}
		return toGeneric[map[string]any](res)
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)

	if res.StructuredContent != nil {
		return res.StructuredContent, nil
	}
	if res.Content == nil {
		return []any{}, nil
	}
	return toGeneric[[]any](res.Content)
}

// toGeneric converts the value into JSON compatible values
func toGeneric[T any](v any) (any, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to encode tool result"), ErrToolInvocationFailed)
	}
	var res T
	if err = json.Unmarshal(js, &res); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode tool result"), ErrToolInvocationFailed)
	}
	return res, nil
}

// Close terminates all server sessions
func (r *Registry) Close() error {
	var err error
	for _, s := range r.servers {
		if cerr := s.srv.Close(); cerr != nil {
			logger.KV(xlog.DEBUG, "status", "close", "server", s.name, "err", cerr.Error())
			err = errors.CombineErrors(err, cerr)
		}
	}
	r.servers = nil
	return err
}
