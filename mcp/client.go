package mcp

import (
	"context"
	"os/exec"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/config"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin", "mcp")

const (
	// ClientName is reported to tool servers during initialization
	ClientName = "dairinin-mcp-client"
	// ClientVersion is reported to tool servers during initialization
	ClientVersion = "0.0.1"
)

// ErrClosed is returned when the session is already closed
var ErrClosed = errors.New("mcp: session closed")

// transportBuilder is overridden in tests to stub the process transport.
var transportBuilder = commandTransport

// Client is a connected session with one tool server
type Client struct {
	name string

	lock    sync.Mutex
	session *mcpsdk.ClientSession
}

// Connect spawns the tool server process of the binding and performs
// the protocol handshake over its standard streams.
func Connect(ctx context.Context, b config.Binding) (*Client, error) {
	transport, err := transportBuilder(b)
	if err != nil {
		return nil, err
	}
	return ConnectTransport(ctx, b.Name, transport)
}

// ConnectTransport performs the protocol handshake over the transport.
func ConnectTransport(ctx context.Context, name string, transport mcpsdk.Transport) (*Client, error) {
	impl := mcpsdk.NewClient(&mcpsdk.Implementation{Name: ClientName, Version: ClientVersion}, nil)
	session, err := impl.Connect(ctx, transport, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "mcp: failed to connect to %s", name)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "connected",
		"server", name,
	)

	return &Client{
		name:    name,
		session: session,
	}, nil
}

func commandTransport(b config.Binding) (mcpsdk.Transport, error) {
	if b.Command == "" {
		return nil, errors.Newf("mcp: command is empty for %s", b.Name)
	}
	// #nosec G204 -- the command comes from the local configuration file
	cmd := exec.Command(b.Command, b.Args...)
	return &mcpsdk.CommandTransport{Command: cmd}, nil
}

// Name returns the server name from configuration
func (c *Client) Name() string {
	return c.name
}

func (c *Client) getSession() (*mcpsdk.ClientSession, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.session == nil {
		return nil, ErrClosed
	}
	return c.session, nil
}

// ListTools returns the full tool catalog of the server, following pagination.
func (c *Client) ListTools(ctx context.Context) ([]*mcpsdk.Tool, error) {
	session, err := c.getSession()
	if err != nil {
		return nil, err
	}

	var list []*mcpsdk.Tool
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, errors.Wrapf(err, "mcp: failed to list tools of %s", c.name)
		}
		list = append(list, tool)
	}
	return list, nil
}

// CallTool invokes the named tool with the parameter object.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcpsdk.CallToolResult, error) {
	session, err := c.getSession()
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "mcp: failed to call %s on %s", name, c.name)
	}
	return res, nil
}

// Close terminates the session and the server process.
// It is safe to call Close more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.lock.Lock()
	session := c.session
	c.session = nil
	c.lock.Unlock()

	if session == nil {
		return nil
	}
	if err := session.Close(); err != nil {
		logger.KV(xlog.DEBUG, "status", "close", "server", c.name, "err", err.Error())
		return errors.WithStack(err)
	}
	return nil
}
