package config

import (
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin", "config")

// DefaultConfigFile is the name of the configuration file,
// looked up in the working directory.
const DefaultConfigFile = ".dairinin.json"

var (
	// ErrConfig is returned when the configuration file can not be loaded.
	ErrConfig = errors.New("invalid configuration")
	// ErrMissingCredential is returned when the API key is not set.
	ErrMissingCredential = errors.New("missing credential")
)

// Config is the content of the configuration file
type Config struct {
	// MCPServers specifies the tool servers to spawn,
	// key is the server name.
	MCPServers map[string]*MCPServer `json:"mcpServers" yaml:"mcpServers"`
}

// MCPServer specifies how to spawn a tool server
type MCPServer struct {
	Command string   `json:"command" yaml:"command" validate:"required"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Binding is a named tool server definition
type Binding struct {
	Name    string
	Command string
	Args    []string
}

// String returns the command line of the binding
func (b Binding) String() string {
	return strings.TrimSpace(b.Command + " " + strings.Join(b.Args, " "))
}

// LoadConfig from file
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to load %s", file), ErrConfig)
	}
	return cfg, nil
}

// Load returns the configuration from file.
// Missing or malformed file is not fatal: the error is logged
// and an empty configuration is returned.
func Load(file string) *Config {
	if _, err := os.Stat(file); err != nil {
		logger.KV(xlog.DEBUG, "status", "no_config", "file", file)
		return new(Config)
	}

	cfg, err := LoadConfig(file)
	if err != nil {
		logger.KV(xlog.ERROR,
			"status", "load_config",
			"file", file,
			"err", err.Error())
		return new(Config)
	}
	return cfg
}

// Bindings returns valid tool server bindings sorted by name.
// Invalid entries are logged and skipped.
func (c *Config) Bindings() []Binding {
	if c == nil || len(c.MCPServers) == 0 {
		return nil
	}

	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	validate := validator.New()
	list := make([]Binding, 0, len(names))
	for _, name := range names {
		srv := c.MCPServers[name]
		if srv == nil {
			logger.KV(xlog.ERROR, "status", "invalid_server", "server", name, "err", "empty definition")
			continue
		}
		if err := validate.Struct(srv); err != nil {
			logger.KV(xlog.ERROR, "status", "invalid_server", "server", name, "err", err.Error())
			continue
		}
		list = append(list, Binding{
			Name:    name,
			Command: srv.Command,
			Args:    append([]string(nil), srv.Args...),
		})
	}
	return list
}
