package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/assistants"
	"github.com/effective-security/dairinin/callbacks"
	"github.com/effective-security/dairinin/chat"
	"github.com/effective-security/dairinin/config"
	"github.com/effective-security/dairinin/pkg/llmfactory"
	"github.com/effective-security/dairinin/pkg/prompts"
	"github.com/effective-security/dairinin/tools"
	"github.com/effective-security/dairinin/transcript"
	"github.com/effective-security/xlog"
	"github.com/spf13/pflag"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin", "cmd")

const (
	appName = "dairinin"
	version = "v0.0.1"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type flags struct {
	verbose     bool
	configFile  string
	model       string
	maxTokens   int
	noWebSearch bool
	version     bool
}

func parseFlags(args []string, errOut io.Writer) (*flags, error) {
	f := new(flags)
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "Usage: %s [run] [flags]\n\nRun an interactive AI agent session\n\nFlags:\n", appName)
		fs.PrintDefaults()
	}
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose mode")
	fs.StringVar(&f.configFile, "config", config.DefaultConfigFile, "Path to the MCP servers configuration")
	fs.StringVar(&f.model, "model", "", "Model name, overrides DAIRININ_MODEL")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "Max tokens per response, overrides DAIRININ_MAX_TOKENS")
	fs.BoolVar(&f.noWebSearch, "no-web-search", false, "Disable the hosted web search tool")
	fs.BoolVar(&f.version, "version", false, "Print version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// run is the default and the only command
	switch rest := fs.Args(); {
	case len(rest) == 0:
	case len(rest) == 1 && rest[0] == "run":
	default:
		return nil, errors.Newf("unknown command: %v", rest)
	}
	return f, nil
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	f, err := parseFlags(args, errOut)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(errOut, "%s: %v\n", appName, err)
		return 2
	}
	if f.version {
		fmt.Fprintln(out, version)
		return 0
	}

	xlog.SetFormatter(xlog.NewStringFormatter(errOut))
	if f.verbose {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		// failures already printed to the user are logged below ERROR
		xlog.SetGlobalLogLevel(xlog.ERROR)
	}

	env, err := config.LoadEnvironment()
	if err != nil {
		fmt.Fprintf(errOut, "❌ Invalid environment variables: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = start(ctx, f, env, in, out, errOut); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(errOut, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

func start(ctx context.Context, f *flags, env *config.Environment, in io.Reader, out, errOut io.Writer) error {
	cfgFile, err := filepath.Abs(f.configFile)
	if err != nil {
		return errors.WithStack(err)
	}
	cfg := config.Load(cfgFile)

	registry := tools.Discover(ctx, cfg.Bindings(), tools.WithOutput(out, errOut))
	defer func() {
		_ = registry.Close()
	}()

	logger.KV(xlog.DEBUG,
		"status", "tools_discovered",
		"servers", registry.Servers(),
		"tools", len(registry.Tools()),
	)

	llm, err := llmfactory.NewLLM(llmfactory.FromEnvironment(env, f.model, f.maxTokens))
	if err != nil {
		return err
	}

	persona := prompts.DefaultPersona
	sysprompt, err := prompts.SystemPrompt(persona)
	if err != nil {
		return err
	}

	mode := callbacks.ModeDefault
	if f.verbose {
		mode = callbacks.ModeVerbose
	}
	scratchpad := callbacks.NewScratchpad(mode)
	handler := callbacks.NewFanout(
		callbacks.NewPrinter(out, errOut, persona, mode),
		callbacks.NewPackageLogger(logger),
		scratchpad,
	)

	opts := []assistants.Option{
		assistants.WithCallback(handler),
	}
	if f.noWebSearch {
		opts = append(opts, assistants.WithWebSearch(0))
	}

	session := &chat.Session{
		In:         in,
		Out:        out,
		Err:        errOut,
		Assistant:  assistants.NewAssistant(llm, registry, sysprompt, opts...),
		Transcript: transcript.New(),
		Persona:    persona,
		Scratchpad: scratchpad,
		Verbose:    f.verbose,
	}
	return session.Run(ctx)
}
