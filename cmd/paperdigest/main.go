package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/paperdigest/internal/app"
	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/logging"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	provider    string
	model       string
	maxWords    int
	maxCombined int
	delay       time.Duration
	jsonOut     bool
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "paperdigest",
		Short:         "Summarize research papers and extract their key information",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&g.configPath, "config", "", "YAML config file (default: $PAPERDIGEST_CONFIG)")
	f.StringVar(&g.provider, "provider", "", "LLM provider: groq|openai|anthropic|gemini")
	f.StringVar(&g.model, "model", "", "model name (default depends on provider)")
	f.IntVar(&g.maxWords, "max-words", 0, "maximum words per chunk")
	f.IntVar(&g.maxCombined, "max-combined", 0, "maximum characters of summaries combined in one final request")
	f.DurationVar(&g.delay, "delay", 0, "pause between remote calls; 0 disables it")
	f.BoolVar(&g.jsonOut, "json", false, "print JSON instead of Markdown")
	f.BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(summarizeCmd(g), extractCmd(g), chunksCmd(g), mcpCmd(g))
	return root
}

// loadConfig applies command-line overrides on top of file and environment.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.SetProvider(g.provider)
	if g.model != "" {
		cfg.LLM.Model = g.model
	}
	if g.maxWords > 0 {
		cfg.Summary.MaxWordsPerChunk = g.maxWords
	}
	if g.maxCombined > 0 {
		cfg.Summary.MaxCombinedChars = g.maxCombined
	}
	if cmd.Flags().Changed("delay") {
		cfg.Summary.CallDelay = max(g.delay, 0)
	}
	return cfg, nil
}

// logger writes to stderr so stdout carries only the result.
func (g *globalFlags) logger(cfg config.Config) *slog.Logger {
	level := cfg.Log.Level
	if g.verbose {
		level = "debug"
	} else if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	format := "text"
	if os.Getenv("LOG_FORMAT") != "" {
		format = cfg.Log.Format
	}
	return logging.New(os.Stderr, format, level)
}

// service loads configuration and builds a digest service backed by the
// configured provider.
func (g *globalFlags) service(cmd *cobra.Command) (*digest.Service, *slog.Logger, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log := g.logger(cfg)
	svc, _, err := app.NewService(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, log, nil
}
