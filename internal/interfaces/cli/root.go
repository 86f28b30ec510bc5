// Package cli implements the smiclean command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chemforge/smiclean/internal/config"
	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// appState carries the loaded configuration and logger to subcommands.
type appState struct {
	cfg *config.Config
	log logging.Logger
}

type appStateKey struct{}

// NewRootCommand builds the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	root := &cobra.Command{
		Use:   "smiclean",
		Short: "SMILES dataset curation",
		Long: `smiclean curates raw SMILES datasets for generative-model training:
it filters structures against configurable chemistry criteria, builds the
token vocabulary from the curated stream, and validates that downstream
stages consume exactly the stream their vocabulary was built from.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			state, err := initApp(opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appStateKey{}, state))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file (default: environment only)")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override configured log level")

	root.AddCommand(
		newFilterCommand(),
		newVocabCommand(),
		newValidateCommand(),
	)
	return root
}

// initApp loads configuration and builds the process logger.
func initApp(opts *RootOptions) (*appState, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logCfg := logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}
	if cfg.Log.Output != "" {
		logCfg.OutputPaths = []string{cfg.Log.Output}
	}
	log, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}
	return &appState{cfg: cfg, log: log}, nil
}

// stateFrom extracts the app state stored by PersistentPreRunE.
func stateFrom(cmd *cobra.Command) *appState {
	state, _ := cmd.Context().Value(appStateKey{}).(*appState)
	if state == nil {
		// Subcommand invoked outside the root command, e.g. in tests.
		return &appState{cfg: defaultedConfig(), log: logging.NewNopLogger()}
	}
	return state
}

func defaultedConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "smiclean: %v\n", err)
		return 1
	}
	return 0
}
