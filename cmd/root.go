package cmd

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tregex/search"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "tregex [paths...]",
	Short:            "tregex - search treebanks with tree patterns",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// tregex [paths...] -p PATTERN behaves like the search subcommand
		searchCmd.Run(searchCmd, args)
	},
}

func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the configuration file (default "+search.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Give up after this long")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debugging information")
	addSearchFlags(rootCmd.Flags())

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// loadConfig reads --config, or the default file when it exists, or falls
// back to the built-in defaults.
func loadConfig() (search.Config, error) {
	if cfgFile != "" {
		return search.LoadConfig(cfgFile)
	}
	config, err := search.LoadConfig(search.DefaultConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return search.DefaultConfig(), nil
	}
	return config, err
}
