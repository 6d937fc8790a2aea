package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tregex/internal"
	"github.com/gnolang/tregex/search"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Search treebank files again whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		config, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		engine, err := newEngine(config)
		if err != nil {
			logger.Fatal("Failed to initialize search engine", zap.Error(err))
		}

		opts := currentOutput()
		w, err := internal.NewWatcher(engine, logger, config.Extensions, func(path string, matches []search.Match, err error) {
			if err != nil {
				logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
				return
			}
			fmt.Printf("%s: %d matches\n", path, len(matches))
			if werr := writeMatches(os.Stdout, matches, opts); werr != nil {
				logger.Error("Error writing matches", zap.Error(werr))
			}
		})
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		if err := w.Add(args...); err != nil {
			logger.Fatal("Failed to watch", zap.Error(err))
		}

		logger.Info("watching", zap.Strings("dirs", args))
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Watch stopped", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	addSearchFlags(watchCmd.Flags())
}
