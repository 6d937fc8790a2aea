package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tregex/search"
	"github.com/gnolang/tregex/tregex"
)

// initCmd: tregex init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := initConfigurationFile(cfgFile)
		if err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", path)
	},
}

func initConfigurationFile(configurationPath string) (string, error) {
	if configurationPath == "" {
		configurationPath = search.DefaultConfigFile
	}

	config := search.DefaultConfig()
	config.Macros = []tregex.Macro{
		{Name: "@NOUN", Replacement: "/^NN/"},
	}
	config.Patterns = []search.PatternConfig{
		{Name: "np-with-determiner", Pattern: "@NP < DT"},
		{Name: "np-headed-by-noun", Pattern: "@NP <# @NOUN"},
	}
	return configurationPath, search.WriteConfig(configurationPath, config)
}
