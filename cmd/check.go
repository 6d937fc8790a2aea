package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tregex/tregex"
	"github.com/gnolang/tregex/tregex/query"
)

var checkCmd = &cobra.Command{
	Use:   "check PATTERN...",
	Short: "Compile patterns and print their structure",
	Long: `Compiles each pattern with the configured head finder, basic category
function and macros, and prints the compiled form with the names it binds.
Example) tregex check 'NP=np < DT !< CC'`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		cfg, err := config.Tregex(logger)
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
		if !checkPatterns(os.Stdout, cfg, args) {
			os.Exit(1)
		}
	},
}

// checkPatterns reports whether every pattern compiled.
func checkPatterns(w io.Writer, cfg tregex.Config, srcs []string) bool {
	ok := true
	for _, src := range srcs {
		p, err := tregex.Compile(src, cfg)
		if err != nil {
			ok = false
			fmt.Fprint(w, formatPatternError(src, err))
			continue
		}
		fmt.Fprintf(w, "%s\n", p)
		if names := p.Names(); len(names) > 0 {
			fmt.Fprintf(w, "  names: %s\n", strings.Join(names, ", "))
		}
	}
	return ok
}

// formatPatternError shows err under the offending position of src.
func formatPatternError(src string, err error) string {
	pos := -1
	var serr *query.Error
	var cerr *tregex.CompileError
	switch {
	case errors.As(err, &serr):
		pos = serr.Pos
	case errors.As(err, &cerr):
		pos = cerr.Pos
	}
	if pos < 0 || pos > len(src) {
		return fmt.Sprintf("%s\nerror: %v\n", src, err)
	}
	return fmt.Sprintf("%s\n%s^\nerror: %v\n", src, strings.Repeat(" ", pos), err)
}
