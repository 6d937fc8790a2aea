package cmd

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gnolang/tregex/internal"
	"github.com/gnolang/tregex/search"
)

const defaultCacheDir = ".tregex-cache"

// variable for flags
var (
	patterns     []string
	jsonOutput   bool
	outPath      string
	showCaptures bool
	prettyPrint  bool
	countOnly    bool
	useCache     bool
	cacheDir     string
	failOnMatch  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [paths...]",
	Short: "Search treebank files for tree patterns",
	Long: `Searches every tree in the given files and directories for the patterns
given with -p and those listed in the configuration file.
Example) tregex search -p 'NP < (DT=det $+ JJ)' --captures wsj/`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		engine, err := newEngine(config)
		if err != nil {
			logger.Fatal("Failed to initialize search engine", zap.Error(err))
		}

		matches, err := search.ProcessFiles(ctx, logger, engine, args, search.Options{
			Extensions: config.Extensions,
			Progress:   os.Stderr,
		})
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
		}
		if werr := writeMatches(os.Stdout, matches, currentOutput()); werr != nil {
			logger.Fatal("Error writing matches", zap.Error(werr))
		}
		if err != nil || (failOnMatch && len(matches) > 0) {
			os.Exit(1)
		}
	},
}

func init() {
	addSearchFlags(searchCmd.Flags())
}

func addSearchFlags(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&patterns, "pattern", "p", nil, "Pattern to search for (repeatable)")
	flags.BoolVar(&jsonOutput, "json", false, "Output matches in JSON format")
	flags.StringVarP(&outPath, "output", "o", "", "Output path (default stdout)")
	flags.BoolVar(&showCaptures, "captures", false, "Show the nodes bound to names")
	flags.BoolVar(&prettyPrint, "pretty", false, "Print matched subtrees over several lines")
	flags.BoolVar(&countOnly, "count", false, "Only print the number of matches per pattern")
	flags.BoolVar(&useCache, "cache", false, "Reuse results of unchanged files")
	flags.StringVar(&cacheDir, "cache-dir", defaultCacheDir, "Directory of the result cache")
	flags.BoolVar(&failOnMatch, "fail-on-match", false, "Exit with status 1 when anything matches")
}

// newEngine builds the searcher for the configured and flag patterns,
// behind the result cache when --cache is set.
func newEngine(config search.Config) (search.Engine, error) {
	searcher, err := config.NewSearcher(logger, patterns...)
	if err != nil {
		return nil, err
	}
	if !useCache {
		return searcher, nil
	}
	cache, err := internal.NewCache(cacheDir)
	if err != nil {
		return nil, err
	}
	key, err := patternKey(config, searcher)
	if err != nil {
		return nil, err
	}
	return &internal.CachedEngine{
		Engine: searcher,
		Cache:  cache,
		Key:    key,
	}, nil
}

// patternKey identifies the compiled patterns and the settings that change
// their results, including the contents of a head rule table.
func patternKey(config search.Config, s *search.Searcher) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%s|%d", config.BasicCategory, config.HeadFinder, config.StepLimit)
	if config.HeadFinder == "rules" {
		data, err := os.ReadFile(config.HeadRulesPath())
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "|rules=%x", md5.Sum(data))
	}
	for _, np := range s.Patterns() {
		sb.WriteString("|" + np.Name + "=" + np.Pattern.String())
	}
	return sb.String(), nil
}

type outputOptions struct {
	JSON     bool
	Path     string
	Captures bool
	Pretty   bool
	Count    bool
}

func currentOutput() outputOptions {
	return outputOptions{
		JSON:     jsonOutput,
		Path:     outPath,
		Captures: showCaptures,
		Pretty:   prettyPrint,
		Count:    countOnly,
	}
}

// writeMatches prints matches to w, or to opts.Path when it is set.
func writeMatches(w io.Writer, matches []search.Match, opts outputOptions) error {
	if opts.Path != "" {
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch {
	case opts.JSON:
		matchesByFile := make(map[string][]search.Match)
		for _, m := range matches {
			matchesByFile[m.File] = append(matchesByFile[m.File], m)
		}
		d, err := json.Marshal(matchesByFile)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(d))
		return err
	case opts.Count:
		_, err := io.WriteString(w, internal.FormatCounts(matches))
		return err
	default:
		_, err := io.WriteString(w, internal.FormatMatches(matches, internal.PrintOptions{
			Captures: opts.Captures,
			Pretty:   opts.Pretty,
		}))
		return err
	}
}
