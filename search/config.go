package search

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/tregex/headfinder"
	"github.com/gnolang/tregex/tree"
	"github.com/gnolang/tregex/tregex"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".tregex.yaml"

// Config is the content of a .tregex.yaml file.
type Config struct {
	Name string `yaml:"name"`
	// BasicCategory is "penn" (strip functional tags and indices) or "none".
	BasicCategory string `yaml:"basic_category"`
	// HeadFinder is "leftmost", "rightmost" or "rules". Empty disables the
	// head relations.
	HeadFinder string `yaml:"head_finder,omitempty"`
	// HeadRules is the rule table read when HeadFinder is "rules". A relative
	// path is resolved against the directory of the configuration file.
	HeadRules  string          `yaml:"head_rules,omitempty"`
	StepLimit  int             `yaml:"step_limit"`
	Extensions []string        `yaml:"extensions,omitempty"`
	Macros     []tregex.Macro  `yaml:"macros,omitempty"`
	Patterns   []PatternConfig `yaml:"patterns,omitempty"`

	dir string
}

// PatternConfig is a named pattern kept in the configuration file.
type PatternConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

func DefaultConfig() Config {
	return Config{
		Name:          "tregex",
		BasicCategory: "penn",
		HeadFinder:    "leftmost",
		Extensions:    DefaultExtensions(),
	}
}

// LoadConfig reads a configuration file. Fields missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("parsing %s: %w", path, err)
	}
	config.dir = filepath.Dir(path)
	return config, nil
}

// WriteConfig marshals config to path, replacing any existing file.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// Tregex returns the compile configuration described by c.
func (c Config) Tregex(logger *zap.Logger) (tregex.Config, error) {
	cfg := tregex.Config{Macros: c.Macros, Logger: logger}

	switch c.BasicCategory {
	case "penn":
		cfg.BasicCategory = tree.StripFunctionalTags
	case "", "none":
	default:
		return cfg, fmt.Errorf("unknown basic_category %q", c.BasicCategory)
	}

	switch c.HeadFinder {
	case "":
	case "leftmost":
		cfg.HeadFinder = headfinder.Leftmost{}
	case "rightmost":
		cfg.HeadFinder = headfinder.Rightmost{}
	case "rules":
		if c.HeadRules == "" {
			return cfg, fmt.Errorf("head_finder is rules but head_rules is empty")
		}
		rules, err := headfinder.LoadRules(c.HeadRulesPath())
		if err != nil {
			return cfg, err
		}
		rules.Category = cfg.BasicCategory
		cfg.HeadFinder = rules
	default:
		return cfg, fmt.Errorf("unknown head_finder %q", c.HeadFinder)
	}
	return cfg, nil
}

// HeadRulesPath returns HeadRules resolved against the directory of the
// configuration file it was loaded from.
func (c Config) HeadRulesPath() string {
	if c.HeadRules == "" || filepath.IsAbs(c.HeadRules) || c.dir == "" {
		return c.HeadRules
	}
	return filepath.Join(c.dir, c.HeadRules)
}

// NewSearcher compiles the configured patterns followed by extra, which
// are named after their own source text.
func (c Config) NewSearcher(logger *zap.Logger, extra ...string) (*Searcher, error) {
	cfg, err := c.Tregex(logger)
	if err != nil {
		return nil, err
	}
	compiler := tregex.NewCompiler(cfg, 0)

	var patterns []NamedPattern
	add := func(name, src string) error {
		p, err := compiler.Compile(src)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", name, err)
		}
		patterns = append(patterns, NamedPattern{Name: name, Pattern: p})
		return nil
	}
	for _, pc := range c.Patterns {
		if err := add(pc.Name, pc.Pattern); err != nil {
			return nil, err
		}
	}
	for _, src := range extra {
		if err := add(src, src); err != nil {
			return nil, err
		}
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no patterns to search for")
	}
	return NewSearcher(logger, c.StepLimit, patterns...), nil
}
