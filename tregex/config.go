package tregex

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/tregex/tree"
)

// Config carries the collaborators a pattern is compiled against. It is
// stored on the compiled Pattern, so patterns built with different
// configurations can be used side by side.
type Config struct {
	// HeadFinder is required by the head relations (<#, >#, <<#, >>#).
	HeadFinder tree.HeadFinder
	// BasicCategory is required by '@' descriptions and category arguments.
	BasicCategory func(string) string
	// Macros are source rewrites applied before parsing.
	Macros []Macro
	Logger *zap.Logger
}

// Macro replaces every occurrence of Name in pattern source with Replacement.
type Macro struct {
	Name        string `yaml:"name"`
	Replacement string `yaml:"replacement"`
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// expandMacros applies macros longest name first, so a macro whose name
// contains another's is not clobbered by the shorter one.
func expandMacros(src string, macros []Macro) string {
	if len(macros) == 0 {
		return src
	}
	sorted := make([]Macro, 0, len(macros))
	for _, m := range macros {
		if m.Name != "" {
			sorted = append(sorted, m)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Name) > len(sorted[j].Name)
	})
	pairs := make([]string, 0, 2*len(sorted))
	for _, m := range sorted {
		pairs = append(pairs, m.Name, m.Replacement)
	}
	return strings.NewReplacer(pairs...).Replace(src)
}
