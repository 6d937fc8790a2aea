package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/gnolang/tregex/tree"
	"github.com/gnolang/tregex/tregex"
)

// Engine searches one treebank file. It stops early when ctx is done.
type Engine interface {
	Run(ctx context.Context, path string) ([]Match, error)
}

// Match is one matched node. Trees are rendered in bracketed form so that
// matches can be cached and printed without the source file.
type Match struct {
	Pattern   string            `json:"pattern"`
	File      string            `json:"file"`
	TreeIndex int               `json:"tree"`
	Node      string            `json:"match"`
	Captures  map[string]string `json:"captures,omitempty"`
}

// NamedPattern is a compiled pattern and the name matches report.
type NamedPattern struct {
	Name    string
	Pattern *tregex.Pattern
}

// Searcher applies a fixed set of patterns to every tree of a file.
type Searcher struct {
	patterns  []NamedPattern
	stepLimit int
	logger    *zap.Logger
}

var _ Engine = (*Searcher)(nil)

// NewSearcher returns a searcher over patterns. A positive stepLimit bounds
// the work spent on each (pattern, tree) pair.
func NewSearcher(logger *zap.Logger, stepLimit int, patterns ...NamedPattern) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{patterns: patterns, stepLimit: stepLimit, logger: logger}
}

func (s *Searcher) Patterns() []NamedPattern { return s.patterns }

func (s *Searcher) Run(ctx context.Context, path string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.SearchReader(ctx, path, f)
}

// SearchReader searches every tree read from r, reporting them as file
// name. Trees are numbered from zero. A tree that exhausts the step limit
// contributes the matches found before the limit and is logged.
func (s *Searcher) SearchReader(ctx context.Context, name string, r io.Reader) ([]Match, error) {
	rd := tree.NewReader(r)
	var matches []Match
	for i := 0; ; i++ {
		root, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return matches, nil
		}
		if err != nil {
			return matches, fmt.Errorf("%s: tree %d: %w", name, i, err)
		}
		for _, np := range s.patterns {
			results, err := np.Pattern.Search(ctx, root,
				tregex.WithStepLimit(s.stepLimit),
				tregex.WithLogger(s.logger),
			)
			for _, res := range results {
				matches = append(matches, newMatch(np.Name, name, i, res))
			}
			switch {
			case errors.Is(err, tregex.ErrStepLimit):
				s.logger.Warn("step limit reached",
					zap.String("file", name),
					zap.Int("tree", i),
					zap.String("pattern", np.Name),
				)
			case err != nil:
				return matches, err
			}
		}
	}
}

func newMatch(pattern, file string, index int, res tregex.Result) Match {
	m := Match{
		Pattern:   pattern,
		File:      file,
		TreeIndex: index,
		Node:      res.Node.String(),
	}
	if len(res.Captures) > 0 {
		m.Captures = make(map[string]string, len(res.Captures))
		for name, n := range res.Captures {
			m.Captures[name] = n.String()
		}
	}
	return m
}
