package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/tregex/search"
	"github.com/gnolang/tregex/tregex"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Run(_ context.Context, path string) ([]search.Match, error) {
	args := m.Called(path)
	return args.Get(0).([]search.Match), args.Error(1)
}

func setupMockEngine(expected []search.Match, path string) *mockEngine {
	engine := new(mockEngine)
	engine.On("Run", path).Return(expected, nil)
	return engine
}

var sampleMatches = []search.Match{
	{Pattern: "NP < DT=d", File: "a.mrg", TreeIndex: 0, Node: "(NP (DT the) (NN dog))", Captures: map[string]string{"d": "(DT the)"}},
	{Pattern: "VP", File: "b.mrg", TreeIndex: 2, Node: "(VP (VBD ran))"},
}

func TestSearchWithMockEngine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mrg")
	require.NoError(t, os.WriteFile(path, []byte("(S x)"), 0o644))

	engine := setupMockEngine(sampleMatches[:1], path)
	logger, _ := zap.NewProduction()

	matches, err := search.ProcessFiles(context.Background(), logger, engine, []string{path}, search.Options{})
	require.NoError(t, err)
	assert.Equal(t, sampleMatches[:1], matches)
	engine.AssertExpectations(t)
}

func TestWriteMatches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		opts     outputOptions
		expected string
	}{
		{
			name: "text",
			opts: outputOptions{Captures: true},
			expected: "match: NP < DT=d\n --> a.mrg:0\n  (NP (DT the) (NN dog))\n  d = (DT the)\n\n" +
				"match: VP\n --> b.mrg:2\n  (VP (VBD ran))\n\n",
		},
		{
			name:     "count",
			opts:     outputOptions{Count: true},
			expected: "NP < DT=d: 1\nVP: 1\ntotal: 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, writeMatches(&buf, sampleMatches, tt.opts))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteMatchesJSONToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.json")

	var buf bytes.Buffer
	require.NoError(t, writeMatches(&buf, sampleMatches, outputOptions{JSON: true, Path: path}))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var byFile map[string][]search.Match
	require.NoError(t, json.Unmarshal(data, &byFile))
	assert.Equal(t, map[string][]search.Match{
		"a.mrg": sampleMatches[:1],
		"b.mrg": sampleMatches[1:],
	}, byFile)
}

func TestCheckPatterns(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ok := checkPatterns(&buf, tregex.Config{}, []string{"NP=np < DT !< CC", "NP <# NN", "NP < (DT"})
	assert.False(t, ok)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "NP=np [< DT & !< CC]\n  names: np\n"), out)
	assert.Contains(t, out, "NP <# NN\n   ^\nerror: compile error at position 3")
	assert.Contains(t, out, "error: pattern syntax error")

	buf.Reset()
	assert.True(t, checkPatterns(&buf, tregex.Config{}, []string{"S"}))
	assert.Equal(t, "S\n", buf.String())
}

func TestFormatPatternError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		err      error
		expected string
	}{
		{
			name:     "syntax",
			src:      "NP <",
			err:      &tregexSyntax{},
			expected: "NP <\nerror: boom\n",
		},
		{
			name:     "compile",
			src:      "A < ~x",
			err:      &tregex.CompileError{Kind: tregex.ErrUndefinedName, Pos: 2},
			expected: "A < ~x\n  ^\nerror: compile error at position 2: reference to undefined name\n",
		},
		{
			name:     "position past the end",
			src:      "A",
			err:      &tregex.CompileError{Kind: tregex.ErrBadRegex, Pos: 9},
			expected: "A\nerror: compile error at position 9: invalid regex\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, formatPatternError(tt.src, tt.err))
		})
	}
}

type tregexSyntax struct{}

func (*tregexSyntax) Error() string { return "boom" }

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tregex.yaml")

	written, err := initConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	config, err := search.LoadConfig(path)
	require.NoError(t, err)
	s, err := config.NewSearcher(nil)
	require.NoError(t, err, "the generated patterns compile")
	assert.Len(t, s.Patterns(), 2)
}

func TestPatternKey(t *testing.T) {
	t.Parallel()
	config := search.DefaultConfig()
	a, err := config.NewSearcher(nil, "NP < DT")
	require.NoError(t, err)
	b, err := config.NewSearcher(nil, "NP < DT", "VP")
	require.NoError(t, err)

	keyA, err := patternKey(config, a)
	require.NoError(t, err)
	keyB, err := patternKey(config, b)
	require.NoError(t, err)
	assert.Equal(t, "penn|leftmost|0|NP < DT=NP < DT", keyA)
	assert.NotEqual(t, keyA, keyB)

	config.StepLimit = 10
	limited, err := patternKey(config, a)
	require.NoError(t, err)
	assert.NotEqual(t, keyA, limited)
}

func TestPatternKeyFollowsHeadRules(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	rules := filepath.Join(dir, "heads.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("default: left\n"), 0o644))
	cfgPath := filepath.Join(dir, "tregex.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("head_finder: rules\nhead_rules: heads.yaml\n"), 0o644))

	config, err := search.LoadConfig(cfgPath)
	require.NoError(t, err)
	s, err := config.NewSearcher(nil, "VP <# VBZ")
	require.NoError(t, err)

	before, err := patternKey(config, s)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(rules, []byte("default: right\n"), 0o644))
	after, err := patternKey(config, s)
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "editing the rule table changes the key")

	require.NoError(t, os.Remove(rules))
	_, err = patternKey(config, s)
	assert.Error(t, err)
}
