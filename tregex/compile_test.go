package tregex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gnolang/tregex/headfinder"
	"github.com/gnolang/tregex/tree"
	"github.com/gnolang/tregex/tregex/query"
)

func TestCompileStructure(t *testing.T) {
	t.Parallel()
	p, err := Compile("NP=np [< DT | < PRP$] !<2 CC", Config{})
	require.NoError(t, err)

	d, ok := p.Root().(*Description)
	require.True(t, ok)
	assert.Equal(t, RelRoot, d.Relation.Kind)
	assert.Equal(t, Literal{Values: []string{"NP"}}, d.Label)
	assert.Equal(t, "np", d.Name)

	conj, ok := d.Child.(*Coordination)
	require.True(t, ok)
	assert.True(t, conj.Conj)
	require.Len(t, conj.Children, 2)

	disj, ok := conj.Children[0].(*Coordination)
	require.True(t, ok)
	assert.False(t, disj.Conj)

	neg, ok := conj.Children[1].(*Description)
	require.True(t, ok)
	assert.True(t, neg.Negated)
	assert.Equal(t, Relation{Kind: RelHasIthChild, Index: 2}, neg.Relation)

	assert.Equal(t, []string{"np"}, p.Names())
	assert.Equal(t, "NP=np [[< DT | < PRP$] & !<2 CC]", p.String())
}

func TestCompileTopLevel(t *testing.T) {
	t.Parallel()
	p := MustCompile("NP | VP & __=x < DT", Config{})
	c, ok := p.Root().(*Coordination)
	require.True(t, ok)
	assert.True(t, isTopLevel(c))
	assert.Equal(t, []string{"x"}, p.Names())
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		cfg  Config
		want error
	}{
		{"head relation without finder", "NP <# NN", Config{}, ErrNoHeadFinder},
		{"basic category without function", "@NP < DT", Config{}, ErrNoBasicCategory},
		{"basic category in argument", "VP <+(@VP) VB", Config{}, ErrNoBasicCategory},
		{"zero child index", "NP <0 DT", Config{}, ErrBadRelationArg},
		{"undefined backref", "NP < =x", Config{}, ErrUndefinedName},
		{"undefined link", "NP < ~x", Config{}, ErrUndefinedName},
		{"group beyond regex", "/^N(P)/#2%v", Config{}, ErrVariableGroup},
		{"variable on two groups", "/(a)(b)/#1%v#2%v", Config{}, ErrVariableGroup},
		{"bad regex", "/(unclosed/", Config{}, ErrBadRegex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(tt.src, tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var cerr *CompileError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestCompileSyntaxError(t *testing.T) {
	t.Parallel()
	_, err := Compile("NP < (DT", Config{})
	require.Error(t, err)
	var qerr *query.Error
	assert.ErrorAs(t, err, &qerr)
	var cerr *CompileError
	assert.NotErrorAs(t, err, &cerr)
}

func TestCompileWithCollaborators(t *testing.T) {
	t.Parallel()
	cfg := Config{
		HeadFinder:    headfinder.Rightmost{},
		BasicCategory: tree.StripFunctionalTags,
		Logger:        zaptest.NewLogger(t),
	}
	p, err := Compile("@VP <# VBZ", cfg)
	require.NoError(t, err)
	assert.NotNil(t, p.Config().HeadFinder)

	root := tree.MustParse("(S (VP-1 (RB not) (VBZ is)))")
	results, err := p.Search(t.Context(), root)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "VP-1", results[0].Node.Label)
}

func TestMacros(t *testing.T) {
	t.Parallel()
	cfg := Config{Macros: []Macro{
		{Name: "@NOUN", Replacement: "/^NN/"},
		{Name: "@NOUNPHRASE", Replacement: "NP"},
	}}
	p, err := Compile("@NOUNPHRASE < @NOUN", cfg)
	require.NoError(t, err)
	assert.Equal(t, "@NOUNPHRASE < @NOUN", p.Source())
	assert.Equal(t, "NP < /^NN/", p.String())

	root := tree.MustParse("(NP (DT the) (NNS dogs))")
	assert.True(t, p.Matcher(root, root).Matches())
}

func TestNewValidates(t *testing.T) {
	t.Parallel()
	_, err := New(&Coordination{Children: []Node{Root{}}}, Config{})
	assert.ErrorIs(t, err, ErrBadCoordination)

	_, err = New(&Description{Relation: Relation{Kind: RelRoot}}, Config{})
	assert.ErrorIs(t, err, ErrUndefinedName)

	_, err = New(&Description{Relation: Relation{Kind: RelUnbrokenDominates}, Label: Wildcard{}}, Config{})
	assert.ErrorIs(t, err, ErrBadRelationArg)

	p, err := New(Root{}, Config{})
	require.NoError(t, err)
	root := tree.MustParse("(A b)")
	m := p.Matcher(root, root)
	assert.True(t, m.Matches())
	assert.Equal(t, root, m.Match())
	assert.False(t, m.Matches())
}

func TestCompilerCache(t *testing.T) {
	t.Parallel()
	c := NewCompiler(Config{}, 2)

	a, err := c.Compile("NP < DT")
	require.NoError(t, err)
	again, err := c.Compile("NP < DT")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = c.Compile("NP <")
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len(), "errors are not cached")

	_, err = c.Compile("VP")
	require.NoError(t, err)
	_, err = c.Compile("S")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	evicted, err := c.Compile("NP < DT")
	require.NoError(t, err)
	assert.NotSame(t, a, evicted)
}

func TestPatternSharedAcrossGoroutines(t *testing.T) {
	t.Parallel()
	c := NewCompiler(Config{}, 0)
	trees := []string{
		"(S (NP (DT a) (NN b)) (VP (VBZ c)))",
		"(S (NP (NN x)) (VP (VBD y) (NP (DT the) (NN z))))",
		"(FRAG (NP (DT this)))",
	}
	want := []int{1, 1, 0}

	var wg sync.WaitGroup
	for i := range 24 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.Compile("NP < DT < NN")
			if !assert.NoError(t, err) {
				return
			}
			root := tree.MustParse(trees[i%len(trees)])
			results, err := p.Search(t.Context(), root)
			assert.NoError(t, err)
			assert.Len(t, results, want[i%len(trees)])
		}()
	}
	wg.Wait()
}
