package tregex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tregex/headfinder"
	"github.com/gnolang/tregex/tree"
)

const sampleTree = "(S (NP (DT the) (JJ big) (NN dog)) (VP (VBZ barks) (ADVP (RB loudly))))"

// nodeByLabel returns the first node in pre-order with the given label.
func nodeByLabel(t *testing.T, root *tree.Node, label string) *tree.Node {
	t.Helper()
	for _, n := range root.Preorder() {
		if n.Label == label {
			return n
		}
	}
	t.Fatalf("no node labeled %q", label)
	return nil
}

func labels(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label
	}
	return out
}

func mustArg(t *testing.T, negated bool, values ...string) *CategoryArg {
	t.Helper()
	return &CategoryArg{Negated: negated, Label: Literal{Values: values}}
}

func TestParseRelation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sym  string
		want Relation
		err  error
	}{
		{sym: "<<", want: Relation{Kind: RelDominates}},
		{sym: "<,", want: Relation{Kind: RelHasIthChild, Index: 1}},
		{sym: "<`", want: Relation{Kind: RelHasIthChild, Index: -1}},
		{sym: ">-", want: Relation{Kind: RelIthChildOf, Index: -1}},
		{sym: "<3", want: Relation{Kind: RelHasIthChild, Index: 3}},
		{sym: ">-2", want: Relation{Kind: RelIthChildOf, Index: -2}},
		{sym: "$..", want: Relation{Kind: RelLeftSisterOf}},
		{sym: "$,", want: Relation{Kind: RelImmediateRightSisterOf}},
		{sym: "<0", err: ErrBadRelationArg},
		{sym: "<<<", err: ErrUnknownRelation},
		{sym: "~~", err: ErrUnknownRelation},
	}
	for _, tt := range tests {
		t.Run(tt.sym, func(t *testing.T) {
			t.Parallel()
			got, err := parseRelation(tt.sym)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelationString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "<-2", Relation{Kind: RelHasIthChild, Index: -2}.String())
	assert.Equal(t, "$++", Relation{Kind: RelLeftSisterOf}.String())
	assert.Equal(t, "<+(!NP|VP)", Relation{Kind: RelUnbrokenDominates, Arg: mustArg(t, true, "NP", "VP")}.String())
}

func TestSearchOrder(t *testing.T) {
	t.Parallel()
	root := tree.MustParse(sampleTree)
	env := NewEnv(root, Config{HeadFinder: headfinder.Leftmost{}})

	tests := []struct {
		name   string
		rel    Relation
		anchor string
		want   []string
	}{
		{"dominates is pre-order", Relation{Kind: RelDominates}, "S",
			[]string{"NP", "DT", "the", "JJ", "big", "NN", "dog", "VP", "VBZ", "barks", "ADVP", "RB", "loudly"}},
		{"dominated by is nearest first", Relation{Kind: RelDominatedBy}, "RB", []string{"ADVP", "VP", "S"}},
		{"parent of", Relation{Kind: RelParentOf}, "NP", []string{"DT", "JJ", "NN"}},
		{"child of", Relation{Kind: RelChildOf}, "JJ", []string{"NP"}},
		{"child of root", Relation{Kind: RelChildOf}, "S", nil},
		{"second child", Relation{Kind: RelHasIthChild, Index: 2}, "NP", []string{"JJ"}},
		{"last child", Relation{Kind: RelHasIthChild, Index: -1}, "NP", []string{"NN"}},
		{"out of range child", Relation{Kind: RelHasIthChild, Index: 4}, "NP", nil},
		{"is first child", Relation{Kind: RelIthChildOf, Index: 1}, "DT", []string{"NP"}},
		{"is not first child", Relation{Kind: RelIthChildOf, Index: 1}, "JJ", nil},
		{"only child", Relation{Kind: RelOnlyChild}, "ADVP", []string{"RB"}},
		{"only child of", Relation{Kind: RelOnlyChildOf}, "RB", []string{"ADVP"}},
		{"leftmost descendants", Relation{Kind: RelLeftmostDescendant}, "S", []string{"NP", "DT", "the"}},
		{"rightmost descendants", Relation{Kind: RelRightmostDescendant}, "S", []string{"VP", "ADVP", "RB", "loudly"}},
		{"leftmost descendant of", Relation{Kind: RelLeftmostDescendantOf}, "the", []string{"DT", "NP", "S"}},
		{"rightmost descendant of", Relation{Kind: RelRightmostDescendantOf}, "loudly", []string{"RB", "ADVP", "VP", "S"}},
		{"unary path down", Relation{Kind: RelUnaryPathDescendant}, "ADVP", []string{"RB", "loudly"}},
		{"unary path up", Relation{Kind: RelUnaryPathAncestor}, "loudly", []string{"RB", "ADVP"}},
		{"precedes visits higher levels first", Relation{Kind: RelPrecedes}, "JJ",
			[]string{"VP", "VBZ", "barks", "ADVP", "RB", "loudly", "NN", "dog"}},
		{"follows", Relation{Kind: RelFollows}, "VBZ",
			[]string{"NP", "DT", "the", "JJ", "big", "NN", "dog"}},
		{"immediately precedes", Relation{Kind: RelImmediatelyPrecedes}, "dog", []string{"VP", "VBZ", "barks"}},
		{"immediately follows", Relation{Kind: RelImmediatelyFollows}, "VP", []string{"NP", "NN", "dog"}},
		{"nothing precedes the last word", Relation{Kind: RelImmediatelyPrecedes}, "loudly", nil},
		{"sisters", Relation{Kind: RelSisterOf}, "JJ", []string{"DT", "NN"}},
		{"right sisters farthest first", Relation{Kind: RelLeftSisterOf}, "DT", []string{"NN", "JJ"}},
		{"left sisters farthest first", Relation{Kind: RelRightSisterOf}, "NN", []string{"DT", "JJ"}},
		{"immediate right sister", Relation{Kind: RelImmediateLeftSisterOf}, "DT", []string{"JJ"}},
		{"immediate left sister", Relation{Kind: RelImmediateRightSisterOf}, "DT", nil},
		{"root has no sisters", Relation{Kind: RelSisterOf}, "S", nil},
		{"headed by", Relation{Kind: RelHeadedBy}, "S", []string{"NP", "DT", "the"}},
		{"heads", Relation{Kind: RelHeads}, "the", []string{"DT", "NP", "S"}},
		{"immediately headed by", Relation{Kind: RelImmediatelyHeadedBy}, "VP", []string{"VBZ"}},
		{"immediately heads", Relation{Kind: RelImmediatelyHeads}, "VBZ", []string{"VP"}},
		{"does not head", Relation{Kind: RelImmediatelyHeads}, "ADVP", nil},
		{"unbroken dominance expands matching nodes", Relation{Kind: RelUnbrokenDominates, Arg: mustArg(t, false, "NP")}, "S",
			[]string{"NP", "DT", "JJ", "NN", "VP"}},
		{"negated category argument", Relation{Kind: RelUnbrokenDominates, Arg: mustArg(t, true, "NP")}, "S",
			[]string{"NP", "VP", "VBZ", "barks", "ADVP", "RB", "loudly"}},
		{"unbroken ancestors", Relation{Kind: RelUnbrokenDominatedBy, Arg: mustArg(t, false, "ADVP")}, "RB", []string{"ADVP", "VP"}},
		{"unbroken precedence stops at non-matching nodes", Relation{Kind: RelUnbrokenPrecedes, Arg: mustArg(t, false, "NN")}, "DT",
			[]string{"big", "JJ"}},
		{"unbroken precedence continues through matches", Relation{Kind: RelUnbrokenPrecedes, Arg: mustArg(t, false, "JJ")}, "DT",
			[]string{"big", "JJ", "dog", "NN"}},
		{"unbroken following", Relation{Kind: RelUnbrokenFollows, Arg: mustArg(t, false, "JJ")}, "NN",
			[]string{"big", "JJ", "the", "DT"}},
		{"equals", Relation{Kind: RelEquals}, "VP", []string{"VP"}},
		{"pattern splitter is the whole tree", Relation{Kind: RelPatternSplitter}, "dog",
			[]string{"S", "NP", "DT", "the", "JJ", "big", "NN", "dog", "VP", "VBZ", "barks", "ADVP", "RB", "loudly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			anchor := nodeByLabel(t, root, tt.anchor)
			got := Collect(tt.rel.Search(anchor, env))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, labels(got))
		})
	}
}

func TestSearchRestarts(t *testing.T) {
	t.Parallel()
	root := tree.MustParse(sampleTree)
	env := NewEnv(root, Config{})
	rel := Relation{Kind: RelDominates}

	first := rel.Search(root, env)
	first()
	first()
	second := rel.Search(root, env)
	assert.Equal(t, "NP", second().Label)
	assert.Equal(t, "the", first().Label)
}

// Satisfies must agree with membership in Search for every pair of nodes.
func TestSatisfiesAgreesWithSearch(t *testing.T) {
	t.Parallel()
	root := tree.MustParse("(ROOT (S (NP (DT the) (NN dog)) (VP (VBZ barks) (PP (IN at) (NP (NNS cats)))) (. !)))")
	env := NewEnv(root, Config{HeadFinder: headfinder.Rightmost{}})
	nodes := root.Preorder()

	rels := []Relation{
		{Kind: RelRoot}, {Kind: RelEquals}, {Kind: RelPatternSplitter},
		{Kind: RelDominates}, {Kind: RelDominatedBy}, {Kind: RelParentOf}, {Kind: RelChildOf},
		{Kind: RelHasIthChild, Index: 1}, {Kind: RelHasIthChild, Index: -2},
		{Kind: RelIthChildOf, Index: 2}, {Kind: RelIthChildOf, Index: -1},
		{Kind: RelOnlyChild}, {Kind: RelOnlyChildOf},
		{Kind: RelLeftmostDescendant}, {Kind: RelRightmostDescendant},
		{Kind: RelLeftmostDescendantOf}, {Kind: RelRightmostDescendantOf},
		{Kind: RelUnaryPathDescendant}, {Kind: RelUnaryPathAncestor},
		{Kind: RelPrecedes}, {Kind: RelFollows},
		{Kind: RelImmediatelyPrecedes}, {Kind: RelImmediatelyFollows},
		{Kind: RelSisterOf}, {Kind: RelLeftSisterOf}, {Kind: RelRightSisterOf},
		{Kind: RelImmediateLeftSisterOf}, {Kind: RelImmediateRightSisterOf},
		{Kind: RelHeadedBy}, {Kind: RelHeads}, {Kind: RelImmediatelyHeadedBy}, {Kind: RelImmediatelyHeads},
		{Kind: RelUnbrokenDominates, Arg: mustArg(t, false, "VP", "PP")},
		{Kind: RelUnbrokenDominatedBy, Arg: mustArg(t, true, "S")},
		{Kind: RelUnbrokenPrecedes, Arg: mustArg(t, false, "VBZ", "IN")},
		{Kind: RelUnbrokenFollows, Arg: mustArg(t, false, "NN")},
	}
	for _, rel := range rels {
		t.Run(rel.String(), func(t *testing.T) {
			t.Parallel()
			for _, t1 := range nodes {
				found := make(map[*tree.Node]bool)
				for _, n := range Collect(rel.Search(t1, env)) {
					assert.False(t, found[n], "%s yielded %s twice from %s", rel, n, t1)
					found[n] = true
				}
				for _, t2 := range nodes {
					assert.Equal(t, found[t2], rel.Satisfies(t1, t2, env),
						"%s: %s vs %s", rel, t1, t2)
				}
			}
		})
	}
}
