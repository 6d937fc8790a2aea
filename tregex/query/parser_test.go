package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_RoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single node", "NP", "NP"},
		{"one relation", "NP < DT", "NP < DT"},
		{"juxtaposed relations", "NP < DT < NN", "NP [< DT & < NN]"},
		{"explicit and", "NP < DT & < NN", "NP [< DT & < NN]"},
		{"relation or", "NP < DT | < NN", "NP [< DT | < NN]"},
		{"nested child", "S < (VP < VBZ)", "S < (VP < VBZ)"},
		{"bracket group", "NP [< DT | < PRP] !< CC", "NP [[< DT | < PRP] & !< CC]"},
		{"negated top", "!NP < DT", "!NP < DT"},
		{"optional relation", "NP ?< DT=d", "NP ?< DT=d"},
		{"alternatives", "NP|NX <, DT", "NP|NX <, DT"},
		{"basic category", "@NP < @DT", "@NP < @DT"},
		{"capture and backref", "NP=a < (DT $ =a)", "NP=a < (DT $ =a)"},
		{"link", "NP=a << ~a", "NP=a << ~a"},
		{"regex groups", "/^(N)(P)$/#1%x#2%y", "/^(N)(P)$/#1%x#2%y"},
		{"category arg", "VP <+(!@VP) VB", "VP <+(!@VP) VB"},
		{"numbered", "NP <-1 NN", "NP <-1 NN"},
		{"top or", "NP | VP", "[NP | VP]"},
		{"top and binds tighter", "A | B & C", "[A | [B & C]]"},
		{"shared capture", "(__=x < DT) & (__=x < NN)", "[__=x < DT & __=x < NN]"},
		{"group gets relations", "(NP) < DT", "NP < DT"},
		{"literal pipe with spaces is top or", "NP < DT | VP", "[NP < DT | VP]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParser_Structure(t *testing.T) {
	t.Parallel()
	node, err := Parse("!NP=n <2 /^N/#0%v")
	require.NoError(t, err)

	top, ok := node.(*RelationNode)
	require.True(t, ok)
	assert.Empty(t, top.Symbol)
	assert.True(t, top.Negated)
	assert.Equal(t, DescLiteral, top.Child.Kind)
	assert.Equal(t, "n", top.Child.Name)

	rel, ok := top.Child.Relations.(*RelationNode)
	require.True(t, ok)
	assert.Equal(t, "<2", rel.Symbol)
	assert.Equal(t, DescRegex, rel.Child.Kind)
	assert.Equal(t, []VarGroup{{Group: 0, Var: "v"}}, rel.Child.VarGroups)
}

func TestParser_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"dangling relation", "NP <"},
		{"missing paren", "S < (VP < VBZ"},
		{"missing bracket", "NP [< DT"},
		{"bad name", "NP= x"},
		{"bad group", "/a/#x%v"},
		{"named category arg", "VP <+(VP=x) VB"},
		{"relations after combined group", "(A | B) < C"},
		{"trailing token", "NP )"},
		{"at on backref", "NP < @=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.input)
			require.Error(t, err)
			var qerr *Error
			assert.ErrorAs(t, err, &qerr)
		})
	}
}
