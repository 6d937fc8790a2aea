package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/gnolang/tregex/search"
	"github.com/gnolang/tregex/tree"
)

const indentWidth = 2

var (
	matchStyle   = color.New(color.FgGreen, color.Bold)
	patternStyle = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	arrowStyle   = color.New(color.FgBlue, color.Bold)
	nameStyle    = color.New(color.FgMagenta)
	countStyle   = color.New(color.FgRed, color.Bold)
)

// PrintOptions select what FormatMatches shows for each match.
type PrintOptions struct {
	// Captures lists the named nodes under the match.
	Captures bool
	// Pretty spreads the matched subtree over indented lines.
	Pretty bool
}

// FormatMatches renders matches in the order given:
//
//	match: NP < DT
//	 --> bank.mrg:3
//	  (NP (DT the) (NN dog))
//	  det = (DT the)
func FormatMatches(matches []search.Match, opts PrintOptions) string {
	var b strings.Builder
	for _, m := range matches {
		b.WriteString(formatMatchHeader(m))
		node := m.Node
		if opts.Pretty {
			node = prettyTree(node)
		}
		for _, line := range strings.Split(node, "\n") {
			b.WriteString("  " + line + "\n")
		}
		if opts.Captures {
			for _, name := range slices.Sorted(maps.Keys(m.Captures)) {
				b.WriteString("  " + nameStyle.Sprint(name) + " = " + m.Captures[name] + "\n")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatMatchHeader(m search.Match) string {
	return matchStyle.Sprint("match: ") + patternStyle.Sprint(m.Pattern) + "\n" +
		arrowStyle.Sprint(" --> ") + fileStyle.Sprintf("%s:%d", m.File, m.TreeIndex) + "\n"
}

// FormatCounts renders the number of matches per pattern, patterns sorted.
func FormatCounts(matches []search.Match) string {
	counts := make(map[string]int)
	for _, m := range matches {
		counts[m.Pattern]++
	}
	var b strings.Builder
	for _, pattern := range slices.Sorted(maps.Keys(counts)) {
		b.WriteString(patternStyle.Sprint(pattern) + ": " + countStyle.Sprint(counts[pattern]) + "\n")
	}
	fmt.Fprintf(&b, "total: %d\n", len(matches))
	return b.String()
}

// prettyTree indents a bracketed tree so that every phrase starts a line and
// pre-terminals stay on their parent's line. Unparsable input is returned as is.
func prettyTree(s string) string {
	t, err := tree.Parse(s)
	if err != nil {
		return s
	}
	var b strings.Builder
	writePretty(&b, t, 0)
	return b.String()
}

func writePretty(b *strings.Builder, n *tree.Node, depth int) {
	if n.IsLeaf() || n.IsPreTerminal() {
		b.WriteString(n.String())
		return
	}
	b.WriteString("(" + n.Label)
	for _, c := range n.Children {
		if c.IsLeaf() || c.IsPreTerminal() {
			b.WriteByte(' ')
		} else {
			b.WriteString("\n" + strings.Repeat(" ", (depth+1)*indentWidth))
		}
		writePretty(b, c, depth+1)
	}
	b.WriteByte(')')
}
