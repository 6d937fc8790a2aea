// Package tregex matches patterns against labeled, ordered trees such as
// syntactic parse trees.
//
// A pattern is compiled once and may then be matched against any number of
// trees, concurrently:
//
//	p, err := tregex.Compile("NP < DT=det", tregex.Config{})
//	if err != nil {
//		return err
//	}
//	m := p.Matcher(root, root)
//	for m.FindNextMatchingNode() {
//		det, _ := m.Node("det")
//		fmt.Println(m.Match(), det)
//	}
//
// Matching is a depth-first backtracking search. Each pattern node keeps a
// lazy iterator over the candidates of its relation; when a later node
// fails, the most recent node advances first. Negated nodes are decided once
// per anchor, and optional nodes succeed without binding when nothing
// matches. See package query for the pattern syntax.
//
// Patterns that use head relations or '@' need a HeadFinder or a
// BasicCategory function in their Config.
package tregex
