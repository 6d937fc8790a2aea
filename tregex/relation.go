package tregex

import (
	"strconv"
	"strings"

	"github.com/gnolang/tregex/tree"
)

// RelKind enumerates the structural relations.
type RelKind int

const (
	RelRoot RelKind = iota // the anchor itself
	RelEquals
	RelPatternSplitter
	RelDominates
	RelDominatedBy
	RelParentOf
	RelChildOf
	RelHasIthChild
	RelIthChildOf
	RelOnlyChild
	RelOnlyChildOf
	RelLeftmostDescendant
	RelRightmostDescendant
	RelLeftmostDescendantOf
	RelRightmostDescendantOf
	RelUnaryPathDescendant
	RelUnaryPathAncestor
	RelPrecedes
	RelFollows
	RelImmediatelyPrecedes
	RelImmediatelyFollows
	RelSisterOf
	RelLeftSisterOf
	RelRightSisterOf
	RelImmediateLeftSisterOf
	RelImmediateRightSisterOf
	RelHeadedBy
	RelHeads
	RelImmediatelyHeadedBy
	RelImmediatelyHeads
	RelUnbrokenDominates
	RelUnbrokenDominatedBy
	RelUnbrokenPrecedes
	RelUnbrokenFollows
)

var relSymbols = map[RelKind]string{
	RelRoot:                   "Root",
	RelEquals:                 "==",
	RelPatternSplitter:        ":",
	RelDominates:              "<<",
	RelDominatedBy:            ">>",
	RelParentOf:               "<",
	RelChildOf:                ">",
	RelHasIthChild:            "<N",
	RelIthChildOf:             ">N",
	RelOnlyChild:              "<:",
	RelOnlyChildOf:            ">:",
	RelLeftmostDescendant:     "<<,",
	RelRightmostDescendant:    "<<-",
	RelLeftmostDescendantOf:   ">>,",
	RelRightmostDescendantOf:  ">>-",
	RelUnaryPathDescendant:    "<<:",
	RelUnaryPathAncestor:      ">>:",
	RelPrecedes:               "..",
	RelFollows:                ",,",
	RelImmediatelyPrecedes:    ".",
	RelImmediatelyFollows:     ",",
	RelSisterOf:               "$",
	RelLeftSisterOf:           "$++",
	RelRightSisterOf:          "$--",
	RelImmediateLeftSisterOf:  "$+",
	RelImmediateRightSisterOf: "$-",
	RelHeadedBy:               "<<#",
	RelHeads:                  ">>#",
	RelImmediatelyHeadedBy:    "<#",
	RelImmediatelyHeads:       ">#",
	RelUnbrokenDominates:      "<+",
	RelUnbrokenDominatedBy:    ">+",
	RelUnbrokenPrecedes:       ".+",
	RelUnbrokenFollows:        ",+",
}

func (k RelKind) String() string {
	if s, ok := relSymbols[k]; ok {
		return s
	}
	return "RelKind(" + strconv.Itoa(int(k)) + ")"
}

// symbolKinds maps source spellings, including aliases, to kinds.
var symbolKinds = map[string]RelKind{
	"==": RelEquals, ":": RelPatternSplitter,
	"<<": RelDominates, ">>": RelDominatedBy,
	"<": RelParentOf, ">": RelChildOf,
	"<:": RelOnlyChild, ">:": RelOnlyChildOf,
	"<<,": RelLeftmostDescendant, "<<-": RelRightmostDescendant,
	">>,": RelLeftmostDescendantOf, ">>-": RelRightmostDescendantOf,
	"<<:": RelUnaryPathDescendant, ">>:": RelUnaryPathAncestor,
	"..": RelPrecedes, ",,": RelFollows,
	".": RelImmediatelyPrecedes, ",": RelImmediatelyFollows,
	"$": RelSisterOf,
	"$++": RelLeftSisterOf, "$..": RelLeftSisterOf,
	"$--": RelRightSisterOf, "$,,": RelRightSisterOf,
	"$+": RelImmediateLeftSisterOf, "$.": RelImmediateLeftSisterOf,
	"$-": RelImmediateRightSisterOf, "$,": RelImmediateRightSisterOf,
	"<<#": RelHeadedBy, ">>#": RelHeads,
	"<#": RelImmediatelyHeadedBy, ">#": RelImmediatelyHeads,
	"<+": RelUnbrokenDominates, ">+": RelUnbrokenDominatedBy,
	".+": RelUnbrokenPrecedes, ",+": RelUnbrokenFollows,
}

// Relation is a structural predicate between an anchor node and a candidate.
// Relations are plain values and compare with ==, except that two category
// relations are equal only if they share the same *CategoryArg.
type Relation struct {
	Kind  RelKind
	Index int          // 1-based child position for RelHasIthChild and RelIthChildOf; negative counts from the end
	Arg   *CategoryArg // for the unbroken-category relations
}

func (r Relation) String() string {
	switch r.Kind {
	case RelHasIthChild:
		return "<" + strconv.Itoa(r.Index)
	case RelIthChildOf:
		return ">" + strconv.Itoa(r.Index)
	case RelUnbrokenDominates, RelUnbrokenDominatedBy, RelUnbrokenPrecedes, RelUnbrokenFollows:
		if r.Arg != nil {
			return r.Kind.String() + "(" + r.Arg.String() + ")"
		}
	}
	return r.Kind.String()
}

func (r Relation) needsHeadFinder() bool {
	switch r.Kind {
	case RelHeadedBy, RelHeads, RelImmediatelyHeadedBy, RelImmediatelyHeads:
		return true
	}
	return false
}

func (r Relation) isCategory() bool {
	switch r.Kind {
	case RelUnbrokenDominates, RelUnbrokenDominatedBy, RelUnbrokenPrecedes, RelUnbrokenFollows:
		return true
	}
	return false
}

// parseRelation resolves a relation symbol. Numbered child forms are
// "<N", "<-N", ">N" and ">-N"; the first/last child spellings map onto them.
func parseRelation(sym string) (Relation, error) {
	switch sym {
	case "<,":
		return Relation{Kind: RelHasIthChild, Index: 1}, nil
	case "<-", "<`":
		return Relation{Kind: RelHasIthChild, Index: -1}, nil
	case ">,":
		return Relation{Kind: RelIthChildOf, Index: 1}, nil
	case ">-", ">`":
		return Relation{Kind: RelIthChildOf, Index: -1}, nil
	}
	if k, ok := symbolKinds[sym]; ok {
		return Relation{Kind: k}, nil
	}
	if len(sym) > 1 && (sym[0] == '<' || sym[0] == '>') {
		n, err := strconv.Atoi(sym[1:])
		if err != nil {
			return Relation{}, ErrUnknownRelation
		}
		if n == 0 {
			return Relation{}, ErrBadRelationArg
		}
		kind := RelHasIthChild
		if sym[0] == '>' {
			kind = RelIthChildOf
		}
		return Relation{Kind: kind, Index: n}, nil
	}
	return Relation{}, ErrUnknownRelation
}

// CategoryArg is the node test of the unbroken-category relations:
// an optional '!', an optional '@', and a label matcher.
type CategoryArg struct {
	Negated  bool
	BasicCat bool
	Label    LabelMatcher
}

func (a *CategoryArg) String() string {
	var sb strings.Builder
	if a.Negated {
		sb.WriteByte('!')
	}
	if a.BasicCat {
		sb.WriteByte('@')
	}
	sb.WriteString(a.Label.String())
	return sb.String()
}

func (a *CategoryArg) matches(n *tree.Node, env *Env) bool {
	label := n.Label
	if a.BasicCat {
		label = env.category(label)
	}
	_, ok := a.Label.Match(label)
	return ok != a.Negated
}

// Env is what relations consult besides their two operands: the root the
// search is relative to, and the configured collaborators.
type Env struct {
	idx   *tree.Index
	heads tree.HeadFinder
	basic func(string) string
}

// NewEnv indexes root for use with cfg's collaborators.
func NewEnv(root *tree.Node, cfg Config) *Env {
	return &Env{idx: tree.NewIndex(root), heads: cfg.HeadFinder, basic: cfg.BasicCategory}
}

func (e *Env) Root() *tree.Node { return e.idx.Root() }

func (e *Env) parent(n *tree.Node) *tree.Node { return e.idx.Parent(n) }

func (e *Env) category(label string) string {
	if e.basic == nil {
		return label
	}
	return e.basic(label)
}

func (e *Env) head(n *tree.Node) *tree.Node {
	if e.heads == nil || n == nil || n.IsLeaf() {
		return nil
	}
	if n.IsPreTerminal() {
		return n.FirstChild()
	}
	return e.heads.DetermineHead(n)
}

// ithChild resolves a 1-based, possibly negative, child position.
func ithChild(n *tree.Node, i int) *tree.Node {
	if i > 0 {
		return n.Child(i - 1)
	}
	return n.Child(n.NumChildren() + i)
}
