/*
Package query provides the lexer and parser for tree pattern source text.

It is the first compilation phase: source text becomes a syntax tree that the
tregex package validates and lowers into an executable pattern.

# Pattern Syntax

A pattern names a node and the relations it must stand in:

	NP < DT                 an NP with a DT child
	S < (VP < VBZ)          an S whose VP child has a VBZ child
	NP <2 NN                an NP whose second child is NN
	DT $ NN                 a DT with an NN sister

Node descriptions:

  - WORD matches the label exactly. NP|VP (no spaces) matches either label.
  - /regex/ matches labels containing a match of the regex.
  - __ matches any node.
  - @ before a description compares basic categories (NP-SBJ counts as NP).
  - =name after a description captures the node. A bare =name is a
    back-reference: it matches only the node already captured under name.
  - ~name matches a node whose label equals that of the node captured as name.
  - /^(NN|VB)/#1%tag binds regex group 1 to the variable tag. Every
    occurrence of tag in one match must agree.

Relations are joined by juxtaposition or '&', alternated with '|', and
grouped with brackets:

	NP [< DT | < PRP$] !< CC

A '!' before a relation negates it together with everything below it, and a
'?' makes it optional. Top-level patterns combine the same way:

	(__=x < DT) & (__=x < NN)

# Relation Symbols

	A << B     A dominates B
	A >> B     A is dominated by B
	A < B      A is the parent of B
	A > B      A is a child of B
	A <N B     B is the Nth child of A (negative N counts from the end)
	A >N B     A is the Nth child of B
	A <, B     B is the first child of A       A >, B   A is the first child of B
	A <- B     B is the last child of A        A >- B   A is the last child of B
	A <: B     B is the only child of A        A >: B   A is the only child of B
	A <<, B    B is a leftmost descendant      A >>, B  A is a leftmost descendant of B
	A <<- B    B is a rightmost descendant     A >>- B  A is a rightmost descendant of B
	A <<: B    A dominates B via a unary path  A >>: B  the converse
	A .. B     A precedes B                    A ,, B   A follows B
	A . B      A immediately precedes B        A , B    A immediately follows B
	A $ B      A and B are sisters
	A $++ B    A is a left sister of B         A $-- B  A is a right sister of B
	A $+ B     A is the immediate left sister  A $- B   the immediate right sister
	A <# B     B is the head of A              A ># B   A is the head of B
	A <<# B    B is a head of the head chain   A >># B  the converse
	A <+(C) B  A dominates B through nodes matching C
	A >+(C) B  the converse
	A .+(C) B  A precedes B through nodes matching C
	A ,+(C) B  the converse
	A == B     A and B are the same node
	A : B      A and B are matched independently in the same tree

# Usage Example

	tokens, err := NewLexer("NP < DT").Tokenize()
	if err != nil {
		return err
	}
	node, err := NewParser(tokens).Parse()

Errors are returned as *Error, carrying the byte offset of the offending token.
*/
package query
