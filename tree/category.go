package tree

import "strings"

// StripFunctionalTags maps a treebank label to its basic category by cutting
// it at the first '-' or '=' that is not in leading position.
//
//	NP-SBJ-1 -> NP
//	NP=2     -> NP
//	-NONE-   -> -NONE-
func StripFunctionalTags(label string) string {
	if label == "" || label[0] == '-' {
		return label
	}
	if i := strings.IndexAny(label[1:], "-="); i >= 0 {
		return label[:i+1]
	}
	return label
}
