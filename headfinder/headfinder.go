// Package headfinder provides tree.HeadFinder implementations.
//
// Leftmost and Rightmost are positional. Rules is a table-driven finder whose
// per-category rules are loaded from YAML, for example:
//
//	default: left
//	categories:
//	  NP:
//	    - direction: right
//	      labels: [NN, NNS, NP]
//	  VP:
//	    - direction: left
//	      labels: [VB, VBZ, VBD, VP]
//
// Pre-terminals are headed by their leaf and leaves have no head.
package headfinder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/tregex/tree"
)

var (
	_ tree.HeadFinder = Leftmost{}
	_ tree.HeadFinder = Rightmost{}
	_ tree.HeadFinder = (*Rules)(nil)
)

// Leftmost heads every phrase by its first child.
type Leftmost struct{}

func (Leftmost) DetermineHead(n *tree.Node) *tree.Node {
	if n.IsLeaf() {
		return nil
	}
	return n.FirstChild()
}

// Rightmost heads every phrase by its last child.
type Rightmost struct{}

func (Rightmost) DetermineHead(n *tree.Node) *tree.Node {
	if n.IsLeaf() {
		return nil
	}
	return n.LastChild()
}

// Direction is the scan order of a head rule.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// Rule selects the first child, scanning in Direction, whose category is in Labels.
type Rule struct {
	Direction Direction `yaml:"direction"`
	Labels    []string  `yaml:"labels"`
}

// Rules is a rule-table head finder.
type Rules struct {
	Default    Direction         `yaml:"default"`
	Categories map[string][]Rule `yaml:"categories"`

	// Category maps node labels before lookup. Nil means labels are used as is.
	Category func(string) string `yaml:"-"`
}

// ParseRules decodes a YAML rule table.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse head rules: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadRules reads a YAML rule table from path.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRules(data)
}

func (r *Rules) validate() error {
	if r.Default == "" {
		r.Default = Left
	}
	if !validDirection(r.Default) {
		return fmt.Errorf("invalid default direction %q", r.Default)
	}
	for cat, rules := range r.Categories {
		for _, rule := range rules {
			if !validDirection(rule.Direction) {
				return fmt.Errorf("category %s: invalid direction %q", cat, rule.Direction)
			}
		}
	}
	return nil
}

func validDirection(d Direction) bool {
	return d == Left || d == Right
}

func (r *Rules) category(label string) string {
	if r.Category == nil {
		return label
	}
	return r.Category(label)
}

func (r *Rules) DetermineHead(n *tree.Node) *tree.Node {
	if n.IsLeaf() {
		return nil
	}
	if n.IsPreTerminal() {
		return n.FirstChild()
	}
	for _, rule := range r.Categories[r.category(n.Label)] {
		if head := r.scan(n, rule); head != nil {
			return head
		}
	}
	if r.Default == Right {
		return n.LastChild()
	}
	return n.FirstChild()
}

func (r *Rules) scan(n *tree.Node, rule Rule) *tree.Node {
	wanted := make(map[string]bool, len(rule.Labels))
	for _, l := range rule.Labels {
		wanted[l] = true
	}
	kids := n.Children
	for i := range kids {
		k := kids[i]
		if rule.Direction == Right {
			k = kids[len(kids)-1-i]
		}
		if wanted[r.category(k.Label)] {
			return k
		}
	}
	return nil
}
