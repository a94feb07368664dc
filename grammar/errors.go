package grammar

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/kbnf-go/kbnf/ids"
)

// SemanticError reports a grammar that parses but violates a well-formedness
// requirement the recognizer depends on, such as every nonterminal being
// reachable from the start symbol.
type SemanticError struct {
	Reason       string
	Nonterminals []string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("grammar: %s: %v", e.Reason, e.Nonterminals)
}

// WidthError reports that a grammar exceeds the uniform uint32 budget one
// of its identifier families is expected to fit in (see package ids). In
// practice this only fires for adversarially large generated grammars.
type WidthError struct {
	Family string
	Count  int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("grammar: %s count %d exceeds the supported width", e.Family, e.Count)
}

// Validate checks the width invariants the recognizer relies on: every
// table indexed by an ids.* type must fit in 32 bits, and every compiled
// regex automaton in s.Regexes must have at most 2^20 states (the state
// width automaton.Pack leaves below its repetition counter). maxRegexStates,
// when non-nil, lowers that cap, mirroring the configured
// regex.max_memory_usage knob. The exception automata built for except!
// nodes, whose states are the ones packed, are not counted. It also
// rejects grammars with nonterminals unreachable from the start symbol.
func (s *Store) Validate(maxRegexStates *uint32) error {
	const maxUint32 = 1<<32 - 1
	if len(s.NonterminalNames) > maxUint32 {
		return &WidthError{Family: "nonterminal", Count: len(s.NonterminalNames)}
	}
	if len(s.Terminals) > maxUint32 {
		return &WidthError{Family: "terminal", Count: len(s.Terminals)}
	}
	if len(s.Productions) > maxUint32 {
		return &WidthError{Family: "production", Count: len(s.Productions)}
	}
	const maxPackedDFAStates = 1 << 20
	budget := maxPackedDFAStates
	if maxRegexStates != nil && int(*maxRegexStates) < budget {
		budget = int(*maxRegexStates)
	}
	for i, dfa := range s.Regexes {
		if dfa.NumStates() > budget {
			return fmt.Errorf("grammar: regex #%d has %d states, exceeding the configured budget of %d", i, dfa.NumStates(), budget)
		}
	}
	if unreachable := s.unreachableNonterminals(); len(unreachable) > 0 {
		return &SemanticError{Reason: "unreachable nonterminals", Nonterminals: unreachable}
	}
	return nil
}

// unreachableNonterminals runs a BFS over the production graph from Start
// and reports, in sorted order for deterministic error messages, every
// nonterminal no production can ever reach - almost always a typo in the
// grammar source rather than an intentional dead rule.
func (s *Store) unreachableNonterminals() []string {
	seen := make([]bool, len(s.NonterminalNames))
	queue := []ids.NonterminalID{s.Start}
	seen[s.Start] = true
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, pidx := range s.ProductionsOf[n] {
			for _, sym := range s.Productions[pidx].RHS {
				if sym.Kind != KindNonterminal || seen[sym.Nonterminal] {
					continue
				}
				seen[sym.Nonterminal] = true
				queue = append(queue, sym.Nonterminal)
			}
		}
	}
	var unreachable []string
	for i, name := range s.NonterminalNames {
		if !seen[i] && !isSynthetic(name) {
			unreachable = append(unreachable, name)
		}
	}
	slices.Sort(unreachable)
	return unreachable
}

// isSynthetic reports whether name was introduced by freshNonterminal for
// EBNF lowering (named "opt", "star", "plus" or "group", optionally with a
// "#N" disambiguator) rather than written by the grammar author; these are
// always reachable through the construct they desugar from, so excluding
// them here is purely a defense against reporting a confusing internal name
// for a grammar bug that is really in the surface syntax.
func isSynthetic(name string) bool {
	base := name
	if i := strings.IndexByte(name, '#'); i >= 0 {
		base = name[:i]
	}
	switch base {
	case "opt", "star", "plus", "group":
		return true
	default:
		return false
	}
}
