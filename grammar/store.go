// Package grammar parses the EBNF-like grammar surface syntax described in
// the engine's external interface, lowers it into a compact set of ragged
// production tables, and compiles every regex/substrs/except! literal into
// the automaton the recognizer will dispatch into at parse time.
//
// The lowering step is where EBNF sugar (optional/star/plus quantifiers,
// grouping) disappears: each is rewritten into one or two synthetic
// nonterminals, so the recognizer itself only ever sees plain
// nonterminal -> symbol* productions, exactly as a textbook Earley
// recognizer expects.
package grammar

import (
	"github.com/kbnf-go/kbnf/automaton"
	"github.com/kbnf-go/kbnf/ids"
	"github.com/kbnf-go/kbnf/suffixauto"
)

// SymbolKind discriminates the six things a production's right-hand side
// can hold.
type SymbolKind uint8

const (
	KindNonterminal SymbolKind = iota
	KindTerminal
	KindRegex
	KindEarlyEndRegex
	KindRegexComplement
	KindSubstrings
)

func (k SymbolKind) String() string {
	switch k {
	case KindNonterminal:
		return "nonterminal"
	case KindTerminal:
		return "terminal"
	case KindRegex:
		return "regex"
	case KindEarlyEndRegex:
		return "early_end_regex"
	case KindRegexComplement:
		return "regex_complement"
	case KindSubstrings:
		return "substrings"
	default:
		return "unknown"
	}
}

// Symbol is one element of a production's right-hand side.
type Symbol struct {
	Kind SymbolKind

	Nonterminal ids.NonterminalID
	Terminal    ids.TerminalID
	Regex       ids.RegexID // indexes Store.Regexes (Kind Regex/EarlyEndRegex) or Store.Exceptions (KindRegexComplement)

	SuffixAutomaton ids.SuffixAutomatonID

	// ExceptBound is the optional N of except!(X, N); nil means unbounded.
	ExceptBound *uint32
}

// Production is one alternative of a nonterminal's definition.
type Production struct {
	LHS ids.NonterminalID
	RHS []Symbol
}

// Store is the grammar's data model: every nonterminal, production and
// compiled literal the recognizer needs, addressed by the small integer ids
// in package ids.
type Store struct {
	NonterminalNames []string
	nameToID         map[string]ids.NonterminalID

	// ProductionsOf is ragged: ProductionsOf[n] lists, in declaration
	// order, the indices into Productions belonging to nonterminal n.
	ProductionsOf [][]ids.ProductionIndex
	Productions   []Production

	Terminals      [][]byte
	terminalIntern map[string]ids.TerminalID

	Regexes       []*automaton.DFA
	regexEarlyEnd []bool

	Exceptions []*automaton.ExceptionAutomaton

	SuffixAutomata []*suffixauto.Automaton

	Start ids.NonterminalID

	nullable []bool
}

func newStore() *Store {
	return &Store{
		nameToID:       map[string]ids.NonterminalID{},
		terminalIntern: map[string]ids.TerminalID{},
	}
}

func (s *Store) internNonterminal(name string) ids.NonterminalID {
	if id, ok := s.nameToID[name]; ok {
		return id
	}
	id := ids.NonterminalID(len(s.NonterminalNames))
	s.NonterminalNames = append(s.NonterminalNames, name)
	s.nameToID[name] = id
	s.ProductionsOf = append(s.ProductionsOf, nil)
	return id
}

// freshNonterminal introduces a synthetic nonterminal for EBNF lowering,
// named for debugging but never referenced by the surface syntax.
func (s *Store) freshNonterminal(hint string) ids.NonterminalID {
	name := hint
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = hint + "#" + itoa(i)
		}
		if _, exists := s.nameToID[candidate]; !exists {
			return s.internNonterminal(candidate)
		}
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func (s *Store) internTerminal(b []byte) ids.TerminalID {
	key := string(b)
	if id, ok := s.terminalIntern[key]; ok {
		return id
	}
	id := ids.TerminalID(len(s.Terminals))
	s.Terminals = append(s.Terminals, b)
	s.terminalIntern[key] = id
	return id
}

func (s *Store) addProduction(lhs ids.NonterminalID, rhs []Symbol) ids.ProductionIndex {
	idx := ids.ProductionIndex(len(s.Productions))
	s.Productions = append(s.Productions, Production{LHS: lhs, RHS: rhs})
	s.ProductionsOf[lhs] = append(s.ProductionsOf[lhs], idx)
	return idx
}

// ProductionAt returns the production identified by id.
func (s *Store) ProductionAt(id ids.ProductionIndex) Production {
	return s.Productions[id]
}

// NonterminalByName looks up a nonterminal id by its surface name.
func (s *Store) NonterminalByName(name string) (ids.NonterminalID, bool) {
	id, ok := s.nameToID[name]
	return id, ok
}

// IsEarlyEnd reports whether the regex at id accepts as soon as it first
// reaches an accepting DFA state (an `#e"..."` literal), versus requiring
// the byte stream to stop feeding bytes on its own account (`#"..."`). Both
// still dispatch through the same DFA; only how scan interprets reaching
// Accept differs.
func (s *Store) IsEarlyEnd(id ids.RegexID) bool {
	return s.regexEarlyEnd[int(id)]
}

// Nullable reports whether nonterminal n can derive the empty string.
func (s *Store) Nullable(n ids.NonterminalID) bool {
	return s.nullable[int(n)]
}

// computeNullable runs the standard fixpoint: a nonterminal is nullable if
// some production's entire RHS is nullable (terminals, regexes, substrings
// and regex-complements require at least one byte to traverse from their
// start state, so they are never nullable; only missing-arg/empty-RHS
// productions and nonterminal references contribute).
func (s *Store) computeNullable() {
	s.nullable = make([]bool, len(s.NonterminalNames))
	changed := true
	for changed {
		changed = false
		for n, prods := range s.ProductionsOf {
			if s.nullable[n] {
				continue
			}
			for _, pidx := range prods {
				if s.productionNullableUnder(s.Productions[pidx]) {
					s.nullable[n] = true
					changed = true
					break
				}
			}
		}
	}
}

func (s *Store) productionNullableUnder(p Production) bool {
	for _, sym := range p.RHS {
		if sym.Kind != KindNonterminal || !s.nullable[int(sym.Nonterminal)] {
			return false
		}
	}
	return true
}
