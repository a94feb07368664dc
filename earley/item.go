// Package earley implements the byte-level Earley recognizer at the heart
// of the engine: the scan/predict/complete cycle, Leo's optimization for
// collapsing right-recursive completion chains, and Earley-set compaction.
// It dispatches into the grammar's compiled automata (package automaton)
// and suffix automata (package suffixauto) for anything beyond literal
// terminal bytes, but never constructs those automata itself.
package earley

import (
	"github.com/kbnf-go/kbnf/grammar"
	"github.com/kbnf-go/kbnf/ids"
)

// Item is one Earley item: a dotted production, its origin column, and
// (when the symbol at the dot is a byte-level terminal/regex/substrings
// node still being matched) that node's own in-progress automaton state.
// All four fields are plain integers, so Item is comparable and usable
// directly as a map key - no external hashing is needed for per-column
// dedup (structhash.Hash is reserved for hashing the columns into a cache
// key; see Engine.cacheKey in the root package).
type Item struct {
	Production ids.ProductionIndex
	Dot        ids.DotPosition
	Origin     ids.StartPosition
	State      ids.StateID
}

// final reports whether the dot has reached the end of the production's
// right-hand side.
func (it Item) final(g *grammar.Store) bool {
	return int(it.Dot) == len(g.ProductionAt(it.Production).RHS)
}

// postdotSymbol returns the symbol immediately after the dot, and whether
// one exists (false when the item is final).
func (it Item) postdotSymbol(g *grammar.Store) (grammar.Symbol, bool) {
	rhs := g.ProductionAt(it.Production).RHS
	if int(it.Dot) >= len(rhs) {
		return grammar.Symbol{}, false
	}
	return rhs[it.Dot], true
}

// advance returns the item with its dot moved one symbol to the right and
// its per-symbol automaton state reset, ready to start matching whatever
// new symbol (if any) is now at the dot.
func (it Item) advance(g *grammar.Store) Item {
	next := Item{Production: it.Production, Dot: it.Dot + 1, Origin: it.Origin}
	next.State = initialState(g, next)
	return next
}

// initialState computes the starting per-symbol automaton state for an
// item whose dot currently sits before the symbol that needs it.
func initialState(g *grammar.Store, it Item) ids.StateID {
	sym, ok := it.postdotSymbol(g)
	if !ok {
		return ids.NoState
	}
	switch sym.Kind {
	case grammar.KindTerminal:
		return 0
	case grammar.KindRegex, grammar.KindEarlyEndRegex:
		return 0
	case grammar.KindRegexComplement:
		return 0 // automaton.Pack(0, 0) == 0
	case grammar.KindSubstrings:
		return 0
	default: // KindNonterminal
		return ids.NoState
	}
}
