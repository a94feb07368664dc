package earley

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/kbnf-go/kbnf/automaton"
	"github.com/kbnf-go/kbnf/grammar"
	"github.com/kbnf-go/kbnf/ids"
	"github.com/kbnf-go/kbnf/suffixauto"
)

// tracer follows the same select-a-named-tracer convention as package
// grammar and the root kbnf package.
func tracer() tracing.Trace {
	return tracing.Select("kbnf.earley")
}

// Recognizer holds one run of the scan/predict/complete cycle over a
// grammar.Store: the sequence of Earley sets built so far, one per byte
// consumed (plus the initial column 0).
type Recognizer struct {
	g       *grammar.Store
	columns []*column
}

// RejectedError reports that no Earley item in the current column survived
// scanning a byte, i.e. the input fed so far cannot be extended to a valid
// derivation.
type RejectedError struct {
	Column int
	Byte   byte
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("earley: byte 0x%02x at column %d is not accepted by the grammar", e.Byte, e.Column)
}

// New creates a recognizer and runs the fixpoint predict/complete pass over
// the initial column before any byte has been consumed.
func New(g *grammar.Store) *Recognizer {
	r := &Recognizer{g: g}
	col0 := newColumn()
	r.columns = append(r.columns, col0)
	for _, pidx := range g.ProductionsOf[g.Start] {
		it := Item{Production: pidx, Dot: 0, Origin: 0}
		it.State = initialState(g, it)
		r.addItem(col0, it)
	}
	r.closeColumn(0)
	return r
}

// Column returns the number of bytes consumed so far (equivalently, the
// current column's index).
func (r *Recognizer) Column() int { return len(r.columns) - 1 }

// addItem inserts it into col (if new) and maintains the postdot index.
func (r *Recognizer) addItem(col *column, it Item) bool {
	if !col.add(it) {
		return false
	}
	if sym, ok := it.postdotSymbol(r.g); ok && sym.Kind == grammar.KindNonterminal {
		col.indexPostdotNonterminal(sym.Nonterminal, it)
	}
	return true
}

// closeColumn runs predict and complete to a fixpoint over column k, then
// computes the Leo memo for nonterminals with a postdot presence there.
func (r *Recognizer) closeColumn(k int) {
	col := r.columns[k]
	for i := 0; i < len(col.items); i++ {
		it := col.items[i]
		sym, ok := it.postdotSymbol(r.g)
		if !ok {
			r.complete(k, it)
			continue
		}
		if sym.Kind == grammar.KindNonterminal {
			r.predict(k, sym.Nonterminal)
			if r.g.Nullable(sym.Nonterminal) {
				r.addItem(col, it.advance(r.g))
			}
		}
	}
	r.finalizeLeo(k)
}

// predict adds a start item for every production of nt to column k, unless
// nt was already predicted in this column.
func (r *Recognizer) predict(k int, nt ids.NonterminalID) {
	col := r.columns[k]
	if !col.markPredicted(nt) {
		return
	}
	for _, pidx := range r.g.ProductionsOf[nt] {
		it := Item{Production: pidx, Dot: 0, Origin: ids.StartPosition(k)}
		it.State = initialState(r.g, it)
		r.addItem(col, it)
	}
}

// complete advances every predecessor of a just-finished item, using the
// Leo memo when available to skip chains of predecessors in O(1).
func (r *Recognizer) complete(k int, final Item) {
	nt := r.g.ProductionAt(final.Production).LHS
	origin := int(final.Origin)
	originCol := r.columns[origin]
	if entry, ok := originCol.leo[nt]; ok {
		r.addItem(r.columns[k], entry.Target.advance(r.g))
		return
	}
	for _, pred := range originCol.postdotNormal[nt] {
		r.addItem(r.columns[k], pred.advance(r.g))
	}
}

// finalizeLeo computes, for each nonterminal with exactly one normal
// postdot predecessor in column k, whether that predecessor's completion
// chain can be collapsed to a single deep target - the essence of Leo's
// optimization for right-recursive grammars.
func (r *Recognizer) finalizeLeo(k int) {
	col := r.columns[k]
	for nt, preds := range col.postdotNormal {
		if len(preds) != 1 {
			continue
		}
		pred := preds[0]
		advanced := pred.advance(r.g)
		if !advanced.final(r.g) {
			continue
		}
		target := pred
		chainNT := r.g.ProductionAt(advanced.Production).LHS
		if int(pred.Origin) < k {
			if entry, ok := r.columns[pred.Origin].leo[chainNT]; ok {
				target = entry.Target
			}
		}
		col.leo[nt] = LeoItem{NT: nt, Target: target}
	}
}

// AcceptByte feeds one byte, growing the recognizer by one column. It
// returns a *RejectedError (via the standard errors API, so callers can
// errors.As against it) if the byte is not accepted from the current
// state.
func (r *Recognizer) AcceptByte(b byte) error {
	k := r.Column()
	next := newColumn()
	cur := r.columns[k]
	for _, it := range cur.items {
		sym, ok := it.postdotSymbol(r.g)
		if !ok || sym.Kind == grammar.KindNonterminal {
			continue // handled by predict/complete, not scan
		}
		r.scanOne(next, it, sym, b)
	}
	if len(next.items) == 0 {
		tracer().Debugf("earley: byte 0x%02x rejected at column %d", b, k)
		return &RejectedError{Column: k, Byte: b}
	}
	r.columns = append(r.columns, next)
	r.closeColumn(k + 1)
	return nil
}

func (r *Recognizer) scanOne(next *column, it Item, sym grammar.Symbol, b byte) {
	switch sym.Kind {
	case grammar.KindTerminal:
		term := r.g.Terminals[sym.Terminal]
		pos := int(it.State)
		if pos >= len(term) || term[pos] != b {
			return
		}
		pos++
		if pos == len(term) {
			r.addItem(next, it.advance(r.g))
			return
		}
		r.addItem(next, Item{Production: it.Production, Dot: it.Dot, Origin: it.Origin, State: ids.StateID(pos)})

	case grammar.KindRegex, grammar.KindEarlyEndRegex:
		dfa := r.g.Regexes[sym.Regex]
		cur := automaton.StateID(it.State)
		nextState := dfa.NextState(cur, b)
		switch dfa.Classify(nextState) {
		case automaton.Reject:
			return
		case automaton.Accept:
			r.addItem(next, it.advance(r.g))
			if sym.Kind != grammar.KindEarlyEndRegex {
				r.addItem(next, Item{Production: it.Production, Dot: it.Dot, Origin: it.Origin, State: ids.StateID(nextState)})
			}
		case automaton.InProgress:
			r.addItem(next, Item{Production: it.Production, Dot: it.Dot, Origin: it.Origin, State: ids.StateID(nextState)})
		}

	case grammar.KindRegexComplement:
		ea := r.g.Exceptions[sym.Regex]
		curState, counter := automaton.Unpack(it.State)
		if automaton.CounterExceeds(counter, sym.ExceptBound) {
			// the run already holds N bytes; b would be one too many.
			return
		}
		nextState := ea.NextState(int(curState), b)
		if ea.Classify(nextState) == automaton.Accept {
			// b just completed the forbidden string X; this path is dead.
			return
		}
		r.addItem(next, it.advance(r.g))
		packed := automaton.Pack(automaton.StateID(nextState), counter+1)
		r.addItem(next, Item{Production: it.Production, Dot: it.Dot, Origin: it.Origin, State: packed})

	case grammar.KindSubstrings:
		sa := r.g.SuffixAutomata[sym.SuffixAutomaton]
		cur := suffixauto.NodeID(it.State)
		nextNode := sa.Feed(cur, b)
		if !sa.IsLive(nextNode) {
			return
		}
		r.addItem(next, it.advance(r.g))
		r.addItem(next, Item{Production: it.Production, Dot: it.Dot, Origin: it.Origin, State: ids.StateID(nextNode)})
	}
}

// Accepted reports whether the start nonterminal has a completed
// derivation spanning from column 0 to the current column.
func (r *Recognizer) Accepted() bool {
	k := r.Column()
	for _, it := range r.columns[k].items {
		if it.Origin == 0 && it.final(r.g) && r.g.ProductionAt(it.Production).LHS == r.g.Start {
			return true
		}
	}
	return false
}

// Items returns the live items of column k, for the token-enumeration pass
// to inspect which bytes would still be accepted from this state.
func (r *Recognizer) Items(k int) []Item {
	return r.columns[k].items
}

// Grammar returns the store this recognizer was built from.
func (r *Recognizer) Grammar() *grammar.Store { return r.g }
