// Package automaton builds the small byte-level deterministic automata the
// grammar store hands to the Earley recognizer as opaque regexes: a regular
// expression DFA for `#"..."` / `#e"..."` nodes, and a never-dead "exception"
// automaton for `except!(...)` nodes. Constructing these automata is
// explicitly outside the recognizer's own concern (the recognizer only ever
// calls Start/NextState/Classify), so the compilers in this package are
// deliberately small: a textbook Thompson-construction-then-subset-construction
// for regexes, and a trie-with-failure-links for exceptions. Both are styled
// after the nfa/dfa split used by github.com/coregx/coregex, whose own
// dfa/lazy.DFA and ahocorasick.Automaton we considered wiring in directly but
// rejected (see DESIGN.md): they expose a search-a-whole-haystack API
// (Find/IsMatch/SearchAt), not the per-byte NextState(state, byte) primitive
// the recognizer drives one byte at a time with snapshot/rollback.
package automaton

import "fmt"

// StateID is a DFA state index, local to one DFA. State 0 is always the
// start state.
type StateID uint32

// Class is the three-way classification the recognizer's scan step needs
// for a DFA state reached after feeding a byte.
type Class uint8

const (
	// Reject means no sequence of further bytes can ever lead to a match;
	// the item carrying this state must be discarded.
	Reject Class = iota
	// Accept means the bytes fed so far are themselves a complete match.
	Accept
	// InProgress means the state is neither dead nor a match, i.e. more
	// bytes could still complete a match.
	InProgress
)

func (c Class) String() string {
	switch c {
	case Reject:
		return "reject"
	case Accept:
		return "accept"
	default:
		return "in_progress"
	}
}

// DFA is a dense transition table over all 256 byte values.
type DFA struct {
	transitions [][256]StateID
	accept      []bool
	alive       []bool // can this state (or a state reachable from it) ever accept?
}

// NumStates returns the number of states in the automaton.
func (d *DFA) NumStates() int { return len(d.accept) }

// Start returns the start state. The engine this automaton serves only ever
// runs anchored matches (a terminal/regex node always starts matching at the
// position the item was predicted), so the `anchored` distinction some regex
// engines expose collapses to a single start state here.
func (d *DFA) Start(anchored bool) StateID {
	_ = anchored
	return 0
}

// NextState advances state s on byte b.
func (d *DFA) NextState(s StateID, b byte) StateID {
	return d.transitions[s][b]
}

// Classify reports whether s is an accepting, dead, or in-progress state.
func (d *DFA) Classify(s StateID) Class {
	if d.accept[s] {
		return Accept
	}
	if !d.alive[s] {
		return Reject
	}
	return InProgress
}

// FirstBytes returns the set of bytes b for which
// Classify(NextState(s, b)) is Accept or InProgress, i.e. the bytes that
// keep this state alive. The engine does not call it; its token walk feeds
// bytes through the recognizer instead.
func (d *DFA) FirstBytes(s StateID) [256]bool {
	var set [256]bool
	for b := 0; b < 256; b++ {
		next := d.transitions[s][byte(b)]
		if d.accept[next] || d.alive[next] {
			set[b] = true
		}
	}
	return set
}

// computeAliveness runs a reverse reachability pass: a state is alive if it
// is itself accepting, or it has a transition into an alive state.
func computeAliveness(transitions [][256]StateID, accept []bool) []bool {
	alive := make([]bool, len(accept))
	copy(alive, accept)
	changed := true
	for changed {
		changed = false
		for s := range transitions {
			if alive[s] {
				continue
			}
			for b := 0; b < 256; b++ {
				if alive[transitions[s][byte(b)]] {
					alive[s] = true
					changed = true
					break
				}
			}
		}
	}
	return alive
}

// Error reports a regex pattern CompileRegex cannot build a DFA for. The
// configured state budget (regex.max_memory_usage) is checked later by
// grammar's Store.Validate, which reports a plain error instead.
type Error struct {
	Pattern string
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("automaton: cannot build DFA for %q: %s", e.Pattern, e.Reason)
}
