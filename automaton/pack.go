package automaton

import "github.com/kbnf-go/kbnf/ids"

// counterBits is the width given to the repetition counter packed into the
// upper bits of an ids.StateID for a bounded except!(X,N) node. The
// remaining low bits address the underlying automaton's state space, which
// in practice (regex/exception automata built from one grammar) never
// approaches 2^20 states.
const counterBits = 12
const stateBits = 32 - counterBits
const stateMask = ids.StateID(1<<stateBits - 1)
const maxCounter = (1 << counterBits) - 1

// Pack combines an automaton-local state and a repetition counter into the
// single StateID an EarleyItem carries. It is the caller's responsibility to
// keep state within stateBits bits; grammar validation does not count
// exception-automaton states, so no earlier check enforces this.
func Pack(state StateID, counter uint32) ids.StateID {
	if counter > maxCounter {
		counter = maxCounter
	}
	return (ids.StateID(counter) << stateBits) | (ids.StateID(state) & stateMask)
}

// Unpack splits a StateID back into its automaton state and counter.
func Unpack(s ids.StateID) (StateID, uint32) {
	state := StateID(s & stateMask)
	counter := uint32(s >> stateBits)
	return state, counter
}

// CounterExceeds reports whether one more repetition would exceed the bound
// N of a bounded except!(X,N) node. A nil bound means unbounded.
func CounterExceeds(counter uint32, bound *uint32) bool {
	return bound != nil && counter+1 > *bound
}
