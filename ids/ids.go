// Package ids defines the family of small identifier types shared by the
// grammar store, the vocabulary index and the Earley recognizer.
//
// The original engine this package is modeled after is generic over the
// bit-width of every identifier family, so a tiny grammar with a handful of
// nonterminals can be recognized with byte-sized indices while a large one
// falls back to wider words. Go has no zero-cost generics over integer
// width, and monomorphizing the whole recognizer per width combination would
// multiply the size of this package for a marginal memory win. We follow the
// "widest safe width uniformly" alternative suggested for such a port: every
// identifier family is a uint32, which comfortably covers any grammar or
// vocabulary we accept (see grammar's Store.Validate for the width checks
// that remain: table sizes and regex automaton state counts; vocabulary
// size is not checked).
package ids

// NonterminalID names a nonterminal of the lowered grammar.
type NonterminalID uint32

// TerminalID names a byte-string terminal in the grammar's terminal table.
type TerminalID uint32

// RegexID names a compiled regular expression in the grammar's regex table.
type RegexID uint32

// SuffixAutomatonID names a suffix automaton in the grammar's table.
type SuffixAutomatonID uint32

// ProductionIndex selects one alternation of a nonterminal's productions.
type ProductionIndex uint32

// DotPosition is an offset into the right-hand side of a production.
type DotPosition uint32

// StartPosition is the column at which the parse of some nonterminal began.
type StartPosition uint32

// ColumnIndex names one Earley set, i.e. the column reached after consuming
// a given number of input bytes. Column 0 precedes any byte.
type ColumnIndex uint32

// StateID is the per-item automaton cursor: a byte index into a terminal, a
// packed DFA state (plus repetition counter) for a regex, or a suffix
// automaton node id. See automaton.Pack/Unpack for the DFA packing scheme.
type StateID uint32

// NoState is the state_id value used by items whose underlying node carries
// no per-item cursor (Nonterminal nodes).
const NoState StateID = 0
