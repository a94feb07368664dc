package kbnf

import (
	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing"

	"github.com/kbnf-go/kbnf/automaton"
	"github.com/kbnf-go/kbnf/earley"
	"github.com/kbnf-go/kbnf/grammar"
	"github.com/kbnf-go/kbnf/vocab"
)

// tracer returns the package's syntax tracer, following the same
// select-a-named-tracer convention the grammar analysis packages use.
func tracer() tracing.Trace {
	return tracing.Select("kbnf")
}

// Engine is a constructed recognizer bound to one grammar and one token
// vocabulary, ready to accept bytes/tokens and compute allowed-token masks.
type Engine struct {
	grammar *grammar.Store
	vocab   *vocab.Vocabulary
	rec     *earley.Recognizer
	cfg     Config

	allowed    map[string]*tokenBitSet
	eagerRegex map[eagerKey]*tokenBitSet
}

type eagerKey struct {
	regex uint32
	state uint32
}

// New parses grammarSrc, builds the vocabulary index over tokens, and
// returns an Engine ready to recognize from cfg.StartNonterminal.
func New(grammarSrc string, tokens [][]byte, eos vocab.TokenID, cfg Config) (*Engine, error) {
	store, err := grammar.Parse(grammarSrc, cfg.StartNonterminal)
	if err != nil {
		return nil, &CreateEngineError{Cause: err}
	}
	if err := store.Validate(cfg.MaxRegexStates); err != nil {
		return nil, &CreateEngineError{Cause: err}
	}
	e := &Engine{
		grammar:    store,
		vocab:      vocab.New(tokens, eos),
		rec:        earley.New(store),
		cfg:        cfg,
		allowed:    map[string]*tokenBitSet{},
		eagerRegex: map[eagerKey]*tokenBitSet{},
	}
	tracer().Debugf("kbnf: engine constructed with %d nonterminals, %d tokens", len(store.NonterminalNames), len(tokens))
	return e, nil
}

// Reset rebuilds the recognizer from scratch, keeping the grammar and
// vocabulary, so the same Engine can be reused across independent
// generations.
func (e *Engine) Reset() {
	e.rec = earley.New(e.grammar)
}

// IsFinished reports whether the start nonterminal has a completed
// derivation spanning every byte fed so far. The grammar may still allow a
// longer derivation, in which case further bytes can be accepted.
func (e *Engine) IsFinished() bool {
	return e.rec.Accepted()
}

// canContinue reports whether any item of the current column still has a
// symbol after its dot, i.e. whether another byte could be accepted at all.
func (e *Engine) canContinue() bool {
	for _, it := range e.rec.Items(e.rec.Column()) {
		if _, ok := itemPostdot(e.grammar, it); ok {
			return true
		}
	}
	return false
}

func itemPostdot(g *grammar.Store, it earley.Item) (grammar.Symbol, bool) {
	rhs := g.ProductionAt(it.Production).RHS
	if int(it.Dot) >= len(rhs) {
		return grammar.Symbol{}, false
	}
	return rhs[it.Dot], true
}

// TryAcceptNewBytes feeds raw bytes one at a time, rolling back entirely if
// any byte is rejected partway through.
func (e *Engine) TryAcceptNewBytes(bytes []byte) error {
	mark := e.rec.Snapshot()
	for _, b := range bytes {
		if err := e.rec.AcceptByte(b); err != nil {
			e.rec.Revert(mark)
			return &AcceptTokenError{Token: bytes, Cause: err}
		}
	}
	if e.cfg.CompactionEnabled {
		e.rec.Compact()
	}
	return nil
}

// TryAcceptNewToken feeds one vocabulary token's bytes.
func (e *Engine) TryAcceptNewToken(tok vocab.TokenID) error {
	if int(tok) >= len(e.vocab.Tokens) {
		return &UnknownTokenError{Token: tok}
	}
	if e.IsFinished() && !e.canContinue() {
		return &FinishedError{}
	}
	return e.TryAcceptNewBytes(e.vocab.Tokens[tok])
}

// Vocabulary returns the token vocabulary this Engine was built with.
func (e *Engine) Vocabulary() *vocab.Vocabulary { return e.vocab }

// UpdateLogits accepts tok, recomputes the allowed-token set, and masks
// logits in place - equivalent to, and implemented as, calling
// TryAcceptNewToken, ComputeAllowedTokenIDs and MaskLogits in sequence.
func (e *Engine) UpdateLogits(tok vocab.TokenID, logits []float32) error {
	if err := e.TryAcceptNewToken(tok); err != nil {
		return err
	}
	allowed, err := e.ComputeAllowedTokenIDs()
	if err != nil {
		return err
	}
	return e.MaskLogits(logits, allowed)
}

// WriteAllowedTokenIDs writes the current allowed-token set into buf,
// returning the number of ids written, or a *BufferTooSmallError if buf
// cannot hold them all.
func (e *Engine) WriteAllowedTokenIDs(buf []vocab.TokenID) (int, error) {
	allowed, err := e.ComputeAllowedTokenIDs()
	if err != nil {
		return 0, err
	}
	if len(buf) < len(allowed) {
		return 0, &BufferTooSmallError{Needed: len(allowed), Got: len(buf)}
	}
	return copy(buf, allowed), nil
}

// WriteDisallowedTokenIDs writes every vocabulary token id not currently
// allowed into buf, returning the number of ids written, or a
// *BufferTooSmallError if buf cannot hold them all.
func (e *Engine) WriteDisallowedTokenIDs(buf []vocab.TokenID) (int, error) {
	allowed, err := e.ComputeAllowedTokenIDs()
	if err != nil {
		return 0, err
	}
	allowedSet := make(map[vocab.TokenID]bool, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = true
	}
	n := len(e.vocab.Tokens) - len(allowed)
	if len(buf) < n {
		return 0, &BufferTooSmallError{Needed: n, Got: len(buf)}
	}
	i := 0
	for id := 0; id < len(e.vocab.Tokens); id++ {
		if !allowedSet[vocab.TokenID(id)] {
			buf[i] = vocab.TokenID(id)
			i++
		}
	}
	return i, nil
}

// ComputeAllowedTokenIDs enumerates every vocabulary token that is a valid
// continuation from the engine's current state: a walk of the vocabulary's
// byte trie in lockstep with speculative recognizer feeding, backtracking
// (via Recognizer.Revert) whenever a branch runs out of live derivations.
func (e *Engine) ComputeAllowedTokenIDs() ([]vocab.TokenID, error) {
	if e.cfg.CacheEnabled {
		if key, ok := e.cacheKey(); ok {
			if bits, hit := e.allowed[key]; hit {
				return bitsetToTokens(bits), nil
			}
			bits := e.enumerate()
			e.allowed[key] = bits
			return bitsetToTokens(bits), nil
		}
	}
	return bitsetToTokens(e.enumerate()), nil
}

func (e *Engine) cacheKey() (string, bool) {
	sets := make([][]earley.Item, e.rec.Column()+1)
	for k := range sets {
		sets[k] = e.rec.Items(k)
	}
	h, err := structhash.Hash(sets, 1)
	if err != nil {
		return "", false
	}
	return h, true
}

func (e *Engine) enumerate() *tokenBitSet {
	bits := newTokenBitSet(len(e.vocab.Tokens))
	e.applyEagerRegexFastPath(bits)
	e.walkTrie(e.vocab.Root(), bits)
	for _, tok := range e.vocab.WithSeparatorTokens() {
		e.tryWholeToken(tok, bits)
	}
	return bits
}

// applyEagerRegexFastPath folds in the precomputed eager-regex-cache bitset
// when the recognizer's current column holds exactly one item sitting
// mid-regex: every token that fully completes the regex from this state is
// then, by construction, also a token the recognizer as a whole would
// accept, without needing the general trie walk to rediscover it. The
// general walk below still runs regardless, since it alone also covers
// tokens that only partially match (leave the regex in progress) - this
// fast path only ever adds tokens the walk would have found anyway.
func (e *Engine) applyEagerRegexFastPath(bits *tokenBitSet) {
	if e.cfg.MinTokensForEagerRegexCache == nil || uint32(len(e.vocab.Tokens)) < *e.cfg.MinTokensForEagerRegexCache {
		return
	}
	items := e.rec.Items(e.rec.Column())
	if len(items) != 1 {
		return
	}
	sym, ok := itemPostdot(e.grammar, items[0])
	if !ok || (sym.Kind != grammar.KindRegex && sym.Kind != grammar.KindEarlyEndRegex) {
		return
	}
	dfa := e.grammar.Regexes[sym.Regex]
	eager := e.eagerRegexBitset(uint32(sym.Regex), dfa, automaton.StateID(items[0].State), sym.Kind == grammar.KindEarlyEndRegex)
	eager.forEach(func(i int) { bits.set(i) })
}

// walkTrie descends the vocabulary trie, feeding each byte through the
// recognizer and pruning the subtree the moment a byte is rejected.
func (e *Engine) walkTrie(node vocab.NodeID, bits *tokenBitSet) {
	for _, tok := range e.vocab.TokensEndingAt(node) {
		bits.set(int(tok))
	}
	for b := 0; b < 256; b++ {
		child := e.vocab.Child(node, byte(b))
		if child < 0 {
			continue
		}
		mark := e.rec.Snapshot()
		if err := e.rec.AcceptByte(byte(b)); err != nil {
			continue
		}
		e.walkTrie(child, bits)
		e.rec.Revert(mark)
	}
}

// tryWholeToken feeds one with-separator token's bytes through the
// recognizer and reverts afterwards. Each such token is fed from the
// current state on its own; shared prefixes between these tokens are not
// pruned or reused.
func (e *Engine) tryWholeToken(tok vocab.TokenID, bits *tokenBitSet) {
	mark := e.rec.Snapshot()
	ok := true
	for _, b := range e.vocab.Tokens[tok] {
		if err := e.rec.AcceptByte(b); err != nil {
			ok = false
			break
		}
	}
	if ok {
		bits.set(int(tok))
	}
	e.rec.Revert(mark)
}

func bitsetToTokens(bits *tokenBitSet) []vocab.TokenID {
	out := make([]vocab.TokenID, 0, bits.count())
	bits.forEach(func(i int) { out = append(out, vocab.TokenID(i)) })
	return out
}

// eagerRegexBitset returns (computing and caching on first use) the set of
// vocabulary tokens fully accepted by a regex automaton from state,
// considering that automaton alone. For an early-end regex (earlyEnd) a
// token counts only if its last byte is the first to reach an accepting
// state. Sound as a fast path only when the
// calling item is the sole live item in its column, which
// applyEagerRegexFastPath checks before calling this. Populated lazily
// rather than for every state up front, since most grammars only ever
// visit a handful of distinct regex states per run.
func (e *Engine) eagerRegexBitset(regex uint32, dfa *automaton.DFA, state automaton.StateID, earlyEnd bool) *tokenBitSet {
	key := eagerKey{regex: regex, state: uint32(state)}
	if bits, ok := e.eagerRegex[key]; ok {
		return bits
	}
	bits := newTokenBitSet(len(e.vocab.Tokens))
	var walk func(node vocab.NodeID, s automaton.StateID)
	walk = func(node vocab.NodeID, s automaton.StateID) {
		if dfa.Classify(s) == automaton.Accept {
			for _, tok := range e.vocab.TokensEndingAt(node) {
				bits.set(int(tok))
			}
			if earlyEnd {
				// the recognizer ends an early-end regex at its first
				// accepting byte, so no longer token stays inside it
				return
			}
		}
		for b := 0; b < 256; b++ {
			child := e.vocab.Child(node, byte(b))
			if child < 0 {
				continue
			}
			next := dfa.NextState(s, byte(b))
			if dfa.Classify(next) == automaton.Reject {
				continue
			}
			walk(child, next)
		}
	}
	walk(e.vocab.Root(), state)
	e.eagerRegex[key] = bits
	return bits
}
