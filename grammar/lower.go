package grammar

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/kbnf-go/kbnf/automaton"
	"github.com/kbnf-go/kbnf/ids"
	"github.com/kbnf-go/kbnf/suffixauto"
)

// tracer follows the same select-a-named-tracer convention engine.go and
// earley's tracer use.
func tracer() tracing.Trace {
	return tracing.Select("kbnf.grammar")
}

// Parse parses and lowers EBNF grammar source into a Store, with the given
// nonterminal as the recognizer's start symbol.
func Parse(src, startName string) (*Store, error) {
	rules, err := parseRules(src)
	if err != nil {
		tracer().Errorf("grammar: parse failed: %v", err)
		return nil, err
	}
	store, err := lower(rules, startName)
	if err != nil {
		tracer().Errorf("grammar: lowering failed: %v", err)
		return nil, err
	}
	tracer().Debugf("grammar: lowered %d nonterminals, %d productions", len(store.NonterminalNames), len(store.Productions))
	return store, nil
}

type lowerer struct {
	store       *Store
	rulesByName map[string][]ruleAST
}

func lower(rules []ruleAST, startName string) (*Store, error) {
	store := newStore()
	lw := &lowerer{store: store, rulesByName: map[string][]ruleAST{}}
	for _, r := range rules {
		store.internNonterminal(r.name)
		lw.rulesByName[r.name] = append(lw.rulesByName[r.name], r)
	}
	start, ok := store.nameToID[startName]
	if !ok {
		return nil, fmt.Errorf("grammar: start nonterminal %q is not defined", startName)
	}
	store.Start = start

	for _, r := range rules {
		lhs := store.nameToID[r.name]
		for _, concat := range r.alts {
			rhs, err := lw.lowerConcatenation(concat)
			if err != nil {
				return nil, fmt.Errorf("grammar: rule %q: %w", r.name, err)
			}
			store.addProduction(lhs, rhs)
		}
	}
	store.computeNullable()
	return store, nil
}

func (lw *lowerer) lowerConcatenation(c concatenationAST) ([]Symbol, error) {
	rhs := make([]Symbol, 0, len(c))
	for _, q := range c {
		sym, err := lw.lowerQuantified(q)
		if err != nil {
			return nil, err
		}
		rhs = append(rhs, sym)
	}
	return rhs, nil
}

func (lw *lowerer) lowerQuantified(q quantifiedAST) (Symbol, error) {
	base, err := lw.lowerPrimary(q.prim)
	if err != nil {
		return Symbol{}, err
	}
	switch q.quant {
	case quantNone:
		return base, nil
	case quantOpt:
		n := lw.store.freshNonterminal("opt")
		lw.store.addProduction(n, []Symbol{base})
		lw.store.addProduction(n, nil)
		return Symbol{Kind: KindNonterminal, Nonterminal: n}, nil
	case quantStar:
		// Right-recursive so the recognizer's Leo optimization collapses
		// long runs of this repetition to O(1) completions.
		n := lw.store.freshNonterminal("star")
		lw.store.addProduction(n, []Symbol{base, {Kind: KindNonterminal, Nonterminal: n}})
		lw.store.addProduction(n, nil)
		return Symbol{Kind: KindNonterminal, Nonterminal: n}, nil
	case quantPlus:
		n := lw.store.freshNonterminal("plus")
		lw.store.addProduction(n, []Symbol{base, {Kind: KindNonterminal, Nonterminal: n}})
		lw.store.addProduction(n, []Symbol{base})
		return Symbol{Kind: KindNonterminal, Nonterminal: n}, nil
	default:
		return Symbol{}, fmt.Errorf("grammar: unknown quantifier")
	}
}

func (lw *lowerer) lowerPrimary(p primaryAST) (Symbol, error) {
	switch p.kind {
	case primString:
		id := lw.store.internTerminal(p.bytes)
		return Symbol{Kind: KindTerminal, Terminal: id}, nil

	case primIdent:
		id, ok := lw.store.nameToID[p.ident]
		if !ok {
			return Symbol{}, fmt.Errorf("undefined nonterminal %q", p.ident)
		}
		return Symbol{Kind: KindNonterminal, Nonterminal: id}, nil

	case primRegex, primEarlyEndRegex:
		dfa, err := automaton.CompileRegex(string(p.bytes))
		if err != nil {
			return Symbol{}, err
		}
		id := ids.RegexID(len(lw.store.Regexes))
		lw.store.Regexes = append(lw.store.Regexes, dfa)
		lw.store.regexEarlyEnd = append(lw.store.regexEarlyEnd, p.kind == primEarlyEndRegex)
		kind := KindRegex
		if p.kind == primEarlyEndRegex {
			kind = KindEarlyEndRegex
		}
		return Symbol{Kind: kind, Regex: id}, nil

	case primSubstrings:
		sa := suffixauto.Build(p.bytes)
		id := ids.SuffixAutomatonID(len(lw.store.SuffixAutomata))
		lw.store.SuffixAutomata = append(lw.store.SuffixAutomata, sa)
		return Symbol{Kind: KindSubstrings, SuffixAutomaton: id}, nil

	case primExcept:
		literals, err := lw.flattenAlternatives(p.exceptOf, 0)
		if err != nil {
			return Symbol{}, fmt.Errorf("except!: %w", err)
		}
		b := automaton.NewExceptionBuilder()
		for _, lit := range literals {
			b.AddPattern(lit)
		}
		ea := b.Build()
		id := ids.RegexID(len(lw.store.Exceptions))
		lw.store.Exceptions = append(lw.store.Exceptions, ea)
		return Symbol{Kind: KindRegexComplement, Regex: id, ExceptBound: p.exceptBound}, nil

	case primGroup:
		n := lw.store.freshNonterminal("group")
		for _, concat := range p.group {
			rhs, err := lw.lowerConcatenation(concat)
			if err != nil {
				return Symbol{}, err
			}
			lw.store.addProduction(n, rhs)
		}
		return Symbol{Kind: KindNonterminal, Nonterminal: n}, nil

	default:
		return Symbol{}, fmt.Errorf("grammar: unknown primary kind")
	}
}

// flattenAlternatives resolves the argument of except!(X) into the finite
// set of literal byte strings X stands for. X must be a literal, or an
// alternation of literals and/or already-declared nonterminals that are
// themselves flattenable the same way; except!(X) describes a restart
// automaton over a finite alphabet of "things to avoid", so an unbounded
// (self-recursive) X is rejected here rather than produced as an error deep
// in automaton construction.
func (lw *lowerer) flattenAlternatives(alt alternationAST, depth int) ([][]byte, error) {
	if depth > 16 {
		return nil, fmt.Errorf("except! argument is too deeply nested or recursive")
	}
	var out [][]byte
	for _, concat := range alt {
		prefixes := [][]byte{{}}
		for _, q := range concat {
			if q.quant != quantNone {
				return nil, fmt.Errorf("except! argument may not use repetition")
			}
			var parts [][]byte
			switch q.prim.kind {
			case primString:
				parts = [][]byte{q.prim.bytes}
			case primIdent:
				rules, ok := lw.rulesByName[q.prim.ident]
				if !ok {
					return nil, fmt.Errorf("except! argument references undefined nonterminal %q", q.prim.ident)
				}
				var sub [][]byte
				for _, r := range rules {
					flat, err := lw.flattenAlternatives(r.alts, depth+1)
					if err != nil {
						return nil, err
					}
					sub = append(sub, flat...)
				}
				parts = sub
			default:
				return nil, fmt.Errorf("except! argument may only contain literals and literal-valued nonterminals")
			}
			var next [][]byte
			for _, pre := range prefixes {
				for _, part := range parts {
					combined := append(append([]byte{}, pre...), part...)
					next = append(next, combined)
				}
			}
			prefixes = next
		}
		out = append(out, prefixes...)
	}
	return out, nil
}
