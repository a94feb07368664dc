package grammar

import (
	"fmt"
	"strconv"
)

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expectPunct(s string) error {
	t := p.cur()
	if t.kind != tokPunct || t.text != s {
		return fmt.Errorf("grammar: expected %q at byte %d, found %q", s, t.pos, t.text)
	}
	p.advance()
	return nil
}

func (p *parser) atPunct(s string) bool {
	t := p.cur()
	return t.kind == tokPunct && t.text == s
}

// parseRules parses a whole grammar source into an ordered list of rule
// statements (not yet merged by nonterminal name).
func parseRules(src string) ([]ruleAST, error) {
	toks, err := newLexer(src).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var rules []ruleAST
	for p.cur().kind != tokEOF {
		r, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (p *parser) parseRule() (ruleAST, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return ruleAST{}, fmt.Errorf("grammar: expected nonterminal name at byte %d, found %q", t.pos, t.text)
	}
	name := t.text
	p.advance()
	if err := p.expectPunct("::="); err != nil {
		return ruleAST{}, err
	}
	alt, err := p.parseAlternation()
	if err != nil {
		return ruleAST{}, err
	}
	if err := p.expectPunct(";"); err != nil {
		return ruleAST{}, err
	}
	return ruleAST{name: name, alts: alt}, nil
}

func (p *parser) parseAlternation() (alternationAST, error) {
	first, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	alts := alternationAST{first}
	for p.atPunct("|") {
		p.advance()
		next, err := p.parseConcatenation()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	return alts, nil
}

func (p *parser) parseConcatenation() (concatenationAST, error) {
	var items concatenationAST
	for {
		t := p.cur()
		if t.kind == tokEOF {
			break
		}
		if t.kind == tokPunct && (t.text == "|" || t.text == ";" || t.text == ")" || t.text == ",") {
			break
		}
		q, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("grammar: empty alternative at byte %d", p.cur().pos)
	}
	return items, nil
}

func (p *parser) parseQuantified() (quantifiedAST, error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return quantifiedAST{}, err
	}
	q := quantNone
	if p.atPunct("?") {
		p.advance()
		q = quantOpt
	} else if p.atPunct("*") {
		p.advance()
		q = quantStar
	} else if p.atPunct("+") {
		p.advance()
		q = quantPlus
	}
	return quantifiedAST{prim: prim, quant: q}, nil
}

func (p *parser) parsePrimary() (primaryAST, error) {
	t := p.cur()
	switch {
	case t.kind == tokString:
		p.advance()
		b, err := decodeString(t.text)
		if err != nil {
			return primaryAST{}, err
		}
		return primaryAST{kind: primString, bytes: b}, nil

	case t.kind == tokPunct && t.text == "(":
		p.advance()
		inner, err := p.parseAlternation()
		if err != nil {
			return primaryAST{}, err
		}
		if err := p.expectPunct(")"); err != nil {
			return primaryAST{}, err
		}
		return primaryAST{kind: primGroup, group: inner}, nil

	case t.kind == tokPunct && t.text == "#":
		return p.parseRegexLiteral()

	case t.kind == tokIdent && t.text == "except":
		return p.parseExcept()

	case t.kind == tokIdent:
		p.advance()
		return primaryAST{kind: primIdent, ident: t.text}, nil

	default:
		return primaryAST{}, fmt.Errorf("grammar: unexpected token %q at byte %d", t.text, t.pos)
	}
}

func (p *parser) parseRegexLiteral() (primaryAST, error) {
	p.advance() // '#'
	t := p.cur()
	kind := primRegex
	if t.kind == tokIdent && t.text == "e" {
		kind = primEarlyEndRegex
		p.advance()
		t = p.cur()
	} else if t.kind == tokIdent && t.text == "substrs" {
		kind = primSubstrings
		p.advance()
		t = p.cur()
	}
	if t.kind != tokString {
		return primaryAST{}, fmt.Errorf("grammar: expected string literal after '#' at byte %d", t.pos)
	}
	p.advance()
	b, err := decodeString(t.text)
	if err != nil {
		return primaryAST{}, err
	}
	return primaryAST{kind: kind, bytes: b}, nil
}

func (p *parser) parseExcept() (primaryAST, error) {
	p.advance() // 'except'
	if p.cur().kind == tokPunct && p.cur().text == "!" {
		p.advance()
	}
	if !(p.cur().kind == tokPunct && p.cur().text == "(") {
		return primaryAST{}, fmt.Errorf("grammar: expected '(' after except! at byte %d", p.cur().pos)
	}
	p.advance()
	body, err := p.parseAlternation()
	if err != nil {
		return primaryAST{}, err
	}
	var bound *uint32
	if p.atPunct(",") {
		p.advance()
		t := p.cur()
		if t.kind != tokNumber {
			return primaryAST{}, fmt.Errorf("grammar: expected number after ',' at byte %d", t.pos)
		}
		p.advance()
		n, err := strconv.ParseUint(t.text, 10, 32)
		if err != nil {
			return primaryAST{}, fmt.Errorf("grammar: bad repetition bound %q: %w", t.text, err)
		}
		v := uint32(n)
		bound = &v
	}
	if err := p.expectPunct(")"); err != nil {
		return primaryAST{}, err
	}
	return primaryAST{kind: primExcept, exceptOf: body, exceptBound: bound}, nil
}
