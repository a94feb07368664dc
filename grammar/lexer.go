package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hucsmn/peg"
	"github.com/hucsmn/peg/pegutil"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct // one of ::= | ( ) ? * + ; , # !
)

type token struct {
	kind tokenKind
	text string // raw source text (string tokens still quoted/escaped)
	pos  int
}

// lexer turns EBNF grammar source into a token stream using hucsmn/peg's
// longest-prefix matcher, grounded on the same combinators
// (pegutil.Identifier/Number/AnySpaces) the pegutil package exports for
// exactly this kind of hand-rolled recursive-descent front end. String
// literals are scanned by hand (scanQuoted) rather than via pegutil.String,
// since the grammar's surface syntax allows either quote character.
type lexer struct {
	src    string
	pos    int
	tokens []token
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// punctuators recognized outside of identifiers/strings/numbers, longest
// first so "::=" is not split into ":" ":" "=".
var punctuators = []string{"::=", "(", ")", "?", "*", "+", ";", "|", ",", "#", "!"}

func (lx *lexer) tokenize() ([]token, error) {
	for lx.pos < len(lx.src) {
		if ws, ok := peg.MatchedPrefix(pegutil.AnySpaces, lx.src[lx.pos:]); ok && len(ws) > 0 {
			lx.pos += len(ws)
			continue
		}
		if strings.HasPrefix(lx.src[lx.pos:], "//") {
			nl := strings.IndexByte(lx.src[lx.pos:], '\n')
			if nl < 0 {
				lx.pos = len(lx.src)
			} else {
				lx.pos += nl + 1
			}
			continue
		}
		start := lx.pos
		rest := lx.src[lx.pos:]

		if strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, `'`) {
			s, ok := scanQuoted(rest)
			if !ok {
				return nil, fmt.Errorf("grammar: unterminated string literal at byte %d", start)
			}
			lx.tokens = append(lx.tokens, token{kind: tokString, text: s, pos: start})
			lx.pos += len(s)
			continue
		}

		matchedPunct := false
		for _, p := range punctuators {
			if strings.HasPrefix(rest, p) {
				lx.tokens = append(lx.tokens, token{kind: tokPunct, text: p, pos: start})
				lx.pos += len(p)
				matchedPunct = true
				break
			}
		}
		if matchedPunct {
			continue
		}

		if n, ok := peg.MatchedPrefix(pegutil.Number, rest); ok && len(n) > 0 {
			lx.tokens = append(lx.tokens, token{kind: tokNumber, text: n, pos: start})
			lx.pos += len(n)
			continue
		}

		if id, ok := peg.MatchedPrefix(pegutil.Identifier, rest); ok && len(id) > 0 {
			lx.tokens = append(lx.tokens, token{kind: tokIdent, text: id, pos: start})
			lx.pos += len(id)
			continue
		}

		return nil, fmt.Errorf("grammar: unexpected character %q at byte %d", rest[0], start)
	}
	lx.tokens = append(lx.tokens, token{kind: tokEOF, pos: lx.pos})
	return lx.tokens, nil
}

// scanQuoted returns the longest prefix of s that is a complete quoted
// string literal (delimiter is s[0], either '"' or '\''), honoring
// backslash escapes so an escaped delimiter does not end the literal early.
func scanQuoted(s string) (string, bool) {
	delim := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // skip whatever follows; decodeString validates it later
		case delim:
			return s[:i+1], true
		}
	}
	return "", false
}

// decodeString strips the surrounding quotes from a scanQuoted token and
// resolves its escapes into raw bytes. Either delimiter quote character
// accepted by scanQuoted is valid here too.
func decodeString(quoted string) ([]byte, error) {
	if len(quoted) < 2 || quoted[0] != quoted[len(quoted)-1] || (quoted[0] != '"' && quoted[0] != '\'') {
		return nil, fmt.Errorf("grammar: malformed string literal %q", quoted)
	}
	body := quoted[1 : len(quoted)-1]
	var out []byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(body) {
			return nil, fmt.Errorf("grammar: dangling escape in %q", quoted)
		}
		switch e := body[i]; e {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case '\\', '\'', '"':
			out = append(out, e)
		case 'x':
			if i+2 >= len(body) {
				return nil, fmt.Errorf("grammar: truncated \\x escape in %q", quoted)
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("grammar: bad \\x escape in %q: %w", quoted, err)
			}
			out = append(out, byte(v))
			i += 2
		case 'u':
			if i+4 >= len(body) {
				return nil, fmt.Errorf("grammar: truncated \\u escape in %q", quoted)
			}
			v, err := strconv.ParseUint(body[i+1:i+5], 16, 32)
			if err != nil {
				return nil, fmt.Errorf("grammar: bad \\u escape in %q: %w", quoted, err)
			}
			out = append(out, []byte(string(rune(v)))...)
			i += 4
		default:
			if e >= '0' && e <= '7' {
				if i+3 > len(body) {
					return nil, fmt.Errorf("grammar: truncated octal escape in %q", quoted)
				}
				v, err := strconv.ParseUint(body[i:i+3], 8, 8)
				if err != nil {
					return nil, fmt.Errorf("grammar: bad octal escape in %q: %w", quoted, err)
				}
				out = append(out, byte(v))
				i += 2
				continue
			}
			return nil, fmt.Errorf("grammar: unknown escape \\%c in %q", e, quoted)
		}
	}
	return out, nil
}
