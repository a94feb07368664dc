package grammar

// The surface AST mirrors the EBNF grammar described in the engine's
// external interface:
//
//	rule        := identifier "::=" alternation ";"
//	alternation := concatenation ("|" concatenation)*
//	concatenation := quantified*
//	quantified  := primary ("?" | "*" | "+")?
//	primary     := string | identifier | regex | early-end-regex
//	             | substrings | except | "(" alternation ")"
//	regex       := "#" string
//	early-end-regex := "#" "e" string
//	substrings  := "#" "substrs" string
//	except      := "except!" "(" alternation ("," number)? ")"

type ruleAST struct {
	name string
	alts alternationAST
}

type alternationAST []concatenationAST

type concatenationAST []quantifiedAST

type quantKind uint8

const (
	quantNone quantKind = iota
	quantOpt
	quantStar
	quantPlus
)

type quantifiedAST struct {
	prim  primaryAST
	quant quantKind
}

type primKind uint8

const (
	primString primKind = iota
	primIdent
	primRegex
	primEarlyEndRegex
	primSubstrings
	primExcept
	primGroup
)

type primaryAST struct {
	kind  primKind
	bytes []byte // primString / primRegex (as raw pattern bytes) / primSubstrings
	ident string // primIdent

	exceptOf    alternationAST // primExcept: the X of except!(X[, N])
	exceptBound *uint32

	group alternationAST // primGroup
}
