package compiler

import "github.com/mna/asterisk/lang/token"

// Precedence levels, lowest to highest, per spec.md §4.4:
// None < Assignment < Or < And < Equality < Comparison < Term < Factor
// < Unary < Call < Primary.
type precedence uint8

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type (
	prefixFn func(p *parser, canAssign bool)
	infixFn  func(p *parser, canAssign bool)
)

type rule struct {
	prefix prefixFn
	infix  infixFn
	prec   precedence
}

var rules map[token.Token]rule

func init() {
	rules = map[token.Token]rule{
		token.LPAREN: {prefix: grouping, infix: call, prec: precCall},
		token.DOT:    {infix: dot, prec: precCall},
		token.MINUS:  {prefix: unary, infix: binary, prec: precTerm},
		token.PLUS:   {infix: binary, prec: precTerm},
		token.SLASH:  {infix: binary, prec: precFactor},
		token.STAR:   {infix: binary, prec: precFactor},
		token.BANG:   {prefix: unary},
		token.AMP:    {prefix: ref},

		token.BANG_EQ:   {infix: binary, prec: precEquality},
		token.EQ_EQ:     {infix: binary, prec: precEquality},
		token.GT:        {infix: binary, prec: precComparison},
		token.GT_EQ:     {infix: binary, prec: precComparison},
		token.LT:        {infix: binary, prec: precComparison},
		token.LT_EQ:     {infix: binary, prec: precComparison},
		token.AMP_AMP:   {infix: and_, prec: precAnd},
		token.PIPE_PIPE: {infix: or_, prec: precOr},

		token.FN:     {prefix: lambda},
		token.IDENT:  {prefix: variable},
		token.STRING: {prefix: stringLit},
		token.INT:    {prefix: intLit},
		token.FLOAT:  {prefix: floatLit},
		token.TRUE:   {prefix: literal},
		token.FALSE:  {prefix: literal},
		token.NIL:    {prefix: literal},
	}
}

func getRule(t token.Token) rule { return rules[t] }

// parsePrecedence consumes a prefix expression for p.curTok, then keeps
// consuming infix operators while their precedence is at least prec,
// exactly as spec.md §4.4 describes the Pratt loop.
func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefixRule := getRule(p.prevTok).prefix
	if prefixRule == nil {
		p.error("expect expression")
		return
	}

	canAssign := prec <= precAssignment
	prefixRule(p, canAssign)

	for prec <= getRule(p.curTok).prec {
		p.advance()
		infixRule := getRule(p.prevTok).infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("invalid assignment target")
	}
}

func (p *parser) expression() { p.parsePrecedence(precAssignment) }
