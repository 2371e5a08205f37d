package preproc

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"divmap/internal/platform"
)

// The expression evaluator covers the subset of preprocessor arithmetic
// needed to decide branch applicability: integer literals, defined(),
// identifiers (resolving to their defined value, or 0 when undefined),
// unary ! and -, multiplicative and additive arithmetic, comparisons,
// && and ||, and parentheses. Anything else is an evaluation failure,
// which surfaces to the driver with the offending expression attached.

type tokenKind int

const (
	tokInt tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	val  int64
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && isAlnum(src[j]) {
				j++
			}
			lit := strings.TrimRight(src[i:j], "uUlL")
			val, err := strconv.ParseInt(lit, 0, 64)
			if err != nil {
				return nil, errors.Newf("bad integer literal %q", src[i:j])
			}
			toks = append(toks, token{kind: tokInt, val: val})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(src) && isAlnum(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j]})
			i = j
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		default:
			for _, op := range [...]string{"&&", "||", "==", "!=", "<=", ">=", "<", ">", "!", "+", "-", "*", "/", "%"} {
				if strings.HasPrefix(src[i:], op) {
					toks = append(toks, token{kind: tokOp, text: op})
					i += len(op)
					goto next
				}
			}
			return nil, errors.Newf("unsupported character %q", string(c))
		next:
		}
	}
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// evaluator is a recursive-descent evaluator over a token slice. It
// evaluates as it parses; there is no separate AST.
type evaluator struct {
	toks []token
	pos  int
	env  *platform.Platform
}

func evalExpr(src string, env *platform.Platform) (int64, error) {
	toks, err := tokenize(src)
	if err != nil {
		return 0, err
	}
	e := &evaluator{toks: toks, env: env}
	val, err := e.orExpr()
	if err != nil {
		return 0, err
	}
	if e.pos != len(e.toks) {
		return 0, errors.Newf("trailing tokens after expression")
	}
	return val, nil
}

func (e *evaluator) peek() (token, bool) {
	if e.pos >= len(e.toks) {
		return token{}, false
	}
	return e.toks[e.pos], true
}

func (e *evaluator) acceptOp(ops ...string) (string, bool) {
	tok, ok := e.peek()
	if !ok || tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			e.pos++
			return op, true
		}
	}
	return "", false
}

func (e *evaluator) orExpr() (int64, error) {
	left, err := e.andExpr()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := e.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := e.andExpr()
		if err != nil {
			return 0, err
		}
		left = boolVal(left != 0 || right != 0)
	}
}

func (e *evaluator) andExpr() (int64, error) {
	left, err := e.cmpExpr()
	if err != nil {
		return 0, err
	}
	for {
		if _, ok := e.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := e.cmpExpr()
		if err != nil {
			return 0, err
		}
		left = boolVal(left != 0 && right != 0)
	}
}

func (e *evaluator) cmpExpr() (int64, error) {
	left, err := e.addExpr()
	if err != nil {
		return 0, err
	}
	op, ok := e.acceptOp("==", "!=", "<=", ">=", "<", ">")
	if !ok {
		return left, nil
	}
	right, err := e.addExpr()
	if err != nil {
		return 0, err
	}
	switch op {
	case "==":
		return boolVal(left == right), nil
	case "!=":
		return boolVal(left != right), nil
	case "<=":
		return boolVal(left <= right), nil
	case ">=":
		return boolVal(left >= right), nil
	case "<":
		return boolVal(left < right), nil
	default:
		return boolVal(left > right), nil
	}
}

func (e *evaluator) addExpr() (int64, error) {
	left, err := e.mulExpr()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := e.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := e.mulExpr()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

func (e *evaluator) mulExpr() (int64, error) {
	left, err := e.unaryExpr()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := e.acceptOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := e.unaryExpr()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		default:
			if right == 0 {
				return 0, errors.Newf("division by zero")
			}
			if op == "/" {
				left /= right
			} else {
				left %= right
			}
		}
	}
}

func (e *evaluator) unaryExpr() (int64, error) {
	if op, ok := e.acceptOp("!", "-", "+"); ok {
		val, err := e.unaryExpr()
		if err != nil {
			return 0, err
		}
		switch op {
		case "!":
			return boolVal(val == 0), nil
		case "-":
			return -val, nil
		default:
			return val, nil
		}
	}
	return e.primary()
}

func (e *evaluator) primary() (int64, error) {
	tok, ok := e.peek()
	if !ok {
		return 0, errors.Newf("unexpected end of expression")
	}
	switch tok.kind {
	case tokInt:
		e.pos++
		return tok.val, nil
	case tokIdent:
		e.pos++
		if tok.text == "defined" {
			return e.definedOperand()
		}
		// An undefined identifier evaluates to 0.
		return e.env.Value(tok.text), nil
	case tokLParen:
		e.pos++
		val, err := e.orExpr()
		if err != nil {
			return 0, err
		}
		if tok, ok := e.peek(); !ok || tok.kind != tokRParen {
			return 0, errors.Newf("missing closing parenthesis")
		}
		e.pos++
		return val, nil
	default:
		return 0, errors.Newf("unexpected token %q", tok.text)
	}
}

func (e *evaluator) definedOperand() (int64, error) {
	parens := false
	if tok, ok := e.peek(); ok && tok.kind == tokLParen {
		parens = true
		e.pos++
	}
	tok, ok := e.peek()
	if !ok || tok.kind != tokIdent {
		return 0, errors.Newf("defined requires a macro name")
	}
	e.pos++
	if parens {
		if tok, ok := e.peek(); !ok || tok.kind != tokRParen {
			return 0, errors.Newf("missing closing parenthesis after defined")
		}
		e.pos++
	}
	return boolVal(e.env.Defined(tok.text)), nil
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
