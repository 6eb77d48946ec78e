package basic

import (
	"math"
	"math/rand"
)

// evalState names a resumption point of the expression engine's explicit
// state machine. It implements precedence climbing without host-language
// recursion: what would be a recursive call in parse_primary/parse_expr_1
// is instead a push of the caller's live locals onto the arena's
// expression stack and a jump to EXPRESSION, with the matching *_RET state
// popping them back off. This is why the stack's peak depth during a given
// expression is a fixed, computable number of bytes (exercised directly by
// the arena-tightness property in the test suite).
type evalState byte

const (
	stExpression evalState = iota
	stTerm
	stSubexprRet
	stFunctionArgRet
	stSubscriptRet
	stFirstOperator
	stExpr1
	stSecondOperator
	stPrecedenceDown
	stApplyOperator
	stExiting
)

// precedence gives each binary operator's binding strength. Relational
// operators are deliberately absent: IF evaluates its two sides as
// independent expressions and compares them itself (see dispatch.go),
// rather than folding comparisons into the arithmetic grammar.
func precedence(kw Keyword) (int, bool) {
	switch kw {
	case KwPlus, KwMinus:
		return 1, true
	case KwMultiply, KwDivide:
		return 2, true
	default:
		return 0, false
	}
}

func applyOperator(a, b float32, op Keyword) (float32, error) {
	switch op {
	case KwPlus:
		return a + b, nil
	case KwMinus:
		return a - b, nil
	case KwMultiply:
		return a * b, nil
	case KwDivide:
		if b == 0 {
			return 0, Err(DivisionByZero)
		}
		return a / b, nil
	default:
		return 0, Err(Internal)
	}
}

func checkFloatResult(v float32) error {
	if math.IsNaN(float64(v)) {
		return Err(Parameter)
	}
	if math.IsInf(float64(v), 0) {
		return Err(Overflow)
	}
	return nil
}

// evalFunction implements the single-argument built-ins. rnd draws from
// the interpreter's own random source (never the package-global one) so
// runs are reproducible under WithRand.
func evalFunction(x float32, fn Keyword, rng *rand.Rand) (float32, error) {
	switch fn {
	case KwSgn:
		switch {
		case x > 0:
			return 1, nil
		case x < 0:
			return -1, nil
		default:
			return 0, nil
		}
	case KwInt:
		return float32(math.Floor(float64(x))), nil
	case KwAbs:
		return float32(math.Abs(float64(x))), nil
	case KwUsr:
		return 0, nil
	case KwSqr:
		v := float32(math.Sqrt(float64(x)))
		if math.IsNaN(float64(v)) {
			return 0, Err(Parameter)
		}
		return v, nil
	case KwRnd:
		return rng.Float32(), nil
	case KwSin:
		return float32(math.Sin(float64(x))), nil
	default:
		return 0, Err(Internal)
	}
}

func isFunctionKeyword(kw Keyword) bool { return kw >= KwSgn && kw <= KwSin }
func isOperatorKeyword(kw Keyword) bool { return kw >= KwPlus && kw <= KwLess }

// evalScratch carries the expression engine's working registers across
// state transitions, mirroring the C routine's stack-local variables.
type evalScratch struct {
	lhs, rhs, val  float32
	op             Keyword
	minPrecedence  byte
	negate         bool
	lookahead      byte
}

// Eval evaluates a single arithmetic expression starting at s, returning
// the unconsumed remainder and the value. It requires vars and stack for
// variable access and its explicit frame stack, and rng for RND.
func Eval(s string, vars *Vars, stack *Stack, rng *rand.Rand) (rest string, val float32, err error) {
	mark := stack.Mark()
	rest, val, err = evalEngine(s, vars, stack, rng)
	stack.Restore(mark)
	return rest, val, err
}

func pushState(stack *Stack, st evalState) bool {
	return stack.PushExpr([]byte{byte(st)})
}

func popState(stack *Stack) evalState {
	var b [1]byte
	stack.PopExpr(b[:])
	return evalState(b[0])
}

func pushByte(stack *Stack, b byte) { stack.PushExpr([]byte{b}) }

func popByte(stack *Stack) byte {
	var b [1]byte
	stack.PopExpr(b[:])
	return b[0]
}

func pushF32(stack *Stack, v float32) {
	var b [4]byte
	putF32(b[:], v)
	stack.PushExpr(b[:])
}

func popF32(stack *Stack) float32 {
	var b [4]byte
	stack.PopExpr(b[:])
	return getF32(b[:])
}

func pushU16(stack *Stack, v uint16) {
	var b [2]byte
	putU16(b[:], v)
	stack.PushExpr(b[:])
}

func popU16(stack *Stack) uint16 {
	var b [2]byte
	stack.PopExpr(b[:])
	return getU16(b[:])
}

func evalEngine(s string, vars *Vars, stack *Stack, rng *rand.Rand) (string, float32, error) {
	p := s
	var sc evalScratch

	if !pushState(stack, stExiting) {
		return s, 0, Err(OutOfMemory)
	}
	state := stExpression

	for state != stExiting {
		switch state {
		case stExpression:
			sc.minPrecedence = 0
			if !pushState(stack, stFirstOperator) {
				return s, 0, Err(OutOfMemory)
			}
			state = stTerm

		case stTerm:
			sc.negate = false
			p = SkipWS(p)
			for len(p) > 0 {
				c := p[0]
				if Keyword(c) == KwPlus {
					// unary plus, no effect
				} else if Keyword(c) == KwMinus {
					sc.negate = !sc.negate
				} else {
					break
				}
				p = SkipWS(p[1:])
			}

			var c byte
			if len(p) > 0 {
				c = p[0]
			}

			switch {
			case isAlpha(c):
				rest, vn, perr := ParseVarName(p)
				if perr != nil {
					return s, 0, perr
				}
				p = rest
				if len(p) > 0 && p[0] == '(' {
					p = p[1:]
					need := 2 + 1 + 1 + 1 + 4 + 1
					if !stack.a.CheckSpace(uint(need)) {
						return s, 0, Err(OutOfMemory)
					}
					pushU16(stack, uint16(vn))
					pushByte(stack, boolByte(sc.negate))
					pushByte(stack, sc.minPrecedence)
					pushByte(stack, byte(sc.op))
					pushF32(stack, sc.lhs)
					pushState(stack, stSubscriptRet)
					state = stExpression
				} else {
					sc.val = vars.Read(vn)
					p = SkipWS(p)
					if sc.negate {
						sc.val = -sc.val
					}
					state = popState(stack)
				}

			case c >= '0' && c <= '9' || c == '.':
				rest, v, perr := ParseFloat(p)
				if perr != nil {
					return s, 0, perr
				}
				p = rest
				if sc.negate {
					v = -v
				}
				sc.val = v
				p = SkipWS(p)
				state = popState(stack)

			case isFunctionKeyword(Keyword(c)):
				fn := Keyword(c)
				p = p[1:]
				p = SkipWS(p)
				if len(p) == 0 || p[0] != '(' {
					return s, 0, Err(Syntax)
				}
				p = p[1:]
				p = SkipWS(p)
				need := 1 + 1 + 1 + 1 + 4 + 1
				if !stack.a.CheckSpace(uint(need)) {
					return s, 0, Err(OutOfMemory)
				}
				pushByte(stack, byte(fn))
				pushByte(stack, boolByte(sc.negate))
				pushByte(stack, sc.minPrecedence)
				pushByte(stack, byte(sc.op))
				pushF32(stack, sc.lhs)
				pushState(stack, stFunctionArgRet)
				state = stExpression

			case c == '(':
				p = p[1:]
				need := 1 + 1 + 1 + 4 + 1
				if !stack.a.CheckSpace(uint(need)) {
					return s, 0, Err(OutOfMemory)
				}
				pushByte(stack, boolByte(sc.negate))
				pushByte(stack, sc.minPrecedence)
				pushByte(stack, byte(sc.op))
				pushF32(stack, sc.lhs)
				pushState(stack, stSubexprRet)
				state = stExpression

			default:
				return s, 0, Err(Syntax)
			}

		case stSubexprRet:
			sc.val = sc.lhs
			sc.lhs = popF32(stack)
			sc.op = Keyword(popByte(stack))
			sc.minPrecedence = popByte(stack)
			sc.negate = popByte(stack) != 0
			if sc.negate {
				sc.val = -sc.val
			}
			if len(p) == 0 || p[0] != ')' {
				return s, 0, Err(Syntax)
			}
			p = SkipWS(p[1:])
			state = popState(stack)

		case stFunctionArgRet:
			sc.val = sc.lhs
			sc.lhs = popF32(stack)
			sc.op = Keyword(popByte(stack))
			sc.minPrecedence = popByte(stack)
			sc.negate = popByte(stack) != 0
			fn := Keyword(popByte(stack))
			if len(p) == 0 || p[0] != ')' {
				return s, 0, Err(Syntax)
			}
			p = SkipWS(p[1:])
			v, ferr := evalFunction(sc.val, fn, rng)
			if ferr != nil {
				return s, 0, ferr
			}
			if cerr := checkFloatResult(v); cerr != nil {
				return s, 0, cerr
			}
			sc.val = v
			if sc.negate {
				sc.val = -sc.val
			}
			state = popState(stack)

		case stSubscriptRet:
			if sc.lhs < 0 || sc.lhs > 32767 {
				return s, 0, Err(Parameter)
			}
			subscript := uint(math.Floor(float64(sc.lhs)))
			sc.lhs = popF32(stack)
			sc.op = Keyword(popByte(stack))
			sc.minPrecedence = popByte(stack)
			sc.negate = popByte(stack) != 0
			vn := VarName(popU16(stack))
			if len(p) == 0 || p[0] != ')' {
				return s, 0, Err(Syntax)
			}
			p = SkipWS(p[1:])
			off, verr := vars.ArrayElement(vn, subscript, false)
			if verr != nil {
				return s, 0, verr
			}
			sc.val = vars.a.f32At(off)
			if sc.negate {
				sc.val = -sc.val
			}
			state = popState(stack)

		case stFirstOperator:
			sc.lhs = sc.val
			state = stExpr1

		case stExpr1:
			sc.lookahead = 0
			if len(p) > 0 {
				sc.lookahead = p[0]
			}
			if prec, ok := precedence(Keyword(sc.lookahead)); ok && byte(prec) >= sc.minPrecedence {
				sc.op = Keyword(sc.lookahead)
				p = SkipWS(p[1:])
				if !pushState(stack, stSecondOperator) {
					return s, 0, Err(OutOfMemory)
				}
				state = stTerm
			} else {
				state = popState(stack)
			}

		case stSecondOperator:
			sc.rhs = sc.val
			sc.lookahead = 0
			if len(p) > 0 {
				sc.lookahead = p[0]
			}
			curPrec, _ := precedence(sc.op)
			if nextPrec, ok := precedence(Keyword(sc.lookahead)); ok && nextPrec > curPrec {
				need := 1 + 1 + 4 + 1
				if !stack.a.CheckSpace(uint(need)) {
					return s, 0, Err(OutOfMemory)
				}
				pushByte(stack, sc.minPrecedence)
				pushByte(stack, byte(sc.op))
				pushF32(stack, sc.lhs)
				pushState(stack, stPrecedenceDown)
				sc.lhs = sc.rhs
				sc.minPrecedence = byte(curPrec + 1)
				state = stExpr1
			} else {
				state = stApplyOperator
			}

		case stPrecedenceDown:
			sc.rhs = sc.lhs
			sc.lhs = popF32(stack)
			sc.op = Keyword(popByte(stack))
			sc.minPrecedence = popByte(stack)
			state = stApplyOperator

		case stApplyOperator:
			v, aerr := applyOperator(sc.lhs, sc.rhs, sc.op)
			if aerr != nil {
				return s, 0, aerr
			}
			if cerr := checkFloatResult(v); cerr != nil {
				return s, 0, cerr
			}
			sc.lhs = v
			state = stExpr1

		default:
			return s, 0, Err(Internal)
		}
	}

	return p, sc.lhs, nil
}

// ParseArrayIndex parses a parenthesized index expression: s[0] is the
// opening '(' to skip (its value is not checked), followed by an expression
// and a closing ')'. The result must lie in 0..32767 and is floored. DIM
// sizes and array subscripts both go through this routine; PRINT's TAB(n)
// does not (print.go evaluates its argument itself and rejects only
// negative values).
func ParseArrayIndex(s string, vars *Vars, stack *Stack, rng *rand.Rand) (rest string, idx uint, err error) {
	if len(s) == 0 {
		return s, 0, Err(Syntax)
	}
	p := s[1:]
	rest, val, err := Eval(p, vars, stack, rng)
	if err != nil {
		return s, 0, err
	}
	if val < 0 || val > 32767 {
		return s, 0, Err(Parameter)
	}
	rest = SkipWS(rest)
	if len(rest) == 0 || rest[0] != ')' {
		return s, 0, Err(Syntax)
	}
	rest = rest[1:]
	return rest, uint(math.Floor(float64(val))), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
