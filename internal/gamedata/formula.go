package gamedata

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// ErrInvalidFormula is returned when a stat formula cannot be evaluated.
var ErrInvalidFormula = errors.New("invalid formula")

// Formula tokens understood by the stack evaluator.
const (
	TokenLevel  = "level"
	TokenAdd    = "+"
	TokenSub    = "-"
	TokenMul    = "*"
	TokenDiv    = "/"
	TokenPower  = "power"
	TokenSqrt   = "sqrt"
	TokenMiddle = "middle"
)

// opKind identifies a compiled formula instruction.
type opKind int

const (
	opPush opKind = iota
	opLevel
	opAdd
	opSub
	opMul
	opDiv
	opPower
	opSqrt
	opMiddle
)

type instr struct {
	kind  opKind
	value float64
}

// Formula is a compiled postfix expression over the monster's level.
//
// Tokens are evaluated left to right against a stack:
//   - numeric literals and "level" push a value
//   - "+", "-", "*", "/" and "power" pop b then a and push a op b
//   - "sqrt" replaces the top value with its square root
//   - "middle" pops three values and pushes their median
type Formula struct {
	prog []instr
}

// ParseFormula compiles tokens into a Formula. The expression must leave
// exactly one value on the stack and never pop more than it has pushed.
func ParseFormula(tokens []string) (*Formula, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty formula", ErrInvalidFormula)
	}

	prog := make([]instr, 0, len(tokens))
	depth := 0
	for i, tok := range tokens {
		var in instr
		need, delta := 0, 0

		switch tok {
		case TokenLevel:
			in.kind, delta = opLevel, 1
		case TokenAdd:
			in.kind, need, delta = opAdd, 2, -1
		case TokenSub:
			in.kind, need, delta = opSub, 2, -1
		case TokenMul:
			in.kind, need, delta = opMul, 2, -1
		case TokenDiv:
			in.kind, need, delta = opDiv, 2, -1
		case TokenPower:
			in.kind, need, delta = opPower, 2, -1
		case TokenSqrt:
			in.kind, need, delta = opSqrt, 1, 0
		case TokenMiddle:
			in.kind, need, delta = opMiddle, 3, -2
		default:
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: unknown token %q at position %d", ErrInvalidFormula, tok, i)
			}
			in.kind, in.value, delta = opPush, v, 1
		}

		if depth < need {
			return nil, fmt.Errorf("%w: %q at position %d needs %d operands, stack has %d",
				ErrInvalidFormula, tok, i, need, depth)
		}
		depth += delta
		prog = append(prog, in)
	}

	if depth != 1 {
		return nil, fmt.Errorf("%w: formula leaves %d values on the stack", ErrInvalidFormula, depth)
	}

	return &Formula{prog: prog}, nil
}

// MustParseFormula compiles tokens, panicking on error.
func MustParseFormula(tokens ...string) *Formula {
	f, err := ParseFormula(tokens)
	if err != nil {
		panic(err)
	}
	return f
}

// Eval evaluates the formula for the given level.
func (f *Formula) Eval(level int) float64 {
	stack := make([]float64, 0, len(f.prog))
	pop := func() float64 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, in := range f.prog {
		switch in.kind {
		case opPush:
			stack = append(stack, in.value)
		case opLevel:
			stack = append(stack, float64(level))
		case opAdd:
			b, a := pop(), pop()
			stack = append(stack, a+b)
		case opSub:
			b, a := pop(), pop()
			stack = append(stack, a-b)
		case opMul:
			b, a := pop(), pop()
			stack = append(stack, a*b)
		case opDiv:
			b, a := pop(), pop()
			stack = append(stack, a/b)
		case opPower:
			b, a := pop(), pop()
			stack = append(stack, math.Pow(a, b))
		case opSqrt:
			stack = append(stack, math.Sqrt(pop()))
		case opMiddle:
			vals := []float64{pop(), pop(), pop()}
			slices.Sort(vals)
			stack = append(stack, vals[1])
		}
	}

	return stack[0]
}

// EvalInt evaluates the formula and truncates the result toward zero.
// Non-finite results evaluate to 0.
func (f *Formula) EvalInt(level int) int {
	v := f.Eval(level)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}
