package formula

import (
	"fmt"
	"math"
	"strconv"
)

// NodeType distinguishes the leaves of an expression tree from its operations.
type NodeType int

const (
	NodeTypeConstant NodeType = iota
	NodeTypeVariable
	NodeTypeOperation
)

// Operator is the operation of a NodeTypeOperation node. Unary operators use
// Left only.
type Operator int

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpNegate
	OpFactorial
	OpSqrt
	OpExp
	OpLog
	OpSin
	OpCos
	OpTan
	OpAbs
	OpFloor
	OpCeil
)

var binarySymbols = map[Operator]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpPower:    "**",
}

// functions maps call names to their operators.
var functions = map[string]Operator{
	"sqrt":      OpSqrt,
	"exp":       OpExp,
	"log":       OpLog,
	"ln":        OpLog,
	"sin":       OpSin,
	"cos":       OpCos,
	"tan":       OpTan,
	"abs":       OpAbs,
	"floor":     OpFloor,
	"ceil":      OpCeil,
	"ceiling":   OpCeil,
	"factorial": OpFactorial,
}

var functionNames = map[Operator]string{
	OpSqrt:      "sqrt",
	OpExp:       "exp",
	OpLog:       "log",
	OpSin:       "sin",
	OpCos:       "cos",
	OpTan:       "tan",
	OpAbs:       "abs",
	OpFloor:     "floor",
	OpCeil:      "ceil",
	OpFactorial: "factorial",
}

// constants are the named values a formula may use. "E" follows the
// computer-algebra spelling of Euler's number.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
	"E":  math.E,
}

// maxFactorial is the largest n whose factorial is finite in float64.
const maxFactorial = 170

// Node is one node of a parsed formula.
type Node struct {
	Type     NodeType
	Op       Operator
	Left     *Node
	Right    *Node
	Value    float64
	Variable string
}

// Evaluate computes the node with the given variable bindings. Domain errors
// (division by zero, log of a non-positive value, the square root of a
// negative value) and non-finite results return ErrEvaluation.
func (n *Node) Evaluate(vars map[string]float64) (float64, error) {
	switch n.Type {
	case NodeTypeConstant:
		return n.Value, nil
	case NodeTypeVariable:
		v, ok := vars[n.Variable]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, n.Variable)
		}
		return v, nil
	case NodeTypeOperation:
		return n.evaluateOperation(vars)
	}
	return 0, fmt.Errorf("%w: unknown node type %d", ErrEvaluation, n.Type)
}

func (n *Node) evaluateOperation(vars map[string]float64) (float64, error) {
	left, err := n.Left.Evaluate(vars)
	if err != nil {
		return 0, err
	}

	var result float64
	if _, binary := binarySymbols[n.Op]; binary {
		right, err := n.Right.Evaluate(vars)
		if err != nil {
			return 0, err
		}
		result, err = applyBinary(n.Op, left, right)
		if err != nil {
			return 0, err
		}
	} else {
		result, err = applyUnary(n.Op, left)
		if err != nil {
			return 0, err
		}
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrEvaluation, n)
	}
	return result, nil
}

func applyBinary(op Operator, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrEvaluation)
		}
		return a / b, nil
	case OpPower:
		return math.Pow(a, b), nil
	}
	return 0, fmt.Errorf("%w: unknown operator %d", ErrEvaluation, op)
}

func applyUnary(op Operator, a float64) (float64, error) {
	switch op {
	case OpNegate:
		return -a, nil
	case OpSqrt:
		if a < 0 {
			return 0, fmt.Errorf("%w: sqrt of negative value %g", ErrEvaluation, a)
		}
		return math.Sqrt(a), nil
	case OpExp:
		return math.Exp(a), nil
	case OpLog:
		if a <= 0 {
			return 0, fmt.Errorf("%w: log of non-positive value %g", ErrEvaluation, a)
		}
		return math.Log(a), nil
	case OpSin:
		return math.Sin(a), nil
	case OpCos:
		return math.Cos(a), nil
	case OpTan:
		return math.Tan(a), nil
	case OpAbs:
		return math.Abs(a), nil
	case OpFloor:
		return math.Floor(a), nil
	case OpCeil:
		return math.Ceil(a), nil
	case OpFactorial:
		return factorial(a)
	}
	return 0, fmt.Errorf("%w: unknown operator %d", ErrEvaluation, op)
}

func factorial(a float64) (float64, error) {
	if a < 0 || a != math.Trunc(a) {
		return 0, fmt.Errorf("%w: factorial of %g", ErrEvaluation, a)
	}
	if a > maxFactorial {
		return 0, fmt.Errorf("%w: factorial of %g overflows", ErrEvaluation, a)
	}
	result := 1.0
	for k := 2.0; k <= a; k++ {
		result *= k
	}
	return result, nil
}

// Variables returns the distinct variable names in the tree, in order of
// first appearance.
func (n *Node) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Type == NodeTypeVariable && !seen[n.Variable] {
			seen[n.Variable] = true
			names = append(names, n.Variable)
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(n)
	return names
}

// String renders the tree fully parenthesized.
func (n *Node) String() string {
	switch n.Type {
	case NodeTypeConstant:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case NodeTypeVariable:
		return n.Variable
	}

	if sym, ok := binarySymbols[n.Op]; ok {
		return fmt.Sprintf("(%s %s %s)", n.Left, sym, n.Right)
	}
	switch n.Op {
	case OpNegate:
		return fmt.Sprintf("(-%s)", n.Left)
	case OpFactorial:
		return fmt.Sprintf("factorial(%s)", n.Left)
	}
	if name, ok := functionNames[n.Op]; ok {
		return fmt.Sprintf("%s(%s)", name, n.Left)
	}
	return "?"
}
