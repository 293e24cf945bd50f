// Package formula turns a one-variable arithmetic formula into a numeric
// sequence, used to build superposition coefficients from an expression
// such as "1/factorial(n)" over a range of n.
package formula

import (
	"fmt"
)

// MaxRange is the largest number of integers Generate evaluates.
const MaxRange = 10000

// Generate evaluates formula at every integer from..to inclusive, binding
// each to variable.
func Generate(formula, variable string, from, to int) ([]float64, error) {
	if err := validateVariable(variable); err != nil {
		return nil, &ValidationError{Field: "variable", Value: variable, Err: err}
	}

	rangeText := fmt.Sprintf("%d..%d", from, to)
	if from > to {
		return nil, &ValidationError{Field: "range", Value: rangeText, Err: fmt.Errorf("%w: from is greater than to", ErrInvalidRange)}
	}
	if float64(to)-float64(from)+1 > MaxRange {
		return nil, &ValidationError{Field: "range", Value: rangeText, Err: fmt.Errorf("%w: more than %d values", ErrInvalidRange, MaxRange)}
	}

	tree, err := ParseFormula(formula)
	if err != nil {
		return nil, &ValidationError{Field: "formula", Value: formula, Err: err}
	}
	for _, name := range tree.Variables() {
		if name != variable {
			return nil, &ValidationError{Field: "formula", Value: formula, Err: fmt.Errorf("%w: %s", ErrUnknownSymbol, name)}
		}
	}

	seq := make([]float64, 0, to-from+1)
	vars := map[string]float64{variable: 0}
	for i := from; i <= to; i++ {
		vars[variable] = float64(i)
		v, err := tree.Evaluate(vars)
		if err != nil {
			return nil, &ValidationError{Field: "formula", Value: formula, Err: fmt.Errorf("at %s=%d: %w", variable, i, err)}
		}
		seq = append(seq, v)
	}
	return seq, nil
}

func validateVariable(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidVariable)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(isLetter(c) || c == '_' || (i > 0 && isDigit(c))) {
			return fmt.Errorf("%w: %q is not an identifier", ErrInvalidVariable, name)
		}
	}
	if _, ok := constants[name]; ok {
		return fmt.Errorf("%w: %q is a constant", ErrInvalidVariable, name)
	}
	if _, ok := functions[name]; ok {
		return fmt.Errorf("%w: %q is a function", ErrInvalidVariable, name)
	}
	return nil
}
