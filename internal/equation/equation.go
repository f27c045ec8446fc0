// Package equation evaluates deterministic transition conditions.
//
// Equations are boolean HCL expressions over a test case's dynamic
// variables ("age >= 18", "plan == \"premium\" && retries < 3"). They are
// parsed once at graph compile time and evaluated per turn against the
// current variable bindings, with no model involvement.
package equation

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Expr is a parsed equation, safe for concurrent evaluation.
type Expr struct {
	src  string
	expr hcl.Expression
}

// Parse compiles the expression source. A malformed equation is a
// compile-time error; it must never surface mid-conversation.
func Parse(src string) (*Expr, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "equation", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse equation %q: %s", src, diags.Error())
	}
	return &Expr{src: src, expr: expr}, nil
}

// Source returns the original expression text.
func (e *Expr) Source() string { return e.src }

// Eval evaluates the equation against the variable bindings. Unknown
// variables and type mismatches make the equation unsatisfied with an
// error; callers treat that as "condition did not fire", not as a fatal
// failure.
func (e *Expr) Eval(vars map[string]string) (bool, error) {
	ctx := &hcl.EvalContext{Variables: make(map[string]cty.Value, len(vars))}
	for name, raw := range vars {
		ctx.Variables[name] = typedValue(raw)
	}

	// Bind referenced-but-missing variables to null so evaluation reports a
	// clean type error instead of an unknown-variable diagnostic.
	for _, traversal := range e.expr.Variables() {
		name := traversal.RootName()
		if _, ok := ctx.Variables[name]; !ok {
			return false, fmt.Errorf("equation %q: variable %q is not bound", e.src, name)
		}
	}

	val, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		return false, fmt.Errorf("eval equation %q: %s", e.src, diags.Error())
	}
	if !val.IsKnown() || val.IsNull() {
		return false, fmt.Errorf("eval equation %q: result is not a known value", e.src)
	}
	if val.Type() != cty.Bool {
		return false, fmt.Errorf("eval equation %q: expected bool, got %s", e.src, val.Type().FriendlyName())
	}
	return val.True(), nil
}

// typedValue maps a raw variable string onto the narrowest cty type, so
// numeric-looking values compare numerically and "true"/"false" compare as
// booleans. Everything else stays a string.
func typedValue(raw string) cty.Value {
	if raw == "true" {
		return cty.True
	}
	if raw == "false" {
		return cty.False
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return cty.NumberFloatVal(f)
	}
	return cty.StringVal(raw)
}
