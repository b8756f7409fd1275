package policybuilder

import "github.com/expr-lang/expr"

// attrPredicate is a compiled AttributeScope.Matching expression: given the
// attribute's candidate value, it reports whether the value is acceptable.
type attrPredicate func(value string) (bool, error)

// predicateEnv is the expression environment Matching predicates run
// against: "value" is the only bound identifier, deliberately kept small
// since an attribute-matching predicate has no business reaching outside
// its own value (unlike chtml's component expressions, which evaluate
// against a full scope).
type predicateEnv struct {
	Value string `expr:"value"`
}

// compileAttrPredicate compiles src once, at builder time, the same way
// chtml compiles c:if/c:for expressions once at component-parse time rather
// than per render.
func compileAttrPredicate(src string) (attrPredicate, error) {
	program, err := expr.Compile(src, expr.Env(predicateEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return func(value string) (bool, error) {
		out, err := expr.Run(program, predicateEnv{Value: value})
		if err != nil {
			return false, err
		}
		b, _ := out.(bool)
		return b, nil
	}, nil
}
