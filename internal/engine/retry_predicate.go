package engine

import (
	"github.com/expr-lang/expr"
)

// evalRetryIf compiles and runs a RetryConfig.RetryIf expression against
// the failing node's event and error message, grounded on
// pkg/executor/template_wrapper.go's expr-lang/expr usage for predicate
// evaluation. A compile or type error is treated as "don't retry" — a
// broken predicate should surface as a stopped execution, not an infinite
// retry loop.
func evalRetryIf(expression string, event map[string]any, failMsg string) bool {
	if expression == "" {
		return true
	}
	program, err := expr.Compile(expression, expr.Env(retryEnv{}), expr.AsBool())
	if err != nil {
		return false
	}
	out, err := expr.Run(program, retryEnv{Event: event, Error: retryError{Message: failMsg}})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

type retryEnv struct {
	Event map[string]any `expr:"event"`
	Error retryError     `expr:"error"`
}

type retryError struct {
	Message string `expr:"message"`
}
