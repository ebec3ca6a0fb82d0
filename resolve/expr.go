package resolve

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/expr-lang/expr"

	"github.com/ardnew/cropenv/value"
)

// exprEnv exposes the root document to expressions. Object roots are
// visible member by member; any other root is bound to "root".
func exprEnv(root value.Value) map[string]any {
	env := map[string]any{}

	if m, ok := root.Native().(map[string]any); ok {
		env = m
	} else {
		env["root"] = root.Native()
	}

	return env
}

func getenv(params ...any) (any, error) {
	name, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("getenv: expected string, got %T", params[0])
	}

	return os.Getenv(name), nil
}

func evalExpr(p *Pass, args Args) Result {
	source := args.Str(0)
	env := exprEnv(p.Root())

	program, err := expr.Compile(source,
		expr.Env(env),
		expr.Function("getenv", getenv, new(func(string) string)),
	)
	if err != nil {
		return p.Fail(args, ErrExprEvaluate.Wrap(err).With(slog.String("source", source)))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return p.Fail(args, ErrExprEvaluate.Wrap(err).With(slog.String("source", source)))
	}

	v, err := value.FromNative(out)
	if err != nil {
		return p.Fail(args, ErrExprEvaluate.Wrap(err).With(slog.String("source", source)))
	}

	return Succeed(v)
}
