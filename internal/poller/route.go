package poller

import (
	"strings"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/pkg/errors"
)

// RouteMatcher decides whether a channel is active on a given navigation path.
// Predicates are expr expressions evaluated against a single variable, route,
// e.g. `route contains "overview" || route contains "dashboard"`.
type RouteMatcher struct {
	src  string
	prog *vm.Program
}

func routeEnv(route string) map[string]any {
	return map[string]any{"route": route}
}

// CompileRoute compiles src. A blank predicate matches every route.
func CompileRoute(src string) (RouteMatcher, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return AnyRoute(), nil
	}
	prog, err := expr.Compile(src, expr.Env(routeEnv("")), expr.AsBool())
	if err != nil {
		return RouteMatcher{}, errors.Wrapf(err, "poller: invalid route predicate %q", src)
	}
	return RouteMatcher{src: src, prog: prog}, nil
}

// MustCompileRoute is like CompileRoute but panics on an invalid predicate.
func MustCompileRoute(src string) RouteMatcher {
	m, err := CompileRoute(src)
	if err != nil {
		panic(err)
	}
	return m
}

func AnyRoute() RouteMatcher {
	return RouteMatcher{src: "true"}
}

func (m RouteMatcher) Match(route string) bool {
	if m.prog == nil {
		return true
	}
	out, err := expr.Run(m.prog, routeEnv(route))
	if err != nil {
		return false
	}
	matched, _ := out.(bool)
	return matched
}

func (m RouteMatcher) String() string {
	return m.src
}
