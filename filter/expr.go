package filter

import (
	"maps"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/paperbox/paper"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	compiler   *exprCompiler
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a compiler for collaborator expressions such as
//
//	SameTeam and hasPermission("edit") and emailDomain(Email) != "example.com"
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
		envPool:     &sync.Pool{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.envPool.New = func() any {
		return make(map[string]any, 24)
	}

	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
	envPool     *sync.Pool
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Compile against a zero collaborator so field types are checked.
	env := make(map[string]any, 24)
	c.fill(env, paper.Collaborator{})
	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		compiler:   c,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// fill populates env with the collaborator's fields and the helper functions.
// Helpers that read the collaborator are bound per call.
func (c *exprCompiler) fill(env map[string]any, collab paper.Collaborator) {
	maps.Copy(env, c.helperFuncs)

	env["AccountID"] = collab.AccountID
	env["Email"] = collab.Email
	env["DisplayName"] = collab.DisplayName
	env["SameTeam"] = collab.SameTeam
	env["Permission"] = string(collab.Permission)
	env["Invitee"] = collab.Invitee
	env["Owner"] = collab.Owner

	env["hasPermission"] = func(level string) bool {
		return strings.EqualFold(string(collab.Permission), level)
	}
	env["canEdit"] = func() bool {
		return collab.Owner || collab.Permission == paper.PermissionEdit
	}
}

// Match reports whether collab satisfies the filter. Runtime errors count
// as no match.
func (f *exprFilter) Match(collab paper.Collaborator) bool {
	ok, err := f.Eval(collab)
	return err == nil && ok
}

func (f *exprFilter) Eval(collab paper.Collaborator) (bool, error) {
	env := f.compiler.envPool.Get().(map[string]any)
	defer func() {
		clear(env)
		f.compiler.envPool.Put(env)
	}()
	f.compiler.fill(env, collab)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression:   f.expression,
			Collaborator: identify(collab),
			Err:          err,
		}
	}

	// AsBool guarantees the result type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func identify(c paper.Collaborator) string {
	switch {
	case c.Email != "":
		return c.Email
	case c.AccountID != "":
		return c.AccountID
	default:
		return c.DisplayName
	}
}

func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)

	// String helpers
	funcs["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	funcs["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	funcs["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	funcs["lower"] = strings.ToLower
	funcs["upper"] = strings.ToUpper

	// emailDomain("Ann@Example.com") == "example.com"
	funcs["emailDomain"] = func(email string) string {
		_, domain, found := strings.Cut(email, "@")
		if !found {
			return ""
		}
		return strings.ToLower(domain)
	}

	// Bound per collaborator in fill; present here so compilation sees them.
	funcs["hasPermission"] = func(string) bool { return false }
	funcs["canEdit"] = func() bool { return false }

	return funcs
}
