package filter

import (
	"github.com/s0up4200/paperbox/paper"
)

// Filter decides whether a collaborator matches.
type Filter interface {
	Match(c paper.Collaborator) bool
}

// CompiledFilter is a parsed expression ready for evaluation
type CompiledFilter interface {
	Filter

	// Eval runs the filter, reporting runtime failures instead of treating
	// them as a non-match.
	Eval(c paper.Collaborator) (bool, error)

	// Expression returns the source the filter was compiled from
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler keeps compiled filters around by expression
type CachingCompiler interface {
	Compiler

	Clear()
	Size() int
}
