package preproc

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"divmap/internal/platform"
)

// CondExpr is the condition of an #if or #elif directive. The source
// text is tokenized and evaluated lazily, so a malformed expression only
// fails for platforms whose association pass actually reaches it.
type CondExpr struct {
	Source string
}

// Evaluate reports whether the expression is true for the platform.
func (c *CondExpr) Evaluate(env *platform.Platform, _ string) (bool, error) {
	val, err := evalExpr(c.Source, env)
	if err != nil {
		return false, errors.Wrapf(err, "evaluating %q", c.Source)
	}
	return val != 0, nil
}

// DefinedCond is the condition of an #ifdef or #ifndef directive.
type DefinedCond struct {
	Macro  string
	Negate bool
}

// Evaluate reports whether the macro is defined (or, for #ifndef, not
// defined) for the platform.
func (c *DefinedCond) Evaluate(env *platform.Platform, _ string) (bool, error) {
	return env.Defined(c.Macro) != c.Negate, nil
}

// DefineEffect is the "condition" of a #define directive: reaching it
// always applies, and as a side effect records the macro against the
// platform so later conditionals in the same pass see it.
type DefineEffect struct {
	Macro string
	Value string
}

// Evaluate defines the macro and reports true.
func (c *DefineEffect) Evaluate(env *platform.Platform, _ string) (bool, error) {
	switch {
	case c.Value == "":
		// #define FOO is interpreted as #define FOO 1.
		env.Define(c.Macro, 1)
	default:
		val, err := strconv.ParseInt(strings.TrimRight(c.Value, "uUlL"), 0, 64)
		if err != nil {
			// Non-integer bodies still count as defined.
			val = 0
		}
		env.Define(c.Macro, val)
	}
	return true, nil
}

// UndefEffect is the "condition" of an #undef directive: reaching it
// always applies, and removes the macro from the platform.
type UndefEffect struct {
	Macro string
}

// Evaluate undefines the macro and reports true.
func (c *UndefEffect) Evaluate(env *platform.Platform, _ string) (bool, error) {
	env.Undef(c.Macro)
	return true, nil
}
