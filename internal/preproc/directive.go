package preproc

import (
	"strings"

	"github.com/cockroachdb/errors"

	"divmap/internal/tree"
)

// parseDirective classifies one preprocessor directive and builds its
// node. Unknown directives (#include, #pragma, #error, ...) become
// plain nodes that are always applicable.
func parseDirective(t *tree.Tree, keyword, rest string, line int) (*tree.DirectiveNode, error) {
	switch keyword {
	case "if":
		return t.NewDirectiveNode(tree.RoleStart, keyword, line, &CondExpr{Source: rest}), nil
	case "ifdef", "ifndef":
		macro := firstField(rest)
		if macro == "" {
			return nil, errors.Newf("#%s requires a macro name", keyword)
		}
		cond := &DefinedCond{Macro: macro, Negate: keyword == "ifndef"}
		return t.NewDirectiveNode(tree.RoleStart, keyword, line, cond), nil
	case "elif":
		return t.NewDirectiveNode(tree.RoleCont, keyword, line, &CondExpr{Source: rest}), nil
	case "else":
		return t.NewDirectiveNode(tree.RoleCont, keyword, line, nil), nil
	case "endif":
		return t.NewDirectiveNode(tree.RoleEnd, keyword, line, nil), nil
	case "define":
		macro, value := splitDefine(rest)
		if macro == "" {
			return nil, errors.Newf("#define requires a macro name")
		}
		return t.NewDirectiveNode(tree.RoleNone, keyword, line, &DefineEffect{Macro: macro, Value: value}), nil
	case "undef":
		macro := firstField(rest)
		if macro == "" {
			return nil, errors.Newf("#undef requires a macro name")
		}
		return t.NewDirectiveNode(tree.RoleNone, keyword, line, &UndefEffect{Macro: macro}), nil
	default:
		return t.NewDirectiveNode(tree.RoleNone, keyword, line, nil), nil
	}
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// splitDefine separates a #define body into macro name and value.
// Function-like macros are recorded by name only; their value is left
// empty so they default to 1, which is all branch evaluation needs.
func splitDefine(body string) (macro, value string) {
	body = strings.TrimSpace(body)
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] == '(':
			return body[:i], ""
		case body[i] == ' ' || body[i] == '\t':
			return body[:i], strings.TrimSpace(body[i:])
		}
	}
	return body, ""
}
