package preproc

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"divmap/internal/tree"
)

const maxLineSize = 1024 * 1024

// Parse builds the conditional-structure tree for one source file.
// filename is the display name carried by the root FileNode and used in
// parse and evaluation errors.
//
// Runs of non-blank lines between directives become code nodes carrying
// their line counts. Branch directives nest: the children of an #if or
// #elif node form that branch's body, and the matching #elif/#else/
// #endif nodes are its siblings. Unbalanced conditionals are parse
// errors.
func Parse(filename string, r io.Reader) (*tree.Tree, error) {
	t := tree.New(filename)

	// stack[len-1] is the node new children attach to.
	stack := []tree.Node{t.Root()}
	top := func() tree.Node { return stack[len(stack)-1] }

	codeLines := 0
	flushCode := func() {
		if codeLines > 0 {
			top().AddChild(t.NewCodeNode(codeLines))
			codeLines = 0
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if !strings.HasPrefix(line, "#") {
			if line != "" {
				codeLines++
			}
			continue
		}

		directiveLine := lineNum
		// Join backslash continuations into one logical directive.
		for strings.HasSuffix(line, "\\") && scanner.Scan() {
			lineNum++
			line = strings.TrimSuffix(line, "\\") + " " + strings.TrimSpace(scanner.Text())
		}

		flushCode()

		keyword, rest := splitDirective(line)
		node, err := parseDirective(t, keyword, rest, directiveLine)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", filename, directiveLine)
		}

		switch node.Role {
		case tree.RoleStart:
			top().AddChild(node)
			stack = append(stack, node)
		case tree.RoleCont:
			if len(stack) < 2 || tree.RoleOf(top()) == tree.RoleNone {
				return nil, errors.Newf("%s:%d: #%s outside a conditional block", filename, directiveLine, keyword)
			}
			stack = stack[:len(stack)-1]
			top().AddChild(node)
			stack = append(stack, node)
		case tree.RoleEnd:
			if len(stack) < 2 || tree.RoleOf(top()) == tree.RoleNone {
				return nil, errors.Newf("%s:%d: #endif without matching #if", filename, directiveLine)
			}
			stack = stack[:len(stack)-1]
			top().AddChild(node)
		default:
			top().AddChild(node)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}

	if len(stack) != 1 {
		return nil, errors.Newf("%s: unterminated conditional block at end of file", filename)
	}
	flushCode()

	return t, nil
}

// splitDirective splits "#  keyword rest" into its keyword and trimmed
// remainder, with trailing comments removed.
func splitDirective(line string) (keyword, rest string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	body = stripComments(body)
	keyword, rest, _ = strings.Cut(body, " ")
	return keyword, strings.TrimSpace(rest)
}

func stripComments(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], "*/")
		if end < 0 {
			s = s[:start]
			break
		}
		s = s[:start] + " " + s[start+end+2:]
	}
	return strings.TrimSpace(s)
}
