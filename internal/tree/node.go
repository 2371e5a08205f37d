package tree

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"divmap/internal/platform"
)

// BranchRole classifies a directive's position in a mutually exclusive
// branch group. At most one branch between a start node and its matching
// end node is taken per platform.
type BranchRole int

const (
	// RoleNone marks nodes outside any branch group structure.
	RoleNone BranchRole = iota
	// RoleStart opens a branch group (#if, #ifdef, #ifndef).
	RoleStart
	// RoleCont introduces an alternative branch (#elif, #else).
	RoleCont
	// RoleEnd closes a branch group (#endif).
	RoleEnd
)

func (r BranchRole) String() string {
	switch r {
	case RoleStart:
		return "start"
	case RoleCont:
		return "cont"
	case RoleEnd:
		return "end"
	default:
		return "none"
	}
}

// Condition decides whether a directive's guarded content applies to a
// platform. Implementations may consult and mutate the platform's symbol
// table: reaching a #define records its macro against the platform.
//
// Evaluate may fail when the predicate is malformed or unsupported. Such
// failures are never retried; they propagate to the driver with enough
// context to locate the offending directive.
type Condition interface {
	Evaluate(p *platform.Platform, filename string) (bool, error)
}

// Node is one element of a file's conditional-structure tree: the file
// root, a directive, or a run of code lines. A parent exclusively owns
// its children.
type Node interface {
	// ID is a stable index assigned when the node is created, used to
	// key association tables without relying on pointer identity.
	ID() int
	Children() []Node
	AddChild(Node)
	fmt.Stringer
}

type base struct {
	id       int
	children []Node
}

func (b *base) ID() int          { return b.id }
func (b *base) Children() []Node { return b.children }
func (b *base) AddChild(n Node)  { b.children = append(b.children, n) }

// FileNode is the root of a file's tree. It represents the file itself,
// not code inside it, and is excluded from line aggregation.
type FileNode struct {
	base
	Filename string
}

func (n *FileNode) String() string {
	return fmt.Sprintf("file %s", n.Filename)
}

// CodeNode is a run of source lines not further subdivided by
// conditionals.
type CodeNode struct {
	base
	NumLines int
}

func (n *CodeNode) String() string {
	return fmt.Sprintf("code (%d lines)", n.NumLines)
}

// DirectiveNode is a preprocessor directive. Branch directives carry a
// role and, except for #else and #endif, a condition; non-branching
// directives (#define, #include, ...) have RoleNone.
type DirectiveNode struct {
	base
	Role    BranchRole
	Keyword string // directive keyword without the leading '#'
	Line    int    // 1-based physical line of the directive
	Cond    Condition
}

func (n *DirectiveNode) String() string {
	return fmt.Sprintf("#%s (line %d)", n.Keyword, n.Line)
}

// RoleOf returns the branch role of a node. Non-directive nodes have
// RoleNone.
func RoleOf(n Node) BranchRole {
	if d, ok := n.(*DirectiveNode); ok {
		return d.Role
	}
	return RoleNone
}

// EvaluateForPlatform reports whether a node's guarded content applies
// to the given platform. Nodes without a condition are always
// applicable. Evaluation failures are wrapped with the file, line and
// directive so the user can locate the offending conditional.
func EvaluateForPlatform(n Node, p *platform.Platform, filename string) (bool, error) {
	d, ok := n.(*DirectiveNode)
	if !ok || d.Cond == nil {
		return true, nil
	}
	applies, err := d.Cond.Evaluate(p, filename)
	if err != nil {
		return false, errors.Wrapf(err, "%s:%d: #%s", filename, d.Line, d.Keyword)
	}
	return applies, nil
}
