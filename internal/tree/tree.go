package tree

// Tree owns one file's conditional structure. It assigns node IDs
// arena-style so association tables can be keyed by index.
type Tree struct {
	root   *FileNode
	nextID int
}

// New creates a tree whose root is a FileNode for the given path.
func New(filename string) *Tree {
	t := &Tree{}
	t.root = &FileNode{base: t.newBase(), Filename: filename}
	return t
}

func (t *Tree) newBase() base {
	b := base{id: t.nextID}
	t.nextID++
	return b
}

// Root returns the file node at the root of the tree.
func (t *Tree) Root() *FileNode {
	return t.root
}

// NodeCount returns the number of nodes created in this tree.
func (t *Tree) NodeCount() int {
	return t.nextID
}

// NewCodeNode creates a code node owned by this tree. The caller
// attaches it to a parent.
func (t *Tree) NewCodeNode(numLines int) *CodeNode {
	return &CodeNode{base: t.newBase(), NumLines: numLines}
}

// NewDirectiveNode creates a directive node owned by this tree. The
// caller attaches it to a parent.
func (t *Tree) NewDirectiveNode(role BranchRole, keyword string, line int, cond Condition) *DirectiveNode {
	return &DirectiveNode{base: t.newBase(), Role: role, Keyword: keyword, Line: line, Cond: cond}
}
