package walkers

import (
	"fmt"
	"io"
	"strings"

	"divmap/internal/tree"
)

// TreeWalker binds one file's tree to its association map. It is the
// base all traversal behaviors share.
type TreeWalker struct {
	tree   *tree.Tree
	assocs *AssociationMap
}

// NewTreeWalker creates a walker over the tree and its associations.
func NewTreeWalker(t *tree.Tree, assocs *AssociationMap) TreeWalker {
	return TreeWalker{tree: t, assocs: assocs}
}

// TreePrinter renders a tree with each node's associated platforms.
// It is a diagnostic aid, not part of the analysis contract.
type TreePrinter struct {
	TreeWalker
}

// NewTreePrinter creates a printer for the tree and its associations.
func NewTreePrinter(t *tree.Tree, assocs *AssociationMap) *TreePrinter {
	return &TreePrinter{TreeWalker: NewTreeWalker(t, assocs)}
}

// Walk writes the tree to w, one node per line, indented by depth and
// annotated with the node's associated platform names.
func (p *TreePrinter) Walk(w io.Writer) {
	p.printNode(w, p.tree.Root(), 0)
}

func (p *TreePrinter) printNode(w io.Writer, n tree.Node, level int) {
	names := ""
	if assoc, ok := p.assocs.Get(n); ok {
		names = strings.Join(assoc.Platforms(), ", ")
	}
	fmt.Fprintf(w, "%s%s -- platforms: %s\n", strings.Repeat("  ", level), n, names)
	for _, child := range n.Children() {
		p.printNode(w, child, level+1)
	}
}
