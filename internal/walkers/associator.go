package walkers

import (
	"github.com/cockroachdb/errors"

	"divmap/internal/platform"
	"divmap/internal/tree"
)

// TreeAssociator walks one file's tree for one platform, recording the
// platform against every node the platform's compilation would visit.
//
// A tree must see exactly one associator pass per platform over the
// lifetime of its association map; repeating a pass would not corrupt
// the grow-only sets, but the single-pass assumption is what makes the
// branch bookkeeping below correct.
type TreeAssociator struct {
	TreeWalker
}

// NewTreeAssociator creates an associator for the tree and its
// association map.
func NewTreeAssociator(t *tree.Tree, assocs *AssociationMap) *TreeAssociator {
	return &TreeAssociator{TreeWalker: NewTreeWalker(t, assocs)}
}

// Walk runs one association pass for the platform. Passes mutate the
// platform's symbol table when they reach #define and #undef, so
// callers hand each pass its own clone.
//
// Evaluation failures are not retried or reinterpreted here; they
// surface to the driver wrapped with the platform and file.
func (a *TreeAssociator) Walk(p *platform.Platform) error {
	if _, err := a.associate(a.tree.Root(), p, true); err != nil {
		return errors.Wrapf(err, "associating platform %q", p.Name())
	}
	return nil
}

// associate records the platform against the node, then (if the caller
// asked for the children to be considered and the node applies to the
// platform) descends. It reports whether this node's children were
// processed, which the parent uses to track which branch of a
// multi-branch group was taken.
//
// The platform is recorded before applicability is decided: a branch
// node that turns out not to apply still carries the platform, while
// its descendants do not.
func (a *TreeAssociator) associate(n tree.Node, p *platform.Platform, processChildren bool) (bool, error) {
	a.assocs.AddPlatform(n, p.Name())

	if !processChildren {
		return false, nil
	}
	applies, err := tree.EvaluateForPlatform(n, p, a.tree.Root().Filename)
	if err != nil {
		return false, err
	}
	if !applies {
		return false, nil
	}

	// processChild suppresses the remaining branches of a group once
	// one branch has been taken, and is reset when the group closes.
	processChild := true
	for _, child := range n.Children() {
		childProcessed, err := a.associate(child, p, processChild)
		if err != nil {
			return false, err
		}

		role := tree.RoleOf(child)
		if childProcessed && (role == tree.RoleStart || role == tree.RoleCont) {
			processChild = false
		} else if !processChild && role == tree.RoleEnd {
			processChild = true
		}
	}
	return true, nil
}
