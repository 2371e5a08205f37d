package tree

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divmap/internal/platform"
)

func TestTree_NodeIDs(t *testing.T) {
	t.Parallel()

	tr := New("a.c")
	n1 := tr.NewCodeNode(3)
	n2 := tr.NewDirectiveNode(RoleStart, "if", 1, nil)

	assert.Equal(t, 0, tr.Root().ID())
	assert.Equal(t, 1, n1.ID())
	assert.Equal(t, 2, n2.ID())
	assert.Equal(t, 3, tr.NodeCount())

	// IDs are per-tree, so two trees may reuse them.
	other := New("b.c")
	assert.Equal(t, 0, other.Root().ID())
}

func TestRoleOf(t *testing.T) {
	t.Parallel()

	tr := New("a.c")
	assert.Equal(t, RoleNone, RoleOf(tr.Root()))
	assert.Equal(t, RoleNone, RoleOf(tr.NewCodeNode(1)))
	assert.Equal(t, RoleStart, RoleOf(tr.NewDirectiveNode(RoleStart, "ifdef", 1, nil)))
	assert.Equal(t, RoleCont, RoleOf(tr.NewDirectiveNode(RoleCont, "else", 2, nil)))
	assert.Equal(t, RoleEnd, RoleOf(tr.NewDirectiveNode(RoleEnd, "endif", 3, nil)))
}

func TestNodeString(t *testing.T) {
	t.Parallel()

	tr := New("src/a.c")
	assert.Equal(t, "file src/a.c", tr.Root().String())
	assert.Equal(t, "code (4 lines)", tr.NewCodeNode(4).String())
	assert.Equal(t, "#elif (line 7)", tr.NewDirectiveNode(RoleCont, "elif", 7, nil).String())
}

type errCond struct{}

func (errCond) Evaluate(*platform.Platform, string) (bool, error) {
	return false, errors.New("boom")
}

// TestEvaluateForPlatform verifies condition-less nodes always apply
// and failures carry file, line and keyword.
func TestEvaluateForPlatform(t *testing.T) {
	t.Parallel()

	tr := New("a.c")
	p := platform.New("cpu")

	applies, err := EvaluateForPlatform(tr.NewCodeNode(1), p, "a.c")
	require.NoError(t, err)
	assert.True(t, applies)

	applies, err = EvaluateForPlatform(tr.NewDirectiveNode(RoleCont, "else", 5, nil), p, "a.c")
	require.NoError(t, err)
	assert.True(t, applies)

	bad := tr.NewDirectiveNode(RoleStart, "if", 9, errCond{})
	_, err = EvaluateForPlatform(bad, p, "a.c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.c:9: #if")
	assert.Contains(t, err.Error(), "boom")
}
