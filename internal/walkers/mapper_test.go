package walkers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divmap/internal/platform"
	"divmap/internal/tree"
	"divmap/internal/walkers"
)

// fakeStore is a minimal TreeStore and Codebase for mapper tests.
type fakeStore struct {
	files    []string
	trees    map[string]*tree.Tree
	assocs   map[string]*walkers.AssociationMap
	codebase map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		trees:    make(map[string]*tree.Tree),
		assocs:   make(map[string]*walkers.AssociationMap),
		codebase: make(map[string]bool),
	}
}

func (s *fakeStore) add(tr *tree.Tree, inCodebase bool) *walkers.AssociationMap {
	filename := tr.Root().Filename
	s.files = append(s.files, filename)
	s.trees[filename] = tr
	s.assocs[filename] = walkers.NewAssociationMap()
	s.codebase[filename] = inCodebase
	return s.assocs[filename]
}

func (s *fakeStore) Filenames() []string                            { return s.files }
func (s *fakeStore) Tree(fn string) *tree.Tree                      { return s.trees[fn] }
func (s *fakeStore) Associations(fn string) *walkers.AssociationMap { return s.assocs[fn] }
func (s *fakeStore) Contains(fn string) bool                        { return s.codebase[fn] }

func (s *fakeStore) associate(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		for _, fn := range s.files {
			require.NoError(t, walkers.NewTreeAssociator(s.trees[fn], s.assocs[fn]).Walk(platform.New(name)))
		}
	}
}

// TestPlatformMapper_EndToEnd covers the canonical scenario: prologue
// and epilogue shared by both platforms, the #if body on p1 only, the
// #else body on p2 only.
func TestPlatformMapper_EndToEnd(t *testing.T) {
	t.Parallel()

	tr, _ := branchedTree(t)
	store := newFakeStore()
	store.add(tr, true)
	store.associate(t, "p1", "p2")

	lineMap, fileMap := walkers.NewPlatformMapper(store).Walk(store)

	assert.Equal(t, walkers.LineMap{
		walkers.NewPlatformSet("p1", "p2"): 4,
		walkers.NewPlatformSet("p1"):       5,
		walkers.NewPlatformSet("p2"):       2,
	}, lineMap)

	assert.Equal(t, walkers.FileMap{
		walkers.NewPlatformSet("p1", "p2"): {"demo.c": 4},
		walkers.NewPlatformSet("p1"):       {"demo.c": 5},
		walkers.NewPlatformSet("p2"):       {"demo.c": 2},
	}, fileMap)
}

// TestPlatformMapper_Idempotent verifies that a second Walk returns the
// previously computed maps without recomputation.
func TestPlatformMapper_Idempotent(t *testing.T) {
	t.Parallel()

	tr, _ := branchedTree(t)
	store := newFakeStore()
	store.add(tr, true)
	store.associate(t, "p1", "p2")

	mapper := walkers.NewPlatformMapper(store)
	lineMap1, fileMap1 := mapper.Walk(store)
	lineMap2, fileMap2 := mapper.Walk(store)

	assert.Equal(t, lineMap1, lineMap2)
	assert.Equal(t, fileMap1, fileMap2)
	assert.Equal(t, 4, lineMap2[walkers.NewPlatformSet("p1", "p2")], "second walk must not double-count")
}

// TestPlatformMapper_ConservationOfLines verifies every code line is
// attributed to exactly one platform set.
func TestPlatformMapper_ConservationOfLines(t *testing.T) {
	t.Parallel()

	tr, _ := branchedTree(t) // 3+5+2+1 = 11 code lines
	store := newFakeStore()
	store.add(tr, true)
	store.associate(t, "p1", "p2")

	lineMap, _ := walkers.NewPlatformMapper(store).Walk(store)

	total := 0
	for _, lines := range lineMap {
		total += lines
	}
	assert.Equal(t, 11, total)
}

// TestPlatformMapper_UnassociatedLines verifies that code visited by no
// platform lands in the empty set.
func TestPlatformMapper_UnassociatedLines(t *testing.T) {
	t.Parallel()

	tr := tree.New("dead.c")
	ifNode := tr.NewDirectiveNode(tree.RoleStart, "if", 1, appliesOn{})
	deadBody := tr.NewCodeNode(6)
	endNode := tr.NewDirectiveNode(tree.RoleEnd, "endif", 4, nil)
	tr.Root().AddChild(ifNode)
	ifNode.AddChild(deadBody)
	tr.Root().AddChild(endNode)

	store := newFakeStore()
	store.add(tr, true)
	store.associate(t, "p1", "p2")

	lineMap, fileMap := walkers.NewPlatformMapper(store).Walk(store)

	assert.Equal(t, 6, lineMap[walkers.EmptySet])
	assert.Equal(t, map[string]int{"dead.c": 6}, fileMap[walkers.EmptySet])
}

// TestPlatformMapper_SetKeyOrderIndependence verifies that association
// order does not produce distinct keys.
func TestPlatformMapper_SetKeyOrderIndependence(t *testing.T) {
	t.Parallel()

	build := func(names ...string) walkers.LineMap {
		tr := tree.New("o.c")
		tr.Root().AddChild(tr.NewCodeNode(2))
		store := newFakeStore()
		store.add(tr, true)
		store.associate(t, names...)
		lineMap, _ := walkers.NewPlatformMapper(store).Walk(store)
		return lineMap
	}

	assert.Equal(t, build("linux", "mac"), build("mac", "linux"))
}

// TestPlatformMapper_CodebaseFiltering verifies files outside the
// codebase contribute nothing.
func TestPlatformMapper_CodebaseFiltering(t *testing.T) {
	t.Parallel()

	inTree := tree.New("app.c")
	inTree.Root().AddChild(inTree.NewCodeNode(5))
	outTree := tree.New("third_party/lib.c")
	outTree.Root().AddChild(outTree.NewCodeNode(100))

	store := newFakeStore()
	store.add(inTree, true)
	store.add(outTree, false)
	store.associate(t, "p1")

	lineMap, fileMap := walkers.NewPlatformMapper(store).Walk(store)

	assert.Equal(t, walkers.LineMap{walkers.NewPlatformSet("p1"): 5}, lineMap)
	_, ok := fileMap[walkers.NewPlatformSet("p1")]["third_party/lib.c"]
	assert.False(t, ok)
}

// TestPlatformMapper_MultipleFiles verifies per-file attribution in the
// file map.
func TestPlatformMapper_MultipleFiles(t *testing.T) {
	t.Parallel()

	a := tree.New("a.c")
	a.Root().AddChild(a.NewCodeNode(3))
	b := tree.New("b.c")
	b.Root().AddChild(b.NewCodeNode(4))

	store := newFakeStore()
	store.add(a, true)
	store.add(b, true)
	store.associate(t, "p1")

	lineMap, fileMap := walkers.NewPlatformMapper(store).Walk(store)
	set := walkers.NewPlatformSet("p1")

	assert.Equal(t, 7, lineMap[set])
	assert.Equal(t, map[string]int{"a.c": 3, "b.c": 4}, fileMap[set])
}
