package walkers

import "divmap/internal/tree"

// LineMap is the total line count of the codebase keyed by the exact
// set of platforms sharing each region of code.
type LineMap map[PlatformSet]int

// FileMap breaks the line counts down per file within each set.
type FileMap map[PlatformSet]map[string]int

// TreeStore supplies the per-file trees and association maps the mapper
// aggregates over. It is implemented by the finder's analysis state.
type TreeStore interface {
	Filenames() []string
	Tree(filename string) *tree.Tree
	Associations(filename string) *AssociationMap
}

// Codebase reports which files count as part of the analyzed codebase.
// Trees exist for every parsed file, but only codebase members
// contribute lines.
type Codebase interface {
	Contains(filename string) bool
}

// PlatformMapper aggregates associated line counts across all files,
// grouping by the exact platform set of each code node. Grouping by
// exact set, not pairwise, is what lets downstream clustering separate
// code shared by {A,B} from code shared by {A,B,C}.
//
// The mapper runs after every platform has been associated; it performs
// exactly one aggregation pass and returns the same maps on every
// subsequent call.
type PlatformMapper struct {
	codebase Codebase
	lineMap  LineMap
	fileMap  FileMap
}

// NewPlatformMapper creates a mapper filtering by codebase membership.
func NewPlatformMapper(codebase Codebase) *PlatformMapper {
	return &PlatformMapper{
		codebase: codebase,
		lineMap:  make(LineMap),
		fileMap:  make(FileMap),
	}
}

// Walk aggregates every file in the store and returns the line and file
// maps. Calling Walk again returns the previously computed maps
// unchanged.
func (m *PlatformMapper) Walk(store TreeStore) (LineMap, FileMap) {
	if len(m.lineMap) == 0 {
		for _, filename := range store.Filenames() {
			m.mapNode(filename, store.Tree(filename).Root(), store.Associations(filename))
		}
	}
	return m.lineMap, m.fileMap
}

// mapNode attributes the node's lines to its platform set and descends.
// Code nodes never visited by any association pass belong to the empty
// set: they are dead relative to the configured platforms.
func (m *PlatformMapper) mapNode(filename string, n tree.Node, assocs *AssociationMap) {
	if file, ok := n.(*tree.FileNode); ok && !m.codebase.Contains(file.Filename) {
		return
	}

	if code, ok := n.(*tree.CodeNode); ok {
		set := EmptySet
		if assoc, ok := assocs.Get(code); ok {
			set = assoc.Set()
		}
		m.lineMap[set] += code.NumLines

		files := m.fileMap[set]
		if files == nil {
			files = make(map[string]int)
			m.fileMap[set] = files
		}
		files[filename] += code.NumLines
	}

	for _, child := range n.Children() {
		m.mapNode(filename, child, assocs)
	}
}
