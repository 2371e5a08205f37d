package finder

import (
	"sort"

	"divmap/internal/tree"
	"divmap/internal/walkers"
)

// State holds the analysis state for one run: every parsed file's tree
// and association map, plus which files count as part of the codebase.
// It implements walkers.TreeStore and walkers.Codebase.
type State struct {
	filenames []string
	trees     map[string]*tree.Tree
	assocs    map[string]*walkers.AssociationMap
	codebase  map[string]struct{}
}

// NewState returns an empty analysis state.
func NewState() *State {
	return &State{
		trees:    make(map[string]*tree.Tree),
		assocs:   make(map[string]*walkers.AssociationMap),
		codebase: make(map[string]struct{}),
	}
}

// AddTree registers a parsed file with a fresh association map.
// inCodebase marks the file as contributing lines to the aggregation.
func (s *State) AddTree(filename string, t *tree.Tree, inCodebase bool) {
	if _, ok := s.trees[filename]; !ok {
		s.filenames = append(s.filenames, filename)
		sort.Strings(s.filenames)
	}
	s.trees[filename] = t
	s.assocs[filename] = walkers.NewAssociationMap()
	if inCodebase {
		s.codebase[filename] = struct{}{}
	} else {
		delete(s.codebase, filename)
	}
}

// Filenames returns all parsed file names in sorted order.
func (s *State) Filenames() []string {
	return s.filenames
}

// Tree returns the parsed tree for a file, or nil if unknown.
func (s *State) Tree(filename string) *tree.Tree {
	return s.trees[filename]
}

// Associations returns the association map for a file, or nil if
// unknown.
func (s *State) Associations(filename string) *walkers.AssociationMap {
	return s.assocs[filename]
}

// Contains reports whether the file is part of the analyzed codebase.
func (s *State) Contains(filename string) bool {
	_, ok := s.codebase[filename]
	return ok
}
