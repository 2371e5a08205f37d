// Package walkers contains the tree walkers that associate nodes with
// the platforms compiling them, and aggregate the result into line
// counts keyed by exact platform set.
package walkers

import (
	"sort"
	"strings"

	"divmap/internal/tree"
)

// setSep separates names inside a PlatformSet key. Platform names come
// from configuration and never contain control characters.
const setSep = "\x1f"

// PlatformSet is an immutable, value-comparable set of platform names:
// the canonical sorted join of its members. Two sets built from the same
// names in any order compare equal, which makes PlatformSet usable as
// the key of the aggregated maps.
type PlatformSet string

// EmptySet is the distinguished key for code reached by no platform.
const EmptySet PlatformSet = ""

// NewPlatformSet builds the canonical set for the given names,
// discarding duplicates.
func NewPlatformSet(names ...string) PlatformSet {
	if len(names) == 0 {
		return EmptySet
	}
	uniq := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			uniq = append(uniq, name)
		}
	}
	sort.Strings(uniq)
	return PlatformSet(strings.Join(uniq, setSep))
}

// Names returns the member platform names in sorted order.
func (s PlatformSet) Names() []string {
	if s == EmptySet {
		return nil
	}
	return strings.Split(string(s), setSep)
}

// Len returns the number of member platforms.
func (s PlatformSet) Len() int {
	if s == EmptySet {
		return 0
	}
	return strings.Count(string(s), setSep) + 1
}

// Contains reports whether name is a member of the set.
func (s PlatformSet) Contains(name string) bool {
	for _, member := range s.Names() {
		if member == name {
			return true
		}
	}
	return false
}

func (s PlatformSet) String() string {
	if s == EmptySet {
		return "{}"
	}
	return "{" + strings.Join(s.Names(), ", ") + "}"
}

// Association records the set of platforms that reach one tree node.
// The set only grows: once a platform is added it is never removed.
type Association struct {
	platforms map[string]struct{}
}

// NewAssociation returns an empty association.
func NewAssociation() *Association {
	return &Association{platforms: make(map[string]struct{})}
}

// AddPlatform adds a platform name to the association. Adding a name
// already present is a no-op.
func (a *Association) AddPlatform(name string) {
	a.platforms[name] = struct{}{}
}

// Platforms returns the associated platform names in sorted order.
func (a *Association) Platforms() []string {
	names := make([]string, 0, len(a.platforms))
	for name := range a.platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set freezes the association into its PlatformSet key.
func (a *Association) Set() PlatformSet {
	return NewPlatformSet(a.Platforms()...)
}

// AssociationMap holds the associations for every visited node of one
// file's tree, keyed by node ID.
type AssociationMap struct {
	assocs map[int]*Association
}

// NewAssociationMap returns an empty association map. One map serves
// exactly one tree across all of its association passes.
func NewAssociationMap() *AssociationMap {
	return &AssociationMap{assocs: make(map[int]*Association)}
}

// Prepare ensures an association exists for the node.
func (m *AssociationMap) Prepare(n tree.Node) {
	if _, ok := m.assocs[n.ID()]; !ok {
		m.assocs[n.ID()] = NewAssociation()
	}
}

// AddPlatform records a platform against the node, preparing it first.
func (m *AssociationMap) AddPlatform(n tree.Node, name string) {
	m.Prepare(n)
	m.assocs[n.ID()].AddPlatform(name)
}

// Get returns the node's association. The second result distinguishes a
// node that was never visited from one visited by zero platforms; the
// mapper attributes never-visited code to the empty platform set.
func (m *AssociationMap) Get(n tree.Node) (*Association, bool) {
	a, ok := m.assocs[n.ID()]
	return a, ok
}

// Len returns the number of nodes with an association.
func (m *AssociationMap) Len() int {
	return len(m.assocs)
}
