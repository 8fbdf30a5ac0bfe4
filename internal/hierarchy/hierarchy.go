// Package hierarchy maintains the integrity of a budget scenario's
// category/folder tree. It answers structural queries (descendants,
// ancestor paths, rollup totals) and validates structural mutations
// (moves, deletes) so that the parent relation always remains a forest.
//
// All operations are synchronous, pure functions over an in-memory
// Snapshot. The engine performs no I/O and holds no locks; the caller
// (a single writer per scenario) builds a Snapshot from a consistent
// read, asks the engine to validate, and persists approved mutations.
package hierarchy

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Node is the engine's view of a single tree node. Folders are pure
// grouping containers; non-folder nodes (budget items) carry the
// monetary fields. Amounts on folders are ignored by rollups.
type Node struct {
	ID           string
	ParentID     *string
	Name         string
	IsFolder     bool
	Allocated    decimal.Decimal
	Spent        decimal.Decimal
	DisplayOrder int
}

// rootKey indexes root-level nodes in the children map.
const rootKey = ""

// Snapshot is an immutable-by-convention index over the flat node
// collection of one scenario. Query operations never mutate it;
// ApplyMove and ApplyDelete mutate it in place after validation.
type Snapshot struct {
	nodes    map[string]*Node
	children map[string][]string
}

// NewSnapshot builds a Snapshot from a flat node collection. Nodes are
// copied, so later changes to the input slice do not affect the
// snapshot. Duplicate IDs keep the first occurrence.
func NewSnapshot(nodes []Node) *Snapshot {
	s := &Snapshot{
		nodes:    make(map[string]*Node, len(nodes)),
		children: make(map[string][]string),
	}
	for i := range nodes {
		n := nodes[i]
		if _, ok := s.nodes[n.ID]; ok {
			continue
		}
		s.nodes[n.ID] = &n
		s.children[parentKey(n.ParentID)] = append(s.children[parentKey(n.ParentID)], n.ID)
	}
	for key := range s.children {
		s.sortSiblings(key)
	}
	return s
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return rootKey
	}
	return *parentID
}

// sortSiblings keeps a sibling group ordered by DisplayOrder, with ID
// as tie breaker so traversal order is deterministic.
func (s *Snapshot) sortSiblings(key string) {
	ids := s.children[key]
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := s.nodes[ids[i]], s.nodes[ids[j]]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.ID < b.ID
	})
}

// Len returns the number of nodes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// Node returns a copy of the node with the given ID.
func (s *Snapshot) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Children returns copies of the direct children of the given node, in
// sibling order. Pass an empty ID for root-level nodes.
func (s *Snapshot) Children(id string) []Node {
	ids := s.children[id]
	out := make([]Node, 0, len(ids))
	for _, childID := range ids {
		out = append(out, *s.nodes[childID])
	}
	return out
}

// Roots returns copies of all root-level nodes in sibling order.
func (s *Snapshot) Roots() []Node {
	return s.Children(rootKey)
}

// Nodes returns copies of every node in the snapshot, in no particular
// order.
func (s *Snapshot) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	return out
}

// detach removes id from its current sibling group.
func (s *Snapshot) detach(id string) {
	n := s.nodes[id]
	key := parentKey(n.ParentID)
	ids := s.children[key]
	for i, sibling := range ids {
		if sibling == id {
			s.children[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// attach places id under the given parent and restores sibling order.
func (s *Snapshot) attach(id string, parentID *string) {
	s.nodes[id].ParentID = parentID
	key := parentKey(parentID)
	s.children[key] = append(s.children[key], id)
	s.sortSiblings(key)
}
