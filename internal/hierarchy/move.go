package hierarchy

import "errors"

// Structural validation errors. These are plain sentinel values so the
// service layer can map them onto its own error taxonomy.
var (
	// ErrUnknownNode is returned when the node being operated on does
	// not exist in the snapshot.
	ErrUnknownNode = errors.New("hierarchy: node does not exist")

	// ErrSelfReference is returned when a node is moved under itself.
	ErrSelfReference = errors.New("hierarchy: node cannot be its own parent")

	// ErrCircularReference is returned when a node is moved under one
	// of its own descendants.
	ErrCircularReference = errors.New("hierarchy: move would create a cycle")

	// ErrInvalidTarget is returned when the proposed parent does not
	// exist or is not a folder.
	ErrInvalidTarget = errors.New("hierarchy: target parent must be an existing folder")

	// ErrUnknownPolicy is returned by ApplyDelete for an unrecognized
	// child policy. There is no default policy; the two behaviors are
	// not interchangeable and picking one silently risks data loss.
	ErrUnknownPolicy = errors.New("hierarchy: unknown child policy")
)

// ValidateMove checks whether the node can be re-parented under the
// proposed parent. A nil parent means a move to root level.
//
// It is a pure predicate: no mutation occurs here, so the presentation
// layer can enable or disable a "Move" control reactively without side
// effects. The caller applies the mutation only after success.
func (s *Snapshot) ValidateMove(id string, newParentID *string) error {
	if _, ok := s.nodes[id]; !ok {
		return ErrUnknownNode
	}
	if newParentID == nil {
		return nil
	}
	if *newParentID == id {
		return ErrSelfReference
	}
	target, ok := s.nodes[*newParentID]
	if !ok {
		return ErrInvalidTarget
	}
	// The cycle rule outranks the folder rule: moving a node under any
	// of its descendants is a CircularReference even when the
	// descendant is a leaf.
	if _, isDescendant := s.Descendants(id)[*newParentID]; isDescendant {
		return ErrCircularReference
	}
	if !target.IsFolder {
		return ErrInvalidTarget
	}
	return nil
}

// ApplyMove sets the node's parent after re-running ValidateMove. A
// direct call with an invalid target fails with the same error
// taxonomy instead of corrupting the tree. The snapshot is updated
// atomically from the caller's point of view: on error nothing
// changes.
func (s *Snapshot) ApplyMove(id string, newParentID *string) error {
	if err := s.ValidateMove(id, newParentID); err != nil {
		return err
	}
	s.detach(id)
	s.attach(id, newParentID)
	return nil
}

// ChildPolicy selects the fate of a deleted node's children. It must
// be explicit at every call site.
type ChildPolicy string

const (
	// ReparentToGrandparent moves every direct child of the deleted
	// node under the deleted node's own parent (possibly root).
	// Grandchildren are unaffected.
	ReparentToGrandparent ChildPolicy = "reparent"

	// CascadeDelete removes the node together with its full
	// transitive descendant set.
	CascadeDelete ChildPolicy = "cascade"
)

// Valid reports whether the policy is one of the known values.
func (p ChildPolicy) Valid() bool {
	return p == ReparentToGrandparent || p == CascadeDelete
}

// ApplyDelete removes the node from the snapshot, resolving the fate
// of its children according to the given policy. It returns the IDs of
// every removed node so the caller can mirror the removal in storage.
func (s *Snapshot) ApplyDelete(id string, policy ChildPolicy) ([]string, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrUnknownNode
	}

	switch policy {
	case ReparentToGrandparent:
		grandparent := n.ParentID
		for _, child := range append([]string(nil), s.children[id]...) {
			s.detach(child)
			s.attach(child, grandparent)
		}
		s.remove(id)
		return []string{id}, nil

	case CascadeDelete:
		removed := []string{id}
		for descendant := range s.Descendants(id) {
			removed = append(removed, descendant)
		}
		for _, victim := range removed {
			s.remove(victim)
		}
		return removed, nil

	default:
		return nil, ErrUnknownPolicy
	}
}

// remove drops a single node from both indexes.
func (s *Snapshot) remove(id string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	s.detach(id)
	delete(s.children, id)
	delete(s.nodes, n.ID)
}
