package hierarchy

import "strings"

// Descendants returns the set of all transitive children of the given
// node, excluding the node itself. An unknown ID yields an empty set,
// since the caller may be querying a node that was already removed.
//
// The traversal tracks visited IDs and bounds iteration by the total
// node count, so it terminates with a best-effort partial result even
// if externally imported data contains a cycle. It never hangs and
// never returns duplicates.
func (s *Snapshot) Descendants(id string) map[string]struct{} {
	result := make(map[string]struct{})
	if _, ok := s.nodes[id]; !ok {
		return result
	}

	visited := map[string]struct{}{id: {}}
	queue := append([]string(nil), s.children[id]...)
	for steps := 0; len(queue) > 0 && steps < len(s.nodes); steps++ {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		result[current] = struct{}{}
		queue = append(queue, s.children[current]...)
	}
	return result
}

// AncestorPath walks parent links upward from the given node and
// returns its ancestors in root-to-immediate-parent order. The node
// itself is not included; a root node yields an empty path.
//
// On corrupted data the walk stops at the first repeated ID and
// returns the partial path collected so far. Callers must not assume
// completeness when corruption is present.
func (s *Snapshot) AncestorPath(id string) []Node {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}

	var path []Node
	visited := map[string]struct{}{id: {}}
	for current := n.ParentID; current != nil; {
		if _, seen := visited[*current]; seen {
			break
		}
		parent, ok := s.nodes[*current]
		if !ok {
			break
		}
		visited[parent.ID] = struct{}{}
		path = append([]Node{*parent}, path...)
		current = parent.ParentID
		if len(path) > len(s.nodes) {
			break
		}
	}
	return path
}

// Breadcrumb renders the ancestor path of the given node as a single
// human-readable string, ancestors joined by sep (e.g. " > ").
func (s *Snapshot) Breadcrumb(id, sep string) string {
	path := s.AncestorPath(id)
	if len(path) == 0 {
		return ""
	}
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}
	return strings.Join(names, sep)
}
