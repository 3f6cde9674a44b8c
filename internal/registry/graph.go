package registry

import (
	"fmt"
	"sort"
)

// Graph describes the dependency neighborhood of one item.
type Graph struct {
	ID string `json:"id"`
	// Direct contains the IDs the item depends on immediately.
	Direct []string `json:"direct,omitempty"`
	// Indirect contains transitive dependency IDs, excluding direct ones
	// and the item itself.
	Indirect []string `json:"indirect,omitempty"`
	// Dependents contains the IDs of items that depend on this one.
	Dependents []string `json:"dependents,omitempty"`
}

// DependencyGraph resolves the dependency neighborhood of the item with
// the given ID. Traversal is breadth-first with a visited set, so cycles
// terminate.
func (r *Registry) DependencyGraph(id string) (*Graph, error) {
	meta, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("unknown content item %q", id)
	}

	g := &Graph{
		ID:         id,
		Direct:     append([]string(nil), meta.Dependencies...),
		Dependents: append([]string(nil), meta.Dependents...),
	}

	direct := make(map[string]bool, len(g.Direct))
	for _, dep := range g.Direct {
		direct[dep] = true
	}

	visited := map[string]bool{id: true}
	queue := append([]string(nil), g.Direct...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if !direct[cur] {
			g.Indirect = append(g.Indirect, cur)
		}
		if next, ok := r.items[cur]; ok {
			queue = append(queue, next.Dependencies...)
		}
	}

	sort.Strings(g.Direct)
	sort.Strings(g.Indirect)
	sort.Strings(g.Dependents)
	return g, nil
}
