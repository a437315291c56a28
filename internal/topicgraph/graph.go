package topicgraph

import (
	"slices"
	"sort"
)

// Node is a topic as seen by the prerequisite graph.
type Node struct {
	ID     string
	Status Status
}

// Edge is a prerequisite link: Parent must be completed before Child unlocks.
type Edge struct {
	Parent string
	Child  string
}

// Position is a layout coordinate for rendering the graph.
type Position struct {
	X float64
	Y float64
}

// Graph holds one subject's prerequisite DAG with precomputed indices.
// Edges whose endpoints are unknown are dropped; duplicate edges are collapsed.
type Graph struct {
	nodes     []Node
	byID      map[string]int
	parents   map[string][]string
	children  map[string][]string
	roots     []string
	topoOrder []string
}

// New builds a Graph from nodes and edges.
// Topological order is computed with Kahn's algorithm; when the edges contain
// a cycle the nodes on it are left out of the order (see HasCycle).
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes:    slices.Clone(nodes),
		byID:     make(map[string]int, len(nodes)),
		parents:  make(map[string][]string),
		children: make(map[string][]string),
	}

	for i, n := range g.nodes {
		g.byID[n.ID] = i
	}

	seen := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		if _, ok := g.byID[e.Parent]; !ok {
			continue
		}
		if _, ok := g.byID[e.Child]; !ok {
			continue
		}
		seen[e] = true
		g.parents[e.Child] = append(g.parents[e.Child], e.Parent)
		g.children[e.Parent] = append(g.children[e.Parent], e.Child)
	}
	for id := range g.parents {
		sort.Strings(g.parents[id])
	}
	for id := range g.children {
		sort.Strings(g.children[id])
	}

	// Topological sort (Kahn's algorithm)
	inDegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.ID] = len(g.parents[n.ID])
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort initial queue for deterministic ordering
	sort.Strings(queue)
	g.roots = slices.Clone(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		g.topoOrder = append(g.topoOrder, id)

		for _, childID := range g.children[id] {
			inDegree[childID]--
			if inDegree[childID] == 0 {
				queue = append(queue, childID)
			}
		}
	}

	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Parents returns the direct prerequisites of id, sorted.
func (g *Graph) Parents(id string) []string {
	return slices.Clone(g.parents[id])
}

// Children returns the topics that directly depend on id, sorted.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.children[id])
}

// InDegree returns the number of prerequisites of id.
func (g *Graph) InDegree(id string) int {
	return len(g.parents[id])
}

// Roots returns all nodes without prerequisites, sorted.
func (g *Graph) Roots() []string {
	return slices.Clone(g.roots)
}

// TopologicalOrder returns node IDs so that every parent precedes its children.
// Nodes on a cycle are omitted.
func (g *Graph) TopologicalOrder() []string {
	return slices.Clone(g.topoOrder)
}

// HasCycle reports whether the edges contain at least one cycle.
func (g *Graph) HasCycle() bool {
	return len(g.topoOrder) < len(g.nodes)
}

// IsUnlocked reports whether every prerequisite of id is completed.
// A node without prerequisites is always unlocked.
func (g *Graph) IsUnlocked(id string) bool {
	if _, ok := g.byID[id]; !ok {
		return false
	}
	for _, parentID := range g.parents[id] {
		p, _ := g.Node(parentID)
		if p.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// Unlockable returns the LOCKED nodes whose prerequisites are all completed,
// in topological order (cyclic leftovers follow, sorted by ID).
func (g *Graph) Unlockable() []string {
	var result []string
	for _, id := range g.orderedIDs() {
		n, _ := g.Node(id)
		if n.Status == StatusLocked && g.IsUnlocked(id) {
			result = append(result, id)
		}
	}
	return result
}

// Reachable reports whether to can be reached from `from` by following
// parent -> child edges. A node reaches itself.
func (g *Graph) Reachable(from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range g.children[id] {
			if childID == to {
				return true
			}
			if !visited[childID] {
				visited[childID] = true
				stack = append(stack, childID)
			}
		}
	}
	return false
}

// WouldCycle reports whether adding parent -> child would close a cycle.
func (g *Graph) WouldCycle(parent, child string) bool {
	return g.Reachable(child, parent)
}

// Levels returns each node's depth: roots are 0, every other node is one more
// than its deepest prerequisite. Nodes on a cycle are omitted.
func (g *Graph) Levels() map[string]int {
	levels := make(map[string]int, len(g.topoOrder))
	for _, id := range g.topoOrder {
		level := 0
		for _, parentID := range g.parents[id] {
			if l, ok := levels[parentID]; ok && l+1 > level {
				level = l + 1
			}
		}
		levels[id] = level
	}
	return levels
}

// Layout assigns a layered position to every node: Y grows with the level
// and X spreads nodes of the same level, centred on zero.
func (g *Graph) Layout(spacingX, spacingY float64) map[string]Position {
	levels := g.Levels()
	byLevel := make(map[int][]string)
	maxLevel := 0
	for _, id := range g.topoOrder {
		l := levels[id]
		byLevel[l] = append(byLevel[l], id)
		if l > maxLevel {
			maxLevel = l
		}
	}

	positions := make(map[string]Position, len(g.nodes))
	for l := 0; l <= maxLevel; l++ {
		ids := byLevel[l]
		sort.Strings(ids)
		offset := float64(len(ids)-1) / 2
		for i, id := range ids {
			positions[id] = Position{
				X: (float64(i) - offset) * spacingX,
				Y: float64(l) * spacingY,
			}
		}
	}
	return positions
}

// orderedIDs returns the topological order followed by any cyclic leftovers.
func (g *Graph) orderedIDs() []string {
	if !g.HasCycle() {
		return g.topoOrder
	}
	inOrder := make(map[string]bool, len(g.topoOrder))
	for _, id := range g.topoOrder {
		inOrder[id] = true
	}
	ids := slices.Clone(g.topoOrder)
	var rest []string
	for _, n := range g.nodes {
		if !inOrder[n.ID] {
			rest = append(rest, n.ID)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}
