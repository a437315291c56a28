package topicgraph

import (
	"fmt"
	"strings"
)

// Validate performs the structural checks a freshly generated graph must pass
// before it is persisted. Returns a combined error describing all problems
// found, or nil if valid.
func Validate(nodeIDs []string, edges []Edge) error {
	var errs []string

	if len(nodeIDs) == 0 {
		errs = append(errs, "graph has no topics")
	}

	idSet := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, "topic with empty ID")
			continue
		}
		if idSet[id] {
			errs = append(errs, fmt.Sprintf("duplicate topic ID: %q", id))
		}
		idSet[id] = true
	}

	// Check edges reference known topics
	validEdges := make([]Edge, 0, len(edges))
	for _, e := range edges {
		ok := true
		if e.Parent == e.Child {
			errs = append(errs, fmt.Sprintf("topic %q lists itself as a prerequisite", e.Parent))
			ok = false
		}
		if !idSet[e.Parent] {
			errs = append(errs, fmt.Sprintf("edge %q -> %q references nonexistent topic %q", e.Parent, e.Child, e.Parent))
			ok = false
		}
		if !idSet[e.Child] {
			errs = append(errs, fmt.Sprintf("edge %q -> %q references nonexistent topic %q", e.Parent, e.Child, e.Child))
			ok = false
		}
		if ok {
			validEdges = append(validEdges, e)
		}
	}

	// Check for cycles using Kahn's algorithm
	nodes := make([]Node, 0, len(idSet))
	for id := range idSet {
		nodes = append(nodes, Node{ID: id})
	}
	g := New(nodes, validEdges)
	if g.HasCycle() {
		inOrder := make(map[string]bool, g.Len())
		for _, id := range g.TopologicalOrder() {
			inOrder[id] = true
		}
		var cycleNodes []string
		for _, id := range nodeIDs {
			if idSet[id] && !inOrder[id] {
				cycleNodes = append(cycleNodes, id)
				inOrder[id] = true
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving topics: %s", strings.Join(cycleNodes, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("topic graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
