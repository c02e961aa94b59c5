package forme

import (
	"fmt"
	"strings"
)

// Transform is a named pure Value→Value function registered for use in
// bindings (§3: "Identity, CSV-to-list, and extension points").
type Transform func(Value) (Value, error)

// Identity passes the value through unchanged.
func Identity(v Value) (Value, error) { return v, nil }

// CsvToList splits a Text value on commas, trimming whitespace around
// each item, and produces a List. Non-Text input is a transformation
// error (§4.4/§7 BindingError).
func CsvToList(v Value) (Value, error) {
	if v.Kind() != KindText {
		return None, fmt.Errorf("csv-to-list: expected text, got kind %d", v.Kind())
	}
	raw := v.AsText()
	if strings.TrimSpace(raw) == "" {
		return List(nil), nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return List(out), nil
}

// bindingEdge is one directed edge in the graph.
type bindingEdge struct {
	fromID   NodeId
	fromPort Port
	toID     NodeId
	toPort   Port
	fn       Transform
}

// BindingGraph is the set of directed source→target value channels that
// is the only sanctioned mechanism for cross-node value flow (§3/§9).
// Edges are resolved once at graph-build time; core code never walks the
// tree by id at runtime outside of this graph.
type BindingGraph struct {
	edges     []bindingEdge
	outEdges  map[NodeId][]int // source id -> indices into edges, for fast dispatch
}

// NewBindingGraph creates an empty graph.
func NewBindingGraph() *BindingGraph {
	return &BindingGraph{outEdges: make(map[NodeId][]int)}
}

// Bind declares an edge. fn defaults to Identity if nil.
// Bind returns an error if the edge would create a cycle back to an existing
// source reachable from the target — construction is the only place
// cycles are rejected (§3: "cycles are a construction error, not a
// runtime behavior").
func (g *BindingGraph) Bind(from NodeId, fromPort Port, to NodeId, toPort Port, fn Transform) error {
	if fn == nil {
		fn = Identity
	}
	if g.reaches(to, from) {
		return fmt.Errorf("binding %s.%s -> %s.%s would create a cycle", from, fromPort, to, toPort)
	}
	idx := len(g.edges)
	g.edges = append(g.edges, bindingEdge{fromID: from, fromPort: fromPort, toID: to, toPort: toPort, fn: fn})
	g.outEdges[from] = append(g.outEdges[from], idx)
	return nil
}

// reaches reports whether there is a path of bound edges from start to
// target, used by Bind's cycle check.
func (g *BindingGraph) reaches(start, target NodeId) bool {
	if start == target {
		return true
	}
	seen := map[NodeId]bool{start: true}
	queue := []NodeId{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, idx := range g.outEdges[cur] {
			e := g.edges[idx]
			if e.toID == target {
				return true
			}
			if !seen[e.toID] {
				seen[e.toID] = true
				queue = append(queue, e.toID)
			}
		}
	}
	return false
}

// Propagate applies every outgoing edge of source in a single pass,
// writing results into each target's value and surfacing transform
// failures as Hidden validation issues that retain the target's
// previous value (§4.4/§7 BindingError). Transitive propagation
// requires explicit multi-hop bindings; this call never re-enters the
// same source within one reduce cycle.
func (g *BindingGraph) Propagate(source NodeId, port Port, value Value, resolve func(NodeId) Widget, vs *ValidationState) {
	for _, idx := range g.outEdges[source] {
		e := g.edges[idx]
		if e.fromPort != port {
			continue
		}
		target := resolve(e.toID)
		if target == nil {
			continue
		}
		out, err := e.fn(value)
		if err != nil {
			vs.Set(e.toID, []Issue{{Rule: "binding", Message: err.Error()}}, Hidden)
			continue
		}
		target.SetValue(out)
	}
}
