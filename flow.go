package forme

// StepStatus is the status a Flow assigns to each of its Steps (§3).
type StepStatus uint8

const (
	Pending StepStatus = iota
	Active
	Done
	Cancelled
)

// Step contains a prompt, an ordered root node sequence, and its own
// step-level validators keyed by NodeId (§3).
type Step struct {
	ID       NodeId
	Prompt   string
	Hint     string
	Roots    []Widget
	Bindings *BindingGraph

	// StepValidators run over the step's computed value map on Submit
	// (§4.6 "Blocking" entry point).
	StepValidators []StepValidator

	// overlays are the layers this step has declared as openable via
	// DeclareOverlay, in declaration order (§4.3 index shortcuts).
	overlays []OverlayEntry
}

// StepValidator validates the whole step's value map, producing issues
// attributed to NodeId.
type StepValidator func(values map[NodeId]Value) map[NodeId][]Issue

// ValueMap computes the current value of every node in the step's state
// tree, by id (Outputs and Containers included, typically as None).
func (s *Step) ValueMap() map[NodeId]Value {
	out := make(map[NodeId]Value)
	var walk func(nodes []Widget)
	walk = func(nodes []Widget) {
		for _, n := range nodes {
			out[n.ID()] = n.Value()
			walk(n.StateChildren())
		}
	}
	walk(s.Roots)
	return out
}

// Find locates a node by id anywhere in the step's state tree — used
// only by internals that must resolve a BindingGraph target or a focus
// target by id; ordinary node logic must never do this (§9 design
// notes).
func (s *Step) Find(id NodeId) Widget {
	var found Widget
	var walk func(nodes []Widget)
	walk = func(nodes []Widget) {
		if found != nil {
			return
		}
		for _, n := range nodes {
			if n.ID() == id {
				found = n
				return
			}
			walk(n.StateChildren())
			if found != nil {
				return
			}
		}
	}
	walk(s.Roots)
	return found
}

// Flow holds an ordered Step sequence, the current index, and the status
// vector (§3). Invariant: exactly one Step has status Active unless the
// flow has terminated (every step Done or Cancelled).
type Flow struct {
	Steps    []*Step
	Index    int
	statuses []StepStatus
}

// NewFlow creates a Flow over the given steps, with the first step
// Active and the rest Pending.
func NewFlow(steps ...*Step) *Flow {
	f := &Flow{Steps: steps, statuses: make([]StepStatus, len(steps))}
	for i := range f.statuses {
		f.statuses[i] = Pending
	}
	if len(steps) > 0 {
		f.statuses[0] = Active
	}
	return f
}

// Status returns the status of step i.
func (f *Flow) Status(i int) StepStatus {
	if i < 0 || i >= len(f.statuses) {
		return Cancelled
	}
	return f.statuses[i]
}

// Current returns the currently active step, or nil if the flow has
// terminated.
func (f *Flow) Current() *Step {
	if f.Index < 0 || f.Index >= len(f.Steps) {
		return nil
	}
	return f.Steps[f.Index]
}

// Terminated reports whether every step is Done or Cancelled.
func (f *Flow) Terminated() bool {
	for _, st := range f.statuses {
		if st != Done && st != Cancelled {
			return false
		}
	}
	return true
}

// Advance marks the current step Done and activates the next Pending
// step, if any. Returns false if there was no current step to advance
// from.
func (f *Flow) Advance() bool {
	if f.Index < 0 || f.Index >= len(f.Steps) {
		return false
	}
	f.statuses[f.Index] = Done
	f.Index++
	if f.Index < len(f.Steps) {
		f.statuses[f.Index] = Active
	}
	return true
}

// Cancel marks the current step Cancelled without advancing.
func (f *Flow) Cancel() {
	if f.Index >= 0 && f.Index < len(f.Steps) {
		f.statuses[f.Index] = Cancelled
	}
}

// ValueStore is a mapping from NodeId to Value used to propagate values
// across step transitions; values written on step submit are visible to
// later steps during hydration (§3).
type ValueStore struct {
	values map[NodeId]Value
}

// NewValueStore creates an empty store.
func NewValueStore() *ValueStore { return &ValueStore{values: make(map[NodeId]Value)} }

// Set records a value for id.
func (vs *ValueStore) Set(id NodeId, v Value) { vs.values[id] = v }

// Get returns the stored value for id, or None if absent.
func (vs *ValueStore) Get(id NodeId) Value {
	v, ok := vs.values[id]
	if !ok {
		return None
	}
	return v
}

// MergeStep copies every value in a step's value map into the store,
// called on submit.
func (vs *ValueStore) MergeStep(values map[NodeId]Value) {
	for id, v := range values {
		vs.values[id] = v
	}
}

// Hydrate writes every value in the store into matching nodes in the
// given step's state tree, used when a later step needs earlier
// answers visible at construction time (§3 "Lifecycles").
func (vs *ValueStore) Hydrate(step *Step) {
	var walk func(nodes []Widget)
	walk = func(nodes []Widget) {
		for _, n := range nodes {
			if v, ok := vs.values[n.ID()]; ok {
				n.SetValue(v)
			}
			walk(n.StateChildren())
		}
	}
	walk(step.Roots)
}
