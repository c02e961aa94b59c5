package forme

// FocusBehavior classifies how a node participates in focus traversal
// (§3). Exactly one applies per node.
type FocusBehavior uint8

const (
	// Leaf: the node is itself a focus target.
	Leaf FocusBehavior = iota
	// Container: focus passes through to children; the container itself
	// is never a target.
	Container
	// Group: the container is a single focus target and routes
	// sub-focus internally; the engine never traverses into its
	// children for Tab navigation.
	Group
)

// InteractionResult is the structured return value of a key handler
// (§4, design notes: "no ambient mutable context").
type InteractionResult struct {
	Handled         bool
	RenderRequested bool
	Events          []WidgetEvent
}

// Handled returns a result that consumed the key with no further effect.
func Handled() InteractionResult { return InteractionResult{Handled: true} }

// Unhandled returns a result that declined the key.
func Unhandled() InteractionResult { return InteractionResult{} }

// WithRender marks a result as requiring a re-render.
func (r InteractionResult) WithRender() InteractionResult { r.RenderRequested = true; return r }

// WithEvent appends a WidgetEvent to the result.
func (r InteractionResult) WithEvent(e WidgetEvent) InteractionResult {
	r.Events = append(r.Events, e)
	return r
}

// WidgetEvent is emitted by a node's key handler or tick handler and
// drained FIFO by the runtime before the next terminal event is polled
// (§5). ValueProduced is the only variant the binding graph reacts to.
type WidgetEvent struct {
	Kind   WidgetEventKind
	Source NodeId
	Port   Port
	Value  Value
}

// WidgetEventKind is the closed set of widget-originated event tags.
type WidgetEventKind uint8

const (
	EventValueProduced WidgetEventKind = iota
	EventCompletionRequested
	EventSubmitRequested
)

// ValidateCtx exposes sibling values by NodeId for cross-field
// validation rules. It is read-only — a validator may not mutate state
// through it (§4.6).
type ValidateCtx struct {
	values map[NodeId]Value
}

// Sibling returns the current value of another node in the same step, or
// None if the id is unknown.
func (c ValidateCtx) Sibling(id NodeId) Value {
	if c.values == nil {
		return None
	}
	return c.values[id]
}

// Validator is a single validation rule against a node's current value.
type Validator func(v Value, ctx ValidateCtx) []Issue

// CandidateProducer returns a node's full completion candidate list; the
// focus engine filters it against the cursor token itself
// (case-insensitive prefix match). An empty/nil result means no
// completion session starts.
type CandidateProducer func() []string

// Widget is the shared capability surface every Node variant implements
// (§3: "Every node exposes..."). Render-tree and state-tree visitors are
// exposed separately because a hidden modal's children still receive
// ticks and value sync even though they are absent from the render tree.
type Widget interface {
	ID() NodeId
	FocusBehavior() FocusBehavior
	Value() Value
	SetValue(Value)
	HandleKey(ev TerminalEvent) InteractionResult
	Tick() []WidgetEvent
	Draw(ctx *RenderContext) RenderOutput
	Validators() []Validator
	Candidates() CandidateProducer // nil if this node offers no completion
	// RenderChildren returns children visible to layout right now.
	RenderChildren() []Widget
	// StateChildren returns all children regardless of current
	// visibility — used for tick delivery and value sync.
	StateChildren() []Widget
}

// NodeKind tags which of the three sum-type variants a Node wraps.
type NodeKind uint8

const (
	NodeInput NodeKind = iota
	NodeComponent
	NodeOutput
)

// Node is the sum type of Input/Component/Output (§3). All three share
// the Widget capability surface; Kind distinguishes intent (Output never
// receives focus or keys regardless of its declared FocusBehavior, which
// is always Leaf-incompatible by construction — see NewOutputText, which
// declares Container).
type Node struct {
	Kind NodeKind
	Widget
}

// BaseNode supplies the common bookkeeping (id, focus behavior, value,
// validators, completion) that every concrete widget embeds, matching
// the teacher's embedding convention (component.go's Base) rather than
// re-implementing bookkeeping per widget type.
type BaseNode struct {
	id       NodeId
	behavior FocusBehavior
	value    Value
	focused  bool
	validators []Validator
	candidates CandidateProducer
}

// NewBaseNode constructs a BaseNode with the given identity and focus
// behavior.
func NewBaseNode(id NodeId, behavior FocusBehavior) BaseNode {
	return BaseNode{id: id, behavior: behavior}
}

func (b *BaseNode) ID() NodeId                   { return b.id }
func (b *BaseNode) FocusBehavior() FocusBehavior { return b.behavior }
func (b *BaseNode) Value() Value                 { return b.value }
func (b *BaseNode) SetValue(v Value)             { b.value = v }
func (b *BaseNode) Validators() []Validator       { return b.validators }
func (b *BaseNode) Candidates() CandidateProducer { return b.candidates }
func (b *BaseNode) Focused() bool                 { return b.focused }
func (b *BaseNode) SetFocused(f bool)             { b.focused = f }

// WithValidators attaches a validator chain.
func (b *BaseNode) WithValidators(v ...Validator) { b.validators = append(b.validators, v...) }

// WithCandidates attaches a completion-candidate producer.
func (b *BaseNode) WithCandidates(c CandidateProducer) { b.candidates = c }
