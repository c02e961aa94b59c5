package forme

// OverlayMode labels an overlay as Exclusive or Shared (§3/§4.3). The
// mode is recorded on the entry only: input routing does not consult it,
// and the active scope depends solely on the entry's FocusBehavior (see
// AppState.activeScope), so a Shared overlay routes input the same way
// as an Exclusive one.
type OverlayMode uint8

const (
	Exclusive OverlayMode = iota
	Shared
)

// OverlayLifecycle is the closed, strictly-ordered sequence of events
// emitted by a push/pop transition (§4.3).
type OverlayLifecycle uint8

const (
	BeforeOpen OverlayLifecycle = iota
	Opened
	BeforeClose
	Closed
	AfterClose
)

// OverlayEntry is one stacked layer (§3).
type OverlayEntry struct {
	ID            NodeId
	Mode          OverlayMode
	FocusBehavior FocusBehavior
	FocusSnapshot NodeId // the focus target in effect just before this overlay opened
	Children      []Widget
}

// OverlayStack is the LIFO stack of lifecycled modal/shared layers
// (§3/§4.3). It does not itself decide active scope — the reducer reads
// Top() and applies the §4.1 scope-selection rule.
type OverlayStack struct {
	entries []OverlayEntry
	// onLifecycle, if set, is invoked synchronously for every lifecycle
	// event in push/pop order, letting an observer (the tests do this)
	// see the deterministic sequence of §4.3.
	onLifecycle func(OverlayLifecycle, NodeId)
}

// NewOverlayStack creates an empty stack.
func NewOverlayStack() *OverlayStack { return &OverlayStack{} }

// OnLifecycle registers a lifecycle observer.
func (s *OverlayStack) OnLifecycle(fn func(OverlayLifecycle, NodeId)) { s.onLifecycle = fn }

func (s *OverlayStack) emit(ev OverlayLifecycle, id NodeId) {
	if s.onLifecycle != nil {
		s.onLifecycle(ev, id)
	}
}

// Empty reports whether the stack has no entries.
func (s *OverlayStack) Empty() bool { return len(s.entries) == 0 }

// Top returns the top entry, or nil if the stack is empty.
func (s *OverlayStack) Top() *OverlayEntry {
	if len(s.entries) == 0 {
		return nil
	}
	return &s.entries[len(s.entries)-1]
}

// Push opens a new overlay, capturing the given focus snapshot and
// emitting BeforeOpen then Opened, in that order (§4.3).
func (s *OverlayStack) Push(entry OverlayEntry, currentFocus NodeId) {
	entry.FocusSnapshot = currentFocus
	s.emit(BeforeOpen, entry.ID)
	s.entries = append(s.entries, entry)
	s.emit(Opened, entry.ID)
}

// Pop closes the top overlay, emitting BeforeClose, Closed, AfterClose
// in that order, and returns the snapshot to restore focus to (§4.3).
// ok is false if the stack was already empty.
func (s *OverlayStack) Pop() (snapshot NodeId, ok bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	top := s.entries[len(s.entries)-1]
	s.emit(BeforeClose, top.ID)
	s.entries = s.entries[:len(s.entries)-1]
	s.emit(Closed, top.ID)
	s.emit(AfterClose, top.ID)
	return top.FocusSnapshot, true
}

// Depth returns the number of stacked overlays.
func (s *OverlayStack) Depth() int { return len(s.entries) }
