package forme

import "testing"

// TestOverlayLifecycleOrdering is the §8 invariant: for every push there
// is at most one matching pop; BeforeOpen precedes Opened; BeforeClose
// precedes Closed precedes AfterClose.
func TestOverlayLifecycleOrdering(t *testing.T) {
	s := NewOverlayStack()
	var events []OverlayLifecycle
	s.OnLifecycle(func(ev OverlayLifecycle, id NodeId) { events = append(events, ev) })

	s.Push(OverlayEntry{ID: "help"}, "field1")
	s.Pop()

	want := []OverlayLifecycle{BeforeOpen, Opened, BeforeClose, Closed, AfterClose}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i, w := range want {
		if events[i] != w {
			t.Errorf("events[%d] = %v, want %v", i, events[i], w)
		}
	}
}

func TestOverlayPopOnEmptyStackIsNoop(t *testing.T) {
	s := NewOverlayStack()
	calls := 0
	s.OnLifecycle(func(OverlayLifecycle, NodeId) { calls++ })

	if _, ok := s.Pop(); ok {
		t.Fatalf("Pop() on empty stack returned ok=true")
	}
	if calls != 0 {
		t.Errorf("lifecycle fired %d times on a no-op pop, want 0", calls)
	}
}

func TestOverlayPushCapturesFocusSnapshot(t *testing.T) {
	s := NewOverlayStack()
	s.Push(OverlayEntry{ID: "help"}, "field1")

	top := s.Top()
	if top == nil {
		t.Fatalf("Top() = nil after push")
	}
	if top.FocusSnapshot != "field1" {
		t.Errorf("FocusSnapshot = %q, want field1", top.FocusSnapshot)
	}

	snapshot, ok := s.Pop()
	if !ok {
		t.Fatalf("Pop() = ok=false")
	}
	if snapshot != "field1" {
		t.Errorf("Pop() snapshot = %q, want field1", snapshot)
	}
}

func TestOverlayDepthAndNesting(t *testing.T) {
	s := NewOverlayStack()
	s.Push(OverlayEntry{ID: "outer"}, "a")
	s.Push(OverlayEntry{ID: "inner"}, "b")

	if s.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", s.Depth())
	}
	if s.Top().ID != "inner" {
		t.Fatalf("Top().ID = %q, want inner", s.Top().ID)
	}

	if _, ok := s.Pop(); !ok || s.Top().ID != "outer" {
		t.Errorf("after one Pop, Top = %v, want outer", s.Top())
	}
}

// TestOverlayOpenCloseRestoresFocus is §8 concrete scenario 3: opening
// an overlay and closing it again restores focus to the field that was
// focused before the overlay opened, with the full lifecycle sequence.
func TestOverlayOpenCloseRestoresFocus(t *testing.T) {
	field0 := NewTextInput("field0")
	field1 := NewTextInput("field1")
	step := &Step{ID: "step", Roots: []Widget{field0, field1}, Bindings: NewBindingGraph()}
	inner := NewTextInput("inner")
	step.DeclareOverlay(OverlayEntry{ID: "help", FocusBehavior: Leaf, Children: []Widget{inner}})

	state := NewAppState(NewFlow(step))
	state.Focus.Next() // focus field1 (index 1)
	if state.Focus.Current() != "field1" {
		t.Fatalf("setup: focus = %q, want field1", state.Focus.Current())
	}

	var events []OverlayLifecycle
	state.Overlays.OnLifecycle(func(ev OverlayLifecycle, id NodeId) { events = append(events, ev) })

	state.Reduce(Command{Kind: CmdOpenOverlay, OverlayID: "help"})
	if state.Focus.Current() != "inner" {
		t.Fatalf("after open, focus = %q, want inner (the overlay's only target)", state.Focus.Current())
	}

	state.Reduce(Command{Kind: CmdInputKey, Key: TerminalEvent{Kind: EventKey, Code: KeyNone, Rune: 'x'}})
	if inner.Text() != "x" {
		t.Fatalf("overlay input did not receive the key: inner.Text() = %q", inner.Text())
	}

	state.Reduce(Command{Kind: CmdCloseOverlay})
	if state.Focus.Current() != "field1" {
		t.Errorf("after close, focus = %q, want restored to field1", state.Focus.Current())
	}

	want := []OverlayLifecycle{BeforeOpen, Opened, BeforeClose, Closed, AfterClose}
	if len(events) != len(want) {
		t.Fatalf("lifecycle events = %v, want %v", events, want)
	}
	for i, w := range want {
		if events[i] != w {
			t.Errorf("events[%d] = %v, want %v", i, events[i], w)
		}
	}
}
