package forme

import "testing"

func typeKey(r rune) Command {
	return Command{Kind: CmdInputKey, Key: TerminalEvent{Kind: EventKey, Code: KeyNone, Rune: r}}
}

func buildSingleFieldFlow(id NodeId, validators ...Validator) (*Step, *TextInput) {
	field := NewTextInput(id)
	field.WithValidators(validators...)
	step := &Step{ID: "step", Roots: []Widget{field}, Bindings: NewBindingGraph()}
	return step, field
}

// TestBasicSubmitAdvancesStep is §8 concrete scenario 1.
func TestBasicSubmitAdvancesStep(t *testing.T) {
	step, field := buildSingleFieldFlow("name")
	next := &Step{ID: "confirm", Roots: []Widget{NewOutputText("summary", "")}, Bindings: NewBindingGraph()}
	state := NewAppState(NewFlow(step, next))

	for _, r := range "abc" {
		state.Reduce(typeKey(r))
	}
	if field.Text() != "abc" {
		t.Fatalf("field = %q, want abc", field.Text())
	}

	state.Reduce(Command{Kind: CmdSubmit})

	if state.Flow.Status(0) != Done {
		t.Errorf("step 0 status = %v, want Done", state.Flow.Status(0))
	}
	if state.Flow.Status(1) != Active {
		t.Errorf("step 1 status = %v, want Active", state.Flow.Status(1))
	}
	if got := state.Store.Get("name"); !got.Equal(Text("abc")) {
		t.Errorf("store[name] = %v, want Text(abc)", got)
	}
}

// TestBlockingValidationOnSubmit is §8 concrete scenario 2.
func TestBlockingValidationOnSubmit(t *testing.T) {
	step, field := buildSingleFieldFlow("n", VRequired)
	next := &Step{ID: "next", Roots: []Widget{}, Bindings: NewBindingGraph()}
	state := NewAppState(NewFlow(step, next))

	if field.Text() != "" {
		t.Fatalf("setup: field should start empty")
	}

	effects := state.Reduce(Command{Kind: CmdSubmit})

	if state.Flow.Index != 0 {
		t.Errorf("Flow.Index = %d after blocked submit, want 0", state.Flow.Index)
	}
	if state.Flow.Status(0) != Active {
		t.Errorf("step 0 status = %v after blocked submit, want Active", state.Flow.Status(0))
	}

	fs, ok := state.Validation.Get("n")
	if !ok {
		t.Fatalf("expected a validation issue recorded on n")
	}
	if fs.Visibility != Inline {
		t.Errorf("issue visibility = %v, want Inline", fs.Visibility)
	}
	if len(fs.Issues) != 1 || fs.Issues[0].Rule != "non-empty" {
		t.Errorf("issues = %v, want a single non-empty rule violation", fs.Issues)
	}

	var sawDebounce bool
	for _, e := range effects {
		if e.Kind == EffectSchedule && e.ScheduleOp == ScheduleDebounce && e.ScheduleKey == clearErrorKey("n") {
			sawDebounce = true
		}
	}
	if !sawDebounce {
		t.Errorf("effects %v did not include a Debounce(clear-error(n)) schedule", effects)
	}
}

// TestReduceIsDeterministic is the §8 determinism property: reduce(s, c)
// applied to two independently constructed but identical states produces
// equal resulting state and equal effects.
func TestReduceIsDeterministic(t *testing.T) {
	build := func() *AppState {
		step, field := buildSingleFieldFlow("name", VRequired, VMinLen(2))
		_ = field
		return NewAppState(NewFlow(step))
	}

	s1, s2 := build(), build()
	cmds := []Command{typeKey('a'), typeKey('b'), {Kind: CmdSubmit}}

	for _, c := range cmds {
		e1 := s1.Reduce(c)
		e2 := s2.Reduce(c)
		if len(e1) != len(e2) {
			t.Fatalf("effect counts diverged for cmd %v: %d vs %d", c, len(e1), len(e2))
		}
		for i := range e1 {
			if e1[i].Kind != e2[i].Kind {
				t.Errorf("effect %d kind diverged for cmd %v: %v vs %v", i, c, e1[i].Kind, e2[i].Kind)
			}
		}
	}

	f1 := s1.Flow.Steps[0].Find("name").Value()
	f2 := s2.Flow.Steps[0].Find("name").Value()
	if !f1.Equal(f2) {
		t.Errorf("final values diverged: %v vs %v", f1, f2)
	}
	if s1.Flow.Index != s2.Flow.Index {
		t.Errorf("final flow index diverged: %d vs %d", s1.Flow.Index, s2.Flow.Index)
	}
}

func TestExitCommandSetsShouldExit(t *testing.T) {
	step, _ := buildSingleFieldFlow("name")
	state := NewAppState(NewFlow(step))
	state.Reduce(Command{Kind: CmdExit})
	if !state.ShouldExit {
		t.Errorf("ShouldExit = false after CmdExit")
	}
}

func TestUnknownOverlayIdIsSilentlyIgnored(t *testing.T) {
	step, _ := buildSingleFieldFlow("name")
	state := NewAppState(NewFlow(step))

	effects := state.Reduce(Command{Kind: CmdOpenOverlay, OverlayID: "does-not-exist"})
	if effects != nil {
		t.Errorf("OpenOverlay(unknown) returned effects %v, want nil", effects)
	}
	if !state.Overlays.Empty() {
		t.Errorf("overlay stack non-empty after an unknown OpenOverlay id")
	}
}

// TestTabOfferedToFocusedGroupBeforeTraversal is the §4.1/§4.2 Group
// routing rule: Tab on a focused Group advances its own internal
// selection first, and only moves focus to the next target once the
// Group declines (already at its last option).
func TestTabOfferedToFocusedGroupBeforeTraversal(t *testing.T) {
	before := NewTextInput("before")
	group := NewRadioGroup("choice", "small", "medium", "large")
	after := NewTextInput("after")
	step := &Step{ID: "step", Roots: []Widget{before, group, after}, Bindings: NewBindingGraph()}
	state := NewAppState(NewFlow(step))

	state.Reduce(Command{Kind: CmdNextFocus}) // before -> group
	if state.Focus.Current() != "choice" {
		t.Fatalf("focus = %q, want choice", state.Focus.Current())
	}

	state.Reduce(Command{Kind: CmdNextFocus}) // Tab #1: group consumes it, small -> medium
	if state.Focus.Current() != "choice" {
		t.Fatalf("after Tab #1, focus = %q, want choice (group should still own it)", state.Focus.Current())
	}
	if group.Selected() != 1 {
		t.Errorf("after Tab #1, group.Selected() = %d, want 1 (medium)", group.Selected())
	}

	state.Reduce(Command{Kind: CmdNextFocus}) // Tab #2: group consumes it, medium -> large
	if state.Focus.Current() != "choice" {
		t.Fatalf("after Tab #2, focus = %q, want choice (group should still own it)", state.Focus.Current())
	}
	if group.Selected() != 2 {
		t.Errorf("after Tab #2, group.Selected() = %d, want 2 (large)", group.Selected())
	}

	state.Reduce(Command{Kind: CmdNextFocus}) // Tab #3: group is at its last option, declines
	if state.Focus.Current() != "after" {
		t.Errorf("after Tab #3 (group at edge), focus = %q, want after", state.Focus.Current())
	}
	if group.Selected() != 2 {
		t.Errorf("group.Selected() changed to %d on the declined Tab, want unchanged 2", group.Selected())
	}

	state.Reduce(Command{Kind: CmdPrevFocus}) // BackTab from after -> back onto the group
	if state.Focus.Current() != "choice" {
		t.Fatalf("BackTab from after, focus = %q, want choice", state.Focus.Current())
	}

	state.Reduce(Command{Kind: CmdPrevFocus}) // BackTab #1: group consumes it, large -> medium
	if state.Focus.Current() != "choice" || group.Selected() != 1 {
		t.Errorf("after BackTab #1, focus = %q selected = %d, want choice/1", state.Focus.Current(), group.Selected())
	}
}
