package forme

// AppState is the only process-wide state: the Flow, the ValueStore, the
// ValidationState, the OverlayStack, the Scheduler, and the FocusEngine,
// all owned by a single struct constructed at startup (§9 design notes).
type AppState struct {
	Flow       *Flow
	Store      *ValueStore
	Validation *ValidationState
	Overlays   *OverlayStack
	Scheduler  *Scheduler
	Focus      *FocusEngine

	ShouldExit bool
}

// NewAppState constructs an AppState for flow and rebuilds the initial
// focus list over the active scope.
func NewAppState(flow *Flow) *AppState {
	s := &AppState{
		Flow:       flow,
		Store:      NewValueStore(),
		Validation: NewValidationState(),
		Overlays:   NewOverlayStack(),
		Scheduler:  NewScheduler(),
		Focus:      NewFocusEngine(),
	}
	s.RebuildFocus()
	return s
}

// activeScope implements the §4.1 routing contract: if the overlay stack
// is empty, the active scope is the current step's roots; otherwise, for
// a Group overlay the active scope remains the step (the Group routes
// its own internal focus), and for any other overlay mode the active
// scope is the overlay's children.
func (s *AppState) activeScope() []Widget {
	top := s.Overlays.Top()
	if top == nil {
		if step := s.Flow.Current(); step != nil {
			return step.Roots
		}
		return nil
	}
	if top.FocusBehavior == Group {
		if step := s.Flow.Current(); step != nil {
			return step.Roots
		}
		return nil
	}
	return top.Children
}

// RebuildFocus recomputes the focus target list over the active scope.
func (s *AppState) RebuildFocus() { s.Focus.Rebuild(s.activeScope()) }

// resolve looks a node up by id in the current step's state tree, then in
// the top overlay's children —
// the one sanctioned runtime-lookup path, used only by overlay/focus
// restoration and binding target resolution (§9), never by ordinary node
// logic.
func (s *AppState) resolve(id NodeId) Widget {
	step := s.Flow.Current()
	if step == nil {
		return nil
	}
	if w := step.Find(id); w != nil {
		return w
	}
	top := s.Overlays.Top()
	if top == nil {
		return nil
	}
	var find func(nodes []Widget) Widget
	find = func(nodes []Widget) Widget {
		for _, n := range nodes {
			if n.ID() == id {
				return n
			}
			if w := find(n.StateChildren()); w != nil {
				return w
			}
		}
		return nil
	}
	return find(top.Children)
}

func (s *AppState) focusedWidget() Widget {
	id := s.Focus.Current()
	if id == "" {
		return nil
	}
	return s.resolve(id)
}

// Reduce is the sole writer of domain state: `reduce(state, command) →
// effects` (§4.1). It is deterministic and performs no I/O; any
// deferral or emission is expressed as a returned Effect.
func (s *AppState) Reduce(cmd Command) []Effect {
	switch cmd.Kind {
	case CmdExit:
		s.ShouldExit = true
		return nil

	case CmdTick:
		return s.reduceTick()

	case CmdOpenOverlay:
		return s.reduceOpenOverlay(cmd.OverlayID)

	case CmdOpenOverlayAtIndex:
		return s.reduceOpenOverlayAtIndex(cmd.OverlayIndex)

	case CmdOpenOverlayShortcut:
		return s.reduceOpenOverlayAtIndex(0)

	case CmdCloseOverlay:
		return s.reduceCloseOverlay()

	case CmdNextFocus:
		return s.reduceFocusMove(+1)

	case CmdPrevFocus:
		return s.reduceFocusMove(-1)

	case CmdSubmit:
		return s.reduceSubmit()

	case CmdTextAction:
		return s.reduceTextAction(cmd.TextAction)

	case CmdInputKey:
		return s.reduceInputKey(cmd.Key)
	}
	return nil
}

// reduceInputKey implements the §4.1 key tie-break order: (1) active
// completion session + Tab/BackTab cycles it; (2) [global action
// bindings are applied upstream, by mapKeyToCommand, before Reduce is
// ever called with CmdInputKey for them]; (3) dispatch to the focused
// node; (4) unhandled Tab/BackTab performs focus traversal; (5) else
// ignore. Since Tab/BackTab are mapped to CmdNextFocus/CmdPrevFocus by
// the global bindings, this handler only ever sees non-Tab keys — the
// completion-cycle/traversal interplay therefore lives in
// reduceFocusMove, which mapKeyToCommand's Tab mapping routes into.
func (s *AppState) reduceInputKey(ev TerminalEvent) []Effect {
	w := s.focusedWidget()
	if w == nil {
		return nil
	}
	res := w.HandleKey(ev)
	if res.Handled {
		// every key reaching this handler is, by construction, not
		// Tab/BackTab (those are intercepted upstream into
		// CmdNextFocus/CmdPrevFocus) — i.e. a "non-matching key" against
		// any active completion session, which the §4.2 table destroys.
		s.Focus.CancelCompletion()
	}
	var effects []Effect
	for _, e := range res.Events {
		effects = append(effects, Effect{Kind: EffectEmitWidget, Widget: e})
		if e.Kind == EventValueProduced {
			effects = append(effects, s.onValueProduced(e)...)
		}
	}
	if res.RenderRequested {
		effects = append(effects, Effect{Kind: EffectRequestRender})
	}
	return effects
}

// onValueProduced runs live validation and propagates the value across
// the binding graph — the two mechanical consequences of a node
// producing a new value (§4.4/§4.6 "Live").
func (s *AppState) onValueProduced(e WidgetEvent) []Effect {
	var effects []Effect
	step := s.Flow.Current()
	if step != nil && step.Bindings != nil {
		step.Bindings.Propagate(e.Source, e.Port, e.Value, s.resolve, s.Validation)
	}

	w := s.resolve(e.Source)
	if w == nil {
		return effects
	}
	issues := runChain(w.Validators(), w.Value(), s.validateCtx())
	if len(issues) > 0 {
		s.Validation.Set(e.Source, issues[:1], Inline)
		effects = append(effects,
			Effect{Kind: EffectSchedule, ScheduleOp: ScheduleDebounce, ScheduleKey: clearErrorKey(e.Source),
				ScheduleEvent: SchedulerEvent{Key: clearErrorKey(e.Source), Payload: e.Source}, Delay: DefaultErrorDecay},
		)
	} else {
		s.Validation.Clear(e.Source)
		effects = append(effects, Effect{Kind: EffectCancelScheduled, CancelKey: clearErrorKey(e.Source)})
	}
	return effects
}

func (s *AppState) validateCtx() ValidateCtx {
	step := s.Flow.Current()
	if step == nil {
		return ValidateCtx{}
	}
	return ValidateCtx{values: step.ValueMap()}
}

// reduceFocusMove handles Tab (+1) / Shift-Tab (-1), implementing tie
// break (1): Tab/BackTab always first attempts to create-or-cycle a
// completion session on the focused node (§4.2), grounded on
// original_source's `handle_tab_forward`/`handle_tab_backward`, which
// call `try_complete_focused` unconditionally before ever touching
// ordinary dispatch or traversal. If the focused target is a Group, the
// move is next offered to the Group's own routing (via its HandleKey);
// only if the Group declines does the engine advance.
func (s *AppState) reduceFocusMove(delta int) []Effect {
	reverse := delta < 0
	var ownerID NodeId
	var token string
	var candidates []string
	if w := s.focusedWidget(); w != nil {
		ownerID = w.ID()
		if ti, isText := w.(*TextInput); isText {
			if producer := ti.Candidates(); producer != nil {
				token, _ = ti.currentToken()
				candidates = producer()
			}
		}
	}
	if cand, ok := s.Focus.TryCompleteFocused(ownerID, token, candidates, reverse); ok {
		if w := s.resolve(ownerID); w != nil {
			if ti, isText := w.(*TextInput); isText {
				ti.replaceToken(cand)
			}
		}
		return []Effect{{Kind: EffectRequestRender}}
	}

	if w := s.focusedWidget(); w != nil && w.FocusBehavior() == Group {
		key := TerminalEvent{Kind: EventKey, Code: KeyTab}
		if delta < 0 {
			key.Code = KeyBackTab
		}
		res := w.HandleKey(key)
		if res.Handled {
			var effects []Effect
			if res.RenderRequested {
				effects = append(effects, Effect{Kind: EffectRequestRender})
			}
			return effects
		}
	}

	// blocking validation on leaving the focused node (§4.6)
	if blocked, effects := s.runBlockingValidation(); blocked {
		return effects
	}

	if delta > 0 {
		s.Focus.Next()
	} else {
		s.Focus.Prev()
	}
	return []Effect{{Kind: EffectRequestRender}}
}

// runBlockingValidation runs the focused node's validator chain; if any
// issue is produced, the transition is blocked and the issue is emitted
// with visibility Inline plus a debounce-clear schedule (§4.1/§4.6).
func (s *AppState) runBlockingValidation() (blocked bool, effects []Effect) {
	w := s.focusedWidget()
	if w == nil {
		return false, nil
	}
	issues := runChain(w.Validators(), w.Value(), s.validateCtx())
	if len(issues) == 0 {
		s.Validation.Clear(w.ID())
		return false, nil
	}
	s.Validation.Set(w.ID(), issues[:1], Inline)
	effects = append(effects, Effect{Kind: EffectRequestRender},
		Effect{Kind: EffectSchedule, ScheduleOp: ScheduleDebounce, ScheduleKey: clearErrorKey(w.ID()),
			ScheduleEvent: SchedulerEvent{Key: clearErrorKey(w.ID()), Payload: w.ID()}, Delay: DefaultErrorDecay})
	return true, effects
}

// reduceSubmit runs blocking validation on the focused node and, if it
// passes, the step-level chain over the step's computed value map; any
// issue blocks the transition (§4.1/§4.6). On success the step's values
// merge into the ValueStore and the flow advances.
func (s *AppState) reduceSubmit() []Effect {
	if blocked, effects := s.runBlockingValidation(); blocked {
		return effects
	}

	step := s.Flow.Current()
	if step == nil {
		return nil
	}
	values := step.ValueMap()
	var stepIssues []Issue
	for _, sv := range step.StepValidators {
		for _, issues := range sv(values) {
			stepIssues = append(stepIssues, issues...)
		}
	}
	if len(stepIssues) > 0 {
		s.Validation.SetStepErrors(stepIssues)
		return []Effect{{Kind: EffectRequestRender}}
	}
	s.Validation.SetStepErrors(nil)
	s.Store.MergeStep(values)
	s.Flow.Advance()
	if next := s.Flow.Current(); next != nil {
		s.Store.Hydrate(next)
	}
	s.RebuildFocus()
	return []Effect{{Kind: EffectRequestRender}}
}

// reduceTextAction dispatches a structured text-editing command to the
// focused node, when it is a *TextInput (§4.1 TextAction).
func (s *AppState) reduceTextAction(kind TextActionKind) []Effect {
	w := s.focusedWidget()
	ti, ok := w.(*TextInput)
	if !ok {
		return nil
	}
	switch kind {
	case WordDeleteBackward:
		ti.WordDeleteBackward()
	case WordDeleteForward:
		ti.WordDeleteForward()
	default:
		return nil
	}
	return []Effect{{Kind: EffectRequestRender}}
}

// reduceOpenOverlay pushes the overlay by id, consulting the current
// step's declared overlay catalog. Unknown ids are silently ignored
// (§7 OverlayReferenceError).
func (s *AppState) reduceOpenOverlay(id NodeId) []Effect {
	step := s.Flow.Current()
	if step == nil {
		return nil
	}
	for _, entry := range step.declaredOverlays() {
		if entry.ID == id {
			return s.pushOverlay(entry)
		}
	}
	return nil
}

// reduceOpenOverlayAtIndex opens the nth overlay declared by the current
// step (0-based internally; externally exposed 1-based per the open
// question resolution in SPEC_FULL). Out-of-range indices are silently
// ignored (§4.3/§7).
func (s *AppState) reduceOpenOverlayAtIndex(index int) []Effect {
	step := s.Flow.Current()
	if step == nil || index < 0 || index >= len(step.declaredOverlays()) {
		return nil
	}
	return s.pushOverlay(step.declaredOverlays()[index])
}

func (s *AppState) pushOverlay(entry OverlayEntry) []Effect {
	s.Overlays.Push(entry, s.Focus.Current())
	s.RebuildFocus()
	return []Effect{{Kind: EffectRequestRender}}
}

// reduceCloseOverlay pops the top overlay and restores focus to its
// snapshot if still valid, else to the first target in the new scope
// (§4.3 AfterClose).
func (s *AppState) reduceCloseOverlay() []Effect {
	snapshot, ok := s.Overlays.Pop()
	if !ok {
		return nil
	}
	s.RebuildFocus()
	if !s.Focus.FocusID(snapshot) {
		s.Focus.FocusFirst()
	}
	return []Effect{{Kind: EffectRequestRender}}
}

// reduceTick delivers a tick to every node in the current step's state
// tree and in the top overlay's children (hidden nodes included, per §3)
// and folds their emitted events into effects.
func (s *AppState) reduceTick() []Effect {
	var effects []Effect
	var walk func(nodes []Widget)
	walk = func(nodes []Widget) {
		for _, n := range nodes {
			for _, e := range n.Tick() {
				effects = append(effects, Effect{Kind: EffectEmitWidget, Widget: e})
				if e.Kind == EventValueProduced {
					effects = append(effects, s.onValueProduced(e)...)
				}
			}
			walk(n.StateChildren())
		}
	}
	if step := s.Flow.Current(); step != nil {
		walk(step.Roots)
	}
	if top := s.Overlays.Top(); top != nil {
		walk(top.Children)
	}
	return effects
}

// declaredOverlays exposes the overlays registered against this step via
// DeclareOverlay, in declaration order — the lookup table behind
// OpenOverlay/OpenOverlayAtIndex (§4.3 "the nth overlay declared in the
// current Step").
func (s *Step) declaredOverlays() []OverlayEntry { return s.overlays }

// DeclareOverlay registers an overlay as openable from this step, both
// by id (OpenOverlay) and by declaration order (OpenOverlayAtIndex).
func (s *Step) DeclareOverlay(entry OverlayEntry) {
	s.overlays = append(s.overlays, entry)
}
