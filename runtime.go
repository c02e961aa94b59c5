package forme

import "time"

// Now is the runtime's clock; it is a variable so a caller can replace
// it to make scheduler timing deterministic instead of wall-clock bound.
var Now = time.Now

// Runtime drives the §4.9 event loop over a Terminal and an AppState. It
// owns nothing of its own beyond the render scratch state — all domain
// state lives in AppState, all I/O lives behind Terminal.
type Runtime struct {
	Term  Terminal
	State *AppState
	Theme Theme
	Log   Logger

	overlayLayers []overlayLayer
}

// overlayLayer pairs a live OverlayEntry with the region it last rendered
// into, addressed for Compose (§4.8 stage 5).
type overlayLayer struct {
	entry  *OverlayEntry
	region Region
}

// NewRuntime constructs a Runtime over an already-built AppState.
func NewRuntime(term Terminal, state *AppState, log Logger) *Runtime {
	return &Runtime{Term: term, State: state, Theme: DefaultTheme(), Log: log}
}

// Run executes the full §4.9 loop: enter raw mode, render once, then
// repeatedly drain ready scheduled events, poll the terminal bounded by
// the next scheduler deadline, dispatch whatever arrived, and re-render
// when dirty. Returns the error from entering raw mode; otherwise nil,
// once the state requests exit or the terminal stops delivering events.
// A failed frame write is logged and the loop continues; it is not
// returned.
func (r *Runtime) Run() error {
	if err := r.Term.EnterRawMode(); err != nil {
		return err
	}
	defer r.Term.ExitRawMode()
	defer r.Term.Close()

	r.render()

	for !r.State.ShouldExit {
		now := Now()
		for _, ev := range r.State.Scheduler.DrainReady(now) {
			r.dispatch(Command{Kind: CmdTick}, &ev)
		}
		if r.State.ShouldExit {
			break
		}

		deadline, ok := r.State.Scheduler.NextDeadline()
		if !ok {
			deadline = time.Time{}
		}
		ev, alive := r.Term.Poll(deadline)
		if !alive {
			break
		}

		dirty := r.handleTerminalEvent(ev)
		if dirty {
			r.render()
		}
	}
	return nil
}

// handleTerminalEvent maps and dispatches one TerminalEvent, returning
// whether a render is warranted.
func (r *Runtime) handleTerminalEvent(ev TerminalEvent) bool {
	switch ev.Kind {
	case EventResize:
		return true
	case EventTick:
		effects := r.State.Reduce(Command{Kind: CmdTick})
		return r.applyEffects(effects)
	case EventKey:
		cmd := mapKeyToCommand(ev, !r.State.Overlays.Empty())
		effects := r.State.Reduce(cmd)
		return r.applyEffects(effects)
	}
	return false
}

// dispatch runs cmd through the reducer and applies its effects, used
// for scheduler-fired events where the fired SchedulerEvent itself
// carries the domain meaning (currently only the error-decay clear,
// which is applied directly rather than re-entering the reducer, since
// it is a mechanical consequence, not a domain transition — §4.1).
func (r *Runtime) dispatch(cmd Command, fired *SchedulerEvent) {
	if fired != nil {
		if id, ok := fired.Payload.(NodeId); ok {
			r.State.Validation.Clear(id)
			r.render()
			return
		}
	}
	effects := r.State.Reduce(cmd)
	if r.applyEffects(effects) {
		r.render()
	}
}

// applyEffects executes effects in order against the scheduler and
// widget-event handler (§4.1/§5 ordering guarantee), returning whether
// any of them requested a render.
func (r *Runtime) applyEffects(effects []Effect) bool {
	dirty := false
	now := Now()
	for _, e := range effects {
		switch e.Kind {
		case EffectRequestRender:
			dirty = true
		case EffectEmitWidget:
			if r.Log != nil {
				r.Log.Debugw("widget event", "source", string(e.Widget.Source), "kind", e.Widget.Kind)
			}
		case EffectSchedule:
			switch e.ScheduleOp {
			case ScheduleEmitNow:
				r.State.Scheduler.EmitNow(now, e.ScheduleEvent)
			case ScheduleEmitAfter:
				r.State.Scheduler.EmitAfter(now, e.ScheduleEvent, e.Delay)
			case ScheduleDebounce:
				r.State.Scheduler.Debounce(now, e.ScheduleKey, e.ScheduleEvent, e.Delay)
			case ScheduleThrottle:
				r.State.Scheduler.Throttle(now, e.ScheduleKey, e.ScheduleEvent, e.Delay)
			}
		case EffectCancelScheduled:
			r.State.Scheduler.Cancel(e.CancelKey)
		}
	}
	return dirty
}

// render runs the full §4.8 pipeline: build the base step frame, build
// and compose each overlay in stack order, and write the result to the
// terminal.
func (r *Runtime) render() {
	width, height := r.Term.Size()
	step := r.State.Flow.Current()

	var baseFrame *Frame
	if step != nil {
		lines := BuildStepLines(step, r.State.Flow.Status(r.State.Flow.Index), r.State.Validation, &RenderContext{Theme: r.Theme})
		baseFrame = Layout(toLayoutInputs(lines), width)
	} else {
		baseFrame = NewFrame(width, height)
	}

	var overlayFrames []*Frame
	var origins []Region
	tracker := NewRegionTracker(width)
	if top := r.State.Overlays.Top(); top != nil {
		inner := BuildOverlayLines(top, &RenderContext{Theme: r.Theme})
		ovFrame := Layout(inner, width-2)
		bordered := NewFrame(ovFrame.Width()+2, ovFrame.Height()+2)
		DrawOverlayBorder(bordered, r.Theme.OverlayBorder)
		bordered.BlendFrom(ovFrame, 1, 1)
		if ovFrame.HasCursor {
			bordered.HasCursor = true
			bordered.CursorRow = ovFrame.CursorRow + 1
			bordered.CursorCol = ovFrame.CursorCol + 1
		}
		region := tracker.AllocateAt(1, 2, bordered.Width(), bordered.Height())
		overlayFrames = append(overlayFrames, bordered)
		origins = append(origins, region)
	}

	composed, cursorRow, cursorCol, hasCursor := Compose(baseFrame, overlayFrames, origins)
	composed.HasCursor = hasCursor
	composed.CursorRow = cursorRow
	composed.CursorCol = cursorCol

	if err := r.Term.Write(composed); err != nil && r.Log != nil {
		r.Log.Errorw("terminal write failed", "error", err)
	}
}

// toLayoutInputs is an identity conversion kept as a seam in case a
// future stage needs to intercept lines between Build/Decorate and
// Layout (e.g. a debug overlay).
func toLayoutInputs(lines []LayoutInput) []LayoutInput { return lines }

// BuildOverlayLines runs Build/Decorate for an overlay's children,
// mirroring BuildStepLines but without step status decoration or
// step-level error lines (§4.8).
func BuildOverlayLines(top *OverlayEntry, ctx *RenderContext) []LayoutInput {
	var lines []LayoutInput
	var walk func(nodes []Widget)
	walk = func(nodes []Widget) {
		for _, n := range nodes {
			if _, isOutput := n.(*OutputText); !isOutput && n.FocusBehavior() == Container {
				walk(n.RenderChildren())
				continue
			}
			out := n.Draw(ctx)
			lines = append(lines, LayoutInput{Spans: out.Spans, Cursor: out.CursorOffset})
		}
	}
	walk(top.Children)
	return lines
}
