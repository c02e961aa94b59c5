package forme

import "strings"

// TextInput is the minimal single-line text Input node — sufficient to
// exercise every Node/FocusBehavior/Validation/Binding/Completion path
// described by spec.md, whose widget catalog proper is explicitly out of
// scope (§1). Grounded on the teacher's InputC shape (buffer + cursor +
// candidate list), re-expressed against the Widget contract.
type TextInput struct {
	BaseNode

	buf    []rune
	cursor int
	mask   rune // 0 = no masking

	onValueChanged func(Value)
}

// NewTextInput creates a focusable text input.
func NewTextInput(id NodeId) *TextInput {
	t := &TextInput{BaseNode: NewBaseNode(id, Leaf)}
	t.value = Text("")
	return t
}

// WithMask sets a mask rune (e.g. '*') drawn in place of each character.
func (t *TextInput) WithMask(r rune) *TextInput { t.mask = r; return t }

// Text returns the current buffer contents.
func (t *TextInput) Text() string { return string(t.buf) }

// SetText replaces the buffer contents and moves the cursor to the end.
func (t *TextInput) SetText(s string) {
	t.buf = []rune(s)
	t.cursor = len(t.buf)
	t.value = Text(s)
}

// SetValue implements Widget: it stores v as the node's value unchanged
// and loads v's Text payload into the buffer (empty for non-Text values).
// Unlike SetText it does not move the cursor to the end; it only clamps
// it to the new buffer length.
func (t *TextInput) SetValue(v Value) {
	t.BaseNode.SetValue(v)
	t.buf = []rune(v.AsText())
	if t.cursor > len(t.buf) {
		t.cursor = len(t.buf)
	}
}

// CursorOffset returns the current cursor column for layout purposes.
func (t *TextInput) CursorOffset() int { return t.cursor }

// currentToken returns the contiguous run of non-whitespace ending at
// the cursor — the completion token rule of §4.2.
func (t *TextInput) currentToken() (token string, start int) {
	i := t.cursor
	for i > 0 && !isSpace(t.buf[i-1]) {
		i--
	}
	return string(t.buf[i:t.cursor]), i
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

// replaceToken substitutes the token ending at the cursor with
// replacement, as completion cycling does.
func (t *TextInput) replaceToken(replacement string) {
	_, start := t.currentToken()
	rest := t.buf[t.cursor:]
	newBuf := make([]rune, 0, start+len(replacement)+len(rest))
	newBuf = append(newBuf, t.buf[:start]...)
	newBuf = append(newBuf, []rune(replacement)...)
	newBuf = append(newBuf, rest...)
	t.buf = newBuf
	t.cursor = start + len([]rune(replacement))
	t.value = Text(string(t.buf))
}

// HandleKey implements Widget. Tab/BackTab and the global action
// bindings are intercepted upstream by the reducer (§4.1); only plain
// editing keys reach here.
func (t *TextInput) HandleKey(ev TerminalEvent) InteractionResult {
	switch {
	case ev.Kind != EventKey:
		return Unhandled()
	case ev.Code == KeyLeft:
		if t.cursor > 0 {
			t.cursor--
		}
		return Handled().WithRender()
	case ev.Code == KeyRight:
		if t.cursor < len(t.buf) {
			t.cursor++
		}
		return Handled().WithRender()
	case ev.Code == KeyHome:
		t.cursor = 0
		return Handled().WithRender()
	case ev.Code == KeyEnd:
		t.cursor = len(t.buf)
		return Handled().WithRender()
	case ev.Code == KeyBackspace:
		if t.cursor > 0 {
			t.buf = append(t.buf[:t.cursor-1], t.buf[t.cursor:]...)
			t.cursor--
			t.emitChange()
		}
		return Handled().WithRender()
	case ev.Code == KeyDelete:
		if t.cursor < len(t.buf) {
			t.buf = append(t.buf[:t.cursor], t.buf[t.cursor+1:]...)
			t.emitChange()
		}
		return Handled().WithRender()
	case ev.Code == KeyNone && ev.Rune != 0:
		t.buf = append(t.buf[:t.cursor], append([]rune{ev.Rune}, t.buf[t.cursor:]...)...)
		t.cursor++
		t.emitChange()
		return Handled().WithRender().WithEvent(WidgetEvent{
			Kind: EventValueProduced, Source: t.id, Port: DefaultPort, Value: t.value,
		})
	}
	return Unhandled()
}

func (t *TextInput) emitChange() {
	t.value = Text(string(t.buf))
	if t.onValueChanged != nil {
		t.onValueChanged(t.value)
	}
}

// WordDeleteBackward removes any whitespace immediately before the
// cursor, then the run of non-whitespace before that — the TextAction
// bound to Ctrl+Backspace/Ctrl+W (§4.1/§6).
func (t *TextInput) WordDeleteBackward() {
	i := t.cursor
	for i > 0 && isSpace(t.buf[i-1]) {
		i--
	}
	for i > 0 && !isSpace(t.buf[i-1]) {
		i--
	}
	t.buf = append(t.buf[:i], t.buf[t.cursor:]...)
	t.cursor = i
	t.emitChange()
}

// WordDeleteForward removes any whitespace immediately after the cursor,
// then the run of non-whitespace after that — bound to Ctrl+Delete.
func (t *TextInput) WordDeleteForward() {
	i := t.cursor
	n := len(t.buf)
	for i < n && isSpace(t.buf[i]) {
		i++
	}
	for i < n && !isSpace(t.buf[i]) {
		i++
	}
	t.buf = append(t.buf[:t.cursor], t.buf[i:]...)
	t.emitChange()
}

// Tick implements Widget; text inputs have no timed behavior of their
// own.
func (t *TextInput) Tick() []WidgetEvent { return nil }

// Draw implements Widget, producing a single-line RenderOutput with the
// cursor mapped to the buffer offset.
func (t *TextInput) Draw(ctx *RenderContext) RenderOutput {
	text := string(t.buf)
	if t.mask != 0 {
		text = strings.Repeat(string(t.mask), len(t.buf))
	}
	style := ctx.Theme.Input
	if t.focused {
		style = ctx.Theme.InputFocused
	}
	off := t.cursor
	return RenderOutput{
		Spans:        []Span{Styled(text, style, NoWrap)},
		CursorOffset: &off,
	}
}

func (t *TextInput) RenderChildren() []Widget { return nil }
func (t *TextInput) StateChildren() []Widget  { return nil }

// OutputText is the minimal non-interactive render-only node (§3).
type OutputText struct {
	BaseNode
	text string
}

// NewOutputText creates an Output node rendering static text.
func NewOutputText(id NodeId, text string) *OutputText {
	return &OutputText{BaseNode: NewBaseNode(id, Container), text: text}
}

func (o *OutputText) HandleKey(ev TerminalEvent) InteractionResult { return Unhandled() }
func (o *OutputText) Tick() []WidgetEvent                          { return nil }
func (o *OutputText) Draw(ctx *RenderContext) RenderOutput {
	return RenderOutput{Spans: []Span{Plain(o.text)}}
}
func (o *OutputText) RenderChildren() []Widget { return nil }
func (o *OutputText) StateChildren() []Widget  { return nil }

// Checkbox is a boolean Leaf input holding a Bool value, toggled by the
// space key.
type Checkbox struct {
	BaseNode
	label string
}

// NewCheckbox creates a focusable checkbox.
func NewCheckbox(id NodeId, label string) *Checkbox {
	c := &Checkbox{BaseNode: NewBaseNode(id, Leaf), label: label}
	c.value = Bool(false)
	return c
}

func (c *Checkbox) Toggle() {
	c.value = Bool(!c.value.AsBool())
}

func (c *Checkbox) HandleKey(ev TerminalEvent) InteractionResult {
	if ev.Kind == EventKey && ev.Code == KeyNone && ev.Rune == ' ' {
		c.Toggle()
		return Handled().WithRender().WithEvent(WidgetEvent{
			Kind: EventValueProduced, Source: c.id, Port: DefaultPort, Value: c.value,
		})
	}
	return Unhandled()
}

func (c *Checkbox) Tick() []WidgetEvent { return nil }
func (c *Checkbox) Draw(ctx *RenderContext) RenderOutput {
	mark := "[ ]"
	if c.value.AsBool() {
		mark = "[x]"
	}
	return RenderOutput{Spans: []Span{Plain(mark + " " + c.label)}}
}
func (c *Checkbox) RenderChildren() []Widget { return nil }
func (c *Checkbox) StateChildren() []Widget  { return nil }

// ContainerNode is a generic Component node holding an ordered child
// sequence with FocusBehavior::Container semantics — focus passes
// through to children, the container is never itself a target.
type ContainerNode struct {
	BaseNode
	children []Widget
	hidden   bool // still present in the state tree, absent from render tree
}

// NewContainer creates a Container-behavior component.
func NewContainer(id NodeId, children ...Widget) *ContainerNode {
	return &ContainerNode{BaseNode: NewBaseNode(id, Container), children: children}
}

// SetHidden toggles whether this container appears in the render tree.
// Its children still receive ticks and value sync regardless (§3).
func (c *ContainerNode) SetHidden(h bool) { c.hidden = h }

func (c *ContainerNode) HandleKey(ev TerminalEvent) InteractionResult { return Unhandled() }
func (c *ContainerNode) Tick() []WidgetEvent                         { return nil }
func (c *ContainerNode) Draw(ctx *RenderContext) RenderOutput        { return RenderOutput{} }
func (c *ContainerNode) RenderChildren() []Widget {
	if c.hidden {
		return nil
	}
	return c.children
}
func (c *ContainerNode) StateChildren() []Widget { return c.children }

// RadioGroup is a single-selection Group-behavior component: a single
// focus target that routes Tab/BackTab to move its own internal
// selection while further options remain in that direction, declining
// (Unhandled) once at an edge option so the engine advances past it in
// the ordinary way (§3/§4.1 "Tab is first offered to the Group's own
// routing; only if the Group declines does the engine advance"). Grounded
// on the teacher's RadioC (selected *int + options, Next/Prev), re-
// expressed against the Widget contract's HandleKey/InteractionResult
// shape instead of RadioC's direct Next()/Prev() method calls.
type RadioGroup struct {
	BaseNode
	options  []string
	selected int
}

// NewRadioGroup creates a Group-behavior radio selection over options.
func NewRadioGroup(id NodeId, options ...string) *RadioGroup {
	g := &RadioGroup{BaseNode: NewBaseNode(id, Group), options: options}
	if len(options) > 0 {
		g.value = Text(options[0])
	}
	return g
}

// Selected returns the index of the currently selected option.
func (g *RadioGroup) Selected() int { return g.selected }

func (g *RadioGroup) HandleKey(ev TerminalEvent) InteractionResult {
	if ev.Kind != EventKey {
		return Unhandled()
	}
	switch ev.Code {
	case KeyTab:
		if g.selected >= len(g.options)-1 {
			return Unhandled()
		}
		g.selected++
	case KeyBackTab:
		if g.selected <= 0 {
			return Unhandled()
		}
		g.selected--
	default:
		return Unhandled()
	}
	g.value = Text(g.options[g.selected])
	return Handled().WithRender().WithEvent(WidgetEvent{
		Kind: EventValueProduced, Source: g.id, Port: DefaultPort, Value: g.value,
	})
}

func (g *RadioGroup) Tick() []WidgetEvent { return nil }
func (g *RadioGroup) Draw(ctx *RenderContext) RenderOutput {
	var spans []Span
	for i, opt := range g.options {
		mark := "○"
		if i == g.selected {
			mark = "◉"
		}
		spans = append(spans, Plain(mark+" "+opt+"  "))
	}
	return RenderOutput{Spans: spans}
}
func (g *RadioGroup) RenderChildren() []Widget { return nil }
func (g *RadioGroup) StateChildren() []Widget  { return nil }
