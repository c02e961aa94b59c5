package forme

// Theme names the visual roles the render pipeline decorates with,
// following the teacher's theme.go role-based convention rather than
// scattering raw colors through the pipeline (SPEC_FULL §5 open
// question resolution).
type Theme struct {
	Input         Style
	InputFocused  Style
	ErrorText     Style
	OverlayBorder Style

	StatusActive    Style
	StatusDone      Style
	StatusPending   Style
	StatusCancelled Style
}

// DefaultTheme returns a reasonable default styling.
func DefaultTheme() Theme {
	return Theme{
		Input:           DefaultStyle(),
		InputFocused:    DefaultStyle().Underline(),
		ErrorText:       DefaultStyle().Foreground(Red),
		OverlayBorder:   DefaultStyle(),
		StatusActive:    DefaultStyle().Foreground(Green).Bold(),
		StatusDone:      DefaultStyle().Dim(),
		StatusPending:   DefaultStyle().Dim(),
		StatusCancelled: DefaultStyle().Foreground(Red),
	}
}

// RenderContext exposes only theme and helpers to a node's Draw method —
// no business logic (§4.8 stage 1).
type RenderContext struct {
	Theme Theme
}

// RenderOutput is what a node's Draw produces: spans plus an optional
// cursor offset within them (§4.8 stage 1).
type RenderOutput struct {
	Spans        []Span
	CursorOffset *int
}

// decorateStatus prepends a status glyph and returns the gutter style for
// a step, per §4.8 stage 2.
func decorateStatus(status StepStatus, theme Theme) (glyph string, style Style) {
	switch status {
	case Active:
		return "▸ ", theme.StatusActive
	case Done:
		return "✓ ", theme.StatusDone
	case Cancelled:
		return "✗ ", theme.StatusCancelled
	default:
		return "  ", theme.StatusPending
	}
}

// BuildStepLines runs stage 1 (Build) and stage 2 (Decorate) for a step:
// it collects each root node's RenderOutput, threads every node's inline
// error lines directly beneath it, and prepends the step's status
// decoration to the first line.
func BuildStepLines(step *Step, status StepStatus, vs *ValidationState, ctx *RenderContext) []LayoutInput {
	var lines []LayoutInput
	glyph, gstyle := decorateStatus(status, ctx.Theme)

	first := true
	var walk func(nodes []Widget)
	walk = func(nodes []Widget) {
		for _, n := range nodes {
			if _, isOutput := n.(*OutputText); !isOutput && n.FocusBehavior() == Container {
				walk(n.RenderChildren())
				continue
			}
			out := n.Draw(ctx)
			spans := out.Spans
			shift := 0
			if first {
				prefix := Span{Text: glyph, Style: gstyle, Wrap: NoWrap}
				shift = spanWidth(glyph)
				spans = append([]Span{prefix}, spans...)
				first = false
			}
			line := LayoutInput{Spans: spans}
			if out.CursorOffset != nil {
				off := *out.CursorOffset + shift
				line.Cursor = &off
			}
			lines = append(lines, line)

			if fs, ok := vs.Get(n.ID()); ok && fs.Visibility == Inline {
				for _, issue := range fs.Issues {
					lines = append(lines, LayoutInput{Spans: []Span{Styled("  "+issue.Message, ctx.Theme.ErrorText, Wrap)}})
				}
			}
		}
	}
	walk(step.Roots)

	for _, issue := range vs.StepErrors() {
		lines = append(lines, LayoutInput{Spans: []Span{Styled(issue.Message, ctx.Theme.ErrorText, Wrap)}})
	}
	return lines
}

// RegionTracker allocates rectangular terminal-row spans for layers,
// addressed by top-left coordinate, and clips to the terminal width
// (§4.8 stage 4).
type RegionTracker struct {
	termWidth int
}

// NewRegionTracker creates a tracker for allocations against termWidth.
func NewRegionTracker(termWidth int) *RegionTracker { return &RegionTracker{termWidth: termWidth} }

// AllocateAt reserves a region anchored at an explicit top-left, clipped
// to the terminal width — used for overlay placement policies.
func (rt *RegionTracker) AllocateAt(top, left, width, height int) Region {
	if left+width > rt.termWidth {
		width = rt.termWidth - left
		if width < 0 {
			width = 0
		}
	}
	return Region{Top: top, Left: left, Width: width, Height: height}
}

// DrawOverlayBorder stamps an opaque box border onto frame using the
// box-drawing corners ┌ ┐ └ ┘ with │ and ─ edges. Border cells are
// always opaque.
func DrawOverlayBorder(f *Frame, style Style) {
	w, h := f.Width(), f.Height()
	if w < 2 || h < 2 {
		return
	}
	f.Set(0, 0, '┌', style)
	f.Set(w-1, 0, '┐', style)
	f.Set(0, h-1, '└', style)
	f.Set(w-1, h-1, '┘', style)
	for x := 1; x < w-1; x++ {
		f.Set(x, 0, '─', style)
		f.Set(x, h-1, '─', style)
	}
	for y := 1; y < h-1; y++ {
		f.Set(0, y, '│', style)
		f.Set(w-1, y, '│', style)
	}
}

// Compose runs stage 5 (Blit) and stage 6 (Cursor): it blends every
// overlay frame atop the base frame, in stack order (bottom to top), and
// returns the cursor of the topmost frame that has one, or !ok if none
// do (hide the cursor).
func Compose(base *Frame, overlays []*Frame, overlayOrigins []Region) (composed *Frame, cursorRow, cursorCol int, ok bool) {
	out := NewFrame(base.Width(), base.Height())
	out.BlendFrom(base, 0, 0)
	if base.HasCursor {
		cursorRow, cursorCol, ok = base.CursorRow, base.CursorCol, true
	}
	for i, ov := range overlays {
		origin := overlayOrigins[i]
		out.BlendFrom(ov, origin.Left, origin.Top)
		if ov.HasCursor {
			cursorRow, cursorCol, ok = origin.Top+ov.CursorRow, origin.Left+ov.CursorCol, true
		}
	}
	return out, cursorRow, cursorCol, ok
}
