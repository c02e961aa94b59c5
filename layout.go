package forme

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// LayoutInput is one line-worth of spans to lay out, plus an optional
// cursor offset measured in display columns across the concatenation of
// this line's spans (§4.7: "a list of (spans, optional
// cursor_offset_within_spans)").
type LayoutInput struct {
	Spans  []Span
	Cursor *int // nil if this line has no cursor
}

// clusterWidth returns the display width of a single grapheme cluster,
// using uniseg's East-Asian-width-aware measurement. Zero-width-joined
// sequences collapse into one cluster already (uniseg's job), so this
// always returns the width of the whole user-perceived character.
func clusterWidth(cluster string) int {
	if w := uniseg.StringWidth(cluster); w > 0 {
		return w
	}
	// uniseg reports 0 for combining/zero-width content; fall back to
	// go-runewidth, taking the first rune of the cluster with a positive
	// width, so punctuation-adjacent glyphs still occupy at least their
	// rune's nominal width.
	for _, r := range cluster {
		if w := runewidth.RuneWidth(r); w > 0 {
			return w
		}
	}
	return 0
}

// spanWidth sums the display width of every grapheme cluster in a span's
// text, ignoring wrapping — used only to resolve which span a global
// cursor offset falls into before the placement pass runs.
func spanWidth(s string) int {
	total := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		total += clusterWidth(gr.Str())
	}
	return total
}

// resolveCursor maps a global cursor offset (in display columns across
// the whole span sequence) to an owning span index and a local offset
// within that span's own column stream. A boundary offset attaches to
// the start of the next span, except when it falls exactly at the end of
// the last span, in which case it is a trailing cursor on that span. An
// offset beyond the end, or a negative one, reports !ok.
func resolveCursor(spans []Span, offset int) (spanIdx, local int, ok bool) {
	if offset < 0 {
		return 0, 0, false
	}
	cum := 0
	for i, s := range spans {
		w := spanWidth(s.Text)
		if offset < cum+w {
			return i, offset - cum, true
		}
		cum += w
	}
	if offset == cum && len(spans) > 0 {
		last := len(spans) - 1
		return last, spanWidth(spans[last].Text), true
	}
	return 0, 0, false
}

// Layout performs the single-pass wrap + cursor-mapping contract of §4.7:
// for each span, grapheme clusters are placed into the current line while
// width is accumulated; if this span owns the cursor, the cursor position
// is recorded the moment the accumulated column count equals the local
// target offset. Wrap spans break at the next grapheme boundary once the
// column count would exceed width, starting a new line that inherits the
// same span's style; NoWrap spans clip and discard overflow.
func Layout(lines []LayoutInput, width int) *Frame {
	if width < 1 {
		width = 1
	}

	type row struct{ cells []Cell }
	var rows []row
	var hasCursor bool
	var cursorRow, cursorCol int

	for _, line := range lines {
		cursorSpan, cursorLocal, hasCursorTarget := -1, 0, false
		if line.Cursor != nil {
			if si, local, ok := resolveCursor(line.Spans, *line.Cursor); ok {
				cursorSpan, cursorLocal, hasCursorTarget = si, local, true
			}
		}

		cur := row{cells: make([]Cell, 0, width)}
		col := 0

		newline := func() {
			rows = append(rows, cur)
			cur = row{cells: make([]Cell, 0, width)}
			col = 0
		}

		for si, span := range line.Spans {
			owns := hasCursorTarget && si == cursorSpan
			spanCol := 0

			gr := uniseg.NewGraphemes(span.Text)
			for gr.Next() {
				cluster := gr.Str()
				w := clusterWidth(cluster)

				if w > 0 && col+w > width {
					if span.Wrap == NoWrap {
						spanCol += w
						continue
					}
					newline()
				}

				// col is now the post-wrap column this cluster lands on;
				// record the cursor here, the moment accumulated width
				// equals the target offset.
				if owns && spanCol == cursorLocal {
					hasCursor, cursorRow, cursorCol = true, len(rows), col
				}

				for _, r := range cluster {
					cur.cells = append(cur.cells, Cell{Rune: r, Style: span.Style, set: true})
					break // only the lead rune is stored in the cell; the cluster's remaining runes (e.g. combining marks) are not kept
				}
				col += w
				spanCol += w
			}

			// trailing cursor on this span: offset equals its full width
			if owns && spanCol == cursorLocal {
				hasCursor, cursorRow, cursorCol = true, len(rows), col
				nextWraps := si+1 < len(line.Spans) && line.Spans[si+1].Wrap == Wrap
				if col >= width && nextWraps {
					newline()
					hasCursor, cursorRow, cursorCol = true, len(rows), 0
				}
			}
		}
		rows = append(rows, cur)
	}

	f := NewFrame(width, len(rows))
	for y, r := range rows {
		f.WriteSpans(0, y, r.cells)
	}
	if hasCursor {
		f.HasCursor, f.CursorRow, f.CursorCol = true, cursorRow, cursorCol
	}
	return f
}
