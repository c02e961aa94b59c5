package forme

import "testing"

func frameRow(f *Frame, y int) string {
	out := make([]rune, 0, f.Width())
	for x := 0; x < f.Width(); x++ {
		r := f.Get(x, y).Rune
		if r == 0 {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}

// TestLayoutWrapPlacesCursorCorrectly is §8 scenario 6, verbatim.
func TestLayoutWrapPlacesCursorCorrectly(t *testing.T) {
	cursor := 8
	lines := []LayoutInput{
		{
			Spans: []Span{
				{Text: "hello ", Wrap: Wrap},
				{Text: "world!", Wrap: Wrap},
			},
			Cursor: &cursor,
		},
	}

	f := Layout(lines, 8)

	if f.Height() != 2 {
		t.Fatalf("Height() = %d, want 2", f.Height())
	}
	if got := frameRow(f, 0); got != "hello wo" {
		t.Errorf("row 0 = %q, want %q", got, "hello wo")
	}
	if got := frameRow(f, 1); got != "rld!" {
		t.Errorf("row 1 = %q, want %q", got, "rld!")
	}
	if !f.HasCursor {
		t.Fatalf("expected a cursor to be recorded")
	}
	if f.CursorRow != 1 || f.CursorCol != 0 {
		t.Errorf("cursor = (%d, %d), want (1, 0)", f.CursorRow, f.CursorCol)
	}
}

// TestLayoutCursorRoundTrip checks the §8 quantified invariant: mapping a
// cursor offset into frame coordinates and summing cell widths up to that
// frame position yields exactly the original offset, across a spread of
// offsets and widths.
func TestLayoutCursorRoundTrip(t *testing.T) {
	text := "the quick brown fox jumps"
	for width := 4; width <= 12; width++ {
		for offset := 0; offset <= len(text); offset++ {
			off := offset
			lines := []LayoutInput{{Spans: []Span{{Text: text, Wrap: Wrap}}, Cursor: &off}}
			f := Layout(lines, width)
			if !f.HasCursor {
				t.Fatalf("width=%d offset=%d: expected cursor to be placed", width, offset)
			}

			sum := 0
			for y := 0; y < f.CursorRow; y++ {
				for x := 0; x < f.Width(); x++ {
					if r := f.Get(x, y).Rune; r != 0 {
						sum += clusterWidth(string(r))
					}
				}
			}
			for x := 0; x < f.CursorCol; x++ {
				if r := f.Get(x, f.CursorRow).Rune; r != 0 {
					sum += clusterWidth(string(r))
				}
			}
			if sum != offset {
				t.Errorf("width=%d offset=%d: summed width to cursor = %d, want %d", width, offset, sum, offset)
			}
		}
	}
}

func TestLayoutNoWrapClips(t *testing.T) {
	lines := []LayoutInput{{Spans: []Span{{Text: "this line is too long", Wrap: NoWrap}}}}
	f := Layout(lines, 6)
	if f.Height() != 1 {
		t.Fatalf("NoWrap span produced %d rows, want 1", f.Height())
	}
	if got := frameRow(f, 0); got != "this l" {
		t.Errorf("row 0 = %q, want clipped %q", got, "this l")
	}
}

func TestLayoutMultilineInput(t *testing.T) {
	lines := []LayoutInput{
		{Spans: []Span{{Text: "first", Wrap: Wrap}}},
		{Spans: []Span{{Text: "second", Wrap: Wrap}}},
	}
	f := Layout(lines, 10)
	if f.Height() != 2 {
		t.Fatalf("Height() = %d, want 2", f.Height())
	}
	if got := frameRow(f, 0); got != "first     " {
		t.Errorf("row 0 = %q", got)
	}
}
