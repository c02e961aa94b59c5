package forme

// Cell is a single styled character cell in a Frame.
type Cell struct {
	Rune  rune
	Style Style
	// set distinguishes an explicitly written cell (opaque) from an
	// untouched one (transparent) — the overlay blend rule in §4.8
	// depends on this, not on Style.IsTransparent alone, since a cell
	// can be explicitly written with the default style (e.g. clearing).
	set bool
}

// EmptyCell is an unwritten, transparent blank cell (a space with the
// zero Style).
func EmptyCell() Cell { return Cell{Rune: ' '} }

// Frame is a 2D grid of styled cells plus an optional cursor position, the
// output of one pass of the layout engine (§4.7).
type Frame struct {
	cells  []Cell
	width  int
	height int

	// HasCursor / CursorRow / CursorCol record the mapped cursor, if any.
	HasCursor bool
	CursorRow int
	CursorCol int
}

// NewFrame allocates a width x height frame of empty, transparent cells.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{cells: make([]Cell, width*height), width: width, height: height}
}

// Width returns the frame width.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height.
func (f *Frame) Height() int { return f.height }

func (f *Frame) inBounds(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

func (f *Frame) index(x, y int) int { return y*f.width + x }

// Get returns the cell at (x, y), or the empty cell if out of bounds.
func (f *Frame) Get(x, y int) Cell {
	if !f.inBounds(x, y) {
		return EmptyCell()
	}
	return f.cells[f.index(x, y)]
}

// Set writes an opaque cell at (x, y). Out-of-bounds writes are ignored.
func (f *Frame) Set(x, y int, r rune, style Style) {
	if !f.inBounds(x, y) {
		return
	}
	f.cells[f.index(x, y)] = Cell{Rune: r, Style: style, set: true}
}

// WriteSpans writes a sequence of already-placed (rune, style) pairs into
// row y starting at column x, skipping cells that were never set. Used by
// Layout to copy each laid-out row into its frame.
func (f *Frame) WriteSpans(x, y int, cells []Cell) {
	for i, c := range cells {
		if !c.set {
			continue
		}
		f.Set(x+i, y, c.Rune, c.Style)
	}
}

// BlendFrom overlays src atop f at the given offset. A source cell is
// opaque (and therefore copied) only if it was explicitly Set; untouched
// cells are transparent and leave the destination unchanged — this is the
// overlay cell-blend rule of §4.8.
func (f *Frame) BlendFrom(src *Frame, dx, dy int) {
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			c := src.Get(x, y)
			if !c.set {
				continue
			}
			f.Set(dx+x, dy+y, c.Rune, c.Style)
		}
	}
}

// Region describes a rectangular allocation of terminal rows/columns used
// by the render pipeline's region tracker (§4.8 stage 4).
type Region struct {
	Top, Left      int
	Width, Height  int
}
