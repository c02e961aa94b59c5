package forme

// Attribute represents text styling attributes that can be combined.
type Attribute uint8

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
)

// Has reports whether the attribute set contains attr.
func (a Attribute) Has(attr Attribute) bool { return a&attr != 0 }

// With returns a new attribute set with attr added.
func (a Attribute) With(attr Attribute) Attribute { return a | attr }

// ColorMode selects how a Color's payload should be interpreted.
type ColorMode uint8

const (
	ColorDefault ColorMode = iota
	Color16
	ColorRGB
)

// Color represents a terminal color in one of the supported modes.
type Color struct {
	Mode    ColorMode
	Index   uint8
	R, G, B uint8
}

// DefaultColor is the terminal's default foreground/background.
func DefaultColor() Color { return Color{Mode: ColorDefault} }

// BasicColor returns one of the 16 basic terminal colors.
func BasicColor(index uint8) Color { return Color{Mode: Color16, Index: index} }

// RGB returns a 24-bit true color.
func RGB(r, g, b uint8) Color { return Color{Mode: ColorRGB, R: r, G: g, B: b} }

var (
	Red    = BasicColor(1)
	Green  = BasicColor(2)
	Yellow = BasicColor(3)
	Blue   = BasicColor(4)
	Gray   = BasicColor(8)
	White  = BasicColor(7)
)

// Style combines a foreground color, background color, and attribute set.
// The zero value equals DefaultStyle. Overlay blending does not look at
// the Style: a cell is transparent only if it was never written (see
// Cell and Frame.BlendFrom).
type Style struct {
	FG, BG Color
	Attr   Attribute
}

// DefaultStyle returns a style with default colors and no attributes.
func DefaultStyle() Style { return Style{FG: DefaultColor(), BG: DefaultColor()} }

// IsTransparent reports whether the style carries no color or attribute
// override. Frame.BlendFrom does not use it.
func (s Style) IsTransparent() bool {
	return s.FG == DefaultColor() && s.BG == DefaultColor() && s.Attr == AttrNone
}

// Foreground returns a copy of s with the foreground color replaced.
func (s Style) Foreground(c Color) Style { s.FG = c; return s }

// Background returns a copy of s with the background color replaced.
func (s Style) Background(c Color) Style { s.BG = c; return s }

// Bold returns a copy of s with bold set.
func (s Style) Bold() Style { s.Attr = s.Attr.With(AttrBold); return s }

// Dim returns a copy of s with dim set.
func (s Style) Dim() Style { s.Attr = s.Attr.With(AttrDim); return s }

// Underline returns a copy of s with underline set.
func (s Style) Underline() Style { s.Attr = s.Attr.With(AttrUnderline); return s }

// Reverse returns a copy of s with reverse video set.
func (s Style) Reverse() Style { s.Attr = s.Attr.With(AttrReverse); return s }

// Equal reports whether s and other carry the same colors and
// attributes — used by the terminal writer to decide when a fresh
// escape sequence is needed (§4.8 Blit).
func (s Style) Equal(other Style) bool { return s == other }

// ANSI renders s as an SGR escape sequence resetting to defaults first,
// then applying foreground, background, and attributes.
func (s Style) ANSI() string {
	out := "\x1b[0"
	if s.Attr.Has(AttrBold) {
		out += ";1"
	}
	if s.Attr.Has(AttrDim) {
		out += ";2"
	}
	if s.Attr.Has(AttrItalic) {
		out += ";3"
	}
	if s.Attr.Has(AttrUnderline) {
		out += ";4"
	}
	if s.Attr.Has(AttrReverse) {
		out += ";7"
	}
	out += s.FG.ansiSuffix(false)
	out += s.BG.ansiSuffix(true)
	return out + "m"
}

func (c Color) ansiSuffix(bg bool) string {
	base := 30
	if bg {
		base = 40
	}
	switch c.Mode {
	case ColorDefault:
		return ""
	case Color16:
		n := int(c.Index) % 16
		if n >= 8 {
			return ";" + decimal(base+60+n-8)
		}
		return ";" + decimal(base+n)
	case ColorRGB:
		rgbBase := 38
		if bg {
			rgbBase = 48
		}
		return ";" + decimal(rgbBase) + ";2;" + decimal(int(c.R)) + ";" + decimal(int(c.G)) + ";" + decimal(int(c.B))
	}
	return ""
}

func decimal(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// WrapPolicy controls how a Span behaves when it would overflow the
// current line during layout (§4.7).
type WrapPolicy uint8

const (
	Wrap WrapPolicy = iota
	NoWrap
)

// Span is a styled segment of text with an associated wrap policy, the
// unit the layout engine consumes.
type Span struct {
	Text  string
	Style Style
	Wrap  WrapPolicy
}

// Plain creates an unstyled, wrapping span.
func Plain(text string) Span { return Span{Text: text, Wrap: Wrap} }

// Styled creates a span with the given style and wrap policy.
func Styled(text string, style Style, wrap WrapPolicy) Span {
	return Span{Text: text, Style: style, Wrap: wrap}
}
