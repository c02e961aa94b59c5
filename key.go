package forme

// Modifier is a bitset of keyboard modifier keys.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCtrl  Modifier = 1 << iota
	ModAlt
	ModShift
)

// Has reports whether m includes mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// KeyCode names a non-printable key. Printable characters are carried in
// TerminalEvent.Rune instead, with Code left KeyNone.
type KeyCode uint8

const (
	KeyNone KeyCode = iota
	KeyEnter
	KeyEsc
	KeyTab
	KeyBackTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyFunction // Function key; FuncN carries which one
)

// EventKind distinguishes the three TerminalEvent shapes of §6.
type EventKind uint8

const (
	EventKey EventKind = iota
	EventResize
	EventTick
)

// TerminalEvent is the stream element the runtime consumes from the
// terminal back-end (§6). Only Kind-relevant fields are populated.
type TerminalEvent struct {
	Kind EventKind

	// EventKey fields
	Code KeyCode
	Rune rune // set when Code == KeyNone and this is a printable character
	Mods Modifier
	FuncN int // which function key, when Code == KeyFunction (1-based)

	// EventResize fields
	Width, Height int
}

// Command is the closed set of domain transitions the reducer accepts
// (§4.1).
type Command struct {
	Kind CommandKind

	Key            TerminalEvent // for InputKey
	TextAction     TextActionKind
	OverlayID      NodeId // for OpenOverlay
	OverlayIndex   int    // for OpenOverlayAtIndex, 0-based internally
}

// CommandKind is the closed set of command tags.
type CommandKind uint8

const (
	CmdExit CommandKind = iota
	CmdSubmit
	CmdNextFocus
	CmdPrevFocus
	CmdInputKey
	CmdTextAction
	CmdOpenOverlay
	CmdOpenOverlayAtIndex
	CmdOpenOverlayShortcut
	CmdCloseOverlay
	CmdTick
)

// TextActionKind is the closed set of structured text-editing actions
// routed via Command{Kind: CmdTextAction}.
type TextActionKind uint8

const (
	TextActionNone TextActionKind = iota
	WordDeleteBackward
	WordDeleteForward
)

// mapKeyToCommand applies the default global key bindings of §6, in
// priority order, ahead of any node-local dispatch. It never consults
// focus or completion state — that happens inside the reducer per the
// §4.1 tie-break order. The caller (runtime.go's handleTerminalEvent)
// only ever invokes this from its EventKey branch; EventTick/EventResize
// are handled directly there instead.
func mapKeyToCommand(ev TerminalEvent, overlayStackNonEmpty bool) Command {
	switch {
	case ev.Code == KeyNone && ev.Rune == 'c' && ev.Mods.Has(ModCtrl):
		return Command{Kind: CmdExit}
	case ev.Code == KeyEsc:
		if overlayStackNonEmpty {
			return Command{Kind: CmdCloseOverlay}
		}
		return Command{Kind: CmdExit}
	case ev.Code == KeyTab:
		return Command{Kind: CmdNextFocus}
	case ev.Code == KeyBackTab:
		return Command{Kind: CmdPrevFocus}
	case ev.Code == KeyEnter:
		return Command{Kind: CmdSubmit}
	case ev.Code == KeyNone && ev.Rune == 'o' && ev.Mods.Has(ModCtrl):
		return Command{Kind: CmdOpenOverlayShortcut}
	case ev.Code == KeyNone && ev.Rune >= '1' && ev.Rune <= '9' && (ev.Mods.Has(ModCtrl) || ev.Mods.Has(ModAlt)):
		return Command{Kind: CmdOpenOverlayAtIndex, OverlayIndex: int(ev.Rune - '1')}
	case ev.Code == KeyBackspace && ev.Mods.Has(ModCtrl):
		return Command{Kind: CmdTextAction, TextAction: WordDeleteBackward}
	case ev.Code == KeyNone && ev.Rune == 'w' && ev.Mods.Has(ModCtrl):
		return Command{Kind: CmdTextAction, TextAction: WordDeleteBackward}
	case ev.Code == KeyDelete && ev.Mods.Has(ModCtrl):
		return Command{Kind: CmdTextAction, TextAction: WordDeleteForward}
	}
	return Command{Kind: CmdInputKey, Key: ev}
}
