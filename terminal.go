package forme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the runtime's sole I/O boundary (§5 "the terminal is owned
// by the runtime"). StdTerminal backs real processes; FakeTerminal
// drives the scenario tests without a real tty, grounded on the
// teacher's screen.go raw-mode/resize handling but re-expressed behind
// an interface so the runtime and tests share one contract.
type Terminal interface {
	// Poll returns the next event, blocking at most until deadline. A
	// zero deadline means block indefinitely.
	Poll(deadline time.Time) (TerminalEvent, bool)
	Size() (width, height int)
	Write(frame *Frame) error
	EnterRawMode() error
	ExitRawMode() error
	Close() error
}

// StdTerminal is the real terminal backend: raw mode via golang.org/x/term,
// size queries via golang.org/x/sys ioctl TIOCGWINSZ, and an internal
// goroutine decoding the stdin byte stream into TerminalEvents — the
// worker-thread-via-channel pattern of §5 applied to input itself, since
// Poll must support a deadline but os.Stdin.Read does not.
type StdTerminal struct {
	in  *os.File
	out *os.File

	fd       int
	oldState *term.State

	events   chan TerminalEvent
	sigwinch chan os.Signal
	closed   chan struct{}

	width, height int
}

// NewStdTerminal opens the real terminal on stdin/stdout.
func NewStdTerminal() *StdTerminal {
	t := &StdTerminal{
		in:       os.Stdin,
		out:      os.Stdout,
		fd:       int(os.Stdin.Fd()),
		events:   make(chan TerminalEvent, 64),
		sigwinch: make(chan os.Signal, 1),
		closed:   make(chan struct{}),
	}
	t.width, t.height = t.querySize()
	return t
}

func (t *StdTerminal) querySize() (int, int) {
	ws, err := unix.IoctlGetWinsize(t.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// EnterRawMode implements Terminal.
func (t *StdTerminal) EnterRawMode() error {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return TerminalErrorf("enter raw mode: %v", err)
	}
	t.oldState = state

	signal.Notify(t.sigwinch, syscall.SIGWINCH)
	go t.watchResize()
	go t.readLoop()

	t.out.WriteString("\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l")
	return nil
}

// ExitRawMode implements Terminal.
func (t *StdTerminal) ExitRawMode() error {
	t.out.WriteString("\x1b[?25h\x1b[?1049l")
	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(t.fd, t.oldState); err != nil {
		return TerminalErrorf("exit raw mode: %v", err)
	}
	return nil
}

// Close signals the background goroutines to stop and stops resize
// notifications. Stdin is not closed; the reader goroutine exits after
// its next read completes.
func (t *StdTerminal) Close() error {
	select {
	case <-t.closed:
	default:
		close(t.closed)
	}
	signal.Stop(t.sigwinch)
	return nil
}

func (t *StdTerminal) watchResize() {
	for {
		select {
		case <-t.closed:
			return
		case <-t.sigwinch:
			w, h := t.querySize()
			t.width, t.height = w, h
			select {
			case t.events <- TerminalEvent{Kind: EventResize, Width: w, Height: h}:
			case <-t.closed:
				return
			}
		}
	}
}

// readLoop decodes the raw stdin byte stream into TerminalEvents. It is
// the replacement for riffkey's Reader (unavailable in this module's
// dependency set): a minimal ANSI/VT100 escape-sequence decoder covering
// the key set named in §6.
func (t *StdTerminal) readLoop() {
	r := bufio.NewReader(t.in)
	for {
		ev, ok := decodeKey(r)
		if !ok {
			return
		}
		select {
		case t.events <- ev:
		case <-t.closed:
			return
		}
	}
}

// decodeKey reads one TerminalEvent worth of bytes from r.
func decodeKey(r *bufio.Reader) (TerminalEvent, bool) {
	b, err := r.ReadByte()
	if err != nil {
		return TerminalEvent{}, false
	}

	switch {
	case b == 0x1b:
		return decodeEscape(r)
	case b == '\r' || b == '\n':
		return TerminalEvent{Kind: EventKey, Code: KeyEnter}, true
	case b == 0x7f || b == 0x08:
		return TerminalEvent{Kind: EventKey, Code: KeyBackspace}, true
	case b == '\t':
		return TerminalEvent{Kind: EventKey, Code: KeyTab}, true
	case b < 0x20:
		// Control character: Ctrl+<letter> maps to b + 'a' - 1 for a..z.
		if b >= 1 && b <= 26 {
			return TerminalEvent{Kind: EventKey, Rune: rune('a' + b - 1), Mods: ModCtrl}, true
		}
		return TerminalEvent{Kind: EventKey, Rune: rune(b), Mods: ModCtrl}, true
	default:
		r.UnreadByte()
		ru, _, err := r.ReadRune()
		if err != nil {
			return TerminalEvent{}, false
		}
		return TerminalEvent{Kind: EventKey, Rune: ru}, true
	}
}

// decodeEscape decodes the byte(s) following an initial ESC: either a
// bare Esc key (no further bytes pending), an Alt-modified printable
// (ESC followed directly by a rune), or a CSI sequence naming an arrow,
// Home/End, Delete, or BackTab key.
func decodeEscape(r *bufio.Reader) (TerminalEvent, bool) {
	if r.Buffered() == 0 {
		return TerminalEvent{Kind: EventKey, Code: KeyEsc}, true
	}
	b1, err := r.ReadByte()
	if err != nil {
		return TerminalEvent{Kind: EventKey, Code: KeyEsc}, true
	}
	if b1 != '[' && b1 != 'O' {
		// Alt+<rune>
		r.UnreadByte()
		ru, _, err := r.ReadRune()
		if err != nil {
			return TerminalEvent{Kind: EventKey, Code: KeyEsc}, true
		}
		return TerminalEvent{Kind: EventKey, Rune: ru, Mods: ModAlt}, true
	}

	var seq []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return TerminalEvent{}, false
		}
		seq = append(seq, b)
		if b >= '@' && b <= '~' {
			break
		}
	}

	switch string(seq) {
	case "A":
		return TerminalEvent{Kind: EventKey, Code: KeyUp}, true
	case "B":
		return TerminalEvent{Kind: EventKey, Code: KeyDown}, true
	case "C":
		return TerminalEvent{Kind: EventKey, Code: KeyRight}, true
	case "D":
		return TerminalEvent{Kind: EventKey, Code: KeyLeft}, true
	case "H":
		return TerminalEvent{Kind: EventKey, Code: KeyHome}, true
	case "F":
		return TerminalEvent{Kind: EventKey, Code: KeyEnd}, true
	case "Z":
		return TerminalEvent{Kind: EventKey, Code: KeyBackTab}, true
	case "3~":
		return TerminalEvent{Kind: EventKey, Code: KeyDelete}, true
	}
	return TerminalEvent{Kind: EventKey, Code: KeyEsc}, true
}

// Poll implements Terminal.
func (t *StdTerminal) Poll(deadline time.Time) (TerminalEvent, bool) {
	if deadline.IsZero() {
		select {
		case ev := <-t.events:
			return ev, true
		case <-t.closed:
			return TerminalEvent{}, false
		}
	}
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case ev := <-t.events:
		return ev, true
	case <-timer.C:
		return TerminalEvent{Kind: EventTick}, true
	case <-t.closed:
		return TerminalEvent{}, false
	}
}

// Size implements Terminal.
func (t *StdTerminal) Size() (int, int) { return t.width, t.height }

// Write implements Terminal: it emits frame using the minimal diff-free
// strategy of moving the cursor home, clearing each row, and writing
// styled cells — the teacher's screen.go does incremental diffing against
// a front buffer; this module writes the composed frame directly since
// the render pipeline already recomputes it once per dirty cycle.
func (t *StdTerminal) Write(frame *Frame) error {
	var buf writeBuffer
	buf.WriteString("\x1b[H")
	last := DefaultStyle()
	for y := 0; y < frame.Height(); y++ {
		buf.WriteString("\x1b[2K")
		for x := 0; x < frame.Width(); x++ {
			cell := frame.Get(x, y)
			if !cell.Style.Equal(last) {
				buf.WriteString(cell.Style.ANSI())
				last = cell.Style
			}
			buf.WriteRune(cell.Rune)
		}
		if y < frame.Height()-1 {
			buf.WriteString("\r\n")
		}
	}
	if frame.HasCursor {
		buf.WriteString(cursorTo(frame.CursorCol, frame.CursorRow))
		buf.WriteString("\x1b[?25h")
	} else {
		buf.WriteString("\x1b[?25l")
	}
	_, err := t.out.Write(buf.Bytes())
	return err
}

func cursorTo(col, row int) string {
	return "\x1b[" + decimal(row+1) + ";" + decimal(col+1) + "H"
}

// writeBuffer is a tiny byte-accumulating writer avoiding an import of
// bytes.Buffer solely for Write/WriteString/WriteRune convenience —
// kept here rather than pulling in bytes for three call sites.
type writeBuffer struct {
	b []byte
}

func (w *writeBuffer) WriteString(s string) { w.b = append(w.b, s...) }
func (w *writeBuffer) WriteRune(r rune) {
	var tmp [4]byte
	n := encodeRune(tmp[:], r)
	w.b = append(w.b, tmp[:n]...)
}
func (w *writeBuffer) Bytes() []byte { return w.b }

func encodeRune(dst []byte, r rune) int {
	if r == 0 {
		r = ' '
	}
	return copy(dst, []byte(string(r)))
}

// TerminalErrorf constructs a TerminalError, the only fatal error kind in
// this module's taxonomy (§7): failure to enter/exit raw mode, write, or
// poll.
func TerminalErrorf(format string, args ...any) error {
	return &TerminalError{msg: fmt.Sprintf(format, args...)}
}

// TerminalError is fatal: the runtime unwinds to the process boundary
// after best-effort cleanup (§7).
type TerminalError struct{ msg string }

func (e *TerminalError) Error() string { return e.msg }

// FakeTerminal is an in-memory Terminal double for scenario tests: events
// are fed via Feed, writes accumulate in Frames, and Poll returns fed
// events in order, or a synthetic Tick at once whenever the queue is
// empty (the deadline is not consulted).
type FakeTerminal struct {
	queue  []TerminalEvent
	Frames []*Frame
	width, height int
	closed bool
}

// NewFakeTerminal creates a fake terminal of the given size.
func NewFakeTerminal(width, height int) *FakeTerminal {
	return &FakeTerminal{width: width, height: height}
}

// Feed appends events to be returned by subsequent Poll calls, in order.
func (f *FakeTerminal) Feed(events ...TerminalEvent) { f.queue = append(f.queue, events...) }

func (f *FakeTerminal) Poll(deadline time.Time) (TerminalEvent, bool) {
	if f.closed {
		return TerminalEvent{}, false
	}
	if len(f.queue) == 0 {
		return TerminalEvent{Kind: EventTick}, true
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	return ev, true
}

func (f *FakeTerminal) Size() (int, int)          { return f.width, f.height }
func (f *FakeTerminal) Write(frame *Frame) error  { f.Frames = append(f.Frames, frame); return nil }
func (f *FakeTerminal) EnterRawMode() error       { return nil }
func (f *FakeTerminal) ExitRawMode() error        { return nil }
func (f *FakeTerminal) Close() error              { f.closed = true; return nil }

var _ io.Closer = (*StdTerminal)(nil)
