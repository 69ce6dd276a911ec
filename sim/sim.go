// Package sim is a simulated I2C bus with a character LCD controller behind
// it. It decodes the wire frames of both the 8-bit register interface and
// the 4-bit PCF8574 expander, so programs can run without hardware and
// tests can check what would appear on the glass.
package sim

import (
	"errors"
	"sync"

	log "github.com/antigloss/go/logger"
)

var (
	// ErrFrame is returned for a frame the selected interface cannot decode.
	ErrFrame = errors.New("sim: malformed frame")
	// ErrClosed is returned for writes after Close.
	ErrClosed = errors.New("sim: bus closed")
)

// expander pin map of the common PCF8574 backpack
const (
	pinRS = 0x01
	pinE  = 0x04
	pinBL = 0x08
)

// register select prefixes of the 8-bit interface
const (
	prefixCommand = 0x00
	prefixData    = 0x80
)

// Bus is a simulated bus handle.
type Bus struct {
	mu        sync.Mutex
	width     int
	lines     int
	cols      int
	ctrl      *controller
	frames    [][]byte
	failAfter int
	closed    bool
	logger    *log.Logger

	// 4-bit expander state
	last       byte
	pending    byte
	hasPending bool
}

// New returns a simulated display of lines x cols reached through an
// interface of the given width (8 or 4).
func New(width, lines, cols int) *Bus {
	return &Bus{
		width:     width,
		lines:     lines,
		cols:      cols,
		ctrl:      newController(),
		failAfter: -1,
	}
}

// FailAfter makes the n-th and every later transaction (zero based) come
// up short. A negative n disables it.
func (b *Bus) FailAfter(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAfter = n
}

// SetLogger traces every transaction to l. A nil l turns tracing off.
func (b *Bus) SetLogger(l *log.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = l
}

func (b *Bus) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}
	idx := len(b.frames)
	b.frames = append(b.frames, append([]byte(nil), p...))
	if b.logger != nil {
		b.logger.Tracef("sim: write % x", p)
	}
	if b.failAfter >= 0 && idx >= b.failAfter {
		return 0, nil
	}
	if b.width == 8 {
		return b.write8(p)
	}
	return b.write4(p)
}

// write8 decodes [select, payload] pairs. Several pairs may share one
// transaction.
func (b *Bus) write8(p []byte) (int, error) {
	if len(p) == 0 || len(p)%2 != 0 {
		return 0, ErrFrame
	}
	for i := 0; i < len(p); i += 2 {
		switch p[i] {
		case prefixCommand:
			b.ctrl.instruction(p[i+1])
		case prefixData:
			b.ctrl.data(p[i+1])
		default:
			return i, ErrFrame
		}
	}
	return len(p), nil
}

// write4 tracks the expander output and latches D4-D7 on each falling
// edge of E.
func (b *Bus) write4(p []byte) (int, error) {
	for _, v := range p {
		if b.last&pinE != 0 && v&pinE == 0 {
			b.latch(b.last>>4, b.last&pinRS != 0)
		}
		b.last = v
	}
	return len(p), nil
}

func (b *Bus) latch(nibble byte, rs bool) {
	if b.ctrl.eightBit {
		// D0-D3 are not wired, they read as zero
		b.dispatch(nibble<<4, rs)
		b.hasPending = false
		return
	}
	if !b.hasPending {
		b.pending = nibble
		b.hasPending = true
		return
	}
	b.hasPending = false
	b.dispatch(b.pending<<4|nibble, rs)
}

func (b *Bus) dispatch(v byte, rs bool) {
	if rs {
		b.ctrl.data(v)
	} else {
		b.ctrl.instruction(v)
	}
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Lines returns the visible text of every row. Bytes are returned as the
// controller holds them, including CGRAM codes and ROM katakana.
func (b *Bus) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, b.lines)
	row := make([]byte, b.cols)
	for r := range out {
		for c := range row {
			row[c] = b.ctrl.char(r, c, b.cols)
		}
		out[r] = string(row)
	}
	return out
}

// Frames returns a copy of every transaction written so far.
func (b *Bus) Frames() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.frames))
	for i, f := range b.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// Backlight reports the backlight bit of the last expander output.
func (b *Bus) Backlight() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last&pinBL != 0
}

// DisplayOn reports the display bit of the last display control.
func (b *Bus) DisplayOn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.displayOn
}

// Glyph returns the CGRAM pattern of slot 0-7.
func (b *Bus) Glyph(slot int) [8]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	var g [8]byte
	copy(g[:], b.ctrl.cgram[(slot&7)*8:])
	return g
}

// Cols returns the column count of the simulated display.
func (b *Bus) Cols() int {
	return b.cols
}
