// Package lcd drives HD44780 compatible character displays over I2C, either
// through an 8-bit register interface or a 4-bit PCF8574 expander.
package lcd

import (
	"errors"
	"fmt"
	"time"

	log "github.com/antigloss/go/logger"
	"github.com/jonboulle/clockwork"

	"github.com/aluedtke7/i2clcd/display"
)

var (
	// ErrShortWrite is wrapped by WriteError when the bus took fewer bytes
	// than offered without reporting an error.
	ErrShortWrite = errors.New("short write")
	// ErrNotSupported is returned for operations that need the expander
	// lines of the 4-bit interface.
	ErrNotSupported = errors.New("lcd: not supported in 8-bit register mode")
	// ErrPosition is returned for cursor positions outside the display.
	ErrPosition = errors.New("lcd: position out of range")
	// ErrSlot is returned for CGRAM slots above 7.
	ErrSlot = errors.New("lcd: character slot out of range")
)

// Bus is the write primitive of an opened I2C device.
type Bus interface {
	Write(p []byte) (int, error)
	Close() error
}

// Sleeper blocks for the handshake and settle delays. clockwork.Clock
// satisfies it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// WriteError reports a command or data byte the bus did not fully take.
type WriteError struct {
	Byte  byte
	Data  bool
	Frame []byte
	N     int
	Err   error
}

func (e *WriteError) Error() string {
	kind := "command"
	if e.Data {
		kind = "data"
	}
	return fmt.Sprintf("lcd: %s write error: 0x%02x (frame [% x], wrote %d): %v", kind, e.Byte, e.Frame, e.N, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Option customizes a Transport.
type Option func(*Transport)

// WithSleeper replaces the real-time clock used for delays.
func WithSleeper(s Sleeper) Option {
	return func(t *Transport) {
		t.clock = s
	}
}

// WithLogger traces the transport to l. Without it nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(t *Transport) {
		t.logger = l
	}
}

// Transport frames commands and characters for one display and owns its bus.
type Transport struct {
	bus       Bus
	cfg       Config
	clock     Sleeper
	logger    *log.Logger
	backlight byte
}

// New checks cfg and returns a Transport writing to bus. Nothing is sent
// until Initialize or one of the write methods is called.
func New(bus Bus, cfg Config, opts ...Option) (*Transport, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.WakeUp = append([]byte(nil), cfg.WakeUp...)
	t := &Transport{
		bus:       bus,
		cfg:       cfg,
		clock:     clockwork.NewRealClock(),
		backlight: cfg.Backlight,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Config returns a copy of the device constants.
func (t *Transport) Config() Config {
	c := t.cfg
	c.WakeUp = append([]byte(nil), c.WakeUp...)
	return c
}

func (t *Transport) write(frame []byte, b byte, data bool) error {
	n, err := t.bus.Write(frame)
	if err == nil && n != len(frame) {
		err = ErrShortWrite
	}
	if err != nil {
		return &WriteError{Byte: b, Data: data, Frame: append([]byte(nil), frame...), N: n, Err: err}
	}
	return nil
}

func (t *Transport) send(b byte, data bool) error {
	if t.cfg.Width == Bus8 {
		prefix := t.cfg.CommandPrefix
		if data {
			prefix = t.cfg.DataPrefix
		}
		return t.write([]byte{prefix, b}, b, data)
	}

	var mode byte
	if data {
		mode = t.cfg.DataMode
	}
	high, low := Nibbles(b)
	for _, nibble := range [2]byte{high, low} {
		latched := mode | nibble | t.backlight
		if err := t.write([]byte{latched}, b, data); err != nil {
			return err
		}
		if err := t.toggle(latched, b, data); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transport) toggle(latched, b byte, data bool) error {
	if err := t.write([]byte{latched | t.cfg.Enable}, b, data); err != nil {
		return err
	}
	t.clock.Sleep(t.cfg.PulseWidth)
	if err := t.write([]byte{latched &^ t.cfg.Enable}, b, data); err != nil {
		return err
	}
	t.clock.Sleep(t.cfg.DeselectWidth)
	return nil
}

// WriteCommand sends one instruction byte.
func (t *Transport) WriteCommand(b byte) error {
	return t.send(b, false)
}

// WriteData sends character bytes in order. It stops at the first byte the
// bus does not take.
func (t *Transport) WriteData(p []byte) error {
	for _, b := range p {
		if err := t.send(b, true); err != nil {
			return err
		}
	}
	return nil
}

// ToggleEnable pulses the enable line while latched stays on the expander.
// The 8-bit register interface latches internally and has no enable line.
func (t *Transport) ToggleEnable(latched byte) error {
	if t.cfg.Width != Bus4 {
		return ErrNotSupported
	}
	return t.toggle(latched, latched, latched&t.cfg.DataMode != 0)
}

// Initialize runs the power-on sequence: wake-up (4-bit only), clear display,
// function set, display control and entry mode. The first failure aborts the
// sequence.
func (t *Transport) Initialize() error {
	if t.logger != nil {
		t.logger.Tracef("LCD initializing (%s, 0x%02x)...", t.cfg.Width, t.cfg.Addr)
	}
	if t.cfg.Width == Bus4 {
		for _, b := range t.cfg.WakeUp {
			if err := t.WriteCommand(b); err != nil {
				return err
			}
		}
	}
	if err := t.Clear(); err != nil {
		return err
	}
	for _, b := range []byte{t.cfg.FunctionSet, t.cfg.DisplayControl, t.cfg.EntryMode} {
		if err := t.WriteCommand(b); err != nil {
			return err
		}
	}
	return nil
}

// Clear blanks the display and waits for the controller to finish.
func (t *Transport) Clear() error {
	if err := t.WriteCommand(ClearDisplay); err != nil {
		return err
	}
	// clear display takes some millisecs
	t.clock.Sleep(t.cfg.ClearSettle)
	return nil
}

// Home moves the cursor to the first position and undoes display shifts.
func (t *Transport) Home() error {
	if err := t.WriteCommand(ReturnHome); err != nil {
		return err
	}
	t.clock.Sleep(t.cfg.ClearSettle)
	return nil
}

// lineAddr returns the DDRAM address of the first column of line.
func (t *Transport) lineAddr(line int) byte {
	offsets := [4]int{0x00, 0x40, t.cfg.Cols, 0x40 + t.cfg.Cols}
	return byte(offsets[line])
}

// SetCursor moves the DDRAM address counter to line/col (both zero based).
func (t *Transport) SetCursor(line, col int) error {
	if line < 0 || line >= t.cfg.Lines || col < 0 || col >= t.cfg.Cols {
		return ErrPosition
	}
	return t.WriteCommand(SetDDRAMAddr(t.lineAddr(line) + byte(col)))
}

// Shift moves the cursor, or the whole display, one position.
func (t *Transport) Shift(display, right bool) error {
	return t.WriteCommand(CursorDisplayShift(display, right))
}

// CreateChar uploads a 5x8 glyph into CGRAM slot 0-7. The address counter
// is left in CGRAM, so the next data write must follow a SetCursor.
func (t *Transport) CreateChar(slot byte, glyph [8]byte) error {
	if slot > 7 {
		return ErrSlot
	}
	if err := t.WriteCommand(SetCGRAMAddr(slot << 3)); err != nil {
		return err
	}
	return t.WriteData(glyph[:])
}

// SetBacklight switches the backlight bit on the expander. It takes effect
// immediately and on every following nibble.
func (t *Transport) SetBacklight(on bool) error {
	if t.cfg.Width != Bus4 {
		return ErrNotSupported
	}
	if on {
		t.backlight = t.cfg.Backlight
	} else {
		t.backlight = 0
	}
	return t.write([]byte{t.backlight}, t.backlight, false)
}

// PrintLine writes text from the first column of line. Bytes are sent as
// they are; nothing is padded or wrapped.
func (t *Transport) PrintLine(line int, text string) error {
	if err := t.SetCursor(line, 0); err != nil {
		return err
	}
	return t.WriteData([]byte(text))
}

func (t *Transport) GetCharsPerLine() int {
	return t.cfg.Cols
}

func (t *Transport) Close() error {
	return t.bus.Close()
}

var _ display.Display = &Transport{}
