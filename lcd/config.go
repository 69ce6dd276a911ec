package lcd

import (
	"errors"
	"time"
)

// Width selects how bytes travel to the display controller.
type Width int

const (
	// Bus8 sends each byte in one transaction behind a register select
	// prefix (ACM1602N1 style modules).
	Bus8 Width = 8
	// Bus4 sends each byte as two nibbles through a PCF8574 expander and
	// latches them with an enable pulse.
	Bus4 Width = 4
)

func (w Width) String() string {
	switch w {
	case Bus8:
		return "8-bit"
	case Bus4:
		return "4-bit"
	}
	return "unknown"
}

// Config holds the device constants of one display. It is copied into the
// Transport on construction and never changed afterwards.
type Config struct {
	Width Width
	// Addr is the 7-bit peripheral address, used by callers to open the bus.
	Addr  uint16
	Lines int
	Cols  int

	// 8-bit register select prefixes
	CommandPrefix byte
	DataPrefix    byte

	// 4-bit expander bits. None of them may overlap the nibble in bits 4-7.
	DataMode  byte
	Enable    byte
	Backlight byte

	PulseWidth    time.Duration // enable high
	DeselectWidth time.Duration // enable low
	ClearSettle   time.Duration // clear display and return home

	// WakeUp is sent before the power-on sequence in 4-bit mode to switch
	// the controller from its 8-bit power-up state to nibble mode.
	WakeUp         []byte
	FunctionSet    byte
	DisplayControl byte
	EntryMode      byte
}

// ACM1602N1 returns the configuration of the 16x2 ACM1602N1 module at 0x50.
func ACM1602N1() Config {
	return Config{
		Width:          Bus8,
		Addr:           0x50,
		Lines:          2,
		Cols:           16,
		CommandPrefix:  0x00,
		DataPrefix:     0x80,
		ClearSettle:    5 * time.Millisecond,
		FunctionSet:    FunctionSet(true, true, false),
		DisplayControl: DisplayOnOff(true, false, false),
		EntryMode:      EntryMode(true, false),
	}
}

// PCF8574 returns the configuration of a 16x2 HD44780 behind a PCF8574
// backpack at 0x27 (RS=P0 RW=P1 E=P2 BL=P3 D4..D7=P4..P7).
func PCF8574() Config {
	return Config{
		Width:          Bus4,
		Addr:           0x27,
		Lines:          2,
		Cols:           16,
		DataMode:       0x01,
		Enable:         0x04,
		Backlight:      0x08,
		PulseWidth:     500 * time.Microsecond,
		DeselectWidth:  500 * time.Microsecond,
		ClearSettle:    2 * time.Millisecond,
		WakeUp:         []byte{0x33, 0x32},
		FunctionSet:    FunctionSet(false, true, false),
		DisplayControl: DisplayOnOff(true, false, false),
		EntryMode:      EntryMode(true, false),
	}
}

func (c Config) validate() error {
	if c.Width != Bus8 && c.Width != Bus4 {
		return errors.New("lcd: width must be 4 or 8")
	}
	if c.Lines < 1 || c.Lines > 4 {
		return errors.New("lcd: lines must be between 1 and 4")
	}
	if c.Cols < 1 || c.Cols > 40 || (c.Lines > 2 && c.Cols > 20) {
		return errors.New("lcd: column count does not fit the DDRAM")
	}
	if c.PulseWidth < 0 || c.DeselectWidth < 0 || c.ClearSettle < 0 {
		return errors.New("lcd: negative delay")
	}
	if c.Width == Bus4 {
		if c.Enable == 0 {
			return errors.New("lcd: 4-bit mode needs an enable bit")
		}
		if (c.Enable|c.DataMode|c.Backlight)&0xF0 != 0 {
			return errors.New("lcd: control bits overlap the data nibble")
		}
		if c.Enable&(c.DataMode|c.Backlight) != 0 {
			return errors.New("lcd: enable bit overlaps mode or backlight bit")
		}
	}
	return nil
}
