package lcd

// instructions
const (
	ClearDisplay byte = 0x01
	ReturnHome   byte = 0x02

	entryModeSet   byte = 0x04
	displayControl byte = 0x08
	cursorShift    byte = 0x10
	functionSet    byte = 0x20
	setCGRAMAddr   byte = 0x40
	setDDRAMAddr   byte = 0x80
)

// EntryMode builds the entry mode set instruction. increment moves the
// cursor right after each data write, shift scrolls the display instead.
func EntryMode(increment, shift bool) byte {
	b := entryModeSet
	if increment {
		b |= 0x02
	}
	if shift {
		b |= 0x01
	}
	return b
}

// DisplayOnOff builds the display on/off control instruction.
func DisplayOnOff(display, cursor, blink bool) byte {
	b := displayControl
	if display {
		b |= 0x04
	}
	if cursor {
		b |= 0x02
	}
	if blink {
		b |= 0x01
	}
	return b
}

// CursorDisplayShift moves the cursor, or the whole display when display is
// set, one position without touching DDRAM.
func CursorDisplayShift(display, right bool) byte {
	b := cursorShift
	if display {
		b |= 0x08
	}
	if right {
		b |= 0x04
	}
	return b
}

// FunctionSet builds the function set instruction: interface width, line
// count and font.
func FunctionSet(eightBit, twoLines, font5x11 bool) byte {
	b := functionSet
	if eightBit {
		b |= 0x10
	}
	if twoLines {
		b |= 0x08
	}
	if font5x11 {
		b |= 0x04
	}
	return b
}

func SetCGRAMAddr(adr byte) byte {
	return setCGRAMAddr | adr&0x3F
}

func SetDDRAMAddr(adr byte) byte {
	return setDDRAMAddr | adr&0x7F
}

// Nibbles splits b into the two values put on D4-D7, high nibble first.
// Both are already shifted into bits 4-7.
func Nibbles(b byte) (high, low byte) {
	return b & 0xF0, (b << 4) & 0xF0
}
