package sim

const (
	ddramSize = 0x80
	cgramSize = 0x40
	// characters per DDRAM line in two-line mode
	lineLen = 40
)

// controller models the parts of an HD44780 that are visible on the glass:
// DDRAM, CGRAM, the address counter, entry mode, display shift and the
// display control bits.
type controller struct {
	ddram [ddramSize]byte
	cgram [cgramSize]byte
	ac    byte
	cg    bool

	increment bool
	shiftOn   bool
	shift     int

	displayOn bool
	cursor    bool
	blink     bool

	eightBit bool
	twoLines bool
}

// newController returns a controller in the state the datasheet gives after
// internal reset: 8-bit interface, one line, display off, increment.
func newController() *controller {
	c := &controller{eightBit: true, increment: true}
	for i := range c.ddram {
		c.ddram[i] = ' '
	}
	return c
}

func (c *controller) instruction(b byte) {
	switch {
	case b&0x80 != 0:
		c.ac = b & 0x7F
		c.cg = false
	case b&0x40 != 0:
		c.ac = b & 0x3F
		c.cg = true
	case b&0x20 != 0:
		c.eightBit = b&0x10 != 0
		c.twoLines = b&0x08 != 0
	case b&0x10 != 0:
		right := b&0x04 != 0
		if b&0x08 != 0 {
			if right {
				c.shift--
			} else {
				c.shift++
			}
		} else {
			c.move(right)
		}
	case b&0x08 != 0:
		c.displayOn = b&0x04 != 0
		c.cursor = b&0x02 != 0
		c.blink = b&0x01 != 0
	case b&0x04 != 0:
		c.increment = b&0x02 != 0
		c.shiftOn = b&0x01 != 0
	case b&0x02 != 0:
		c.ac = 0
		c.cg = false
		c.shift = 0
	case b&0x01 != 0:
		for i := range c.ddram {
			c.ddram[i] = ' '
		}
		c.ac = 0
		c.cg = false
		c.shift = 0
		c.increment = true
	}
}

func (c *controller) data(b byte) {
	if c.cg {
		c.cgram[c.ac&0x3F] = b
		if c.increment {
			c.ac = (c.ac + 1) & 0x3F
		} else {
			c.ac = (c.ac - 1) & 0x3F
		}
		return
	}
	c.ddram[c.ac&0x7F] = b
	c.move(c.increment)
	if c.shiftOn {
		if c.increment {
			c.shift++
		} else {
			c.shift--
		}
	}
}

// move steps the DDRAM address counter, wrapping the way the controller
// does: 0x27 -> 0x40 and 0x67 -> 0x00 in two-line mode, 0x4F -> 0x00 in
// one-line mode.
func (c *controller) move(forward bool) {
	if !c.twoLines {
		a := int(c.ac)
		if forward {
			a++
		} else {
			a--
		}
		c.ac = byte((a + 0x50) % 0x50)
		return
	}
	line := c.ac & 0x40
	pos := int(c.ac & 0x3F)
	if forward {
		pos++
	} else {
		pos--
	}
	switch {
	case pos >= lineLen:
		pos = 0
		line ^= 0x40
	case pos < 0:
		pos = lineLen - 1
		line ^= 0x40
	}
	c.ac = line | byte(pos)
}

// char returns the byte shown at row/col of a display with cols columns.
func (c *controller) char(row, col, cols int) byte {
	var base byte
	if row%2 == 1 {
		base = 0x40
	}
	offset := col
	if row >= 2 {
		offset += cols
	}
	offset = ((offset+c.shift)%lineLen + lineLen) % lineLen
	return c.ddram[base+byte(offset)]
}
