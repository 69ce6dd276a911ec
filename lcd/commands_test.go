package lcd

import (
	"testing"

	"gotest.tools/assert"
)

func TestInstructionBuilders(t *testing.T) {
	assert.Equal(t, EntryMode(true, false), byte(0x06))
	assert.Equal(t, EntryMode(false, true), byte(0x05))
	assert.Equal(t, DisplayOnOff(true, false, false), byte(0x0C))
	assert.Equal(t, DisplayOnOff(true, true, true), byte(0x0F))
	assert.Equal(t, DisplayOnOff(false, false, false), byte(0x08))
	assert.Equal(t, CursorDisplayShift(true, true), byte(0x1C))
	assert.Equal(t, CursorDisplayShift(false, false), byte(0x10))
	assert.Equal(t, FunctionSet(true, true, false), byte(0x38))
	assert.Equal(t, FunctionSet(false, true, false), byte(0x28))
	assert.Equal(t, FunctionSet(false, false, true), byte(0x24))
	assert.Equal(t, SetCGRAMAddr(0x08), byte(0x48))
	assert.Equal(t, SetDDRAMAddr(0x40), byte(0xC0))
	assert.Equal(t, SetDDRAMAddr(0xFF), byte(0xFF))
}
