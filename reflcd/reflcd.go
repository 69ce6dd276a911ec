// Package reflcd shows text through the d2r2/go-hd44780 driver. It does not
// use the transport in package lcd, so a display that works here but not
// there points at the transport rather than the wiring.
package reflcd

import (
	log "github.com/antigloss/go/logger"
	device "github.com/d2r2/go-hd44780"
	"github.com/d2r2/go-logger"

	"github.com/aluedtke7/i2clcd/display"
	"github.com/aluedtke7/i2clcd/i2cbus"
	"github.com/aluedtke7/i2clcd/lcd"
)

type refDisplay struct {
	bus   *i2cbus.Numbered
	dev   *device.Lcd
	lines []device.ShowOptions
	cols  int
}

func (r *refDisplay) PrintLine(line int, text string) error {
	if line < 0 || line >= len(r.lines) {
		return lcd.ErrPosition
	}
	if len(text) == 0 {
		text = " " // the library cannot handle empty strings
	}
	return r.dev.ShowMessage(text, r.lines[line])
}

func (r *refDisplay) Clear() error {
	return r.dev.Clear()
}

func (r *refDisplay) Close() error {
	return r.bus.Close()
}

func (r *refDisplay) GetCharsPerLine() int {
	return r.cols
}

// New initializes the HD44780 behind bus. fourLines selects the 20x4
// geometry, otherwise 16x2 is used. Progress and failures go to lg when it
// is not nil.
func New(bus *i2cbus.Numbered, fourLines bool, lg *log.Logger) (display.Display, error) {
	if lg != nil {
		lg.Trace("reference LCD initializing...")
	}
	_ = logger.ChangePackageLogLevel("hd44780", logger.WarnLevel)

	r := &refDisplay{bus: bus, cols: 16}
	lcdType := device.LCD_16x2
	r.lines = []device.ShowOptions{
		device.SHOW_LINE_1 | device.SHOW_BLANK_PADDING,
		device.SHOW_LINE_2 | device.SHOW_BLANK_PADDING,
	}
	if fourLines {
		lcdType = device.LCD_20x4
		r.cols = 20
		r.lines = append(r.lines,
			device.SHOW_LINE_3|device.SHOW_BLANK_PADDING,
			device.SHOW_LINE_4|device.SHOW_BLANK_PADDING)
	}

	var err error
	r.dev, err = device.NewLcd(bus.Raw(), lcdType)
	if err == nil {
		err = r.dev.BacklightOn()
	}
	if err != nil {
		if lg != nil {
			lg.Error(err.Error())
		}
		return nil, err
	}
	return r, nil
}
