// Package preview draws the contents of a character display into a 1-bit
// image, for PNG snapshots of simulated runs or for mirroring on an SSD1306.
package preview

import (
	"image"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/devices/ssd1306"
	"periph.io/x/periph/devices/ssd1306/image1bit"
	"periph.io/x/periph/host"
)

const (
	charWidth  = 7
	lineHeight = 16
	// baseline offset inside a line for Face7x13
	baseline = 12
)

// printable maps a DDRAM byte to something basicfont can draw. The font
// covers ASCII only, CGRAM codes and ROM katakana become '?'.
func printable(b byte) byte {
	if b < 0x20 || b > 0x7E {
		return '?'
	}
	return b
}

// Render draws lines onto a new image, one text row per 16 pixels.
func Render(lines []string, cols int) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, cols*charWidth, len(lines)*lineHeight))
	for i, line := range lines {
		b := make([]byte, len(line))
		for j := 0; j < len(line); j++ {
			b[j] = printable(line[j])
		}
		drawer := font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{image1bit.On},
			Face: basicfont.Face7x13,
			Dot:  fixed.P(0, i*lineHeight+baseline),
		}
		drawer.DrawString(string(b))
	}
	return img
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Mirror shows img on an SSD1306 OLED on the I²C bus called busName.
func Mirror(busName string, img image.Image) error {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return err
	}
	//noinspection GoUnhandledErrorResult
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return err
	}
	return dev.Draw(dev.Bounds(), img, image.Point{})
}
