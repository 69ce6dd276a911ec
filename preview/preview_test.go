package preview

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/assert"
)

func lit(pix []byte) int {
	n := 0
	for _, p := range pix {
		for ; p != 0; p &= p - 1 {
			n++
		}
	}
	return n
}

func TestRenderSize(t *testing.T) {
	img := Render([]string{"good morning!   ", "                "}, 16)
	assert.Equal(t, img.Bounds().Dx(), 112)
	assert.Equal(t, img.Bounds().Dy(), 32)
}

func TestRenderBlankLines(t *testing.T) {
	img := Render([]string{"    ", "    "}, 4)
	assert.Equal(t, lit(img.Pix), 0)
}

func TestRenderText(t *testing.T) {
	img := Render([]string{"AB", "  "}, 2)
	assert.Assert(t, lit(img.Pix) > 0)
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, printable('A'), byte('A'))
	assert.Equal(t, printable(0x01), byte('?'))
	assert.Equal(t, printable(0xb5), byte('?'))
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.png")
	assert.NilError(t, SavePNG(path, Render([]string{"hi"}, 16)))

	f, err := os.Open(path)
	assert.NilError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Width, 112)
	assert.Equal(t, cfg.Height, 16)
}
