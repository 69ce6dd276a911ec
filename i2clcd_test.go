package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"

	"github.com/aluedtke7/i2clcd/lcd"
	"github.com/aluedtke7/i2clcd/sim"
)

var logDir string

func TestMain(m *testing.M) {
	var err error
	logDir, err = os.MkdirTemp("", "i2clcd-test-log")
	if err != nil {
		panic(err)
	}
	code := m.Run()
	_ = os.RemoveAll(logDir)
	os.Exit(code)
}

func runArgs(args ...string) (int, string) {
	var stderr bytes.Buffer
	code := run(append([]string{"-log", logDir}, args...), &stderr)
	return code, stderr.String()
}

func TestMissingBus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i2c-7")
	code, out := runArgs("-bus", path)
	assert.Equal(t, code, 1)
	assert.Assert(t, is.Contains(out, path))
	assert.Assert(t, is.Contains(out, "failed to open i2c port"))
}

func TestBindFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i2c-1")
	assert.NilError(t, os.WriteFile(path, nil, 0600))

	code, out := runArgs("-bus", path, "-mode", "4")
	assert.Equal(t, code, 1)
	assert.Assert(t, is.Contains(out, "0x27"))
}

func TestSimDemo(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "lcd.png")
	trace := filepath.Join(dir, "trace.log")

	code, out := runArgs("-driver", "sim", "-mode", "4", "-pulse", "0", "-deselect", "0", "-settle", "0",
		"-snapshot", png, "-trace", trace)
	assert.Equal(t, code, 0, out)

	_, err := os.Stat(png)
	assert.NilError(t, err)

	data, err := os.ReadFile(trace)
	assert.NilError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// six transactions per byte: wake-up, init, cursor and text of both lines
	sent := 2 + 4 + 1 + len(demoText) + 1 + len(demoBytes)
	assert.Assert(t, is.Len(lines, 6*sent))
	assert.Assert(t, strings.HasPrefix(lines[0], "000001 38"))
}

func TestSimWriteFailure(t *testing.T) {
	code, out := runArgs("-driver", "sim", "-settle", "0", "-simFailAfter", "5")
	assert.Equal(t, code, 1)
	assert.Assert(t, is.Contains(out, "write demo"))
	assert.Assert(t, is.Contains(out, "data write error: 0x67"))
}

func TestSimInitFailure(t *testing.T) {
	code, out := runArgs("-driver", "sim", "-settle", "0", "-simFailAfter", "0")
	assert.Equal(t, code, 1)
	assert.Assert(t, is.Contains(out, "initialize display"))
	assert.Assert(t, is.Contains(out, "command write error: 0x01"))
}

func TestUnwritableLogDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	assert.NilError(t, os.WriteFile(file, nil, 0600))

	code, out := runArgs("-log", filepath.Join(file, "log"), "-driver", "sim")
	assert.Equal(t, code, 1)
	assert.Assert(t, is.Contains(out, "i2clcd: init log in"))
	assert.Equal(t, strings.Count(out, "\n"), 1)
}

func TestVerboseLog(t *testing.T) {
	dir := t.TempDir()
	code, out := runArgs("-log", dir, "-verbose", "-driver", "sim", "-mode", "4",
		"-pulse", "0", "-deselect", "0", "-settle", "0")
	assert.Equal(t, code, 0, out)

	files, err := filepath.Glob(filepath.Join(dir, "*.TRACE.*.log"))
	assert.NilError(t, err)
	assert.Assert(t, is.Len(files, 1))
	data, err := os.ReadFile(files[0])
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), "Bus open: /dev/i2c-1 (sim, 0x27)"))
	assert.Assert(t, is.Contains(string(data), "LCD initializing (4-bit, 0x27)..."))
	assert.Assert(t, !strings.Contains(string(data), "%s"))

	quiet := t.TempDir()
	code, _ = runArgs("-log", quiet, "-driver", "sim", "-settle", "0")
	assert.Equal(t, code, 0)
	files, err = filepath.Glob(filepath.Join(quiet, "*.TRACE.*.log"))
	assert.NilError(t, err)
	assert.Assert(t, is.Len(files, 0))
}

func TestBadFlags(t *testing.T) {
	code, _ := runArgs("-mode", "6")
	assert.Equal(t, code, 1)
	code, _ = runArgs("-addr", "0x80")
	assert.Equal(t, code, 1)
	code, _ = runArgs("-driver", "spi", "-bus", "/dev/i2c-1")
	assert.Equal(t, code, 1)
	code, _ = runArgs("-h")
	assert.Equal(t, code, 0)
}

func TestParseFlagsClamps(t *testing.T) {
	o, err := parseFlags([]string{"-lines", "9", "-cols", "2", "-pulse", "3s", "-addr", "0x3f"}, &bytes.Buffer{})
	assert.NilError(t, err)
	assert.Equal(t, o.lines, 4)
	assert.Equal(t, o.cols, 8)
	assert.Equal(t, o.pulse, time.Second)
	assert.Equal(t, o.deselect, time.Duration(-1))
	assert.Equal(t, o.addr, uint(0x3f))
}

func TestProfile(t *testing.T) {
	o, err := parseFlags([]string{"-mode", "4", "-pulse", "500ms"}, &bytes.Buffer{})
	assert.NilError(t, err)
	cfg := profile(o)
	assert.Equal(t, cfg.Width, lcd.Bus4)
	assert.Equal(t, cfg.Addr, uint16(0x27))
	assert.Equal(t, cfg.PulseWidth, 500*time.Millisecond)
	assert.Equal(t, cfg.DeselectWidth, lcd.PCF8574().DeselectWidth)
	assert.Equal(t, cfg.FunctionSet, byte(0x28))

	o, err = parseFlags([]string{"-lines", "1"}, &bytes.Buffer{})
	assert.NilError(t, err)
	cfg = profile(o)
	assert.Equal(t, cfg.Addr, uint16(0x50))
	assert.Equal(t, cfg.FunctionSet, byte(0x30))
}

func TestBusNumber(t *testing.T) {
	n, err := busNumber("/dev/i2c-1")
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	n, err = busNumber("i2c-12")
	assert.NilError(t, err)
	assert.Equal(t, n, 12)

	_, err = busNumber("/dev/spidev0.0")
	assert.ErrorContains(t, err, "numbered i2c bus")
}

func TestShowDemoOnSim(t *testing.T) {
	bus := sim.New(8, 2, 16)
	tr, err := lcd.New(bus, lcd.ACM1602N1(), lcd.WithSleeper(noSleep{}))
	assert.NilError(t, err)
	assert.NilError(t, tr.Initialize())
	assert.NilError(t, showDemo(tr, 2))

	lines := bus.Lines()
	assert.Equal(t, strings.TrimRight(lines[0], " "), demoText)
	assert.Equal(t, strings.TrimRight(lines[1], " "), string(demoBytes))
}

type noSleep struct{}

func (noSleep) Sleep(time.Duration) {}
