package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/antigloss/go/logger"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aluedtke7/i2clcd/display"
	"github.com/aluedtke7/i2clcd/i2cbus"
	"github.com/aluedtke7/i2clcd/lcd"
	"github.com/aluedtke7/i2clcd/preview"
	"github.com/aluedtke7/i2clcd/reflcd"
	"github.com/aluedtke7/i2clcd/sim"
	"github.com/aluedtke7/i2clcd/watchdog"
)

const (
	demoText       = "good morning!"
	traceMaxSizeMB = 1
	traceBackups   = 3
	logMaxSizeMB   = 10
	logMaxFiles    = 30
	logFilesToDel  = 2
)

var (
	// "ohayou gozaimasu" in half-width katakana of the A00 character ROM
	demoBytes = []byte{0xb5, 0xca, 0xd6, 0xb3, 0xba, 0xde, 0xbb, 0xde, 0xb2, 0xcf, 0xbd}
	exit      = os.Exit
)

// command line settings
type options struct {
	busPath      string
	addr         uint
	mode         int
	driver       string
	lines        int
	cols         int
	pulse        time.Duration
	deselect     time.Duration
	settle       time.Duration
	backlight    bool
	tracePath    string
	snapshotPath string
	mirrorBus    string
	watchdog     time.Duration
	logDir       string
	verbose      bool
	simFailAfter int
}

func clampDuration(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("i2clcd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.busPath, "bus", "/dev/i2c-1", "i2c device path (periph driver: bus name or number)")
	fs.UintVar(&o.addr, "addr", 0, "peripheral address, 0 for the default of the mode (0x50 / 0x27)")
	fs.IntVar(&o.mode, "mode", 8, "protocol width: 8 for ACM1602N1, 4 for a PCF8574 backpack")
	fs.StringVar(&o.driver, "driver", "dev", "bus driver: dev, d2r2, periph, sim or reference")
	fs.IntVar(&o.lines, "lines", 2, "display lines (1...4)")
	fs.IntVar(&o.cols, "cols", 16, "display columns (8...40)")
	fs.DurationVar(&o.pulse, "pulse", -1, "enable pulse width (0s...1s), default from mode")
	fs.DurationVar(&o.deselect, "deselect", -1, "enable low time after a pulse (0s...1s), default from mode")
	fs.DurationVar(&o.settle, "settle", -1, "delay after clear display (0s...1s), default from mode")
	fs.BoolVar(&o.backlight, "backlight", true, "backlight on (4-bit mode only)")
	fs.StringVar(&o.tracePath, "trace", "", "write every bus transaction to this rotating file")
	fs.StringVar(&o.snapshotPath, "snapshot", "", "sim driver: save the display contents as PNG")
	fs.StringVar(&o.mirrorBus, "mirror", "", "sim driver: mirror the display contents on an SSD1306 on this bus")
	fs.DurationVar(&o.watchdog, "watchdog", 0, "abort when a single bus write takes longer, 0 disables")
	fs.StringVar(&o.logDir, "log", filepath.Join(os.TempDir(), "i2clcd"), "log directory")
	fs.BoolVar(&o.verbose, "verbose", false, "write trace messages to the log")
	fs.IntVar(&o.simFailAfter, "simFailAfter", -1, "sim driver: transactions from this index on come up short")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.mode != 8 && o.mode != 4 {
		return nil, fmt.Errorf("mode must be 8 or 4, got %d", o.mode)
	}
	if o.addr > 0x7F {
		return nil, fmt.Errorf("address 0x%x is not a 7-bit address", o.addr)
	}
	if o.lines < 1 {
		o.lines = 1
	}
	if o.lines > 4 {
		o.lines = 4
	}
	if o.cols < 8 {
		o.cols = 8
	}
	if o.cols > 40 {
		o.cols = 40
	}
	if o.pulse >= 0 {
		o.pulse = clampDuration(o.pulse, 0, time.Second)
	}
	if o.deselect >= 0 {
		o.deselect = clampDuration(o.deselect, 0, time.Second)
	}
	if o.settle >= 0 {
		o.settle = clampDuration(o.settle, 0, time.Second)
	}
	return o, nil
}

// profile returns the device constants for the selected mode with the
// command line overrides applied.
func profile(o *options) lcd.Config {
	cfg := lcd.ACM1602N1()
	if o.mode == 4 {
		cfg = lcd.PCF8574()
	}
	if o.addr != 0 {
		cfg.Addr = uint16(o.addr)
	}
	cfg.Lines, cfg.Cols = o.lines, o.cols
	cfg.FunctionSet = lcd.FunctionSet(o.mode == 8, o.lines > 1, false)
	if o.pulse >= 0 {
		cfg.PulseWidth = o.pulse
	}
	if o.deselect >= 0 {
		cfg.DeselectWidth = o.deselect
	}
	if o.settle >= 0 {
		cfg.ClearSettle = o.settle
	}
	return cfg
}

// busNumber extracts N from /dev/i2c-N.
func busNumber(path string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "i2c-"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s does not name a numbered i2c bus", path)
	}
	return n, nil
}

func openBus(o *options, cfg lcd.Config, lg *logger.Logger) (i2cbus.Bus, *sim.Bus, error) {
	switch o.driver {
	case "dev":
		d, err := i2cbus.Open(o.busPath, cfg.Addr)
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	case "d2r2":
		n, err := busNumber(o.busPath)
		if err != nil {
			return nil, nil, err
		}
		d, err := i2cbus.OpenNumbered(n, uint8(cfg.Addr))
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	case "periph":
		name := o.busPath
		if n, err := busNumber(name); err == nil {
			name = strconv.Itoa(n)
		}
		d, err := i2cbus.OpenPeriph(name, cfg.Addr)
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	case "sim":
		s := sim.New(int(cfg.Width), cfg.Lines, cfg.Cols)
		s.FailAfter(o.simFailAfter)
		s.SetLogger(lg)
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown driver %q", o.driver)
}

// showDemo writes the fixed demonstration text and byte sequence.
func showDemo(d display.Display, lines int) error {
	if err := d.PrintLine(0, demoText); err != nil {
		return err
	}
	if lines < 2 || d.GetCharsPerLine() < len(demoBytes) {
		return nil
	}
	return d.PrintLine(1, string(demoBytes))
}

func showReference(o *options, cfg lcd.Config, lg *logger.Logger) error {
	n, err := busNumber(o.busPath)
	if err != nil {
		return err
	}
	bus, err := i2cbus.OpenNumbered(n, uint8(cfg.Addr))
	if err != nil {
		return errors.Wrap(err, "open bus")
	}
	d, err := reflcd.New(bus, cfg.Lines > 2, lg)
	if err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "initialize reference display")
	}
	//noinspection GoUnhandledErrorResult
	defer d.Close()
	return errors.Wrap(showDemo(d, cfg.Lines), "write demo")
}

func stalled(lg *logger.Logger, stderr io.Writer, timeout time.Duration) func() {
	return func() {
		lg.Errorf("bus write stalled for more than %s", timeout)
		_, _ = fmt.Fprintf(stderr, "i2clcd: bus write stalled for more than %s\n", timeout)
		exit(1)
	}
}

func show(o *options, lg *logger.Logger, stderr io.Writer) error {
	cfg := profile(o)
	if o.driver == "reference" {
		return showReference(o, cfg, lg)
	}

	bus, simBus, err := openBus(o, cfg, lg)
	if err != nil {
		return errors.Wrap(err, "open bus")
	}
	lg.Tracef("Bus open: %s (%s, 0x%02x)", o.busPath, o.driver, cfg.Addr)
	if o.tracePath != "" {
		bus = i2cbus.Trace(bus, &lumberjack.Logger{
			Filename:   o.tracePath,
			MaxSize:    traceMaxSizeMB,
			MaxBackups: traceBackups,
		})
	}
	if o.watchdog > 0 {
		bus = watchdog.Guard(bus, watchdog.New(o.watchdog, stalled(lg, stderr, o.watchdog)))
	}

	t, err := lcd.New(bus, cfg, lcd.WithSleeper(clockwork.NewRealClock()), lcd.WithLogger(lg))
	if err != nil {
		_ = bus.Close()
		return err
	}
	//noinspection GoUnhandledErrorResult
	defer t.Close()

	if err := t.Initialize(); err != nil {
		return errors.Wrap(err, "initialize display")
	}
	if cfg.Width == lcd.Bus4 && !o.backlight {
		if err := t.SetBacklight(false); err != nil {
			return errors.Wrap(err, "switch backlight off")
		}
	}
	if err := showDemo(t, cfg.Lines); err != nil {
		return errors.Wrap(err, "write demo")
	}

	if simBus != nil {
		return snapshot(o, simBus, lg)
	}
	return nil
}

func snapshot(o *options, s *sim.Bus, lg *logger.Logger) error {
	lines := s.Lines()
	for i, l := range lines {
		lg.Tracef("sim line %d: %q", i, l)
	}
	if o.snapshotPath == "" && o.mirrorBus == "" {
		return nil
	}
	img := preview.Render(lines, s.Cols())
	if o.snapshotPath != "" {
		if err := preview.SavePNG(o.snapshotPath, img); err != nil {
			return errors.Wrap(err, "save snapshot")
		}
	}
	if o.mirrorBus != "" {
		if err := preview.Mirror(o.mirrorBus, img); err != nil {
			return errors.Wrap(err, "mirror on OLED")
		}
	}
	return nil
}

func run(args []string, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "i2clcd: %v\n", err)
		return 1
	}

	lg, err := newLogger(o)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "i2clcd: %v\n", errors.Wrapf(err, "init log in %s", o.logDir))
		return 1
	}
	//noinspection GoUnhandledErrorResult
	defer lg.Close()
	lg.Trace("Starting i2clcd...")

	if err := show(o, lg, stderr); err != nil {
		lg.Errorf("%v", err)
		_, _ = fmt.Fprintf(stderr, "i2clcd: %v\n", err)
		return 1
	}
	lg.Trace("Done")
	return 0
}

// newLogger creates the log of one run. Trace messages are only written
// with -verbose.
func newLogger(o *options) (*logger.Logger, error) {
	level := logger.LogLevelInfo
	if o.verbose {
		level = logger.LogLevelTrace
	}
	return logger.New(&logger.Config{
		LogDir:          o.logDir,
		LogFileMaxSize:  logMaxSizeMB,
		LogFileMaxNum:   logMaxFiles,
		LogFileNumToDel: logFilesToDel,
		LogLevel:        level,
		LogDest:         logger.LogDestFile,
	})
}

func main() {
	exit(run(os.Args[1:], os.Stderr))
}
