package i2cbus

import (
	"errors"
	"fmt"
	"os"

	"github.com/d2r2/go-i2c"
	"github.com/d2r2/go-logger"
)

// Numbered is a bus opened by number (/dev/i2c-N) through d2r2/go-i2c.
type Numbered struct {
	dev  *i2c.I2C
	path string
	addr uint8
}

// OpenNumbered opens /dev/i2c-<bus> and binds it to addr.
func OpenNumbered(bus int, addr uint8) (*Numbered, error) {
	// go-i2c logs every transfer at debug level
	_ = logger.ChangePackageLogLevel("i2c", logger.WarnLevel)
	path := fmt.Sprintf("/dev/i2c-%d", bus)
	if !validAddr(uint16(addr)) {
		return nil, &BusBindError{Path: path, Addr: uint16(addr), Err: ErrAddress}
	}
	dev, err := i2c.NewI2C(addr, bus)
	if err != nil {
		return nil, classify(path, uint16(addr), err)
	}
	return &Numbered{dev: dev, path: path, addr: addr}, nil
}

// classify sorts an error from a combined open+bind call into one of the
// two error kinds: the open step fails with *os.PathError, the ioctl with a
// bare errno.
func classify(path string, addr uint16, err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return &DeviceOpenError{Path: path, Err: err}
	}
	return &BusBindError{Path: path, Addr: addr, Err: err}
}

func (n *Numbered) Write(p []byte) (int, error) {
	return n.dev.WriteBytes(p)
}

func (n *Numbered) Close() error {
	return n.dev.Close()
}

// Raw returns the underlying go-i2c handle for drivers built on it.
func (n *Numbered) Raw() *i2c.I2C {
	return n.dev
}

func (n *Numbered) String() string {
	return fmt.Sprintf("%s@0x%02x", n.path, n.addr)
}
