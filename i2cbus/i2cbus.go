// Package i2cbus opens I2C character devices bound to a single peripheral
// address and hands them out as a minimal write-only bus handle.
package i2cbus

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

const (
	// I2C_SLAVE ioctl request from linux/i2c-dev.h
	i2cSlave = 0x0703

	// 7-bit addresses outside this range are reserved on the I2C bus
	minAddr = 0x03
	maxAddr = 0x77
)

// ErrAddress is wrapped by BusBindError when the address is outside the
// usable 7-bit range.
var ErrAddress = errors.New("address out of 7-bit range")

// Bus is an opened bus handle bound to one peripheral address.
type Bus interface {
	Write(p []byte) (int, error)
	Close() error
}

// DeviceOpenError reports that the bus device could not be opened.
type DeviceOpenError struct {
	Path string
	Err  error
}

func (e *DeviceOpenError) Error() string {
	return fmt.Sprintf("i2cbus: failed to open i2c port %s: %v", e.Path, e.Err)
}

func (e *DeviceOpenError) Unwrap() error { return e.Err }

// BusBindError reports that the peripheral address could not be claimed.
type BusBindError struct {
	Path string
	Addr uint16
	Err  error
}

func (e *BusBindError) Error() string {
	return fmt.Sprintf("i2cbus: unable to get bus access to talk to 0x%02x on %s: %v", e.Addr, e.Path, e.Err)
}

func (e *BusBindError) Unwrap() error { return e.Err }

// Dev is a Linux i2c-dev character device with I2C_SLAVE set.
type Dev struct {
	f    *os.File
	path string
	addr uint16
}

// Open opens the i2c-dev device at path and binds it to addr.
func Open(path string, addr uint16) (*Dev, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, &DeviceOpenError{Path: path, Err: err}
	}
	if !validAddr(addr) {
		_ = f.Close()
		return nil, &BusBindError{Path: path, Addr: addr, Err: ErrAddress}
	}
	if err := ioctl(f.Fd(), i2cSlave, uintptr(addr)); err != nil {
		_ = f.Close()
		return nil, &BusBindError{Path: path, Addr: addr, Err: err}
	}
	return &Dev{f: f, path: path, addr: addr}, nil
}

// Write sends p as a single bus transaction.
func (d *Dev) Write(p []byte) (int, error) {
	return d.f.Write(p)
}

func (d *Dev) Close() error {
	return d.f.Close()
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s@0x%02x", d.path, d.addr)
}

func validAddr(addr uint16) bool {
	return addr >= minAddr && addr <= maxAddr
}

func ioctl(fd, cmd, arg uintptr) error {
	_, _, errno := syscall.Syscall6(syscall.SYS_IOCTL, fd, cmd, arg, 0, 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
