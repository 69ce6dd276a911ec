package i2cbus

import (
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// PeriphDev is a bus handle on top of a periph I²C bus.
type PeriphDev struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

// OpenPeriph uses the periph I²C bus registry to open the bus called name
// ("" picks the first available one) and binds it to addr.
func OpenPeriph(name string, addr uint16) (*PeriphDev, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, &DeviceOpenError{Path: name, Err: err}
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, &DeviceOpenError{Path: name, Err: err}
	}
	if !validAddr(addr) {
		_ = b.Close()
		return nil, &BusBindError{Path: name, Addr: addr, Err: ErrAddress}
	}
	return &PeriphDev{dev: &i2c.Dev{Bus: b, Addr: addr}, closer: b}, nil
}

// FromPeriph binds an already opened periph bus to addr. Close leaves the
// bus itself open.
func FromPeriph(b i2c.Bus, addr uint16) *PeriphDev {
	return &PeriphDev{dev: &i2c.Dev{Bus: b, Addr: addr}}
}

func (p *PeriphDev) Write(b []byte) (int, error) {
	return p.dev.Write(b)
}

func (p *PeriphDev) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func (p *PeriphDev) String() string {
	return fmt.Sprintf("%s@0x%02x", p.dev.Bus, p.dev.Addr)
}
