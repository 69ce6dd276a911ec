package i2cbus

import (
	"fmt"
	"io"
)

// Tracer copies every transaction on a bus to a writer, one line each.
type Tracer struct {
	bus Bus
	w   io.Writer
	seq int
}

// Trace wraps bus so that each Write is logged to w as
//
//	000001 00 01
//	000002 80 41 short 1/2
//
// Write errors of the trace sink are ignored.
func Trace(bus Bus, w io.Writer) *Tracer {
	return &Tracer{bus: bus, w: w}
}

func (t *Tracer) Write(p []byte) (int, error) {
	n, err := t.bus.Write(p)
	t.seq++
	switch {
	case err != nil:
		_, _ = fmt.Fprintf(t.w, "%06d % x error %v\n", t.seq, p, err)
	case n != len(p):
		_, _ = fmt.Fprintf(t.w, "%06d % x short %d/%d\n", t.seq, p, n, len(p))
	default:
		_, _ = fmt.Fprintf(t.w, "%06d % x\n", t.seq, p)
	}
	return n, err
}

// Close closes the bus and, if it is closable, the trace sink.
func (t *Tracer) Close() error {
	err := t.bus.Close()
	if c, ok := t.w.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
