package watchdog

import (
	"sync/atomic"
	"testing"
	"time"
)

type slowBus struct {
	delay time.Duration
}

func (s *slowBus) Write(p []byte) (int, error) {
	time.Sleep(s.delay)
	return len(p), nil
}

func (s *slowBus) Close() error { return nil }

func TestWatchdog(t *testing.T) {
	var counter int32
	w := New(50*time.Millisecond, func() {
		atomic.AddInt32(&counter, 1)
	})

	w.Arm()
	w.Arm()
	w.Arm()
	w.Arm()

	time.Sleep(80 * time.Millisecond)
	if c := atomic.LoadInt32(&counter); c != 1 {
		t.Error("Watchdog did't fire once", c)
	}
}

func TestDisarm(t *testing.T) {
	var counter int32
	w := New(30*time.Millisecond, func() {
		atomic.AddInt32(&counter, 1)
	})

	w.Arm()
	w.Disarm()
	time.Sleep(50 * time.Millisecond)
	if c := atomic.LoadInt32(&counter); c != 0 {
		t.Error("Disarmed watchdog fired", c)
	}
}

func TestStop(t *testing.T) {
	var counter int32
	w := New(10*time.Millisecond, func() {
		atomic.AddInt32(&counter, 1)
	})

	w.Stop()
	w.Arm()
	time.Sleep(30 * time.Millisecond)
	if c := atomic.LoadInt32(&counter); c != 0 {
		t.Error("Stopped watchdog fired", c)
	}
}

func TestGuard(t *testing.T) {
	var counter int32
	w := New(20*time.Millisecond, func() {
		atomic.AddInt32(&counter, 1)
	})

	fast := Guard(&slowBus{}, w)
	if _, err := fast.Write([]byte{0x01}); err != nil {
		t.Error(err)
	}
	time.Sleep(40 * time.Millisecond)
	if c := atomic.LoadInt32(&counter); c != 0 {
		t.Error("Watchdog fired after a fast write", c)
	}

	slow := Guard(&slowBus{delay: 60 * time.Millisecond}, w)
	if _, err := slow.Write([]byte{0x01}); err != nil {
		t.Error(err)
	}
	if c := atomic.LoadInt32(&counter); c != 1 {
		t.Error("Watchdog missed a stalled write", c)
	}
	_ = slow.Close()
}
