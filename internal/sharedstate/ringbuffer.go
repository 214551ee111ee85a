package sharedstate

import (
	"errors"
	"time"
)

// ErrTimeout is returned by RingBuffer.Push/Pop when the semaphore wait
// exceeds the caller's deadline — spec.md §4.5 ("wait on empty with a
// 1-second timeout") and §4.6 ("full is not signaled within 5 seconds").
var ErrTimeout = errors.New("sharedstate: ring buffer wait timed out")

// RingBuffer is the bounded NMEA character buffer of spec.md §3/§4.1: a
// fixed-capacity circular buffer guarded by a mutex plus empty/full
// counting semaphores, exactly the classic bounded-buffer discipline.
// GPS Producer is the sole writer; Telemetry is the sole reader.
type RingBuffer struct {
	buf        []byte
	writeIdx   int
	readIdx    int
	mutex      *semaphore
	empty      *semaphore
	full       *semaphore
	capacity   int
}

// NewRingBuffer allocates a buffer of the given capacity (spec.md default
// N=1280) with empty initialized to N and full initialized to 0.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		buf:      make([]byte, capacity),
		mutex:    newSemaphore(1),
		empty:    newSemaphore(capacity),
		full:     newSemaphore(0),
		capacity: capacity,
	}
}

// Push writes one character, waiting on empty with the given timeout. A
// timeout returns ErrTimeout without advancing write_idx, letting the
// producer abandon the current sample as spec.md §4.5 requires.
func (r *RingBuffer) Push(b byte, timeout time.Duration) error {
	if !r.empty.waitTimeout(timeout) {
		return ErrTimeout
	}
	r.mutex.wait()
	r.buf[r.writeIdx] = b
	r.writeIdx = (r.writeIdx + 1) % r.capacity
	r.mutex.post()
	r.full.post()
	return nil
}

// Pop reads one character, waiting on full with the given timeout.
// Telemetry uses this to drain the buffer until newline or until full
// isn't signaled within 5 seconds (§4.6 "NO FIX.").
func (r *RingBuffer) Pop(timeout time.Duration) (byte, error) {
	if !r.full.waitTimeout(timeout) {
		return 0, ErrTimeout
	}
	r.mutex.wait()
	b := r.buf[r.readIdx]
	r.readIdx = (r.readIdx + 1) % r.capacity
	r.mutex.post()
	r.empty.post()
	return b, nil
}

// Capacity returns N, the ring buffer's fixed size.
func (r *RingBuffer) Capacity() int { return r.capacity }

// waitTimeout blocks until a token is available or the timeout elapses,
// returning false on timeout. A zero or negative timeout blocks forever.
func (s *semaphore) waitTimeout(timeout time.Duration) bool {
	if timeout <= 0 {
		s.wait()
		return true
	}
	select {
	case <-s.slots:
		return true
	case <-time.After(timeout):
		return false
	}
}
