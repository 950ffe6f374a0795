// SPDX-License-Identifier: EPL-2.0

package audio

import "sync"

// HighWaterMark is the queued-sample count above which the producer side
// should throttle itself. The consumer (hardware callback) is real-time and
// never blocks, so backpressure is a producer-side sleep, not a blocking
// channel.
const HighWaterMark = 1000

// DefaultBufferMultiplier sizes a session ring buffer relative to one second
// of audio: sample_rate * channels * multiplier.
const DefaultBufferMultiplier = 2

// SessionCapacity returns the fixed ring buffer capacity for a playback
// session with the given stream parameters.
func SessionCapacity(sampleRate, channels int) int {
	return sampleRate * channels * DefaultBufferMultiplier
}

// RingBuffer is a bounded FIFO of interleaved float32 samples shared between
// the decode goroutine (producer) and the hardware callback (consumer).
//
// The mutex is held only for the duration of a push or pop batch, never
// across decode work or I/O.
type RingBuffer struct {
	mtx  sync.Mutex
	buf  []float32
	head int
	size int
}

// NewRingBuffer creates a ring buffer with a fixed capacity in samples.
// Capacity does not change after creation.
func NewRingBuffer(capacity int) (*RingBuffer, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	return &RingBuffer{
		buf: make([]float32, capacity),
	}, nil
}

func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

func (r *RingBuffer) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.size
}

// Push queues interleaved samples. When the buffer would overflow its fixed
// capacity only the samples that fit are queued; the number accepted is
// returned so the producer can back off and retry.
func (r *RingBuffer) Push(samples []float32) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	free := len(r.buf) - r.size
	n := len(samples)
	if n > free {
		n = free
	}

	for i := range n {
		r.buf[(r.head+r.size+i)%len(r.buf)] = samples[i]
	}
	r.size += n

	return n
}

// PopFront removes and returns the oldest sample. The second return value is
// false when the buffer is empty (underrun); the caller substitutes silence
// and must not block.
func (r *RingBuffer) PopFront() (float32, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.size == 0 {
		return 0, false
	}

	v := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.size--

	return v, true
}

// PopSlice removes up to len(dst) samples in FIFO order under a single lock
// acquisition and returns the number written. The hardware callback uses this
// instead of per-sample PopFront to keep lock traffic off the hot path.
func (r *RingBuffer) PopSlice(dst []float32) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	n := len(dst)
	if n > r.size {
		n = r.size
	}

	for i := range n {
		dst[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.size -= n

	return n
}

// Clear drops all queued samples. Used on seek so stale audio is not played
// at the new position.
func (r *RingBuffer) Clear() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.head = 0
	r.size = 0
}

// AboveHighWater reports whether occupancy exceeds the producer throttle
// threshold.
func (r *RingBuffer) AboveHighWater() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.size > HighWaterMark
}
