// Package ring provides a single-producer / multiple-consumer (SPMC)
// lock-free ring of byte-slice frame slots. One writer hands out
// zero-copy read access to up to N-1 buffered frames to R independent
// readers, each advancing its own cursor at its own pace. When the
// ring is full the writer's new frame is rejected; queued frames are
// never overwritten.
//
// # Thread-safety
//
//   - Exactly one goroutine may hold the *Writer returned by Split.
//   - Each *Reader returned by Split may only be used by one goroutine
//     at a time, but different Readers may run concurrently with each
//     other and with the Writer.
//   - The ring reserves exactly one slot as a permanent separator
//     between the writer and the slowest reader: a ring of N slots has
//     effective capacity N-1.
//
// # Memory ordering
//
// The writer publishes a slot with a release store on an internal
// write cursor; readers observe new data with an acquire load on that
// same cursor. Go's atomic package provides sequentially consistent
// operations, which is at least as strong as the acquire/release pair
// this design requires.
package ring

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

const cacheLinePad = 64

// paddedCounter is a uint32 cursor padded to its own cache line, so
// the writer's cursor and each reader's cursor never false-share.
type paddedCounter struct {
	v atomic.Uint32
	_ [cacheLinePad - 4]byte
}

// wakeWord is a plain (non atomic.Uint32) uint32 so that platform
// futex backends can take its address directly. It is only ever
// accessed through sync/atomic's free functions.
type wakeWord struct {
	v uint32
	_ [cacheLinePad - 4]byte
}

// slot is one storage cell of the ring. Only the writer mutates buf
// and length, and only for the slot at the write cursor, which no
// reader reads until the cursor has moved past it, so no reader can
// observe a slot mid-write.
type slot struct {
	buf    []byte
	length int
}

func (s *slot) set(data []byte) {
	if cap(s.buf) < len(data) {
		s.buf = make([]byte, len(data))
	}
	s.buf = s.buf[:len(data)]
	copy(s.buf, data)
	s.length = len(data)
}

func (s *slot) bytes() []byte {
	return s.buf[:s.length]
}

// Ring is a fixed-size SPMC frame ring. Construct with New, then call
// Split exactly once to obtain the Writer and Readers; the Ring value
// itself exposes no other way to reach slot storage.
type Ring struct {
	slots    []slot
	writeIdx paddedCounter
	readIdx  []paddedCounter
	wake     wakeWord
	n        uint32
	split    atomic.Bool
}

// New creates a Ring with the given slot count (must be >= 2) and
// reader count (must be >= 1). Slots are empty until first written.
func New(slots int, readers int) (*Ring, error) {
	if slots < 2 {
		return nil, fmt.Errorf("ring: slots must be >= 2, got %d", slots)
	}
	if readers < 1 {
		return nil, fmt.Errorf("ring: readers must be >= 1, got %d", readers)
	}
	return &Ring{
		slots:   make([]slot, slots),
		readIdx: make([]paddedCounter, readers),
		n:       uint32(slots),
	}, nil
}

// Split consumes exclusive access to the Ring and returns one Writer
// and len(readers)-many Readers, each carrying only the authority it
// needs. Calling Split a second time returns an error; there is no
// other path back into the Ring's internals.
func (r *Ring) Split() (*Writer, []*Reader, error) {
	if !r.split.CompareAndSwap(false, true) {
		return nil, nil, fmt.Errorf("ring: Split called more than once")
	}

	readIdxs := make([]*paddedCounter, len(r.readIdx))
	for i := range r.readIdx {
		readIdxs[i] = &r.readIdx[i]
	}

	w := &Writer{
		slots:    r.slots,
		writeIdx: &r.writeIdx,
		readIdx:  readIdxs,
		wake:     &r.wake,
		n:        r.n,
	}

	readers := make([]*Reader, len(r.readIdx))
	for i := range r.readIdx {
		readers[i] = &Reader{
			slots:    r.slots,
			writeIdx: &r.writeIdx,
			readIdx:  readIdxs[i],
			wake:     &r.wake,
			n:        r.n,
		}
	}

	return w, readers, nil
}

// Writer is the sole mutator of a Ring's slots and write cursor.
type Writer struct {
	slots    []slot
	writeIdx *paddedCounter
	readIdx  []*paddedCounter
	wake     *wakeWord
	n        uint32
}

// TryWrite attempts to publish data into the next slot. It returns
// false without blocking if the next slot is still pinned by a reader
// (the ring is full); the caller owns the decision to retry or drop.
func (w *Writer) TryWrite(data []byte) bool {
	wi := w.writeIdx.v.Load()
	next := (wi + 1) % w.n

	for _, ri := range w.readIdx {
		if ri.v.Load() == next {
			return false
		}
	}

	w.slots[wi].set(data)
	w.writeIdx.v.Store(next)

	atomic.StoreUint32(&w.wake.v, next)
	futexWakeAll(&w.wake.v)

	return true
}

// WriteSpin retries TryWrite, yielding the CPU between attempts, until
// it succeeds. Used only by callers that can tolerate blocking; the
// camera source in this module never calls it (it always uses
// TryWrite and drops frames instead).
func (w *Writer) WriteSpin(data []byte) {
	for !w.TryWrite(data) {
		runtime.Gosched()
	}
}

// Reader is one consumer's view of a Ring: a shared read of the write
// cursor, and exclusive ownership of its own read cursor.
type Reader struct {
	slots    []slot
	writeIdx *paddedCounter
	readIdx  *paddedCounter
	wake     *wakeWord
	n        uint32
}

// TryRead returns a Handle on the next unread slot, or (nil, false)
// without blocking if the reader has caught up to the writer.
func (r *Reader) TryRead() (*Handle, bool) {
	ri := r.readIdx.v.Load()
	wi := r.writeIdx.v.Load()
	if ri == wi {
		return nil, false
	}
	return &Handle{r: r, idx: ri}, true
}

// ReadSpin blocks until a slot is available, using a futex wait on the
// wake word where the platform supports it and a yield loop
// (runtime.Gosched) otherwise. A spurious wake simply re-checks the write cursor.
func (r *Reader) ReadSpin() *Handle {
	ri := r.readIdx.v.Load()
	for {
		wi := r.writeIdx.v.Load()
		if wi != ri {
			break
		}
		last := atomic.LoadUint32(&r.wake.v)
		futexWait(&r.wake.v, last)
	}
	// Final acquire load to synchronize memory with the writer's
	// release store, per invariant 6.
	_ = r.writeIdx.v.Load()
	return &Handle{r: r, idx: ri}
}

// Handle is a scoped, non-cloneable borrow of one slot's bytes.
// Release advances the owning reader's cursor; a Handle that is never
// released strands that reader on the same slot.
type Handle struct {
	r        *Reader
	idx      uint32
	released bool
}

// Bytes returns the slot's current contents. The returned slice
// aliases ring storage and is invalid after Release.
func (h *Handle) Bytes() []byte {
	return h.r.slots[h.idx].bytes()
}

// Release advances the reader's cursor by one slot, modulo the ring
// size. Calling Release more than once is a no-op.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	ri := h.r.readIdx.v.Load()
	h.r.readIdx.v.Store((ri + 1) % h.r.n)
}
