package sharedstate

import (
	"sync/atomic"
)

// semaphore is a counting semaphore built on a buffered channel, standing
// in for the POSIX sem_t the original C source uses (proj_types.h's
// rw_lock_t). wait/post are blocking and non-blocking respectively, the
// same pairing sem_wait/sem_post give a bounded-capacity channel.
type semaphore struct {
	slots chan struct{}
}

func newSemaphore(initial int) *semaphore {
	s := &semaphore{slots: make(chan struct{}, 1<<30)}
	for i := 0; i < initial; i++ {
		s.slots <- struct{}{}
	}
	return s
}

func (s *semaphore) wait()  { <-s.slots }
func (s *semaphore) post()  { s.slots <- struct{}{} }

// rwLockCore is one generation of the reader/writer lock. Reinitializing
// the lock (spec.md §4.8 "reinitialize all synchronization primitives in
// place") means swapping in a fresh rwLockCore, never mutating one that a
// stuck goroutine might still be blocked inside.
type rwLockCore struct {
	read, write *semaphore
	readCounter int
}

func newRWLockCore() *rwLockCore {
	return &rwLockCore{
		read:  newSemaphore(1),
		write: newSemaphore(1),
	}
}

// RWLock is the spec.md §4.1 reader/writer lock: two counting semaphores
// and a reader count, with writer/writer and writer/reader mutual
// exclusion and no starvation guarantee. It additionally supports Reset,
// which the supervisor uses after killing every actor (spec.md §5
// "the supervisor is permitted to reinitialize synchronization primitives
// only when it has first terminated all children").
type RWLock struct {
	core atomic.Pointer[rwLockCore]
}

// NewRWLock returns a lock ready for use, semaphores initialized to 1 as
// spec.md §4.1 requires.
func NewRWLock() *RWLock {
	l := &RWLock{}
	l.core.Store(newRWLockCore())
	return l
}

// Reset swaps in a fresh generation of semaphores, preserving no state
// about actors that were blocked in the old generation — those actors
// have already been terminated by the supervisor before Reset is called.
func (l *RWLock) Reset() {
	l.core.Store(newRWLockCore())
}

// RLock performs the spec.md §4.1 reader-acquire algorithm:
// wait(read); counter++; if counter==1 wait(write); post(read). The read
// semaphore itself brackets every read/write of readCounter, so no
// separate mutex is needed to guard it.
func (l *RWLock) RLock() {
	c := l.core.Load()
	c.read.wait()
	c.readCounter++
	if c.readCounter == 1 {
		c.write.wait()
	}
	c.read.post()
}

// RUnlock performs the reader-release algorithm:
// wait(read); counter--; if counter==0 post(write); post(read).
func (l *RWLock) RUnlock() {
	c := l.core.Load()
	c.read.wait()
	c.readCounter--
	if c.readCounter == 0 {
		c.write.post()
	}
	c.read.post()
}

// Lock performs the writer-acquire algorithm: wait(write).
func (l *RWLock) Lock() {
	l.core.Load().write.wait()
}

// Unlock performs the writer-release algorithm: post(write).
func (l *RWLock) Unlock() {
	l.core.Load().write.post()
}
