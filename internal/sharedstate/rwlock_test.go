package sharedstate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRWLockMultipleReaders(t *testing.T) {
	l := NewRWLock()
	var active atomic.Int32
	var maxActive atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RLock()
			defer l.RUnlock()
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if maxActive.Load() < 2 {
		t.Errorf("readers never overlapped, maxActive = %d, want concurrent access", maxActive.Load())
	}
}

func TestRWLockWriterExclusion(t *testing.T) {
	l := NewRWLock()
	var active atomic.Int32
	var sawOverlap atomic.Bool
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock()
			defer l.Unlock()
			if active.Add(1) > 1 {
				sawOverlap.Store(true)
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if sawOverlap.Load() {
		t.Error("writers overlapped, want mutual exclusion")
	}
}

func TestRWLockWriterExcludesReaders(t *testing.T) {
	l := NewRWLock()
	l.Lock()

	done := make(chan struct{})
	go func() {
		l.RLock()
		l.RUnlock()
		close(done)
	}()

	select {
	case <-done:
		t.Error("reader acquired lock while writer held it")
	case <-time.After(20 * time.Millisecond):
	}

	l.Unlock()
	<-done
}

func TestRWLockReset(t *testing.T) {
	l := NewRWLock()
	l.RLock()
	l.RUnlock()

	l.Reset()

	done := make(chan struct{})
	go func() {
		l.Lock()
		l.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Fatal("writer never acquired lock after Reset")
	}
}
