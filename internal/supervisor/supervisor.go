// Package supervisor implements spec.md §4.8: spawning actors, respawning
// them on crash, and reinitializing synchronization primitives in place
// when the watchdog signals a stall. original_source/drone_sys.c does
// this with fork/SIGCHLD/SIGUSR1/SIGTERM; this port follows spec.md §9's
// redesign note and replaces those with goroutines and channels carrying
// ChildExited/RecoveryRequested/ShutdownRequested events.
package supervisor

import (
	"context"
	"sync"

	"dronesys/internal/logging"
	"dronesys/internal/sharedstate"
)

// RunFunc is the loop signature every actor implements: run until ctx is
// canceled (return nil) or a crash occurs (return a non-nil error).
type RunFunc func(ctx context.Context) error

type managedActor struct {
	id     sharedstate.ActorID
	run    RunFunc
	cancel context.CancelFunc
}

type exitEvent struct {
	id  sharedstate.ActorID
	err error
}

// Supervisor owns spawn, respawn, and lock-reset authority over the
// actor roster, per spec.md §3 "Ownership".
type Supervisor struct {
	Region *sharedstate.Region

	actors  map[sharedstate.ActorID]*managedActor
	exited  chan exitEvent
	recover chan struct{}

	wg sync.WaitGroup
}

// New returns a supervisor for region with an empty actor roster.
func New(region *sharedstate.Region) *Supervisor {
	return &Supervisor{
		Region:  region,
		actors:  make(map[sharedstate.ActorID]*managedActor),
		exited:  make(chan exitEvent, 8),
		recover: make(chan struct{}, 1),
	}
}

// Register adds role id to the roster. Call before Run.
func (s *Supervisor) Register(id sharedstate.ActorID, run RunFunc) {
	s.actors[id] = &managedActor{id: id, run: run}
}

// RequestRecovery enqueues a recovery request. Intended for use as a
// Watchdog's Recover callback; safe to call from any goroutine, and safe
// to call more than once (only one pending request is kept).
func (s *Supervisor) RequestRecovery() {
	select {
	case s.recover <- struct{}{}:
	default:
	}
}

func (s *Supervisor) spawn(id sharedstate.ActorID) {
	m := s.actors[id]
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	gen := s.Region.Generations.Next(id)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		logging.Infof("supervisor", "starting %s (generation %d)", id, gen)
		err := m.run(ctx)
		s.exited <- exitEvent{id: id, err: err}
	}()
}

func (s *Supervisor) cancelAll() {
	for _, m := range s.actors {
		if m.cancel != nil {
			m.cancel()
		}
	}
}

// Run starts every registered actor and blocks until ctx is canceled,
// respawning crashed actors and reinitializing locks whenever the
// watchdog requests recovery. It returns once every actor has exited
// following a shutdown (ctx.Done()).
func (s *Supervisor) Run(ctx context.Context) {
	for id := range s.actors {
		s.spawn(id)
	}

	shuttingDown := false
	live := len(s.actors)

	for {
		select {
		case <-ctx.Done():
			if !shuttingDown {
				shuttingDown = true
				logging.Infof("supervisor", "shutdown requested, terminating all actors")
				s.cancelAll()
			}
			if live == 0 {
				return
			}

		case <-s.recover:
			// A watchdog goroutine may report its own exit (it returns
			// after calling RequestRecovery) through s.exited before or
			// after this branch fires; handleRecovery drains every
			// outstanding exit unconditionally, so that ordering doesn't
			// affect correctness — at worst the watchdog is respawned
			// once by the crash path below and then immediately
			// recycled again by handleRecovery.
			if !shuttingDown {
				live = s.handleRecovery(live)
			}

		case ev := <-s.exited:
			live--
			if shuttingDown {
				if live == 0 {
					return
				}
				continue
			}
			if ev.err != nil {
				logging.Errorf("supervisor", "actor %s crashed: %v", ev.id, ev.err)
			} else {
				logging.Infof("supervisor", "actor %s exited", ev.id)
			}
			s.spawn(ev.id)
			live++
		}
	}
}

// handleRecovery implements spec.md §4.8 step 5's recovery path: signal
// termination to every actor, wait for all of them to exit, reinitialize
// the action RW-lock in place via Region.ResetLocks (data fields are
// untouched; the accel and PWM mutexes and the ring buffer's semaphores
// are not reinitialized), then respawn every role. It returns the new
// live-actor count (== roster size).
func (s *Supervisor) handleRecovery(live int) int {
	logging.Warnf("supervisor", "recovery requested: terminating all actors")
	s.cancelAll()

	for live > 0 {
		<-s.exited
		live--
	}

	logging.Infof("supervisor", "all actors terminated, reinitializing locks")
	s.Region.ResetLocks()

	for id := range s.actors {
		s.spawn(id)
		live++
	}
	return live
}

// Wait blocks until every spawned actor goroutine has returned. Call
// after Run returns, to ensure a clean process exit.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
