// Package engine holds the runtime state of the native arithmetic
// engine that the settings façade configures.
//
// The Store owns the current value of every global tunable. It validates
// ranges at its own boundary and reports range failures distinct from
// any other failure, so that callers can translate them into their own
// error taxonomy.
package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
)

// Errors reported by the store.
var (
	// ErrValueOutOfRange indicates a value outside the tunable's legal range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrStoreClosed indicates the store was already torn down.
	ErrStoreClosed = errors.New("engine store closed")
)

// Defaults fixed at process start.
const (
	// DefaultMaxTermOutput is the default maximum number of series terms
	// to print. Zero means unlimited.
	DefaultMaxTermOutput uint64 = 20

	// DefaultMinWorkPerThread is the default minimum workload assigned
	// to a worker thread before the engine splits work further.
	DefaultMinWorkPerThread uint64 = 250000
)

// Store is the engine's global tunable state.
//
// Values are held in atomics so that engine internals (multipliers,
// printers) can read them cheaply at any time. All public mutation goes
// through the settings façade, which serializes it behind one lock.
type Store struct {
	maxTermOutput    atomic.Uint64
	nThreads         atomic.Uint32
	minWorkPerThread atomic.Uint64

	// defaultNThreads is auto-detected once at construction.
	defaultNThreads uint32

	closed atomic.Bool
}

// NewStore creates a store with all tunables at their defaults.
// The thread count default is auto-detected from the machine.
func NewStore() *Store {
	s := &Store{
		defaultNThreads: detectNThreads(),
	}
	s.maxTermOutput.Store(DefaultMaxTermOutput)
	s.nThreads.Store(s.defaultNThreads)
	s.minWorkPerThread.Store(DefaultMinWorkPerThread)
	return s
}

// MaxTermOutput returns the maximum number of series terms to print.
func (s *Store) MaxTermOutput() uint64 {
	return s.maxTermOutput.Load()
}

// SetMaxTermOutput sets the maximum number of series terms to print.
// Zero is the unlimited sentinel; every value is in range.
func (s *Store) SetMaxTermOutput(n uint64) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	s.maxTermOutput.Store(n)
	return nil
}

// ResetMaxTermOutput restores the default maximum term output.
func (s *Store) ResetMaxTermOutput() error {
	return s.SetMaxTermOutput(DefaultMaxTermOutput)
}

// NThreads returns the number of threads the engine may use.
func (s *Store) NThreads() uint32 {
	return s.nThreads.Load()
}

// SetNThreads sets the number of threads the engine may use.
// The value must be strictly positive.
func (s *Store) SetNThreads(n uint32) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if n == 0 {
		return fmt.Errorf("%w: number of threads must be strictly positive", ErrValueOutOfRange)
	}
	s.nThreads.Store(n)
	return nil
}

// ResetNThreads restores the auto-detected default thread count.
func (s *Store) ResetNThreads() error {
	return s.SetNThreads(s.defaultNThreads)
}

// DefaultNThreads returns the thread count detected at construction.
func (s *Store) DefaultNThreads() uint32 {
	return s.defaultNThreads
}

// MinWorkPerThread returns the minimum workload per thread.
func (s *Store) MinWorkPerThread() uint64 {
	return s.minWorkPerThread.Load()
}

// SetMinWorkPerThread sets the minimum workload per thread.
// The value must be strictly positive.
func (s *Store) SetMinWorkPerThread(n uint64) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if n == 0 {
		return fmt.Errorf("%w: work per thread must be strictly positive", ErrValueOutOfRange)
	}
	s.minWorkPerThread.Store(n)
	return nil
}

// ResetMinWorkPerThread restores the default minimum workload per thread.
func (s *Store) ResetMinWorkPerThread() error {
	return s.SetMinWorkPerThread(DefaultMinWorkPerThread)
}

// Close tears the store down. It restores defaults, marks the store
// closed and is safe to call any number of times, including when no
// tunable was ever touched.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.maxTermOutput.Store(DefaultMaxTermOutput)
	s.nThreads.Store(s.defaultNThreads)
	s.minWorkPerThread.Store(DefaultMinWorkPerThread)
	return nil
}

// detectNThreads returns the hardware concurrency, never less than one.
func detectNThreads() uint32 {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return uint32(n)
}
