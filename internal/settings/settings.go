// Package settings provides the thread-safe configuration façade for
// the engine's global tunables.
//
// A Settings instance is constructed once at process start and passed
// to anything that needs it. Every public operation is a synchronous
// critical section guarded by one process-wide lock: reads and writes
// of different tunables are mutually exclusive, and no lock-free read
// path is offered. Setter input is loosely typed; a dedicated
// conversion step classifies bad input into the taxonomy in errors.go
// before anything is mutated.
package settings

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/pouyanh/piranha/internal/engine"
	"github.com/pouyanh/piranha/internal/settings/notify"
	"github.com/pouyanh/piranha/internal/types"
)

// Tunable keys as reported in change notifications and error messages.
const (
	KeyMaxTermOutput    = "max_term_output"
	KeyNThreads         = "n_threads"
	KeyMinWorkPerThread = "min_work_per_thread"
	KeyLatexRepr        = "latex_repr"
)

// changeSource identifies the façade in change notifications.
const changeSource = "settings"

// nativeIntMax bounds max_term_output and min_work_per_thread to what
// the exported int accessors can represent.
const nativeIntMax = uint64(math.MaxInt64)

// Settings is the configuration façade.
type Settings struct {
	// mu guards every public operation. Go's mutex is not reentrant,
	// so internal helpers that need the current state while the lock
	// is already held use the *Locked variants instead of re-entering
	// a public method.
	mu sync.Mutex

	store    *engine.Store
	registry *types.Registry
	notifier *notify.Notifier
}

// Option configures a Settings instance.
type Option func(*Settings)

// WithStore sets the backing engine store.
func WithStore(store *engine.Store) Option {
	return func(s *Settings) {
		s.store = store
	}
}

// WithRegistry sets the exposed-type registry.
func WithRegistry(registry *types.Registry) Option {
	return func(s *Settings) {
		s.registry = registry
	}
}

// WithNotifier sets the change notifier.
func WithNotifier(notifier *notify.Notifier) Option {
	return func(s *Settings) {
		s.notifier = notifier
	}
}

// New creates the settings façade. The exposed-type registry must be
// populated before the façade is used; an empty registry is rejected.
func New(opts ...Option) (*Settings, error) {
	s := &Settings{}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = engine.NewStore()
	}
	if s.registry == nil {
		s.registry = types.DefaultRegistry()
	}
	if s.notifier == nil {
		s.notifier = notify.New()
	}

	if s.registry.Len() == 0 {
		return nil, ErrNoExposedTypes
	}
	return s, nil
}

// Close tears the façade down: the notifier stops delivering and the
// engine store runs its best-effort cleanup. Safe to call even if no
// settings operation ever ran, and safe to call more than once.
func (s *Settings) Close() error {
	s.notifier.Close()
	return s.store.Close()
}

// MaxTermOutput returns the maximum number of series terms to print.
// Zero means unlimited.
func (s *Settings) MaxTermOutput() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.store.MaxTermOutput()), nil
}

// SetMaxTermOutput sets the maximum number of series terms to print.
// Accepts any integer kind; zero is the unlimited sentinel.
func (s *Settings) SetMaxTermOutput(value any) error {
	n, err := toUnsigned(KeyMaxTermOutput, value, nativeIntMax)
	if err != nil {
		return err
	}
	return s.apply(KeyMaxTermOutput, value, notify.ChangeSet, func() (any, any, error) {
		old := int(s.store.MaxTermOutput())
		return old, int(n), s.store.SetMaxTermOutput(n)
	})
}

// ResetMaxTermOutput restores the default maximum term output.
func (s *Settings) ResetMaxTermOutput() error {
	return s.apply(KeyMaxTermOutput, nil, notify.ChangeReset, func() (any, any, error) {
		old := int(s.store.MaxTermOutput())
		return old, int(engine.DefaultMaxTermOutput), s.store.ResetMaxTermOutput()
	})
}

// NThreads returns the number of threads the engine may use.
func (s *Settings) NThreads() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.store.NThreads()), nil
}

// SetNThreads sets the number of threads the engine may use.
// The value must convert to a strictly positive native integer.
func (s *Settings) SetNThreads(value any) error {
	n, err := toUnsigned(KeyNThreads, value, math.MaxUint32)
	if err != nil {
		return err
	}
	return s.apply(KeyNThreads, value, notify.ChangeSet, func() (any, any, error) {
		old := int(s.store.NThreads())
		return old, int(n), s.store.SetNThreads(uint32(n))
	})
}

// ResetNThreads restores the auto-detected default thread count.
func (s *Settings) ResetNThreads() error {
	return s.apply(KeyNThreads, nil, notify.ChangeReset, func() (any, any, error) {
		old := int(s.store.NThreads())
		return old, int(s.store.DefaultNThreads()), s.store.ResetNThreads()
	})
}

// MinWorkPerThread returns the minimum workload per thread.
func (s *Settings) MinWorkPerThread() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.store.MinWorkPerThread()), nil
}

// SetMinWorkPerThread sets the minimum workload per thread.
// The value must convert to a strictly positive native integer.
func (s *Settings) SetMinWorkPerThread(value any) error {
	n, err := toUnsigned(KeyMinWorkPerThread, value, nativeIntMax)
	if err != nil {
		return err
	}
	return s.apply(KeyMinWorkPerThread, value, notify.ChangeSet, func() (any, any, error) {
		old := int(s.store.MinWorkPerThread())
		return old, int(n), s.store.SetMinWorkPerThread(n)
	})
}

// ResetMinWorkPerThread restores the default minimum workload per thread.
func (s *Settings) ResetMinWorkPerThread() error {
	return s.apply(KeyMinWorkPerThread, nil, notify.ChangeReset, func() (any, any, error) {
		old := int(s.store.MinWorkPerThread())
		return old, int(engine.DefaultMinWorkPerThread), s.store.ResetMinWorkPerThread()
	})
}

// LatexRepr reports whether exposed types currently carry the typeset
// representation capability.
func (s *Settings) LatexRepr() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latexReprLocked()
}

// SetLatexRepr toggles the typeset representation capability on every
// exposed type. Only bool input is accepted. Requesting the state that
// already holds is a no-op, decided while holding the lock so two
// concurrent togglers cannot both observe "nothing to do".
func (s *Settings) SetLatexRepr(flag any) error {
	b, err := toBool(KeyLatexRepr, flag)
	if err != nil {
		return err
	}

	s.mu.Lock()
	cur := s.latexReprLocked()
	if b == cur {
		s.mu.Unlock()
		return nil
	}

	// Flip the capability on the whole registry. A member found in the
	// wrong state means the registry invariant was broken by whoever
	// populated it; abort loudly rather than repair silently.
	func() {
		defer s.mu.Unlock()
		for _, d := range s.registry.List() {
			if b {
				if d.HasLatexRepr() {
					panic(InvariantViolation{
						Type:    d.Name(),
						Message: "capability already present while enabling",
					})
				}
				d.EnableLatexRepr()
			} else {
				if !d.HasLatexRepr() {
					panic(InvariantViolation{
						Type:    d.Name(),
						Message: "capability already absent while disabling",
					})
				}
				d.DisableLatexRepr()
			}
		}
	}()

	s.notifier.NotifySet(KeyLatexRepr, cur, b, changeSource)
	return nil
}

// latexReprLocked reads the capability state off the first registered
// type, the representative sample for the whole registry. Callers must
// hold s.mu.
func (s *Settings) latexReprLocked() bool {
	return s.registry.First().HasLatexRepr()
}

// Reset restores every tunable, including the typeset capability, to
// its process-start default.
func (s *Settings) Reset() error {
	if err := s.ResetMaxTermOutput(); err != nil {
		return err
	}
	if err := s.ResetNThreads(); err != nil {
		return err
	}
	if err := s.ResetMinWorkPerThread(); err != nil {
		return err
	}
	return s.SetLatexRepr(true)
}

// Snapshot is a point-in-time copy of every tunable.
type Snapshot struct {
	MaxTermOutput    int
	NThreads         int
	MinWorkPerThread int
	LatexRepr        bool
}

// Snapshot returns all current values, read atomically with respect to
// every other settings operation.
func (s *Settings) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		MaxTermOutput:    int(s.store.MaxTermOutput()),
		NThreads:         int(s.store.NThreads()),
		MinWorkPerThread: int(s.store.MinWorkPerThread()),
		LatexRepr:        s.latexReprLocked(),
	}
}

// Types returns the exposed type descriptors in registration order.
func (s *Settings) Types() []*types.Descriptor {
	return s.registry.List()
}

// Subscribe registers an observer for all settings changes.
func (s *Settings) Subscribe(observer notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(observer)
}

// SubscribeKey registers an observer for changes to one tunable.
func (s *Settings) SubscribeKey(key string, observer notify.Observer) *notify.Subscription {
	return s.notifier.SubscribeKey(key, observer)
}

// Notifier returns the change notifier.
func (s *Settings) Notifier() *notify.Notifier {
	return s.notifier
}

// apply runs one store mutation inside the lock and notifies observers
// after the lock is released. Store range failures are folded into the
// façade's taxonomy; anything else the store reports passes through.
func (s *Settings) apply(key string, value any, changeType notify.ChangeType, mutate func() (any, any, error)) error {
	s.mu.Lock()
	old, newValue, err := mutate()
	s.mu.Unlock()

	if err != nil {
		return s.wrapStoreError(key, value, err)
	}

	s.notifier.Notify(notify.Change{
		Key:      key,
		Type:     changeType,
		OldValue: old,
		NewValue: newValue,
		Source:   changeSource,
	})
	return nil
}

// wrapStoreError translates engine range failures into the façade's
// taxonomy and passes every other native failure through unchanged.
func (s *Settings) wrapStoreError(key string, value any, err error) error {
	if errors.Is(err, engine.ErrValueOutOfRange) {
		return &ConversionError{
			Tunable: key,
			Value:   value,
			Kind:    ErrInvalidValue,
			Message: err.Error(),
		}
	}
	return fmt.Errorf("setting %s: %w", key, err)
}
