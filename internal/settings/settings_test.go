package settings

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pouyanh/piranha/internal/engine"
	"github.com/pouyanh/piranha/internal/settings/notify"
	"github.com/pouyanh/piranha/internal/types"
)

func newTestSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNew_EmptyRegistry(t *testing.T) {
	_, err := New(WithRegistry(types.NewRegistry()))
	if !errors.Is(err, ErrNoExposedTypes) {
		t.Errorf("New() with empty registry error = %v, want ErrNoExposedTypes", err)
	}
}

func TestMaxTermOutput_Scenario(t *testing.T) {
	s := newTestSettings(t)

	got, err := s.MaxTermOutput()
	if err != nil {
		t.Fatalf("MaxTermOutput() error = %v", err)
	}
	if got != 20 {
		t.Fatalf("default MaxTermOutput() = %d, want 20", got)
	}

	if err := s.SetMaxTermOutput(10); err != nil {
		t.Fatalf("SetMaxTermOutput(10) error = %v", err)
	}
	if got, _ := s.MaxTermOutput(); got != 10 {
		t.Errorf("MaxTermOutput() = %d, want 10", got)
	}

	if err := s.ResetMaxTermOutput(); err != nil {
		t.Fatalf("ResetMaxTermOutput() error = %v", err)
	}
	if got, _ := s.MaxTermOutput(); got != 20 {
		t.Errorf("MaxTermOutput() after reset = %d, want 20", got)
	}
}

func TestRoundTrip(t *testing.T) {
	s := newTestSettings(t)

	tests := []struct {
		name string
		set  func(any) error
		get  func() (int, error)
		vals []int
	}{
		{"max_term_output", s.SetMaxTermOutput, s.MaxTermOutput, []int{0, 1, 10, 20, 1 << 20}},
		{"n_threads", s.SetNThreads, s.NThreads, []int{1, 2, 16, 1 << 16}},
		{"min_work_per_thread", s.SetMinWorkPerThread, s.MinWorkPerThread, []int{1, 2, 250000, 1 << 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.vals {
				if err := tt.set(v); err != nil {
					t.Fatalf("set(%d) error = %v", v, err)
				}
				got, err := tt.get()
				if err != nil {
					t.Fatalf("get() error = %v", err)
				}
				if got != v {
					t.Errorf("get() = %d, want %d", got, v)
				}
			}
		})
	}
}

func TestReset_Idempotent(t *testing.T) {
	s := newTestSettings(t)

	defaultThreads, _ := s.NThreads()

	if err := s.SetNThreads(3); err != nil {
		t.Fatal(err)
	}
	if err := s.SetNThreads(7); err != nil {
		t.Fatal(err)
	}

	if err := s.ResetNThreads(); err != nil {
		t.Fatalf("ResetNThreads() error = %v", err)
	}
	if got, _ := s.NThreads(); got != defaultThreads {
		t.Errorf("NThreads() after reset = %d, want %d", got, defaultThreads)
	}

	// Resetting twice is equivalent to once.
	if err := s.ResetNThreads(); err != nil {
		t.Fatalf("second ResetNThreads() error = %v", err)
	}
	if got, _ := s.NThreads(); got != defaultThreads {
		t.Errorf("NThreads() after double reset = %d, want %d", got, defaultThreads)
	}

	if err := s.SetMinWorkPerThread(10); err != nil {
		t.Fatal(err)
	}
	if err := s.ResetMinWorkPerThread(); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.MinWorkPerThread(); got != int(engine.DefaultMinWorkPerThread) {
		t.Errorf("MinWorkPerThread() after reset = %d, want %d", got, engine.DefaultMinWorkPerThread)
	}
}

func TestSetNThreads_Validation(t *testing.T) {
	s := newTestSettings(t)

	tests := []struct {
		name  string
		value any
		want  error
	}{
		{"string", "hello", ErrInvalidType},
		{"float", 2.5, ErrInvalidType},
		{"bool", true, ErrInvalidType},
		{"nil", nil, ErrInvalidType},
		{"zero", 0, ErrInvalidValue},
		{"negative", -1, ErrOverflow},
		{"too wide", uint64(1) << 40, ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SetNThreads(tt.value)
			if !errors.Is(err, tt.want) {
				t.Errorf("SetNThreads(%v) error = %v, want %v", tt.value, err, tt.want)
			}
		})
	}

	// Rejected input must leave the current value untouched.
	if err := s.SetNThreads(2); err != nil {
		t.Fatal(err)
	}
	_ = s.SetNThreads(0)
	_ = s.SetNThreads("hello")
	if got, _ := s.NThreads(); got != 2 {
		t.Errorf("NThreads() after rejected sets = %d, want 2", got)
	}
}

func TestSetMaxTermOutput_Validation(t *testing.T) {
	s := newTestSettings(t)

	if err := s.SetMaxTermOutput(-1); !errors.Is(err, ErrOverflow) {
		t.Errorf("SetMaxTermOutput(-1) error = %v, want ErrOverflow", err)
	}
	if err := s.SetMaxTermOutput("hello"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("SetMaxTermOutput(%q) error = %v, want ErrInvalidType", "hello", err)
	}
	// Zero is the unlimited sentinel for this tunable.
	if err := s.SetMaxTermOutput(0); err != nil {
		t.Errorf("SetMaxTermOutput(0) error = %v, want nil", err)
	}
}

func TestSetMinWorkPerThread_Validation(t *testing.T) {
	s := newTestSettings(t)

	if err := s.SetMinWorkPerThread(0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetMinWorkPerThread(0) error = %v, want ErrInvalidValue", err)
	}
	if err := s.SetMinWorkPerThread(-1); !errors.Is(err, ErrOverflow) {
		t.Errorf("SetMinWorkPerThread(-1) error = %v, want ErrOverflow", err)
	}
}

func TestConversionError_Detail(t *testing.T) {
	s := newTestSettings(t)

	err := s.SetNThreads("hello")
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error %v is not a *ConversionError", err)
	}
	if convErr.Tunable != KeyNThreads {
		t.Errorf("Tunable = %q, want %q", convErr.Tunable, KeyNThreads)
	}
	if convErr.Value != "hello" {
		t.Errorf("Value = %v, want hello", convErr.Value)
	}
}

func TestLatexRepr_ToggleScenario(t *testing.T) {
	s := newTestSettings(t)

	if !s.LatexRepr() {
		t.Fatal("LatexRepr() = false, want true by default")
	}

	poly := s.Types()[0]
	inner := `\frac{1}{2}{x}^{2}`

	if _, err := poly.LatexRepr(inner); err != nil {
		t.Fatalf("LatexRepr render error = %v", err)
	}

	if err := s.SetLatexRepr(false); err != nil {
		t.Fatalf("SetLatexRepr(false) error = %v", err)
	}
	if s.LatexRepr() {
		t.Error("LatexRepr() = true after disabling")
	}
	if _, err := poly.LatexRepr(inner); !errors.Is(err, types.ErrLatexReprDisabled) {
		t.Errorf("render while disabled error = %v, want ErrLatexReprDisabled", err)
	}

	if err := s.SetLatexRepr(true); err != nil {
		t.Fatalf("SetLatexRepr(true) error = %v", err)
	}
	got, err := poly.LatexRepr(inner)
	if err != nil {
		t.Fatalf("render after re-enable error = %v", err)
	}
	if want := `\[ \frac{1}{2}{x}^{2} \]`; got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestLatexRepr_ToggleIdempotent(t *testing.T) {
	s := newTestSettings(t)

	var changes atomic.Int32
	sub := s.SubscribeKey(KeyLatexRepr, func(notify.Change) { changes.Add(1) })
	defer sub.Unsubscribe()

	if err := s.SetLatexRepr(false); err != nil {
		t.Fatalf("SetLatexRepr(false) error = %v", err)
	}
	// Requesting the state that already holds is a silent no-op.
	if err := s.SetLatexRepr(false); err != nil {
		t.Fatalf("repeated SetLatexRepr(false) error = %v", err)
	}

	if changes.Load() != 1 {
		t.Errorf("observed %d latex_repr changes, want 1 (no-op must not notify)", changes.Load())
	}
}

func TestLatexRepr_ToggleConsistency(t *testing.T) {
	s := newTestSettings(t)

	for _, flag := range []bool{false, true, false} {
		if err := s.SetLatexRepr(flag); err != nil {
			t.Fatalf("SetLatexRepr(%v) error = %v", flag, err)
		}
		// Every exposed type, not just the representative sample.
		for _, d := range s.Types() {
			if d.HasLatexRepr() != flag {
				t.Errorf("type %s capability = %v, want %v", d.Name(), d.HasLatexRepr(), flag)
			}
		}
	}
}

func TestSetLatexRepr_InvalidType(t *testing.T) {
	s := newTestSettings(t)

	for _, v := range []any{"true", 1, nil} {
		if err := s.SetLatexRepr(v); !errors.Is(err, ErrInvalidType) {
			t.Errorf("SetLatexRepr(%v) error = %v, want ErrInvalidType", v, err)
		}
	}
}

func TestSetLatexRepr_MixedRegistryPanics(t *testing.T) {
	registry := types.NewRegistry()
	if err := registry.Register(types.NewDescriptor("polynomial", nil)); err != nil {
		t.Fatal(err)
	}
	broken := types.NewDescriptor("poisson_series", nil)
	broken.DisableLatexRepr()
	if err := registry.Register(broken); err != nil {
		t.Fatal(err)
	}

	s, err := New(WithRegistry(registry))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("SetLatexRepr on a mixed registry did not panic")
		}
		if _, ok := r.(InvariantViolation); !ok {
			t.Fatalf("panic value = %v (%T), want InvariantViolation", r, r)
		}
		// The lock must have been released on the panic path.
		if err := s.SetNThreads(2); err != nil {
			t.Errorf("SetNThreads after panic error = %v", err)
		}
	}()

	// Sample says enabled, so this walks the registry disabling, and
	// trips on the member that is already disabled.
	_ = s.SetLatexRepr(false)
}

func TestSettings_Notifications(t *testing.T) {
	s := newTestSettings(t)

	var changes []notify.Change
	var mu sync.Mutex
	sub := s.Subscribe(func(c notify.Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	defer sub.Unsubscribe()

	if err := s.SetNThreads(2); err != nil {
		t.Fatal(err)
	}
	if err := s.ResetNThreads(); err != nil {
		t.Fatal(err)
	}
	// Rejected input must not notify.
	_ = s.SetNThreads(0)

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 2 {
		t.Fatalf("received %d changes, want 2", len(changes))
	}
	if changes[0].Type != notify.ChangeSet || changes[0].NewValue != 2 {
		t.Errorf("first change = %+v, want set to 2", changes[0])
	}
	if changes[1].Type != notify.ChangeReset {
		t.Errorf("second change = %+v, want reset", changes[1])
	}
}

func TestSettings_Reset(t *testing.T) {
	s := newTestSettings(t)

	if err := s.SetMaxTermOutput(5); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMinWorkPerThread(7); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLatexRepr(false); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.MaxTermOutput != int(engine.DefaultMaxTermOutput) {
		t.Errorf("MaxTermOutput = %d, want %d", snap.MaxTermOutput, engine.DefaultMaxTermOutput)
	}
	if snap.MinWorkPerThread != int(engine.DefaultMinWorkPerThread) {
		t.Errorf("MinWorkPerThread = %d, want %d", snap.MinWorkPerThread, engine.DefaultMinWorkPerThread)
	}
	if !snap.LatexRepr {
		t.Error("LatexRepr = false after Reset, want true")
	}
}

func TestSettings_ConcurrentSetGet(t *testing.T) {
	s := newTestSettings(t)

	const goroutines = 8
	const iterations = 1000

	// Each goroutine writes its own distinct values; every read must
	// observe some value that was actually written by someone.
	valid := make(map[int]bool)
	for g := 1; g <= goroutines; g++ {
		valid[g] = true
	}
	valid[s.Snapshot().NThreads] = true

	var torn atomic.Int32
	var wg sync.WaitGroup
	for g := 1; g <= goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if err := s.SetNThreads(id); err != nil {
					torn.Add(1)
					return
				}
				got, err := s.NThreads()
				if err != nil || !valid[got] {
					torn.Add(1)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if torn.Load() != 0 {
		t.Fatalf("%d goroutines observed a torn or invalid read", torn.Load())
	}
}

func TestSettings_ConcurrentToggle(t *testing.T) {
	s := newTestSettings(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if err := s.SetLatexRepr(i%2 == 0); err != nil {
					t.Errorf("SetLatexRepr error = %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	// Whatever the final state, it must be uniform across the registry.
	want := s.LatexRepr()
	for _, d := range s.Types() {
		if d.HasLatexRepr() != want {
			t.Errorf("type %s capability = %v, want %v (mixed state)", d.Name(), d.HasLatexRepr(), want)
		}
	}
}

func TestSettings_CloseIdempotent(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
