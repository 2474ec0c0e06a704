// Package types maintains the registry of exposed value types and the
// optional typeset (LaTeX) representation capability on them.
//
// Exposed types are the value families the engine makes available to
// callers (polynomials, Poisson series, ...). Each family is described
// by a Descriptor. The settings façade toggles the typeset capability
// across the whole registry as a unit; individual descriptors never
// change capability on their own.
package types

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrLatexReprDisabled is returned when the typeset representation is
// requested while the capability is switched off.
var ErrLatexReprDisabled = errors.New("latex representation disabled")

// Renderer produces the display-math rendering of an exposed type from
// the inner TeX fragment emitted by the engine.
type Renderer func(inner string) string

// DisplayMath is the default renderer. It wraps the inner TeX in
// display-math delimiters, matching what notebook front ends expect.
func DisplayMath(inner string) string {
	return `\[ ` + inner + ` \]`
}

// Descriptor describes one exposed value type.
type Descriptor struct {
	name     string
	renderer Renderer

	// latex is the typeset-capability flag. It is flipped only by the
	// settings façade while holding the façade lock; the atomic makes
	// reads safe from engine internals that render outside that lock.
	latex atomic.Bool
}

// NewDescriptor creates a descriptor with the typeset capability
// enabled, which is the process-start default. A nil renderer falls
// back to DisplayMath.
func NewDescriptor(name string, renderer Renderer) *Descriptor {
	if renderer == nil {
		renderer = DisplayMath
	}
	d := &Descriptor{name: name, renderer: renderer}
	d.latex.Store(true)
	return d
}

// Name returns the exposed type's name.
func (d *Descriptor) Name() string {
	return d.name
}

// HasLatexRepr reports whether the typeset capability is present.
func (d *Descriptor) HasLatexRepr() bool {
	return d.latex.Load()
}

// EnableLatexRepr adds the typeset capability.
func (d *Descriptor) EnableLatexRepr() {
	d.latex.Store(true)
}

// DisableLatexRepr removes the typeset capability.
func (d *Descriptor) DisableLatexRepr() {
	d.latex.Store(false)
}

// LatexRepr renders the display-math representation of a value of this
// type from its inner TeX fragment. It fails with ErrLatexReprDisabled
// when the capability is absent.
func (d *Descriptor) LatexRepr(inner string) (string, error) {
	if !d.latex.Load() {
		return "", fmt.Errorf("%w: type %s", ErrLatexReprDisabled, d.name)
	}
	return d.renderer(inner), nil
}
