// Package loader reads startup overrides for engine settings from a
// piranha.toml file and applies them through the settings façade, so
// file-sourced values go through the same validation as runtime calls.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/pouyanh/piranha/internal/settings"
)

// DefaultFileName is the overrides file looked up at startup.
const DefaultFileName = "piranha.toml"

// Overrides is the piranha.toml schema. Absent keys leave the
// corresponding tunable at its default.
type Overrides struct {
	Settings TunableOverrides `toml:"settings"`
}

// TunableOverrides holds the per-tunable override values.
type TunableOverrides struct {
	MaxTermOutput    *int64 `toml:"max_term_output"`
	NThreads         *int64 `toml:"n_threads"`
	MinWorkPerThread *int64 `toml:"min_work_per_thread"`
	LatexRepr        *bool  `toml:"latex_repr"`
}

// Empty reports whether no override is present.
func (o *Overrides) Empty() bool {
	s := o.Settings
	return s.MaxTermOutput == nil && s.NThreads == nil &&
		s.MinWorkPerThread == nil && s.LatexRepr == nil
}

// ParseError represents an error while parsing an overrides file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// TOMLLoader loads settings overrides from TOML files.
type TOMLLoader struct {
	path string
}

// NewTOMLLoader creates a loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{path: path}
}

// Load reads overrides from the configured path.
// A missing file yields (nil, nil); it is not an error.
func (l *TOMLLoader) Load() (*Overrides, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads overrides from a specific path.
func (l *TOMLLoader) LoadFrom(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading overrides file %s: %w", path, err)
	}
	return l.parse(path, data)
}

// LoadFromReader reads overrides from an io.Reader.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (*Overrides, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	return l.parse("<reader>", data)
}

// parse decodes TOML data. Unknown keys are rejected so typos in the
// overrides file surface instead of being silently ignored.
func (l *TOMLLoader) parse(source string, data []byte) (*Overrides, error) {
	var overrides Overrides
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&overrides); err != nil {
		return nil, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return &overrides, nil
}

// Apply forwards every present override to the façade. The façade's
// conversion step validates each value, so an out-of-range override
// fails with the same taxonomy a runtime caller would see.
func Apply(s *settings.Settings, overrides *Overrides) error {
	if overrides == nil {
		return nil
	}
	o := overrides.Settings
	if o.MaxTermOutput != nil {
		if err := s.SetMaxTermOutput(*o.MaxTermOutput); err != nil {
			return err
		}
	}
	if o.NThreads != nil {
		if err := s.SetNThreads(*o.NThreads); err != nil {
			return err
		}
	}
	if o.MinWorkPerThread != nil {
		if err := s.SetMinWorkPerThread(*o.MinWorkPerThread); err != nil {
			return err
		}
	}
	if o.LatexRepr != nil {
		if err := s.SetLatexRepr(*o.LatexRepr); err != nil {
			return err
		}
	}
	return nil
}
