// File: lixenwraith/settings/builder.go
package settings

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ValidatorFunc defines the signature for a function that can validate a Settings instance.
// It receives the fully built *Settings and should return an error if validation fails.
type ValidatorFunc func(s *Settings) error

// Builder provides a fluent interface for building Settings instances
type Builder struct {
	opts       Options
	objects    []any
	filenames  []string
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new settings builder
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultOptions(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithFile sets the configuration file loaded on build and used as default save destination
func (b *Builder) WithFile(path string) *Builder {
	b.opts.File = path
	return b
}

// WithFormat sets the format used for destinations without an extension
func (b *Builder) WithFormat(format Format) *Builder {
	b.opts.Format = format
	return b
}

// WithSavePath sets the directory relative destinations are written to
func (b *Builder) WithSavePath(path string) *Builder {
	b.opts.SavePath = path
	return b
}

// WithStrict selects the accessor failure policy
func (b *Builder) WithStrict(strict bool) *Builder {
	b.opts.Strict = strict
	return b
}

// WithLogger sets the logger receiving save and load diagnostics
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// WithMaxDepth bounds how deep Save follows nested values
func (b *Builder) WithMaxDepth(depth int) *Builder {
	if depth <= 0 {
		b.err = fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidArgument, depth)
		return b
	}
	b.opts.MaxDepth = depth
	return b
}

// WithMaxFileSize limits the size of files read by the default backends.
// It has no effect on backends installed with WithBackend before the call.
func (b *Builder) WithMaxFileSize(size int64) *Builder {
	if size <= 0 {
		b.err = fmt.Errorf("%w: max file size must be positive, got %d", ErrInvalidArgument, size)
		return b
	}
	b.opts.MaxFileSize = size
	return b
}

// WithBackend installs a backend for format on top of the default backends
func (b *Builder) WithBackend(format Format, backend Backend) *Builder {
	if format == FormatAuto || backend == nil {
		b.err = fmt.Errorf("%w: backend requires a format and a non-nil implementation", ErrInvalidArgument)
		return b
	}
	if b.opts.Backends == nil {
		b.opts.Backends = defaultBackends(b.opts.MaxFileSize)
	}
	b.opts.Backends[format] = backend
	return b
}

// WithIntrospector shares an attribute introspector between instances
func (b *Builder) WithIntrospector(intro *Introspector) *Builder {
	b.opts.Introspector = intro
	return b
}

// WithObjects registers objects to save
func (b *Builder) WithObjects(objects ...any) *Builder {
	b.objects = append(b.objects, objects...)
	return b
}

// WithFilenames registers per-object destination files, in object order
func (b *Builder) WithFilenames(names ...string) *Builder {
	b.filenames = append(b.filenames, names...)
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Settings instance with all specified options
func (b *Builder) Build() (*Settings, error) {
	if b.err != nil {
		return nil, b.err
	}

	s, loadErr := NewWithOptions(b.opts)
	if loadErr != nil && !errors.Is(loadErr, ErrFileNotFound) {
		// ErrFileNotFound is not fatal, the file becomes the save destination
		return nil, loadErr
	}

	if err := s.AddObjects(b.objects...); err != nil {
		return nil, fmt.Errorf("failed to register objects: %w", err)
	}
	if err := s.AddFilenames(b.filenames...); err != nil {
		return nil, fmt.Errorf("failed to register filenames: %w", err)
	}

	for _, validator := range b.validators {
		if err := validator(s); err != nil {
			return nil, fmt.Errorf("settings validation failed: %w", err)
		}
	}

	// ErrFileNotFound or nil
	return s, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Settings {
	s, err := b.Build()
	if err != nil {
		// A missing file is not fatal for MustBuild, the instance can still save.
		if !errors.Is(err, ErrFileNotFound) {
			panic(fmt.Sprintf("settings build failed: %v", err))
		}
	}
	return s
}

// BuildAndScan builds and decodes a section of the loaded configuration into target
func (b *Builder) BuildAndScan(section string, target any) error {
	s, err := b.Build()
	if err != nil {
		return err
	}

	if err := s.Scan(section, target); err != nil {
		return fmt.Errorf("failed to scan loaded config into target: %w", err)
	}
	return nil
}
