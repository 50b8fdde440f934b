// FILE: lixenwraith/settings/options.go
package settings

import "go.uber.org/zap"

// DefaultMaxDepth bounds object graph nesting during Save
const DefaultMaxDepth = 32

// Options configures a Settings instance.
type Options struct {
	// File is loaded on construction when it exists, and is the default save destination
	File string

	// Format used for destinations without an extension.
	// FormatAuto derives it from File and falls back to INI.
	Format Format

	// SavePath is the directory relative destinations are resolved against
	SavePath string

	// Strict aborts Save on the first accessor failure instead of skipping the attribute
	Strict bool

	// MaxDepth bounds how deep Save follows nested objects, maps and sequences.
	// Exceeding it is reported as ErrCyclicGraph. Zero selects DefaultMaxDepth.
	MaxDepth int

	// MaxFileSize limits the size of files read by the default backends
	MaxFileSize int64

	// Logger receives save/load diagnostics. Nil disables logging.
	Logger *zap.Logger

	// Backends maps formats (file extensions) to readers and writers.
	// Nil installs DefaultBackends with MaxFileSize applied.
	Backends map[Format]Backend

	// Introspector discovers object attributes. Nil creates a private one.
	Introspector *Introspector
}

// DefaultOptions returns the standard options: INI, lenient accessor policy,
// default backends and no logging.
func DefaultOptions() Options {
	return Options{
		Format:      FormatAuto,
		MaxDepth:    DefaultMaxDepth,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Introspector == nil {
		o.Introspector = NewIntrospector()
	}
	if o.Backends == nil {
		o.Backends = defaultBackends(o.MaxFileSize)
	}
	return o
}
