// FILE: lixenwraith/settings/settings.go
package settings

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// State describes what a Settings instance currently holds.
type State int

const (
	// StateEmpty means nothing was registered or loaded
	StateEmpty State = iota
	// StateHasObjects means objects are registered but not yet saved
	StateHasObjects
	// StateLoaded means a config file was loaded
	StateLoaded
	// StateSaved means the registered objects were written at least once
	StateSaved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateHasObjects:
		return "has-objects"
	case StateLoaded:
		return "loaded"
	case StateSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Settings persists registered objects into configuration files and loads
// configuration files back into a generic Tree.
// Calls on one instance are serialized by an internal mutex.
type Settings struct {
	mu         sync.Mutex
	opts       Options
	logger     *zap.Logger
	format     Format
	file       string
	savePath   string
	objects    []any
	filenames  []string
	loaded     *Tree
	loadedPath string
	saved      bool
	skipped    []error
}

// New creates a Settings instance with default options.
func New() *Settings {
	s, _ := NewWithOptions(DefaultOptions())
	return s
}

// NewWithOptions creates a Settings instance and loads opts.File when set.
// A missing file is not fatal: the instance is returned together with
// ErrFileNotFound and the file remains the default save destination.
func NewWithOptions(opts Options) (*Settings, error) {
	opts = opts.withDefaults()

	format := opts.Format
	if format == FormatAuto {
		format = FormatINI
		if opts.File != "" {
			if detected, err := formatForPath(opts.File, opts.Backends); err == nil {
				format = detected
			}
		}
	}
	if _, ok := opts.Backends[format]; !ok {
		return nil, fmt.Errorf("%w: no backend for format %q", ErrUnknownExtension, format)
	}

	s := &Settings{
		opts:     opts,
		logger:   opts.Logger,
		format:   format,
		file:     opts.File,
		savePath: opts.SavePath,
	}

	if opts.File != "" {
		if err := s.load(opts.File, format); err != nil {
			if errors.Is(err, ErrFileNotFound) {
				return s, err
			}
			return nil, err
		}
	}

	return s, nil
}

// AddObject registers a struct or struct pointer for saving.
func (s *Settings) AddObject(obj any) error {
	if err := validateObject(obj); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, obj)
	return nil
}

// AddObjects registers several objects. Nothing is registered if any is invalid.
func (s *Settings) AddObjects(objects ...any) error {
	var errs []error
	for i, obj := range objects {
		if err := validateObject(obj); err != nil {
			errs = append(errs, fmt.Errorf("object %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, objects...)
	return nil
}

// AddFilename registers the destination file of the next registered object
// position: the n-th filename applies to the n-th object.
func (s *Settings) AddFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filenames = append(s.filenames, name)
	return nil
}

// AddFilenames registers several destination filenames in object order.
func (s *Settings) AddFilenames(names ...string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("%w: empty filename", ErrInvalidArgument)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filenames = append(s.filenames, names...)
	return nil
}

// SetSavePath sets the directory relative destinations are written to.
// An empty path is ignored.
func (s *Settings) SetSavePath(path string) {
	if path == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.savePath = path
}

// LoadFile reads a configuration file, choosing the format from its extension.
// On success the file also becomes the default save destination.
func (s *Settings) LoadFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	format, err := formatForPath(path, s.opts.Backends)
	if err != nil {
		return err
	}
	if err := s.load(path, format); err != nil {
		return err
	}

	s.format = format
	s.file = path
	return nil
}

func (s *Settings) load(path string, format Format) error {
	tree, err := s.opts.Backends[format].Read(path)
	if err != nil {
		return err
	}

	s.loaded = tree
	s.loadedPath = path
	s.logger.Debug("config file loaded",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("sections", tree.Len()))
	return nil
}

// destination groups the sections written to one file.
type destination struct {
	path    string
	format  Format
	builder *treeBuilder
}

// Save walks every registered object and writes the resulting trees.
// All trees are built before the first write, so a walk error leaves no
// partial output behind.
func (s *Settings) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.objects) == 0 {
		return ErrNoObjects
	}

	namer := newSectionNamer()
	w := newWalker(s.opts.Introspector, s.opts.Strict, s.opts.MaxDepth, s.logger)

	var order []string
	dests := make(map[string]*destination)

	for i, obj := range s.objects {
		path, format, err := s.destinationFor(i)
		if err != nil {
			return err
		}

		dest, exists := dests[path]
		if !exists {
			dest = &destination{path: path, format: format, builder: newTreeBuilder()}
			dests[path] = dest
			order = append(order, path)
		}

		name, section, err := w.walkRoot(obj, namer)
		if err != nil {
			return fmt.Errorf("failed to process object %d (%T): %w", i, obj, err)
		}
		if err := dest.builder.add(name, section); err != nil {
			return err
		}
	}

	s.skipped = w.skipped

	for _, path := range order {
		dest := dests[path]
		tree := dest.builder.build()
		s.logger.Debug("writing config file",
			zap.String("path", path),
			zap.String("format", string(dest.format)),
			zap.Int("sections", tree.Len()))

		if err := s.opts.Backends[dest.format].Write(tree, path); err != nil {
			return fmt.Errorf("failed to save '%s': %w", path, err)
		}
	}

	s.saved = true
	s.logger.Info("settings saved",
		zap.Int("objects", len(s.objects)),
		zap.Int("files", len(order)),
		zap.Int("skipped", len(s.skipped)))
	return nil
}

// destinationFor resolves the file and format for the i-th object.
func (s *Settings) destinationFor(i int) (string, Format, error) {
	name := s.file
	if i < len(s.filenames) {
		name = s.filenames[i]
	}
	if name == "" {
		return "", "", fmt.Errorf("%w: object %d", ErrNoFilename, i)
	}

	if s.savePath != "" && !filepath.IsAbs(name) {
		name = filepath.Join(s.savePath, name)
	}
	if ExtractExtension(name) == "" {
		name += "." + string(s.format)
	}

	format, err := formatForPath(name, s.opts.Backends)
	if err != nil {
		return "", "", err
	}
	return name, format, nil
}

// GetConfigAsObject returns the loaded configuration tree.
func (s *Settings) GetConfigAsObject() (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return nil, ErrNoFileLoaded
	}
	return s.loaded, nil
}

// GetConfigAsArray returns the loaded configuration as nested maps and slices.
func (s *Settings) GetConfigAsArray() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return nil, ErrNoFileLoaded
	}
	return s.loaded.Map(), nil
}

// Scan decodes a section of the loaded configuration into target.
func (s *Settings) Scan(section string, target any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return ErrNoFileLoaded
	}
	return s.loaded.Scan(section, target)
}

// WriteLoaded writes the loaded configuration to path in the format of its extension.
func (s *Settings) WriteLoaded(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return ErrNoFileLoaded
	}
	format, err := formatForPath(path, s.opts.Backends)
	if err != nil {
		return err
	}
	if err := s.opts.Backends[format].Write(s.loaded, path); err != nil {
		return fmt.Errorf("failed to save '%s': %w", path, err)
	}
	return nil
}

// Reset clears the object and filename registers. The loaded configuration is kept.
func (s *Settings) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects = nil
	s.filenames = nil
	s.skipped = nil
	s.saved = false
}

// State reports the most advanced state reached.
func (s *Settings) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.saved:
		return StateSaved
	case s.loaded != nil:
		return StateLoaded
	case len(s.objects) > 0:
		return StateHasObjects
	default:
		return StateEmpty
	}
}

// Format returns the current default format.
func (s *Settings) Format() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// File returns the default save destination.
func (s *Settings) File() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// Skipped returns the accessor failures skipped by the last Save in lenient mode.
func (s *Settings) Skipped() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]error, len(s.skipped))
	copy(out, s.skipped)
	return out
}

// validateObject accepts non-nil structs and struct pointers.
func validateObject(obj any) error {
	if _, err := structPointerType(obj); err != nil {
		return err
	}
	if v := reflect.ValueOf(obj); v.Kind() == reflect.Ptr && v.IsNil() {
		return fmt.Errorf("%w: nil %T", ErrInvalidArgument, obj)
	}
	return nil
}
