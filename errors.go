// FILE: lixenwraith/settings/errors.go
package settings

import (
	"errors"
	"fmt"
)

// Errors returned by settings operations.
var (
	// ErrNoFileLoaded is returned when the loaded configuration is requested before LoadFile succeeded.
	ErrNoFileLoaded = errors.New("no config file loaded, use LoadFile to load a file")

	// ErrNoObjects is returned by Save when the object register is empty.
	ErrNoObjects = errors.New("there are no objects in the register")

	// ErrUnknownExtension is returned when no backend handles a file extension.
	ErrUnknownExtension = errors.New("unable to determine file format from extension")

	// ErrInvalidArgument is returned when a non-object is passed where an object is expected.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCyclicGraph is returned when an object graph references one of its own ancestors.
	ErrCyclicGraph = errors.New("cyclic object graph")

	// ErrDuplicateSection is returned when two objects resolve to the same section name.
	ErrDuplicateSection = errors.New("duplicate section")

	// ErrAccessorFailure matches every *AccessorError.
	ErrAccessorFailure = errors.New("accessor failed")

	// ErrFileNotFound is returned by readers when the config file does not exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrParse matches every *ParseError.
	ErrParse = errors.New("config parse error")

	// ErrNoFilename is returned by Save when an object has no destination file.
	ErrNoFilename = errors.New("no filename set for saving")

	// ErrFileTooLarge is returned when a config file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("config file too large")
)

// AccessorError describes a failed accessor invocation.
type AccessorError struct {
	Type     string // Go type name of the receiver
	Accessor string // method name, e.g. GetHost
	Path     string // attribute path inside the section
	Err      error  // returned error or recovered panic
}

// Error implements the error interface.
func (e *AccessorError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("accessor %s.%s failed at %q: %v", e.Type, e.Accessor, e.Path, e.Err)
	}
	return fmt.Sprintf("accessor %s.%s failed: %v", e.Type, e.Accessor, e.Err)
}

// Is reports ErrAccessorFailure as a match.
func (e *AccessorError) Is(target error) bool {
	return target == ErrAccessorFailure
}

// Unwrap returns the underlying error.
func (e *AccessorError) Unwrap() error {
	return e.Err
}

// ParseError represents an error while decoding a configuration file.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s config file '%s': %v", e.Format, e.Path, e.Err)
}

// Is reports ErrParse as a match.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
