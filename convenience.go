// File: lixenwraith/settings/convenience.go
package settings

import (
	"fmt"
	"io"
	"strings"
)

// Quick saves objects to path with default options in a single call.
// A path without extension is written as INI.
func Quick(path string, objects ...any) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrNoFilename)
	}

	s := New()
	s.file = path
	if err := s.AddObjects(objects...); err != nil {
		return err
	}
	return s.Save()
}

// MustQuick is like Quick but panics on error
func MustQuick(path string, objects ...any) {
	if err := Quick(path, objects...); err != nil {
		panic(fmt.Sprintf("settings save failed: %v", err))
	}
}

// Debug returns a formatted string showing the registers and the loaded configuration
func (s *Settings) Debug() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("Settings Debug Info:\n")
	b.WriteString(fmt.Sprintf("Format: %s\n", s.format))
	b.WriteString(fmt.Sprintf("File: %s\n", s.file))
	b.WriteString(fmt.Sprintf("Save path: %s\n", s.savePath))
	b.WriteString(fmt.Sprintf("Strict: %v\n", s.opts.Strict))

	b.WriteString("Objects:\n")
	for i, obj := range s.objects {
		b.WriteString(fmt.Sprintf("  %d: %T", i, obj))
		if i < len(s.filenames) {
			b.WriteString(fmt.Sprintf(" -> %s", s.filenames[i]))
		}
		b.WriteString("\n")
	}

	if len(s.skipped) > 0 {
		b.WriteString("Skipped:\n")
		for _, err := range s.skipped {
			b.WriteString(fmt.Sprintf("  %v\n", err))
		}
	}

	if s.loaded != nil {
		b.WriteString(fmt.Sprintf("Loaded from %s:\n", s.loadedPath))
		flattenTree(s.loaded, "", func(path, value string) {
			b.WriteString(fmt.Sprintf("  %s = %s\n", path, value))
		})
	}

	return b.String()
}

// Dump writes the loaded configuration to w in the current format
func (s *Settings) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return ErrNoFileLoaded
	}

	codec, ok := CodecFor(s.format)
	if !ok {
		return fmt.Errorf("%w: no codec for format %q", ErrUnknownExtension, s.format)
	}

	data, err := codec.Marshal(s.loaded)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
