// FILE: lixenwraith/settings/format.go
package settings

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a configuration file format by its extension.
type Format string

const (
	// FormatAuto selects the format from the file extension, falling back to INI
	FormatAuto Format = ""
	// FormatINI reads and writes INI files
	FormatINI Format = "ini"
	// FormatXML reads and writes XML files
	FormatXML Format = "xml"
	// FormatTOML reads and writes TOML files, available through ExtendedBackends
	FormatTOML Format = "toml"
	// FormatYAML reads and writes YAML files, available through ExtendedBackends
	FormatYAML Format = "yaml"

	formatYML Format = "yml"
)

// Codec converts between a Tree and the bytes of one file format.
type Codec interface {
	Marshal(tree *Tree) ([]byte, error)
	Unmarshal(data []byte) (*Tree, error)
}

// ConfigReader loads a configuration file into a Tree.
type ConfigReader interface {
	Read(path string) (*Tree, error)
}

// ConfigWriter persists a Tree to a configuration file.
type ConfigWriter interface {
	Write(tree *Tree, path string) error
}

// Backend reads and writes one format.
type Backend interface {
	ConfigReader
	ConfigWriter
}

// DefaultBackends returns the INI and XML file backends.
func DefaultBackends() map[Format]Backend {
	return defaultBackends(DefaultMaxFileSize)
}

func defaultBackends(maxFileSize int64) map[Format]Backend {
	return map[Format]Backend{
		FormatINI: NewFileBackend(FormatINI, INICodec{}, maxFileSize),
		FormatXML: NewFileBackend(FormatXML, XMLCodec{}, maxFileSize),
	}
}

// ExtendedBackends returns the default backends plus TOML and YAML.
func ExtendedBackends() map[Format]Backend {
	backends := DefaultBackends()
	backends[FormatTOML] = NewFileBackend(FormatTOML, TOMLCodec{}, DefaultMaxFileSize)
	backends[FormatYAML] = NewFileBackend(FormatYAML, YAMLCodec{}, DefaultMaxFileSize)
	backends[formatYML] = backends[FormatYAML]
	return backends
}

// CodecFor returns the built-in codec of format.
func CodecFor(format Format) (Codec, bool) {
	switch format {
	case FormatINI:
		return INICodec{}, true
	case FormatXML:
		return XMLCodec{}, true
	case FormatTOML:
		return TOMLCodec{}, true
	case FormatYAML, formatYML:
		return YAMLCodec{}, true
	default:
		return nil, false
	}
}

// ExtractExtension returns the lower-cased text after the last dot of the
// final path segment: "cfg.ini" -> "ini", "archive.tar.gz" -> "gz",
// "noext" -> "".
func ExtractExtension(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// formatForPath resolves the backend format of a file path.
func formatForPath(path string, backends map[Format]Backend) (Format, error) {
	ext := ExtractExtension(path)
	format := Format(ext)
	if ext == "" {
		return "", fmt.Errorf("%w: '%s' has no extension", ErrUnknownExtension, path)
	}
	if _, ok := backends[format]; !ok {
		return "", fmt.Errorf("%w: '%s' (extension %q)", ErrUnknownExtension, path, ext)
	}
	return format, nil
}
