// FILE: lixenwraith/settings/ini.go
package settings

import (
	"bytes"
	"fmt"

	"gopkg.in/ini.v1"
)

// INICodec writes one [Section] per top-level tree entry. Nested trees and
// sequences are flattened into dotted keys ("db.host", "tags.0").
// Root-level scalars go to the unnamed default section.
type INICodec struct{}

// Marshal encodes tree as INI.
func (INICodec) Marshal(tree *Tree) ([]byte, error) {
	file := ini.Empty()

	for _, name := range tree.Keys() {
		value, _ := tree.Get(name)

		if section, ok := value.(*Tree); ok {
			sec, err := file.NewSection(name)
			if err != nil {
				return nil, fmt.Errorf("invalid section %q: %w", name, err)
			}
			if err := writeINIKeys(sec, func(emit func(path, value string)) {
				flattenTree(section, "", emit)
			}); err != nil {
				return nil, fmt.Errorf("section %q: %w", name, err)
			}
			continue
		}

		sec := file.Section(ini.DefaultSection)
		if err := writeINIKeys(sec, func(emit func(path, value string)) {
			flattenValue(name, value, emit)
		}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode INI: %w", err)
	}
	return buf.Bytes(), nil
}

func writeINIKeys(sec *ini.Section, flatten func(emit func(path, value string))) error {
	var firstErr error
	flatten(func(path, value string) {
		if firstErr != nil {
			return
		}
		if _, err := sec.NewKey(path, value); err != nil {
			firstErr = fmt.Errorf("invalid key %q: %w", path, err)
		}
	})
	return firstErr
}

// Unmarshal decodes INI data, rebuilding nested trees from dotted keys.
func (INICodec) Unmarshal(data []byte) (*Tree, error) {
	file, err := ini.LoadSources(ini.LoadOptions{}, data)
	if err != nil {
		return nil, err
	}

	tree := NewTree()
	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			for _, key := range sec.Keys() {
				setPath(tree, key.Name(), key.Value())
			}
			continue
		}

		section := NewTree()
		for _, key := range sec.Keys() {
			setPath(section, key.Name(), key.Value())
		}
		tree.Set(sec.Name(), normalizeChildren(section))
	}

	return normalizeChildren(tree), nil
}
