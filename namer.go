// FILE: lixenwraith/settings/namer.go
package settings

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Identity accessors checked in order when naming a section.
var identityAccessors = []string{"GetId", "GetID"}

// sectionNamer derives unique section names for top-level objects.
// Counters are per type name and live for a single save pass.
type sectionNamer struct {
	counters map[string]int
	used     map[string]bool
}

func newSectionNamer() *sectionNamer {
	return &sectionNamer{
		counters: make(map[string]int),
		used:     make(map[string]bool),
	}
}

// nameFor returns TypeName_<id> when the object has a non-empty identity,
// otherwise TypeName_<n> with a 1-based counter for that type name.
func (n *sectionNamer) nameFor(ptr reflect.Value) (string, error) {
	typeName := sectionTypeName(ptr.Type().Elem())

	id, hasID, err := identityOf(ptr)
	if err != nil {
		return "", err
	}

	var name string
	if hasID && id != "" {
		name = typeName + "_" + id
	} else {
		n.counters[typeName]++
		name = typeName + "_" + strconv.Itoa(n.counters[typeName])
	}

	if n.used[name] {
		return "", fmt.Errorf("%w: %s", ErrDuplicateSection, name)
	}
	n.used[name] = true
	return name, nil
}

// identityOf invokes the identity accessor if the type has one.
func identityOf(ptr reflect.Value) (string, bool, error) {
	for _, accessor := range identityAccessors {
		m, ok := ptr.Type().MethodByName(accessor)
		if !ok || !isAccessor(m.Type) {
			continue
		}

		value, err := callAccessor(ptr.Method(m.Index))
		if err != nil {
			return "", true, &AccessorError{Type: ptr.Type().Elem().Name(), Accessor: accessor, Err: err}
		}
		if isNil(value) {
			return "", true, nil
		}
		id, err := scalarString(value.Interface())
		if err != nil {
			return "", true, &AccessorError{Type: ptr.Type().Elem().Name(), Accessor: accessor, Err: err}
		}
		return sanitizeName(id), true, nil
	}
	return "", false, nil
}

// sectionTypeName returns the unqualified type name with generic brackets
// and other characters unsafe for section headers replaced.
func sectionTypeName(t reflect.Type) string {
	name := t.Name()
	if name == "" {
		return "Object"
	}
	return sanitizeName(name)
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if isLetter || isDigit || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, s)
}
