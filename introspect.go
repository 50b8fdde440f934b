// FILE: lixenwraith/settings/introspect.go
package settings

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unicode"
	"unicode/utf8"
)

const accessorPrefix = "Get"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Attribute pairs a stored field with the accessor that exposes it.
type Attribute struct {
	Field    string // declared field name
	Accessor string // zero-argument method, e.g. GetHost
	Key      string // output key, e.g. host
}

// Describer is implemented by types that declare their attributes explicitly
// instead of relying on field/accessor name matching.
type Describer interface {
	SettingsAttributes() []Attribute
}

var describerType = reflect.TypeOf((*Describer)(nil)).Elem()

// Introspector discovers the externally readable attributes of struct types.
// Results are cached per type; explicit registrations take precedence.
type Introspector struct {
	mu       sync.RWMutex
	explicit map[reflect.Type][]Attribute
	cache    map[reflect.Type][]Attribute
}

// NewIntrospector creates an empty introspector.
func NewIntrospector() *Introspector {
	return &Introspector{
		explicit: make(map[reflect.Type][]Attribute),
		cache:    make(map[reflect.Type][]Attribute),
	}
}

// Register declares the attributes of the sample's type explicitly.
// Each accessor must exist on the pointer method set with an accepted signature.
func (in *Introspector) Register(sample any, attrs ...Attribute) error {
	ptrType, err := structPointerType(sample)
	if err != nil {
		return err
	}

	resolved, err := resolveAttributes(ptrType, attrs)
	if err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.explicit[ptrType] = resolved
	delete(in.cache, ptrType)
	return nil
}

// Discover returns the attributes of obj's type in declaration order.
func (in *Introspector) Discover(obj any) ([]Attribute, error) {
	ptrType, err := structPointerType(obj)
	if err != nil {
		return nil, err
	}
	return in.attributes(ptrType)
}

// attributes resolves the attribute list for a pointer-to-struct type.
func (in *Introspector) attributes(ptrType reflect.Type) ([]Attribute, error) {
	in.mu.RLock()
	if attrs, ok := in.explicit[ptrType]; ok {
		in.mu.RUnlock()
		return attrs, nil
	}
	if attrs, ok := in.cache[ptrType]; ok {
		in.mu.RUnlock()
		return attrs, nil
	}
	in.mu.RUnlock()

	var attrs []Attribute
	if ptrType.Implements(describerType) {
		declared := reflect.New(ptrType.Elem()).Interface().(Describer).SettingsAttributes()
		resolved, err := resolveAttributes(ptrType, declared)
		if err != nil {
			return nil, err
		}
		attrs = resolved
	} else {
		attrs = discoverAttributes(ptrType)
	}

	in.mu.Lock()
	in.cache[ptrType] = attrs
	in.mu.Unlock()
	return attrs, nil
}

// discoverAttributes pairs every declared field with a matching Get accessor.
// Fields of embedded structs are visited in place, checked against the outer
// method set where their accessors are promoted. Fields without an accessor are skipped.
func discoverAttributes(ptrType reflect.Type) []Attribute {
	var attrs []Attribute
	collectAttributes(ptrType, ptrType.Elem(), make(map[string]bool), make(map[reflect.Type]bool), &attrs)
	return attrs
}

func collectAttributes(ptrType, st reflect.Type, seen map[string]bool, embedding map[reflect.Type]bool, attrs *[]Attribute) {
	if embedding[st] {
		return
	}
	embedding[st] = true
	defer delete(embedding, st)

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if field.Name == "_" {
			continue
		}

		if field.Anonymous {
			embedded := field.Type
			if embedded.Kind() == reflect.Ptr {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				collectAttributes(ptrType, embedded, seen, embedding, attrs)
				continue
			}
		}

		accessor := accessorPrefix + upperFirst(field.Name)
		if seen[accessor] {
			continue
		}
		method, ok := ptrType.MethodByName(accessor)
		if !ok || !isAccessor(method.Type) {
			continue
		}

		seen[accessor] = true
		*attrs = append(*attrs, Attribute{
			Field:    field.Name,
			Accessor: accessor,
			Key:      keyFromAccessor(accessor),
		})
	}
}

func resolveAttributes(ptrType reflect.Type, attrs []Attribute) ([]Attribute, error) {
	resolved := make([]Attribute, 0, len(attrs))
	var errs []error

	for _, attr := range attrs {
		if attr.Accessor == "" && attr.Field != "" {
			attr.Accessor = accessorPrefix + upperFirst(attr.Field)
		}
		method, ok := ptrType.MethodByName(attr.Accessor)
		if !ok {
			errs = append(errs, fmt.Errorf("%s has no method %s", ptrType.Elem().Name(), attr.Accessor))
			continue
		}
		if !isAccessor(method.Type) {
			errs = append(errs, fmt.Errorf("%s.%s is not a zero-argument accessor", ptrType.Elem().Name(), attr.Accessor))
			continue
		}
		if attr.Key == "" {
			attr.Key = keyFromAccessor(attr.Accessor)
		}
		resolved = append(resolved, attr)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, errors.Join(errs...))
	}
	return resolved, nil
}

// isAccessor accepts func(recv) T and func(recv) (T, error) method types.
func isAccessor(mt reflect.Type) bool {
	if mt.NumIn() != 1 {
		return false
	}
	switch mt.NumOut() {
	case 1:
		return true
	case 2:
		return mt.Out(1) == errorType
	default:
		return false
	}
}

// structPointerType returns *T for a T or *T struct value.
func structPointerType(obj any) (reflect.Type, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: nil object", ErrInvalidArgument)
	}
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: expected struct or struct pointer, got %T", ErrInvalidArgument, obj)
	}
	return reflect.PointerTo(t), nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// keyFromAccessor strips the Get prefix and lower-cases the leading capital run,
// keeping the last capital of an initialism when a lower-case letter follows:
// GetHost -> host, GetURL -> url, GetHTTPPort -> httpPort.
func keyFromAccessor(accessor string) string {
	name := accessor
	if len(name) > len(accessorPrefix) && name[:len(accessorPrefix)] == accessorPrefix {
		name = name[len(accessorPrefix):]
	}

	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return name
	case upper == 1 || upper == len(runes):
		// single capital or all-caps name
	case unicode.IsLower(runes[upper]):
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
