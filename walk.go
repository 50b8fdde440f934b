// FILE: lixenwraith/settings/walk.go
package settings

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// visitKey identifies a referenced value (struct pointer, map or slice) for cycle detection.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

// accessorSite names the accessor that produced a value, for error reporting.
type accessorSite struct {
	typ      string
	accessor string
}

// walker flattens one object graph into section trees.
// A walker serves a single save pass; its ancestor set never outlives it.
type walker struct {
	intro    *Introspector
	strict   bool
	maxDepth int
	depth    int
	logger   *zap.Logger
	visiting map[visitKey]struct{}
	skipped  []error
}

func newWalker(intro *Introspector, strict bool, maxDepth int, logger *zap.Logger) *walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &walker{
		intro:    intro,
		strict:   strict,
		maxDepth: maxDepth,
		logger:   logger,
		visiting: make(map[visitKey]struct{}),
	}
}

// walkRoot names and walks a top-level registered object.
func (w *walker) walkRoot(obj any, namer *sectionNamer) (string, *Tree, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return "", nil, fmt.Errorf("%w: nil object", ErrInvalidArgument)
	}
	if _, err := structPointerType(obj); err != nil {
		return "", nil, err
	}

	ptr := addressable(v)
	name, err := namer.nameFor(ptr)
	if err != nil {
		return "", nil, err
	}

	section, err := w.walkObject(ptr, name)
	if err != nil {
		return "", nil, err
	}
	return name, section, nil
}

// walkObject walks a pointer to struct. Scalar attributes are emitted first,
// nested trees and object sequences after them, each in declaration order.
func (w *walker) walkObject(ptr reflect.Value, path string) (*Tree, error) {
	release, err := w.enter(ptr, path)
	if err != nil {
		return nil, err
	}
	defer release()

	attrs, err := w.intro.attributes(ptr.Type())
	if err != nil {
		return nil, err
	}

	typeName := ptr.Type().Elem().Name()
	section := NewTree()
	var nestedKeys []string
	nested := make(map[string]any)

	for _, attr := range attrs {
		attrPath := joinPath(path, attr.Key)
		site := accessorSite{typ: typeName, accessor: attr.Accessor}

		result, err := callAccessor(ptr.MethodByName(attr.Accessor))
		if err != nil {
			if err := w.fail(site, attrPath, err); err != nil {
				return nil, err
			}
			continue
		}

		value, ok, err := w.classify(result, attrPath, site)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if isNestedValue(value) {
			nestedKeys = append(nestedKeys, attr.Key)
			nested[attr.Key] = value
			continue
		}
		section.Set(attr.Key, value)
	}

	for _, key := range nestedKeys {
		section.Set(key, nested[key])
	}
	return section, nil
}

// enter records v as an ancestor and descends one nesting level.
// Re-entering an ancestor is a cycle, and so is nesting past maxDepth:
// struct copies and zero-sized values never repeat an address.
func (w *walker) enter(v reflect.Value, path string) (func(), error) {
	if w.depth >= w.maxDepth {
		return nil, fmt.Errorf("%w: %s exceeds maximum nesting depth %d", ErrCyclicGraph, path, w.maxDepth)
	}

	key, tracked := visitKeyOf(v)
	if tracked {
		if _, seen := w.visiting[key]; seen {
			return nil, fmt.Errorf("%w: %s refers back to an enclosing %s", ErrCyclicGraph, path, refName(v.Type()))
		}
		w.visiting[key] = struct{}{}
	}

	w.depth++
	return func() {
		w.depth--
		if tracked {
			delete(w.visiting, key)
		}
	}, nil
}

// visitKeyOf returns the identity of a reference value. Zero-sized targets
// and empty slices share addresses and are not tracked.
func visitKeyOf(v reflect.Value) (visitKey, bool) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return visitKey{}, false
		}
	case reflect.Map:
		if v.IsNil() {
			return visitKey{}, false
		}
	case reflect.Slice:
		if v.Cap() == 0 || v.Type().Elem().Size() == 0 {
			return visitKey{}, false
		}
	default:
		return visitKey{}, false
	}
	return visitKey{typ: v.Type(), ptr: v.Pointer()}, true
}

func refName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr && t.Elem().Name() != "" {
		return t.Elem().Name()
	}
	return t.String()
}

// classify converts an accessor result into a tree value.
// The boolean is false when the value is omitted from the output.
func (w *walker) classify(v reflect.Value, path string, site accessorSite) (any, bool, error) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, false, nil
	}
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return nil, false, nil
	}

	if v.Type().Implements(textMarshalerType) {
		return w.scalar(v, path, site)
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.Elem().Kind() == reflect.Struct {
			tree, err := w.walkObject(v, path)
			if err != nil {
				return nil, false, err
			}
			return tree, true, nil
		}
		return w.classify(v.Elem(), path, site)

	case reflect.Struct:
		ptr := addressable(v)
		if ptr.Type().Implements(textMarshalerType) {
			return w.scalar(ptr, path, site)
		}
		tree, err := w.walkObject(ptr, path)
		if err != nil {
			return nil, false, err
		}
		return tree, true, nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return w.scalar(v, path, site)
		}
		return w.sequence(v, path, site)

	case reflect.Array:
		return w.sequence(v, path, site)

	case reflect.Map:
		if v.IsNil() {
			return nil, false, nil
		}
		return w.mapping(v, path, site)

	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		err := fmt.Errorf("unsupported value kind %s", v.Kind())
		return nil, false, w.fail(site, path, err)
	}

	return w.scalar(v, path, site)
}

func (w *walker) scalar(v reflect.Value, path string, site accessorSite) (any, bool, error) {
	s, err := scalarString(v.Interface())
	if err != nil {
		return nil, false, w.fail(site, path, err)
	}
	return s, true, nil
}

// sequence walks slices and arrays. Nil elements are dropped.
func (w *walker) sequence(v reflect.Value, path string, site accessorSite) (any, bool, error) {
	leave, err := w.enter(v, path)
	if err != nil {
		return nil, false, err
	}
	defer leave()

	items := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item, ok, err := w.classify(v.Index(i), joinPath(path, strconv.Itoa(i)), site)
		if err != nil {
			return nil, false, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, true, nil
}

// mapping turns a map into a tree with sorted keys.
func (w *walker) mapping(v reflect.Value, path string, site accessorSite) (any, bool, error) {
	leave, err := w.enter(v, path)
	if err != nil {
		return nil, false, err
	}
	defer leave()

	type pair struct {
		key   string
		value reflect.Value
	}

	pairs := make([]pair, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := scalarString(iter.Key().Interface())
		if err != nil {
			return nil, false, w.fail(site, path, err)
		}
		pairs = append(pairs, pair{key: key, value: iter.Value()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	tree := NewTree()
	for _, p := range pairs {
		value, ok, err := w.classify(p.value, joinPath(path, p.key), site)
		if err != nil {
			return nil, false, err
		}
		if ok {
			tree.Set(p.key, value)
		}
	}
	return tree, true, nil
}

// fail applies the accessor failure policy: strict mode aborts,
// lenient mode logs and records the failure.
func (w *walker) fail(site accessorSite, path string, cause error) error {
	accErr := &AccessorError{Type: site.typ, Accessor: site.accessor, Path: path, Err: cause}
	if w.strict {
		return accErr
	}

	w.logger.Warn("skipping attribute after accessor failure",
		zap.String("type", site.typ),
		zap.String("accessor", site.accessor),
		zap.String("path", path),
		zap.Error(cause))
	w.skipped = append(w.skipped, accErr)
	return nil
}

// callAccessor invokes a zero-argument accessor, converting panics and
// a non-nil trailing error into an error.
func callAccessor(method reflect.Value) (result reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	out := method.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}

// addressable returns a pointer to v, copying struct values so that
// pointer-receiver accessors are reachable.
func addressable(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Ptr {
		return v
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func isNestedValue(v any) bool {
	switch node := v.(type) {
	case *Tree:
		return true
	case []any:
		for _, item := range node {
			if isNestedValue(item) {
				return true
			}
		}
	}
	return false
}
