// FILE: lixenwraith/settings/tree.go
package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tree is an insertion-ordered key-value structure shared by every format.
// Values are string scalars, nested *Tree values, or []any sequences of those.
// The root tree of a save maps section names to section trees.
type Tree struct {
	keys   []string
	values map[string]any
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{values: make(map[string]any)}
}

// Set stores a value under key. Replacing an existing key keeps its position.
func (t *Tree) Set(key string, value any) {
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value stored directly under key.
func (t *Tree) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Tree) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of direct keys.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Section returns the nested tree stored under name.
func (t *Tree) Section(name string) (*Tree, bool) {
	v, ok := t.Get(name)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Tree)
	return sub, ok
}

// Lookup resolves a dot-separated path. Numeric segments index into sequences.
func (t *Tree) Lookup(path string) (any, bool) {
	if path == "" {
		return t, t != nil
	}
	var current any = t
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case *Tree:
			v, ok := node.Get(segment)
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Map converts the tree into nested map[string]any and []any values.
func (t *Tree) Map() map[string]any {
	out := make(map[string]any, t.Len())
	if t == nil {
		return out
	}
	for _, k := range t.keys {
		out[k] = plainValue(t.values[k])
	}
	return out
}

func plainValue(v any) any {
	switch node := v.(type) {
	case *Tree:
		return node.Map()
	case []any:
		out := make([]any, len(node))
		for i, item := range node {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

// treeBuilder assembles section trees into the root tree of one save pass.
type treeBuilder struct {
	root *Tree
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{root: NewTree()}
}

// add inserts a section, preserving registration order.
func (b *treeBuilder) add(name string, section *Tree) error {
	if b.root.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateSection, name)
	}
	b.root.Set(name, section)
	return nil
}

func (b *treeBuilder) build() *Tree {
	return b.root
}

// flattenTree emits every scalar leaf with its dot-notation path.
// Sequence items are addressed by index, e.g. "tags.0".
func flattenTree(t *Tree, prefix string, emit func(path, value string)) {
	for _, key := range t.keys {
		flattenValue(joinPath(prefix, key), t.values[key], emit)
	}
}

func flattenValue(path string, v any, emit func(path, value string)) {
	switch node := v.(type) {
	case *Tree:
		flattenTree(node, path, emit)
	case []any:
		for i, item := range node {
			flattenValue(joinPath(path, strconv.Itoa(i)), item, emit)
		}
	case string:
		emit(path, node)
	default:
		emit(path, fmt.Sprint(node))
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// setPath sets a value in a nested tree using a dot-notation path.
// Intermediate trees are created as needed; a scalar in the way is replaced.
func setPath(t *Tree, path string, value any) {
	segments := strings.Split(path, ".")
	current := t

	for _, segment := range segments[:len(segments)-1] {
		next, exists := current.Get(segment)
		nextTree, isTree := next.(*Tree)
		if !exists || !isTree {
			nextTree = NewTree()
			current.Set(segment, nextTree)
		}
		current = nextTree
	}

	current.Set(segments[len(segments)-1], value)
}

// normalizeLists turns every subtree keyed exactly "0".."n-1" into a sequence.
func normalizeLists(v any) any {
	t, ok := v.(*Tree)
	if !ok {
		return v
	}
	for _, k := range t.keys {
		t.values[k] = normalizeLists(t.values[k])
	}
	if !isIndexSequence(t.keys) {
		return t
	}
	items := make([]any, len(t.keys))
	for _, k := range t.keys {
		idx, _ := strconv.Atoi(k)
		items[idx] = t.values[k]
	}
	return items
}

// normalizeChildren applies normalizeLists below t while keeping t itself a tree.
func normalizeChildren(t *Tree) *Tree {
	for _, k := range t.keys {
		t.values[k] = normalizeLists(t.values[k])
	}
	return t
}

func isIndexSequence(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	seen := make([]bool, len(keys))
	for _, k := range keys {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= len(keys) || strconv.Itoa(idx) != k || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// treeFromPlain converts decoded map/slice data into a tree.
// Map keys are sorted since plain maps carry no order.
func treeFromPlain(m map[string]any) *Tree {
	t := NewTree()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.Set(k, valueFromPlain(m[k]))
	}
	return t
}

func valueFromPlain(v any) any {
	switch node := v.(type) {
	case map[string]any:
		return treeFromPlain(node)
	case []map[string]any:
		items := make([]any, len(node))
		for i, item := range node {
			items[i] = treeFromPlain(item)
		}
		return items
	case []any:
		items := make([]any, len(node))
		for i, item := range node {
			items[i] = valueFromPlain(item)
		}
		return items
	case nil:
		return ""
	default:
		s, err := scalarString(node)
		if err != nil {
			return fmt.Sprint(node)
		}
		return s
	}
}
