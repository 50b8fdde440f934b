// FILE: lixenwraith/settings/toml.go
package settings

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// TOMLCodec maps sections to top-level tables. The encoder orders keys
// alphabetically; the decoder keeps document order where the metadata has it.
type TOMLCodec struct{}

// Marshal encodes tree as TOML.
func (TOMLCodec) Marshal(tree *Tree) ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(tree.Map()); err != nil {
		return nil, fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes TOML data into a tree.
func (TOMLCodec) Unmarshal(data []byte) (*Tree, error) {
	decoded := make(map[string]any)
	md, err := toml.Decode(string(data), &decoded)
	if err != nil {
		return nil, err
	}

	order := make(map[string]int)
	for i, key := range md.Keys() {
		k := key.String()
		if _, seen := order[k]; !seen {
			order[k] = i
		}
	}
	return orderedTree(decoded, "", order), nil
}

// orderedTree builds a tree whose keys follow their document position.
// Keys missing from order sort last, alphabetically.
func orderedTree(m map[string]any, prefix string, order map[string]int) *Tree {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, iok := order[joinPath(prefix, keys[i])]
		pj, jok := order[joinPath(prefix, keys[j])]
		switch {
		case iok && jok && pi != pj:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})

	t := NewTree()
	for _, k := range keys {
		t.Set(k, orderedValue(m[k], joinPath(prefix, k), order))
	}
	return t
}

func orderedValue(v any, path string, order map[string]int) any {
	switch node := v.(type) {
	case map[string]any:
		return orderedTree(node, path, order)
	case []map[string]any:
		items := make([]any, len(node))
		for i, item := range node {
			items[i] = orderedTree(item, path, order)
		}
		return items
	case []any:
		items := make([]any, len(node))
		for i, item := range node {
			items[i] = orderedValue(item, path, order)
		}
		return items
	default:
		return valueFromPlain(node)
	}
}
