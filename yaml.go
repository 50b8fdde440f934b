// FILE: lixenwraith/settings/yaml.go
package settings

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLCodec maps sections to top-level mappings and keeps key order both ways.
type YAMLCodec struct{}

// Marshal encodes tree as YAML with scalars tagged as strings.
func (YAMLCodec) Marshal(tree *Tree) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{yamlNode(tree)}}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal config data to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlNode(v any) *yaml.Node {
	switch node := v.(type) {
	case *Tree:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range node.Keys() {
			value, _ := node.Get(key)
			mapping.Content = append(mapping.Content, yamlScalar(key), yamlNode(value))
		}
		return mapping
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range node {
			seq.Content = append(seq.Content, yamlNode(item))
		}
		return seq
	default:
		return yamlScalar(fmt.Sprint(node))
	}
}

func yamlScalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Unmarshal decodes a YAML document whose top level is a mapping.
func (YAMLCodec) Unmarshal(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewTree(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level YAML node must be a mapping, got kind %d", root.Kind)
	}

	value, err := yamlValue(root)
	if err != nil {
		return nil, err
	}
	return value.(*Tree), nil
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		t := NewTree()
		for i := 0; i+1 < len(n.Content); i += 2 {
			value, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			t.Set(n.Content[i].Value, value)
		}
		return t, nil
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, child := range n.Content {
			item, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("unresolved alias at line %d", n.Line)
		}
		return yamlValue(n.Alias)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}
