// FILE: lixenwraith/settings/xml.go
package settings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	xmlRootElement = "settings"
	xmlItemElement = "item"
	xmlKindAttr    = "kind"
	xmlKindList    = "list"
)

// XMLCodec writes a <settings> document with one element per section and
// one child element per key. Sequences become <key kind="list"><item/>...</key>.
// On read, any root element name is accepted and repeated siblings form a sequence.
type XMLCodec struct{}

// Marshal encodes tree as an indented XML document.
func (XMLCodec) Marshal(tree *Tree) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "    ")

	root := xml.StartElement{Name: xml.Name{Local: xmlRootElement}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	if err := encodeXMLTree(enc, tree); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeXMLTree(enc *xml.Encoder, t *Tree) error {
	for _, key := range t.Keys() {
		value, _ := t.Get(key)
		if err := encodeXMLValue(enc, key, value); err != nil {
			return err
		}
	}
	return nil
}

func encodeXMLValue(enc *xml.Encoder, name string, value any) error {
	if !isValidXMLName(name) {
		return fmt.Errorf("key %q is not a valid XML element name", name)
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}

	switch node := value.(type) {
	case *Tree:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if err := encodeXMLTree(enc, node); err != nil {
			return err
		}

	case []any:
		start.Attr = []xml.Attr{{Name: xml.Name{Local: xmlKindAttr}, Value: xmlKindList}}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, item := range node {
			if err := encodeXMLValue(enc, xmlItemElement, item); err != nil {
				return err
			}
		}

	default:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(fmt.Sprint(node))); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

// xmlNode is the generic element tree built while decoding.
type xmlNode struct {
	name     string
	list     bool
	text     strings.Builder
	children []*xmlNode
}

// Unmarshal decodes an XML document into a tree.
func (XMLCodec) Unmarshal(data []byte) (*Tree, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *xmlNode
	var stack []*xmlNode

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local}
			for _, attr := range t.Attr {
				if attr.Name.Local == xmlKindAttr && attr.Value == xmlKindList {
					node.list = true
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("missing root element")
	}
	return xmlNodeTree(root), nil
}

// xmlNodeTree groups children by name in first-appearance order.
func xmlNodeTree(n *xmlNode) *Tree {
	t := NewTree()
	groups := make(map[string][]*xmlNode)
	var order []string

	for _, child := range n.children {
		if _, seen := groups[child.name]; !seen {
			order = append(order, child.name)
		}
		groups[child.name] = append(groups[child.name], child)
	}

	for _, name := range order {
		nodes := groups[name]
		if len(nodes) == 1 {
			t.Set(name, xmlNodeValue(nodes[0]))
			continue
		}
		items := make([]any, len(nodes))
		for i, node := range nodes {
			items[i] = xmlNodeValue(node)
		}
		t.Set(name, items)
	}
	return t
}

// xmlNodeValue keeps leaf text verbatim. Text between child elements is dropped.
func xmlNodeValue(n *xmlNode) any {
	switch {
	case n.list:
		items := make([]any, len(n.children))
		for i, child := range n.children {
			items[i] = xmlNodeValue(child)
		}
		return items
	case len(n.children) > 0:
		return xmlNodeTree(n)
	default:
		return n.text.String()
	}
}

// isValidXMLName accepts the ASCII subset of XML names that keys produce.
func isValidXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter && r != '_' {
			return false
		}
		if !(isLetter || isDigit || r == '_' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
