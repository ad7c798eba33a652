package app

import (
	"bytes"
	"encoding/json"
)

// Node is one path segment of the site tree. Children keep the order in
// which they were first inserted. There is no leaf marker: "/a" next to
// "/a/b" looks the same as "/a/b" alone.
type Node struct {
	Name     string
	Children []*Node
	index    map[string]*Node
}

// Mapping is the plain nested-map view of a tree.
type Mapping map[string]Mapping

func NewTree() *Node {
	return &Node{}
}

func (n *Node) Child(name string) *Node {
	return n.index[name]
}

// Insert walks segments from n, creating missing nodes.
func (n *Node) Insert(segments []string) {
	current := n
	for _, segment := range segments {
		next := current.Child(segment)
		if next == nil {
			next = &Node{Name: segment}
			if current.index == nil {
				current.index = map[string]*Node{}
			}
			current.index[segment] = next
			current.Children = append(current.Children, next)
		}
		current = next
	}
}

func (n *Node) IsEmpty() bool {
	return len(n.Children) == 0
}

func (n *Node) Mapping() Mapping {
	m := make(Mapping, len(n.Children))
	for _, child := range n.Children {
		m[child.Name] = child.Mapping()
	}

	return m
}

// MarshalJSON encodes the tree as nested objects in insertion order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, child := range n.Children {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(child.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := child.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

type segmenter interface {
	Segments(rawURL string) ([]string, error)
}

// TreeBuilder groups URLs into a tree keyed by path segment.
type TreeBuilder struct {
	parser segmenter
}

func NewTreeBuilder(parser segmenter) TreeBuilder {
	return TreeBuilder{parser: parser}
}

// Build inserts the path of every URL into a fresh tree. URLs that cannot be
// parsed are dropped.
func (b TreeBuilder) Build(urls []string) *Node {
	tree := NewTree()
	for _, u := range urls {
		segments, err := b.parser.Segments(u)
		if err != nil {
			continue
		}
		tree.Insert(segments)
	}

	return tree
}
