// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audpipe/audio"
)

// Tags are metadata tags in the order they appear in the file. A list value
// is joined with ", ", so
//
//	artist: [Alice, Bob]
//
// becomes the tag artist="Alice, Bob".
type Tags struct {
	keys   []string
	values []string
}

func (t *Tags) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: metadata must be a mapping", node.Line)
	}

	t.keys, t.values = nil, nil
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]

		var value string
		switch v.Kind {
		case yaml.ScalarNode:
			value = v.Value
		case yaml.SequenceNode:
			parts := make([]string, 0, len(v.Content))
			for _, item := range v.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: tag %q: list items must be scalars", item.Line, k.Value)
				}
				parts = append(parts, item.Value)
			}
			value = strings.Join(parts, ", ")
		default:
			return fmt.Errorf("line %d: tag %q must be a string or a list", v.Line, k.Value)
		}

		t.keys = append(t.keys, k.Value)
		t.values = append(t.values, value)
	}
	return nil
}

func (t Tags) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, k := range t.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: t.values[i]})
	}
	return node, nil
}

func (t Tags) Len() int { return len(t.keys) }

// Metadata returns the tags as audio metadata. A repeated key keeps its
// last value.
func (t Tags) Metadata() *audio.Metadata {
	md := &audio.Metadata{}
	for i, k := range t.keys {
		md.Set(k, t.values[i])
	}
	return md
}
