// Package frontmatter splits Markdown documents into a YAML metadata
// block and a body, and joins them back together.
//
// The codec never fails: any structural or semantic irregularity in the
// metadata block (missing delimiter, invalid YAML, non-mapping document,
// unsupported value shapes) degrades to "no metadata" and the entire
// input is returned as body. Field order survives a decode/encode round
// trip.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Marker is the frontmatter delimiter line.
const Marker = "---"

// Decode splits text into metadata and body.
//
// The metadata block starts with a line that equals Marker (after
// trimming surrounding whitespace) at the very start of the input and
// ends at the next such line. Everything strictly between the markers is
// parsed as YAML. On any failure the original text is returned unchanged
// as body with empty metadata.
func Decode(text string) (Metadata, string) {
	meta, body, _ := decode(text)
	return meta, body
}

// HasFrontmatter reports whether text begins with a well-formed
// metadata block that Decode accepts (an empty block counts). It lets
// callers tell "document with an empty mapping" apart from "document
// with no or degraded metadata", which Decode's return values conflate.
func HasFrontmatter(text string) bool {
	_, _, ok := decode(text)
	return ok
}

func decode(text string) (Metadata, string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Marker {
		return New(), text, false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Marker {
			end = i
			break
		}
	}
	if end < 0 {
		// Unterminated block: treat the whole input as body.
		return New(), text, false
	}

	meta, ok := parseBlock(strings.Join(lines[1:end], "\n"))
	if !ok {
		return New(), text, false
	}

	body := strings.Join(lines[end+1:], "\n")
	// Encode emits one blank separator line after the closing marker;
	// drop it so decode(encode(m, b)) yields b exactly.
	body = strings.TrimPrefix(body, "\n")
	return meta, body, true
}

// Encode renders metadata and body as a single document:
// marker line, one field per line in insertion order, marker line,
// one blank line, then the body. Empty metadata still emits the two
// marker lines.
func Encode(meta Metadata, body string) string {
	var sb strings.Builder
	sb.WriteString(Marker)
	sb.WriteByte('\n')
	if !meta.IsEmpty() {
		sb.Write(marshalMapping(meta))
	}
	sb.WriteString(Marker)
	sb.WriteString("\n\n")
	sb.WriteString(body)
	return sb.String()
}

// parseBlock decodes a YAML mapping into Metadata, preserving key order
// via the yaml node API. ok is false for invalid YAML, non-mapping
// documents, and values outside the supported {string, bool, string
// list} set.
func parseBlock(block string) (Metadata, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return Metadata{}, false
	}
	if len(doc.Content) == 0 {
		// Blank block between the markers: valid, empty mapping.
		return New(), true
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Metadata{}, false
	}

	meta := New()
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return Metadata{}, false
		}
		val, ok := nodeValue(valNode)
		if !ok {
			return Metadata{}, false
		}
		meta.Set(keyNode.Value, val)
	}
	return meta, true
}

func nodeValue(n *yaml.Node) (Value, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!bool" {
			var b bool
			if err := n.Decode(&b); err != nil {
				return Absent, false
			}
			return Bool(b), true
		}
		// Dates, numbers, and plain text are all carried as strings.
		return String(n.Value), true

	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return Absent, false
			}
			items = append(items, item.Value)
		}
		return List(items...), true

	default:
		return Absent, false
	}
}

// marshalMapping renders metadata as a YAML block mapping in insertion
// order. Strings are tagged explicitly so values like "true" or
// "2024-01-01" survive a re-decode as strings.
func marshalMapping(meta Metadata) []byte {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range meta.Keys() {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			valueNode(meta.Get(k)))
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		// Scalar and sequence nodes always marshal; keep the contract
		// of never failing by emitting an empty block.
		return nil
	}
	return out
}

func valueNode(v Value) *yaml.Node {
	switch v.Kind() {
	case KindBool:
		b, _ := v.AsBool()
		val := "false"
		if b {
			val = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: val}

	case KindList:
		items, _ := v.AsList()
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range items {
			seq.Content = append(seq.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
		}
		return seq

	default:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}
}
