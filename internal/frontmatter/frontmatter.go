package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but no closing `---` or `...` line followed.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// ErrNotMapping is returned when the front matter is valid YAML but not a mapping.
var ErrNotMapping = errors.New("front matter is not a mapping")

// Tagged is a YAML value carrying a custom (non-core) tag such as `!note`.
type Tagged struct {
	Tag   string
	Value any
}

// Extract separates the front matter block from the rest of the document.
//
// The block starts when the first line is exactly `---` and ends at the first
// later line equal to `---` or `...`; a trailing carriage return is ignored on
// both. had is false (and body the whole input) when the document does not
// open with a delimiter.
func Extract(content []byte) (fm []byte, body []byte, had bool, err error) {
	first, rest, _ := bytes.Cut(content, []byte("\n"))
	if !isDelimiter(first, "---") {
		return nil, content, false, nil
	}

	var lines [][]byte
	for len(rest) > 0 {
		var line []byte
		var found bool
		line, rest, found = bytes.Cut(rest, []byte("\n"))
		if isDelimiter(line, "---") || isDelimiter(line, "...") {
			if !found {
				rest = nil
			}
			return bytes.Join(lines, []byte("\n")), rest, true, nil
		}
		lines = append(lines, bytes.TrimSuffix(line, []byte("\r")))
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

func isDelimiter(line []byte, delim string) bool {
	return string(bytes.TrimSuffix(line, []byte("\r"))) == delim
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
//
// Values decode to nil, bool, int, float64, string, []any and map[string]any;
// a value with a custom tag is returned as Tagged wrapping the decoded value.
func ParseYAML(fm []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return map[string]any{}, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return map[string]any{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: got %s", ErrNotMapping, kindName(root.Kind))
	}
	v, err := convert(root)
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case Tagged:
		if inner, ok := m.Value.(map[string]any); ok {
			return inner, nil
		}
	}
	return nil, ErrNotMapping
}

func convert(n *yaml.Node) (any, error) {
	var (
		v   any
		err error
	)
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convert(n.Content[0])
	case yaml.AliasNode:
		return convert(n.Alias)
	case yaml.MappingNode:
		v, err = convertMapping(n)
	case yaml.SequenceNode:
		v, err = convertSequence(n)
	case yaml.ScalarNode:
		v, err = convertScalar(n)
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d at line %d", n.Kind, n.Line)
	}
	if err != nil {
		return nil, err
	}
	if isCustomTag(n.Tag) {
		return Tagged{Tag: n.Tag, Value: v}, nil
	}
	return v, nil
}

func convertMapping(n *yaml.Node) (map[string]any, error) {
	res := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
		}
		v, err := convert(val)
		if err != nil {
			return nil, err
		}
		res[key.Value] = v
	}
	return res, nil
}

func convertSequence(n *yaml.Node) ([]any, error) {
	res := make([]any, 0, len(n.Content))
	for _, item := range n.Content {
		v, err := convert(item)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

func convertScalar(n *yaml.Node) (any, error) {
	if n.Tag == "!!timestamp" {
		return n.Value, nil
	}
	c := *n
	if isCustomTag(c.Tag) {
		c.Tag = ""
	}
	var v any
	if err := c.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func isCustomTag(tag string) bool {
	return strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!")
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
