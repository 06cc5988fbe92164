package deck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when an import document is not an object
// of collection name to entries.
var ErrInvalidDocument = errors.New("deck: invalid document")

// ImportMode selects how Import combines a document with the store.
type ImportMode int

const (
	// ImportMerge overwrites same-named collections and appends new ones.
	ImportMerge ImportMode = iota
	// ImportReplace discards the store before loading the document.
	ImportReplace
)

// ParseImportMode maps "merge" or "replace" to an ImportMode.
func ParseImportMode(s string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "merge":
		return ImportMerge, nil
	case "replace":
		return ImportReplace, nil
	}
	return 0, fmt.Errorf("deck: unknown import mode %q", s)
}

const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": {
		"oneOf": [
			{"type": "null"},
			{"type": ["string", "number", "boolean"]},
			{"type": "array", "items": {"type": ["string", "number", "boolean"]}}
		]
	}
}`

var schema = jsonschema.MustCompileString("deck.schema.json", documentSchema)

// Import loads the collections of doc into s.
//
// Precondition: doc must not be nil.
// Postcondition: On ErrNameConflict s is unchanged.
func (s *Store) Import(doc *Store, mode ImportMode) error {
	if mode == ImportReplace {
		s.Clear()
	}
	for _, name := range doc.names {
		if s.conflicts(name, name) {
			return fmt.Errorf("%w: %q", ErrNameConflict, name)
		}
	}
	for _, c := range doc.Collections() {
		if err := s.Set(c.Name, c.Entries); err != nil {
			return err
		}
	}
	return nil
}

// DecodeJSON reads a JSON document of collection name to entries,
// preserving key order. A duplicate key keeps its first position and its
// last value.
func DecodeJSON(r io.Reader) (*Store, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	values := doc.(map[string]any)

	names, err := objectKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	cs := make([]Collection, 0, len(names))
	for _, n := range names {
		cs = append(cs, Collection{Name: n, Entries: normalizeJSON(values[n])})
	}
	s, err := FromCollections(cs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return s, nil
}

// objectKeys returns the distinct top-level keys of a JSON object in order.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func normalizeJSON(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, scalarString(item))
		}
		return out
	default:
		return []string{scalarString(t)}
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	}
	return fmt.Sprint(v)
}

// formatNumber renders f the way a script engine would stringify it.
func formatNumber(f float64) string {
	if a := math.Abs(f); a != 0 && (a >= 1e21 || a < 1e-6) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// EncodeJSON writes s as a JSON object indented with four spaces.
func EncodeJSON(w io.Writer, s *Store) error {
	var b bytes.Buffer
	if s.Len() == 0 {
		b.WriteString("{}")
		_, err := w.Write(b.Bytes())
		return err
	}
	b.WriteString("{\n")
	for i, name := range s.names {
		b.WriteString("    ")
		writeString(&b, name)
		b.WriteString(": ")
		entries := s.entries[name]
		if len(entries) == 0 {
			b.WriteString("[]")
		} else {
			b.WriteString("[\n")
			for j, e := range entries {
				b.WriteString("        ")
				writeString(&b, e)
				if j < len(entries)-1 {
					b.WriteByte(',')
				}
				b.WriteByte('\n')
			}
			b.WriteString("    ]")
		}
		if i < len(s.names)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	_, err := w.Write(b.Bytes())
	return err
}

func writeString(b *bytes.Buffer, s string) {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	b.Truncate(b.Len() - 1)
}

// DecodeYAML reads a YAML mapping of collection name to entries,
// preserving key order.
func DecodeYAML(r io.Reader) (*Store, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidDocument)
	}

	s := New()
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: collection name must be a scalar", ErrInvalidDocument, key.Line)
		}
		entries, err := yamlEntries(val)
		if err != nil {
			return nil, err
		}
		if err := s.Set(key.Value, entries); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}
	return s, nil
}

func yamlEntries(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return []string{}, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind == yaml.AliasNode {
				item = item.Alias
			}
			if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
				return nil, fmt.Errorf("%w: line %d: entries must be scalars", ErrInvalidDocument, item.Line)
			}
			out = append(out, item.Value)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: line %d: collection must be a list of entries", ErrInvalidDocument, n.Line)
}

// EncodeYAML writes s as a YAML mapping.
func EncodeYAML(w io.Writer, s *Store) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range s.names {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range s.entries[name] {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e})
		}
		if len(seq.Content) == 0 {
			seq.Style = yaml.FlowStyle
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			seq,
		)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
