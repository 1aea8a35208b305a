// Package yamldoc decodes a single YAML document into JSON-like Go values
// (map[string]any, []any, primitives), rejecting duplicate mapping keys.
package yamldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/reoring/datacontract"
)

const mergeTag = "!!merge"

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// ErrMultipleDocuments is returned when the stream holds more than one document.
var ErrMultipleDocuments = errors.New("expected a single document in the stream")

// Decoder turns raw contract text into a generic value.
type Decoder struct {
	logger *slog.Logger
}

// New creates a decoder logging through logger (slog.Default when nil).
func New(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// Decode parses data. An empty document decodes to nil. Any failure is
// logged at warning level and returned as a datacontract ParseError; no
// partial value is returned.
func (d *Decoder) Decode(data []byte) (any, error) {
	v, err := decode(data)
	if err != nil {
		d.logger.Warn("Cannot parse YAML", slog.String("error", err.Error()))
		return nil, datacontract.ParseError(err)
	}
	return v, nil
}

// DecodeMapping is Decode for documents whose root must be a mapping.
func (d *Decoder) DecodeMapping(data []byte) (map[string]any, error) {
	v, err := d.Decode(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		err := fmt.Errorf("document root must be a mapping, got %T", v)
		d.logger.Warn("Cannot parse YAML", slog.String("error", err.Error()))
		return nil, datacontract.ParseError(err)
	}
	return m, nil
}

func decode(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrMultipleDocuments
	}
	w := &walker{
		expanding: make(map[*yaml.Node]bool),
		limit:     expansionLimit(&root),
	}
	return w.value(&root)
}

// A document may expand through aliases to at most expansionFloor nodes plus
// expansionFactor nodes per node written in it.
const (
	expansionFactor = 100
	expansionFloor  = 10000
)

var errExcessiveAliasing = errors.New("document contains excessive aliasing")

func expansionLimit(root *yaml.Node) int {
	return expansionFloor + expansionFactor*countNodes(root)
}

// countNodes counts the nodes of the tree without following aliases.
func countNodes(n *yaml.Node) int {
	c := 1
	for _, child := range n.Content {
		c += countNodes(child)
	}
	return c
}

// walker converts a node tree into generic values. Aliases are expanded, so
// it tracks the anchors being expanded and the number of nodes visited.
type walker struct {
	expanding map[*yaml.Node]bool
	visited   int
	limit     int
}

func (w *walker) value(n *yaml.Node) (any, error) {
	w.visited++
	if w.visited > w.limit {
		return nil, errExcessiveAliasing
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return w.value(n.Content[0])
	case yaml.AliasNode:
		return w.alias(n)
	case yaml.MappingNode:
		return w.mapping(n)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := w.value(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, nil
	}
}

func (w *walker) alias(n *yaml.Node) (any, error) {
	if n.Alias == nil {
		return nil, fmt.Errorf("unknown anchor %q referenced at %d:%d", n.Value, n.Line, n.Column)
	}
	if w.expanding[n.Alias] {
		return nil, fmt.Errorf("anchor %q value contains itself", n.Value)
	}
	w.expanding[n.Alias] = true
	defer delete(w.expanding, n.Alias)
	return w.value(n.Alias)
}

func (w *walker) mapping(n *yaml.Node) (map[string]any, error) {
	m := make(map[string]any, len(n.Content)/2)
	first := make(map[string][2]int, len(n.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		v := n.Content[i+1]
		if k.Tag == mergeTag {
			merges = append(merges, v)
			continue
		}
		key := k.Value
		if pos, dup := first[key]; dup {
			return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[key] = [2]int{k.Line, k.Column}
		val, err := w.value(v)
		if err != nil {
			return nil, err
		}
		m[key] = val
	}
	// merged keys never override keys written in the mapping itself
	for _, mn := range merges {
		if err := w.merge(m, mn); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (w *walker) merge(dst map[string]any, n *yaml.Node) error {
	v, err := w.value(n)
	if err != nil {
		return err
	}
	var sources []any
	switch t := v.(type) {
	case map[string]any:
		sources = []any{t}
	case []any:
		sources = t
	default:
		return fmt.Errorf("merge value at %d:%d must be a mapping or a sequence of mappings", n.Line, n.Column)
	}
	for _, s := range sources {
		sm, ok := s.(map[string]any)
		if !ok {
			return fmt.Errorf("merge value at %d:%d must be a mapping or a sequence of mappings", n.Line, n.Column)
		}
		for k, val := range sm {
			if _, exists := dst[k]; !exists {
				dst[k] = val
			}
		}
	}
	return nil
}
