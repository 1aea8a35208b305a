package datacontract

import (
	"fmt"
	"slices"
)

const (
	keyModels        = "models"
	keyDefinitions   = "definitions"
	keyQuality       = "quality"
	keyType          = "type"
	keySpecification = "specification"
)

// Specification is the root of a data contract.
type Specification struct {
	Models      map[string]*Model
	Definitions map[string]*Definition
	Quality     *Quality
	// Extra carries every top-level key the model does not type (info,
	// servers, terms, examples, ...), verbatim.
	Extra map[string]any
}

// Model holds the fields of one data model.
type Model struct {
	Fields map[string]*Field
	Extra  map[string]any
}

// Quality is the optional quality block. Specification is an inline
// payload, a per-model mapping of payloads, or a {"$ref": path} mapping.
type Quality struct {
	Type          string
	Specification any
	Extra         map[string]any

	hasSpec bool
}

// ID returns the contract id, if any.
func (s *Specification) ID() string { return stringExtra(s.Extra, "id") }

// Version returns the dataContractSpecification version, if any.
func (s *Specification) Version() string {
	return stringExtra(s.Extra, "dataContractSpecification")
}

// Info returns the info block, if any.
func (s *Specification) Info() map[string]any {
	m, _ := s.Extra["info"].(map[string]any)
	return m
}

// ModelNames returns model names in sorted order.
func (s *Specification) ModelNames() []string { return sortedKeys(s.Models) }

// DefinitionNames returns definition names in sorted order.
func (s *Specification) DefinitionNames() []string { return sortedKeys(s.Definitions) }

// Description returns the model description, if any.
func (m *Model) Description() string { return stringExtra(m.Extra, "description") }

// Type returns the model type (table, view, ...), if any.
func (m *Model) Type() string { return stringExtra(m.Extra, keyType) }

// FieldNames returns field names in sorted order.
func (m *Model) FieldNames() []string { return sortedKeys(m.Fields) }

// NewQuality builds a quality block with a specification payload.
func NewQuality(typ string, specification any) *Quality {
	return &Quality{Type: typ, Specification: specification, hasSpec: true}
}

// WithSpecification returns a copy of q carrying a different payload.
func (q *Quality) WithSpecification(specification any) *Quality {
	out := q.clone()
	out.Specification = deepCopy(specification)
	out.hasSpec = true
	return out
}

// Build constructs a Specification from a validated mapping. Unknown keys
// are kept in Extra; values that do not fit the typed model fail with a
// ConstructionError naming their JSON Pointer.
func Build(m map[string]any) (*Specification, error) {
	s := &Specification{}
	p := pointer{}
	for _, k := range sortedKeys(m) {
		v := m[k]
		switch {
		case k == keyModels && v != nil:
			models, err := buildModels(v, p.field(k))
			if err != nil {
				return nil, err
			}
			s.Models = models
		case k == keyDefinitions && v != nil:
			defs, err := buildDefinitions(v, p.field(k))
			if err != nil {
				return nil, err
			}
			s.Definitions = defs
		case k == keyQuality && v != nil:
			q, err := buildQuality(v, p.field(k))
			if err != nil {
				return nil, err
			}
			s.Quality = q
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]any)
			}
			s.Extra[k] = deepCopy(v)
		}
	}
	return s, nil
}

func buildModels(v any, p pointer) (map[string]*Model, error) {
	mm, err := objectAt(v, p)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Model, len(mm))
	for _, name := range sortedKeys(mm) {
		mp := p.field(name)
		raw, err := objectAt(mm[name], mp)
		if err != nil {
			return nil, err
		}
		model := &Model{}
		for k, v := range raw {
			if k == keyFields && v != nil {
				fm, err := objectAt(v, mp.field(k))
				if err != nil {
					return nil, err
				}
				if model.Fields, err = buildFields(fm, mp.field(k)); err != nil {
					return nil, err
				}
				continue
			}
			if model.Extra == nil {
				model.Extra = make(map[string]any)
			}
			model.Extra[k] = deepCopy(v)
		}
		out[name] = model
	}
	return out, nil
}

func buildDefinitions(v any, p pointer) (map[string]*Definition, error) {
	dm, err := objectAt(v, p)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Definition, len(dm))
	for _, name := range sortedKeys(dm) {
		dp := p.field(name)
		raw, err := objectAt(dm[name], dp)
		if err != nil {
			return nil, err
		}
		d, err := buildDefinition(raw, dp)
		if err != nil {
			return nil, err
		}
		out[name] = d
	}
	return out, nil
}

func buildQuality(v any, p pointer) (*Quality, error) {
	raw, err := objectAt(v, p)
	if err != nil {
		return nil, err
	}
	q := &Quality{}
	for k, v := range raw {
		switch k {
		case keyType:
			s, ok := v.(string)
			if !ok {
				return nil, ConstructionError(p.field(k).String(), "expected string")
			}
			q.Type = s
		case keySpecification:
			q.Specification = deepCopy(v)
			q.hasSpec = true
		default:
			if q.Extra == nil {
				q.Extra = make(map[string]any)
			}
			q.Extra[k] = deepCopy(v)
		}
	}
	return q, nil
}

// ToMap encodes the Specification back into a JSON-compatible mapping. For a
// freshly built Specification it reproduces the input exactly.
func (s *Specification) ToMap() map[string]any {
	out := deepCopyMap(s.Extra)
	if out == nil {
		out = make(map[string]any)
	}
	if s.Models != nil {
		models := make(map[string]any, len(s.Models))
		for name, m := range s.Models {
			models[name] = m.toMap()
		}
		out[keyModels] = models
	}
	if s.Definitions != nil {
		defs := make(map[string]any, len(s.Definitions))
		for name, d := range s.Definitions {
			defs[name] = d.toMap()
		}
		out[keyDefinitions] = defs
	}
	if s.Quality != nil {
		out[keyQuality] = s.Quality.toMap()
	}
	return out
}

func (m *Model) toMap() map[string]any {
	out := deepCopyMap(m.Extra)
	if out == nil {
		out = make(map[string]any)
	}
	if m.Fields != nil {
		fields := make(map[string]any, len(m.Fields))
		for name, f := range m.Fields {
			fields[name] = f.toMap()
		}
		out[keyFields] = fields
	}
	return out
}

func (q *Quality) toMap() map[string]any {
	out := deepCopyMap(q.Extra)
	if out == nil {
		out = make(map[string]any)
	}
	if q.Type != "" {
		out[keyType] = q.Type
	}
	if q.hasSpec || q.Specification != nil {
		out[keySpecification] = deepCopy(q.Specification)
	}
	return out
}

func objectAt(v any, p pointer) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ConstructionError(p.String(), fmt.Sprintf("expected object, got %T", v))
	}
	return m, nil
}

func stringExtra(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
