package datacontract

const (
	keyRef      = "ref"
	keyRequired = "required"
	keyUnique   = "unique"
	keyFields   = "fields"
)

// Reference is the state of a field's definition reference: Unresolved or
// Resolved. A nil Reference means the field has none.
type Reference interface {
	// Location returns the reference string as written in the contract.
	Location() string
	reference()
}

// Unresolved is a reference that has not been looked up yet.
type Unresolved struct {
	Ref string
}

func (u Unresolved) Location() string { return u.Ref }
func (Unresolved) reference()         {}

// Resolved is a reference bound to its Definition. Definition is never nil.
type Resolved struct {
	Ref        string
	Definition *Definition
}

func (r Resolved) Location() string { return r.Ref }
func (Resolved) reference()         {}

// Field is one column/property of a model.
type Field struct {
	Attributes

	Ref      Reference
	Required bool
	Unique   bool
	Fields   map[string]*Field
	// Extra carries every key the model does not type, verbatim.
	Extra map[string]any
}

// Definition returns the definition bound to the field, if resolved.
func (f *Field) Definition() (*Definition, bool) {
	r, ok := f.Ref.(Resolved)
	if !ok {
		return nil, false
	}
	return r.Definition, true
}

// IsResolved reports whether the field's reference has been bound.
func (f *Field) IsResolved() bool {
	_, ok := f.Ref.(Resolved)
	return ok
}

// FieldNames returns the nested field names in sorted order.
func (f *Field) FieldNames() []string { return sortedKeys(f.Fields) }

// Definition is a reusable field template referenced by name or URL.
type Definition struct {
	Attributes

	Extra map[string]any
}

// Name returns the definition's declared name, if any.
func (d *Definition) Name() string {
	s, _ := d.Extra["name"].(string)
	return s
}

// Domain returns the definition's declared domain, if any.
func (d *Definition) Domain() string {
	s, _ := d.Extra["domain"].(string)
	return s
}

func buildField(m map[string]any, p pointer) (*Field, error) {
	f := &Field{}
	if err := f.decodeAttributes(m, p); err != nil {
		return nil, err
	}
	for k, v := range m {
		if isAttrKey(k) {
			continue
		}
		switch k {
		case keyRef:
			if v == nil {
				break
			}
			s, ok := v.(string)
			if !ok {
				return nil, ConstructionError(p.field(k).String(), "expected string")
			}
			f.Ref = Unresolved{Ref: s}
			continue
		case keyRequired, keyUnique:
			attr, dst := AttrRequired, &f.Required
			if k == keyUnique {
				attr, dst = AttrUnique, &f.Unique
			}
			if v == nil {
				f.mark(attr, true)
				continue
			}
			b, ok := v.(bool)
			if !ok {
				return nil, ConstructionError(p.field(k).String(), "expected boolean")
			}
			*dst = b
			f.mark(attr, false)
			continue
		case keyFields:
			if v == nil {
				break
			}
			fm, ok := v.(map[string]any)
			if !ok {
				return nil, ConstructionError(p.field(k).String(), "expected object")
			}
			fields, err := buildFields(fm, p.field(k))
			if err != nil {
				return nil, err
			}
			f.Fields = fields
			continue
		}
		if f.Extra == nil {
			f.Extra = make(map[string]any)
		}
		f.Extra[k] = deepCopy(v)
	}
	return f, nil
}

func buildFields(m map[string]any, p pointer) (map[string]*Field, error) {
	out := make(map[string]*Field, len(m))
	for _, name := range sortedKeys(m) {
		fp := p.field(name)
		fm, err := objectAt(m[name], fp)
		if err != nil {
			return nil, err
		}
		f, err := buildField(fm, fp)
		if err != nil {
			return nil, err
		}
		out[name] = f
	}
	return out, nil
}

func (f *Field) toMap() map[string]any {
	out := deepCopyMap(f.Extra)
	if out == nil {
		out = make(map[string]any)
	}
	f.encodeAttributes(out)
	if f.Ref != nil {
		out[keyRef] = f.Ref.Location()
	}
	encodeBool(out, keyRequired, f.Required, f.Presence, AttrRequired)
	encodeBool(out, keyUnique, f.Unique, f.Presence, AttrUnique)
	if f.Fields != nil {
		nested := make(map[string]any, len(f.Fields))
		for name, nf := range f.Fields {
			nested[name] = nf.toMap()
		}
		out[keyFields] = nested
	}
	return out
}

func encodeBool(out map[string]any, key string, v bool, p Presence, a Attr) {
	switch {
	case !p.Has(a):
	case p.IsNull(a):
		out[key] = nil
	default:
		out[key] = v
	}
}

// BuildDefinition constructs a Definition from a decoded mapping.
func BuildDefinition(m map[string]any) (*Definition, error) {
	return buildDefinition(m, nil)
}

func buildDefinition(m map[string]any, p pointer) (*Definition, error) {
	d := &Definition{}
	if err := d.decodeAttributes(m, p); err != nil {
		return nil, err
	}
	for k, v := range m {
		if isAttrKey(k) {
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]any)
		}
		d.Extra[k] = deepCopy(v)
	}
	return d, nil
}

func (d *Definition) toMap() map[string]any {
	out := deepCopyMap(d.Extra)
	if out == nil {
		out = make(map[string]any)
	}
	d.encodeAttributes(out)
	return out
}
