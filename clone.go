package datacontract

// Clone returns a deep copy of s. Resolved references that point at one of
// s's own definitions are rebound to the copy's definition; remote
// definitions are copied along with the field that owns them.
func (s *Specification) Clone() *Specification {
	if s == nil {
		return nil
	}
	out := &Specification{Extra: deepCopyMap(s.Extra)}
	rebind := make(map[*Definition]*Definition, len(s.Definitions))
	if s.Definitions != nil {
		out.Definitions = make(map[string]*Definition, len(s.Definitions))
		for name, d := range s.Definitions {
			c := d.Clone()
			rebind[d] = c
			out.Definitions[name] = c
		}
	}
	if s.Models != nil {
		out.Models = make(map[string]*Model, len(s.Models))
		for name, m := range s.Models {
			out.Models[name] = &Model{
				Fields: cloneFields(m.Fields, rebind),
				Extra:  deepCopyMap(m.Extra),
			}
		}
	}
	if s.Quality != nil {
		out.Quality = s.Quality.clone()
	}
	return out
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	return &Definition{Attributes: d.Attributes.clone(), Extra: deepCopyMap(d.Extra)}
}

func cloneFields(fields map[string]*Field, rebind map[*Definition]*Definition) map[string]*Field {
	if fields == nil {
		return nil
	}
	out := make(map[string]*Field, len(fields))
	for name, f := range fields {
		c := &Field{
			Attributes: f.Attributes.clone(),
			Ref:        f.Ref,
			Required:   f.Required,
			Unique:     f.Unique,
			Fields:     cloneFields(f.Fields, rebind),
			Extra:      deepCopyMap(f.Extra),
		}
		if r, ok := f.Ref.(Resolved); ok {
			def, local := rebind[r.Definition]
			if !local {
				def = r.Definition.Clone()
			}
			c.Ref = Resolved{Ref: r.Ref, Definition: def}
		}
		out[name] = c
	}
	return out
}

func (q *Quality) clone() *Quality {
	return &Quality{
		Type:          q.Type,
		Specification: deepCopy(q.Specification),
		Extra:         deepCopyMap(q.Extra),
		hasSpec:       q.hasSpec,
	}
}
