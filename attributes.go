package datacontract

import "slices"

// Attributes is the attribute set shared by fields and definitions. Values
// are only meaningful when the matching presence bit is set; Has tells an
// explicit value from the zero default.
type Attributes struct {
	Title            string
	Type             string
	Format           string
	Description      string
	PII              bool
	Classification   string
	Pattern          string
	MinLength        int
	MaxLength        int
	Minimum          float64
	ExclusiveMinimum float64
	Maximum          float64
	ExclusiveMaximum float64
	Enum             []string
	Tags             []string
	Precision        int
	Scale            int
	Example          string

	Presence
}

// slot binds one attribute to its key and to typed access on Attributes.
type slot struct {
	attr   Attr
	key    string
	kind   string
	decode func(a *Attributes, v any) bool
	encode func(a *Attributes) any
	copy   func(dst, src *Attributes)
	clear  func(a *Attributes)
}

func typedSlot[T any](attr Attr, key, kind string, conv func(any) (T, bool), out func(T) any, clone func(T) T, p func(*Attributes) *T) slot {
	return slot{
		attr: attr,
		key:  key,
		kind: kind,
		decode: func(a *Attributes, v any) bool {
			t, ok := conv(v)
			if ok {
				*p(a) = t
			}
			return ok
		},
		encode: func(a *Attributes) any { return out(*p(a)) },
		copy:   func(dst, src *Attributes) { *p(dst) = clone(*p(src)) },
		clear: func(a *Attributes) {
			var zero T
			*p(a) = zero
		},
	}
}

func same[T any](v T) T    { return v }
func boxed[T any](v T) any { return v }

func stringSlot(attr Attr, key string, p func(*Attributes) *string) slot {
	return typedSlot(attr, key, "string", asString, boxed[string], same[string], p)
}

func boolSlot(attr Attr, key string, p func(*Attributes) *bool) slot {
	return typedSlot(attr, key, "boolean", asBool, boxed[bool], same[bool], p)
}

func intSlot(attr Attr, key string, p func(*Attributes) *int) slot {
	return typedSlot(attr, key, "integer", asInt, boxed[int], same[int], p)
}

func numberSlot(attr Attr, key string, p func(*Attributes) *float64) slot {
	return typedSlot(attr, key, "number", asFloat, boxed[float64], same[float64], p)
}

func listSlot(attr Attr, key string, p func(*Attributes) *[]string) slot {
	return typedSlot(attr, key, "array of strings", asStrings, stringsToAny, slices.Clone[[]string], p)
}

// attrSlots lists every shared attribute in declaration order.
var attrSlots = []slot{
	stringSlot(AttrTitle, "title", func(a *Attributes) *string { return &a.Title }),
	stringSlot(AttrType, "type", func(a *Attributes) *string { return &a.Type }),
	stringSlot(AttrFormat, "format", func(a *Attributes) *string { return &a.Format }),
	stringSlot(AttrDescription, "description", func(a *Attributes) *string { return &a.Description }),
	boolSlot(AttrPII, "pii", func(a *Attributes) *bool { return &a.PII }),
	stringSlot(AttrClassification, "classification", func(a *Attributes) *string { return &a.Classification }),
	stringSlot(AttrPattern, "pattern", func(a *Attributes) *string { return &a.Pattern }),
	intSlot(AttrMinLength, "minLength", func(a *Attributes) *int { return &a.MinLength }),
	intSlot(AttrMaxLength, "maxLength", func(a *Attributes) *int { return &a.MaxLength }),
	numberSlot(AttrMinimum, "minimum", func(a *Attributes) *float64 { return &a.Minimum }),
	numberSlot(AttrExclusiveMinimum, "exclusiveMinimum", func(a *Attributes) *float64 { return &a.ExclusiveMinimum }),
	numberSlot(AttrMaximum, "maximum", func(a *Attributes) *float64 { return &a.Maximum }),
	numberSlot(AttrExclusiveMaximum, "exclusiveMaximum", func(a *Attributes) *float64 { return &a.ExclusiveMaximum }),
	listSlot(AttrEnum, "enum", func(a *Attributes) *[]string { return &a.Enum }),
	listSlot(AttrTags, "tags", func(a *Attributes) *[]string { return &a.Tags }),
	intSlot(AttrPrecision, "precision", func(a *Attributes) *int { return &a.Precision }),
	intSlot(AttrScale, "scale", func(a *Attributes) *int { return &a.Scale }),
	stringSlot(AttrExample, "example", func(a *Attributes) *string { return &a.Example }),
}

func slotFor(attr Attr) (slot, bool) {
	for _, s := range attrSlots {
		if s.attr == attr {
			return s, true
		}
	}
	return slot{}, false
}

func isAttrKey(key string) bool {
	for _, s := range attrSlots {
		if s.key == key {
			return true
		}
	}
	return false
}

// SetAttr explicitly sets one shared attribute. A nil value records an
// explicit null.
func (a *Attributes) SetAttr(attr Attr, v any) error {
	s, ok := slotFor(attr)
	if !ok {
		return ConstructionError("/"+attr.String(), "not a shared attribute")
	}
	return a.decodeSlot(s, v, "/"+s.key)
}

func (a *Attributes) decodeSlot(s slot, v any, ptr string) error {
	if v == nil {
		s.clear(a)
		a.mark(s.attr, true)
		return nil
	}
	if !s.decode(a, v) {
		return ConstructionError(ptr, "expected "+s.kind)
	}
	a.mark(s.attr, false)
	return nil
}

// decodeAttributes consumes every attribute key of m. Keys that are not
// shared attributes are left to the caller.
func (a *Attributes) decodeAttributes(m map[string]any, p pointer) error {
	for _, s := range attrSlots {
		v, ok := m[s.key]
		if !ok {
			continue
		}
		if err := a.decodeSlot(s, v, p.field(s.key).String()); err != nil {
			return err
		}
	}
	return nil
}

func (a *Attributes) encodeAttributes(out map[string]any) {
	for _, s := range attrSlots {
		if !a.Has(s.attr) {
			continue
		}
		if a.IsNull(s.attr) {
			out[s.key] = nil
			continue
		}
		out[s.key] = s.encode(a)
	}
}

// Inherit copies every attribute that from explicitly sets and a does not.
// Values a sets explicitly always win. It returns the attributes copied.
func (a *Attributes) Inherit(from *Attributes) Attr {
	var copied Attr
	for _, s := range attrSlots {
		if !from.Has(s.attr) || a.Has(s.attr) {
			continue
		}
		s.copy(a, from)
		a.copyFrom(from.Presence, s.attr)
		copied |= s.attr
	}
	return copied
}

func (a Attributes) clone() Attributes {
	out := a
	out.Enum = slices.Clone(a.Enum)
	out.Tags = slices.Clone(a.Tags)
	return out
}
