package datacontract

import (
	"math/bits"
	"strings"
)

// Attr is the presence bit of one field/definition attribute.
type Attr uint32

const (
	AttrTitle Attr = 1 << iota
	AttrType
	AttrFormat
	AttrDescription
	AttrPII
	AttrClassification
	AttrPattern
	AttrMinLength
	AttrMaxLength
	AttrMinimum
	AttrExclusiveMinimum
	AttrMaximum
	AttrExclusiveMaximum
	AttrEnum
	AttrTags
	AttrPrecision
	AttrScale
	AttrExample

	attrEnd
)

// Field-only presence bits. They live above the shared attributes so a
// Definition can never carry them.
const (
	AttrRequired Attr = attrEnd << iota
	AttrUnique
)

// Presence is the set of attributes that appeared in the input.
type Presence struct {
	seen Attr
	null Attr
}

// Has reports whether the attribute was explicitly set, including to null.
func (p Presence) Has(a Attr) bool { return p.seen&a != 0 }

// IsNull reports whether the attribute was explicitly set to null.
func (p Presence) IsNull(a Attr) bool { return p.null&a != 0 }

// Set returns the combined bits of every explicitly set attribute.
func (p Presence) Set() Attr { return p.seen }

func (p *Presence) mark(a Attr, null bool) {
	p.seen |= a
	if null {
		p.null |= a
	} else {
		p.null &^= a
	}
}

func (p *Presence) copyFrom(src Presence, a Attr) {
	p.seen |= a
	p.null = p.null&^a | src.null&a
}

// String renders the set attributes by key, in declaration order.
func (a Attr) String() string {
	if a == 0 {
		return ""
	}
	names := make([]string, 0, bits.OnesCount32(uint32(a)))
	for _, s := range attrSlots {
		if a&s.attr != 0 {
			names = append(names, s.key)
		}
	}
	if a&AttrRequired != 0 {
		names = append(names, keyRequired)
	}
	if a&AttrUnique != 0 {
		names = append(names, keyUnique)
	}
	return strings.Join(names, ",")
}
