package resolve

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/reoring/datacontract"
	"github.com/reoring/datacontract/source"
)

// LocalPrefix marks a reference to the contract's own definitions.
const LocalPrefix = "#/definitions/"

// InlineDefinitions returns a copy of spec in which every field reference
// is resolved and the referenced definition's explicit attributes are merged
// into the field wherever the field has not set them itself. spec is not
// modified. Fields already Resolved are left alone, so inlining a result
// again is a no-op.
func (r *Resolver) InlineDefinitions(ctx context.Context, spec *datacontract.Specification) (*datacontract.Specification, error) {
	out := spec.Clone()
	for _, name := range out.ModelNames() {
		if err := r.inlineFields(ctx, out, name, out.Models[name].Fields); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Resolver) inlineFields(ctx context.Context, spec *datacontract.Specification, path string, fields map[string]*datacontract.Field) error {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		f := fields[name]
		fieldPath := path + "." + name
		if err := r.inlineField(ctx, spec, fieldPath, f); err != nil {
			return err
		}
		if err := r.inlineFields(ctx, spec, fieldPath, f.Fields); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) inlineField(ctx context.Context, spec *datacontract.Specification, path string, f *datacontract.Field) error {
	ref, ok := f.Ref.(datacontract.Unresolved)
	if !ok {
		return nil
	}
	def, err := r.ResolveDefinition(ctx, ref.Ref, spec.Definitions)
	if err != nil {
		return err
	}
	f.Ref = datacontract.Resolved{Ref: ref.Ref, Definition: def}
	copied := f.Inherit(&def.Attributes)
	r.logger.Debug("Inlined definition",
		slog.String("field", path),
		slog.String("ref", ref.Ref),
		slog.String("inherited", copied.String()))
	return nil
}

// ResolveDefinition looks up ref. Remote references are fetched, decoded and
// built into a fresh Definition; local anchors return the entry of defs
// itself, without copying.
func (r *Resolver) ResolveDefinition(ctx context.Context, ref string, defs map[string]*datacontract.Definition) (*datacontract.Definition, error) {
	switch {
	case source.IsRemote(ref):
		data, err := r.loader.Fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		m, err := r.decoder.DecodeMapping(data)
		if err != nil {
			return nil, err
		}
		return datacontract.BuildDefinition(m)
	case strings.HasPrefix(ref, LocalPrefix):
		def, ok := defs[strings.TrimPrefix(ref, LocalPrefix)]
		if !ok || def == nil {
			return nil, datacontract.UnresolvableReference(ref)
		}
		return def, nil
	default:
		return nil, datacontract.UnresolvableReference(ref)
	}
}
