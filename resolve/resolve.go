// Package resolve turns a data contract location, string or prebuilt
// Specification into a validated, reference-resolved Specification.
//
// The pipeline is load -> decode -> validate -> build -> resolve. Decode,
// validation, construction and resolution failures surface as a
// *datacontract.Error; load failures are wrapped I/O errors. No partial
// Specification is ever returned.
package resolve

import (
	"context"
	"log/slog"

	"github.com/reoring/datacontract"
	"github.com/reoring/datacontract/internal/yamldoc"
	"github.com/reoring/datacontract/schema"
	"github.com/reoring/datacontract/source"
)

// Options controls a resolution call. When several are passed the last one
// wins.
type Options struct {
	// SchemaLocation overrides the embedded Data Contract Specification schema.
	SchemaLocation string
	// InlineDefinitions resolves field references and merges definitions.
	InlineDefinitions bool
	// SkipQuality leaves quality $ref payloads untouched.
	SkipQuality bool
}

func lastOption(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}

type inputKind int

const (
	inputNone inputKind = iota
	inputLocation
	inputString
	inputSpec
)

// Input is exactly one of a location, a raw string or a prebuilt
// Specification. The zero Input carries nothing.
type Input struct {
	kind     inputKind
	location string
	raw      string
	spec     *datacontract.Specification
}

// Location is an input read from a filesystem path or an http(s) URL.
func Location(location string) Input { return Input{kind: inputLocation, location: location} }

// String is an input holding the contract text itself.
func String(raw string) Input { return Input{kind: inputString, raw: raw} }

// Spec is an input that is already a Specification; it is returned as is.
func Spec(s *datacontract.Specification) Input {
	if s == nil {
		return Input{}
	}
	return Input{kind: inputSpec, spec: s}
}

// Resolver runs the resolution pipeline. It holds no per-call state, so one
// Resolver may serve concurrent calls on distinct inputs.
type Resolver struct {
	loader  *source.Loader
	decoder *yamldoc.Decoder
	schemas *schema.Validator
	logger  *slog.Logger
}

// New creates a Resolver. A nil loader uses a zero source.Loader; a nil
// logger uses slog.Default.
func New(loader *source.Loader, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = &source.Loader{Logger: logger}
	}
	return &Resolver{
		loader:  loader,
		decoder: yamldoc.New(logger),
		schemas: schema.NewValidator(loader, logger),
		logger:  logger,
	}
}

// Default returns a Resolver with default collaborators.
func Default() *Resolver { return New(nil, nil) }

// Resolve dispatches on the input variant. An empty Input fails with
// MissingInput.
func (r *Resolver) Resolve(ctx context.Context, in Input, opts ...Options) (*datacontract.Specification, error) {
	switch in.kind {
	case inputLocation:
		return r.FromLocation(ctx, in.location, opts...)
	case inputString:
		return r.FromString(ctx, in.raw, opts...)
	case inputSpec:
		return r.FromSpec(in.spec), nil
	default:
		return nil, datacontract.MissingInput()
	}
}

// FromLocation loads the contract at location (http(s) URL or path) and runs
// the full pipeline.
func (r *Resolver) FromLocation(ctx context.Context, location string, opts ...Options) (*datacontract.Specification, error) {
	data, err := r.loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return r.fromBytes(ctx, data, lastOption(opts))
}

// FromString runs the pipeline on contract text.
func (r *Resolver) FromString(ctx context.Context, raw string, opts ...Options) (*datacontract.Specification, error) {
	return r.fromBytes(ctx, []byte(raw), lastOption(opts))
}

// FromSpec returns s unchanged. No validation or resolution is performed:
// the caller owns a Specification it has already resolved.
func (r *Resolver) FromSpec(s *datacontract.Specification) *datacontract.Specification {
	return s
}

func (r *Resolver) fromBytes(ctx context.Context, data []byte, opt Options) (*datacontract.Specification, error) {
	doc, err := r.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := r.schemas.Validate(ctx, doc, opt.SchemaLocation); err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, datacontract.ConstructionError("/", "expected object")
	}
	spec, err := datacontract.Build(m)
	if err != nil {
		return nil, err
	}

	if opt.InlineDefinitions {
		if spec, err = r.InlineDefinitions(ctx, spec); err != nil {
			return nil, err
		}
	}
	if spec.Quality != nil && !opt.SkipQuality {
		q, err := r.ResolveQuality(spec.Quality)
		if err != nil {
			return nil, err
		}
		spec.Quality = q
	}
	return spec, nil
}

// Run resolves in with a default Resolver.
func Run(ctx context.Context, in Input, opts ...Options) (*datacontract.Specification, error) {
	return Default().Resolve(ctx, in, opts...)
}

// FromLocation resolves the contract at location with a default Resolver.
func FromLocation(ctx context.Context, location string, opts ...Options) (*datacontract.Specification, error) {
	return Default().FromLocation(ctx, location, opts...)
}

// FromString resolves contract text with a default Resolver.
func FromString(ctx context.Context, raw string, opts ...Options) (*datacontract.Specification, error) {
	return Default().FromString(ctx, raw, opts...)
}
