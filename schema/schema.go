// Package schema validates decoded contracts against the Data Contract
// Specification JSON Schema.
package schema

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/reoring/datacontract"
	"github.com/reoring/datacontract/source"
)

// DefaultLocation is the canonical location of the embedded schema. Callers
// pass an empty location to use the embedded copy without any I/O.
const DefaultLocation = "https://datacontract.com/datacontract.schema.json"

//go:embed datacontract.schema.json
var defaultSchema []byte

// Default returns a copy of the embedded schema document.
func Default() []byte { return bytes.Clone(defaultSchema) }

// Validator fetches schema documents and validates contracts against them.
type Validator struct {
	loader *source.Loader
	logger *slog.Logger
}

// NewValidator creates a validator. A nil loader uses a zero source.Loader; a
// nil logger uses slog.Default.
func NewValidator(loader *source.Loader, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = &source.Loader{Logger: logger}
	}
	return &Validator{loader: loader, logger: logger}
}

// Fetch returns the raw schema document at location, or the embedded schema
// when location is empty.
func (v *Validator) Fetch(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return Default(), nil
	}
	return v.loader.Load(ctx, location)
}

// Compile fetches and compiles the schema at location.
func (v *Validator) Compile(ctx context.Context, location string) (*jsonschema.Schema, error) {
	raw, err := v.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}
	url := location
	if url == "" {
		url = DefaultLocation
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %w", url, err)
	}
	return c.Compile(url)
}

// Validate checks doc against the schema at location. It never mutates doc.
// Any failure, whether a schema violation or a problem fetching or compiling
// the schema, is logged at warning level and returned as a ValidationError.
func (v *Validator) Validate(ctx context.Context, doc any, location string) error {
	sch, err := v.Compile(ctx, location)
	if err != nil {
		return v.fail(err.Error(), err)
	}
	inst, err := toJSONValue(doc)
	if err != nil {
		return v.fail(err.Error(), err)
	}
	if err := sch.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return v.fail(ve.Error(), err)
		}
		return v.fail(err.Error(), err)
	}
	v.logger.Debug("YAML data is valid.")
	return nil
}

func (v *Validator) fail(reason string, cause error) error {
	v.logger.Warn("Data Contract YAML is invalid", slog.String("error", reason))
	return datacontract.ValidationError(reason, cause)
}

// toJSONValue re-reads doc as JSON so numbers arrive as json.Number, the form
// the schema engine expects.
func toJSONValue(doc any) (any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("cannot encode document as JSON: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}
