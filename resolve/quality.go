package resolve

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/reoring/datacontract"
)

// QualityPerModel is the quality type whose specification is a mapping of
// model name to payload.
const QualityPerModel = "great-expectations"

// RefKey marks a payload that lives in an external file.
const RefKey = "$ref"

// ResolveQuality returns a copy of q with every {"$ref": path} payload
// replaced by the referenced file's text. For QualityPerModel every model
// entry is resolved; otherwise only a top-level $ref payload is. Payloads
// without $ref pass through.
func (r *Resolver) ResolveQuality(q *datacontract.Quality) (*datacontract.Quality, error) {
	payload, ok := q.Specification.(map[string]any)
	if !ok {
		return q.WithSpecification(q.Specification), nil
	}
	if q.Type == QualityPerModel {
		out := make(map[string]any, len(payload))
		for _, model := range slices.Sorted(maps.Keys(payload)) {
			v, err := r.QualityRefFile(payload[model])
			if err != nil {
				return nil, err
			}
			out[model] = v
		}
		return q.WithSpecification(out), nil
	}
	if _, ok := payload[RefKey]; ok {
		v, err := r.QualityRefFile(payload)
		if err != nil {
			return nil, err
		}
		return q.WithSpecification(v), nil
	}
	return q.WithSpecification(payload), nil
}

// QualityRefFile returns the content of the file a {"$ref": path} payload
// points at. Any other payload is returned unchanged. A path that does not
// exist fails with MissingReferenceFile.
func (r *Resolver) QualityRefFile(payload any) (any, error) {
	m, ok := payload.(map[string]any)
	if !ok {
		return payload, nil
	}
	ref, ok := m[RefKey]
	if !ok {
		return payload, nil
	}
	path, ok := ref.(string)
	if !ok {
		return nil, datacontract.MissingReferenceFile(fmt.Sprint(ref))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, datacontract.MissingReferenceFile(path)
	}
	data, err := r.loader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Resolved quality reference", slog.String("path", path))
	return string(data), nil
}
