// Package datacontract provides:
//
// - The typed model of a data contract (Specification, Model, Field, Definition, Quality)
// - Per-attribute presence tracking, so explicit values can be told from defaults
// - A Contract Builder (Build/ToMap) that maps decoded YAML onto the model losslessly
// - A single error taxonomy (*Error) shared by every resolution step
//
// Design policy:
// - Keep the model and errors in the root package; resolution steps live in subpackages.
// - Place loading under source/, schema validation under schema/, reference resolution under resolve/, and the CLI under cmd/datacontract.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	spec, err := resolve.FromLocation(ctx, "datacontract.yaml", resolve.Options{InlineDefinitions: true})
//	for _, name := range spec.ModelNames() {
//		model := spec.Models[name]
//		...
//	}
//
// References:
//
// A field's Ref is either Unresolved or Resolved. Inlining binds the
// definition and copies every attribute the definition sets explicitly and
// the field does not; the field's own values always win.
package datacontract
