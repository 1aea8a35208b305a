package datacontract_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/datacontract"
)

func contract() map[string]any {
	return map[string]any{
		"dataContractSpecification": "0.9.3",
		"id":                        "urn:datacontract:orders",
		"info":                      map[string]any{"title": "Orders", "version": "1.0.0"},
		"models": map[string]any{
			"orders": map[string]any{
				"type":        "table",
				"description": "All orders",
				"fields": map[string]any{
					"order_id": map[string]any{
						"ref":      "#/definitions/order_id",
						"required": true,
						"x-owner":  "checkout",
					},
					"amount": map[string]any{
						"type":      "decimal",
						"precision": 10,
						"scale":     2,
						"minimum":   0,
						"maximum":   nil,
					},
					"customer": map[string]any{
						"type": "object",
						"fields": map[string]any{
							"email": map[string]any{"type": "string", "pii": true, "tags": []any{"contact"}},
						},
					},
				},
			},
		},
		"definitions": map[string]any{
			"order_id": map[string]any{"name": "order_id", "domain": "checkout", "type": "string", "format": "uuid"},
		},
		"quality": map[string]any{
			"type":          "SodaCL",
			"specification": map[string]any{"checks for orders": []any{"row_count > 0"}},
		},
	}
}

func jsonOf(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestBuild_RoundTrip(t *testing.T) {
	in := contract()
	spec, err := datacontract.Build(in)
	require.NoError(t, err)
	assert.JSONEq(t, jsonOf(t, in), jsonOf(t, spec.ToMap()))
	assert.Equal(t, contract(), in)
}

func TestBuild_TypedAccess(t *testing.T) {
	spec, err := datacontract.Build(contract())
	require.NoError(t, err)

	assert.Equal(t, "urn:datacontract:orders", spec.ID())
	assert.Equal(t, "0.9.3", spec.Version())
	assert.Equal(t, "Orders", spec.Info()["title"])
	assert.Equal(t, []string{"orders"}, spec.ModelNames())
	assert.Equal(t, []string{"order_id"}, spec.DefinitionNames())

	orders := spec.Models["orders"]
	assert.Equal(t, "table", orders.Type())
	assert.Equal(t, "All orders", orders.Description())
	assert.Equal(t, []string{"amount", "customer", "order_id"}, orders.FieldNames())

	id := orders.Fields["order_id"]
	assert.Equal(t, datacontract.Unresolved{Ref: "#/definitions/order_id"}, id.Ref)
	assert.True(t, id.Required)
	assert.True(t, id.Has(datacontract.AttrRequired))
	assert.False(t, id.Has(datacontract.AttrUnique))
	assert.Equal(t, "checkout", id.Extra["x-owner"])

	amount := orders.Fields["amount"]
	assert.Equal(t, 10, amount.Precision)
	assert.Zero(t, amount.Minimum)
	assert.True(t, amount.Has(datacontract.AttrMinimum))
	assert.True(t, amount.IsNull(datacontract.AttrMaximum))
	assert.False(t, amount.Has(datacontract.AttrPII))

	email := orders.Fields["customer"].Fields["email"]
	assert.Equal(t, []string{"contact"}, email.Tags)
	assert.True(t, email.PII)

	def := spec.Definitions["order_id"]
	assert.Equal(t, "order_id", def.Name())
	assert.Equal(t, "checkout", def.Domain())
	assert.Equal(t, datacontract.AttrType|datacontract.AttrFormat, def.Set())

	assert.Equal(t, "SodaCL", spec.Quality.Type)
}

func TestBuild_ConstructionError(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		pointer string
	}{
		{
			name:    "models not an object",
			doc:     map[string]any{"models": "orders"},
			pointer: "/models",
		},
		{
			name: "field attribute of wrong type",
			doc: map[string]any{"models": map[string]any{"m1": map[string]any{"fields": map[string]any{
				"f1": map[string]any{"maxLength": "ten"},
			}}}},
			pointer: "/models/m1/fields/f1/maxLength",
		},
		{
			name: "non integral length",
			doc: map[string]any{"definitions": map[string]any{"d1": map[string]any{
				"minLength": 1.5,
			}}},
			pointer: "/definitions/d1/minLength",
		},
		{
			name: "ref not a string",
			doc: map[string]any{"models": map[string]any{"m1": map[string]any{"fields": map[string]any{
				"f1": map[string]any{"ref": 42},
			}}}},
			pointer: "/models/m1/fields/f1/ref",
		},
		{
			name: "escaped pointer segment",
			doc: map[string]any{"models": map[string]any{"a/b": map[string]any{"fields": map[string]any{
				"f~1": map[string]any{"required": "yes"},
			}}}},
			pointer: "/models/a~1b/fields/f~01/required",
		},
		{
			name:    "quality type not a string",
			doc:     map[string]any{"quality": map[string]any{"type": 1, "specification": "x"}},
			pointer: "/quality/type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := datacontract.Build(tt.doc)
			require.Error(t, err)
			assert.Nil(t, spec)
			assert.ErrorIs(t, err, datacontract.ErrConstruction)
			assert.Contains(t, err.Error(), tt.pointer)
		})
	}
}

func TestInherit(t *testing.T) {
	var def datacontract.Attributes
	require.NoError(t, def.SetAttr(datacontract.AttrType, "string"))
	require.NoError(t, def.SetAttr(datacontract.AttrMaxLength, 36))
	require.NoError(t, def.SetAttr(datacontract.AttrDescription, nil))
	require.NoError(t, def.SetAttr(datacontract.AttrTags, []any{"id"}))

	var field datacontract.Attributes
	require.NoError(t, field.SetAttr(datacontract.AttrType, "text"))

	copied := field.Inherit(&def)
	assert.Equal(t, datacontract.AttrMaxLength|datacontract.AttrDescription|datacontract.AttrTags, copied)
	assert.Equal(t, "description,maxLength,tags", copied.String())
	assert.Equal(t, "text", field.Type)
	assert.Equal(t, 36, field.MaxLength)
	assert.True(t, field.IsNull(datacontract.AttrDescription))
	assert.False(t, field.Has(datacontract.AttrPII))

	field.Tags[0] = "changed"
	assert.Equal(t, []string{"id"}, def.Tags)

	assert.Zero(t, field.Inherit(&def))
}

func TestSetAttr_Rejects(t *testing.T) {
	var a datacontract.Attributes
	assert.ErrorIs(t, a.SetAttr(datacontract.AttrPII, "yes"), datacontract.ErrConstruction)
	assert.ErrorIs(t, a.SetAttr(datacontract.AttrRequired, true), datacontract.ErrConstruction)
	assert.False(t, a.Has(datacontract.AttrPII))
}

func TestClone(t *testing.T) {
	spec, err := datacontract.Build(contract())
	require.NoError(t, err)

	local := spec.Definitions["order_id"]
	remote := &datacontract.Definition{}
	require.NoError(t, remote.SetAttr(datacontract.AttrType, "string"))

	fields := spec.Models["orders"].Fields
	fields["order_id"].Ref = datacontract.Resolved{Ref: "#/definitions/order_id", Definition: local}
	fields["amount"].Ref = datacontract.Resolved{Ref: "https://example.com/amount.yaml", Definition: remote}

	c := spec.Clone()
	assert.JSONEq(t, jsonOf(t, spec.ToMap()), jsonOf(t, c.ToMap()))

	cd, ok := c.Models["orders"].Fields["order_id"].Definition()
	require.True(t, ok)
	assert.Same(t, c.Definitions["order_id"], cd)
	assert.NotSame(t, local, cd)

	rd, ok := c.Models["orders"].Fields["amount"].Definition()
	require.True(t, ok)
	assert.NotSame(t, remote, rd)
	assert.Equal(t, "string", rd.Type)

	c.Models["orders"].Fields["customer"].Fields["email"].Tags[0] = "changed"
	c.Quality.Specification.(map[string]any)["checks for orders"] = nil
	assert.Equal(t, []string{"contact"}, spec.Models["orders"].Fields["customer"].Fields["email"].Tags)
	assert.NotNil(t, spec.Quality.Specification.(map[string]any)["checks for orders"])
}

func TestQuality_WithSpecification(t *testing.T) {
	payload := map[string]any{"$ref": "checks.yaml"}
	q := datacontract.NewQuality("SodaCL", payload)
	out := q.WithSpecification("X")

	assert.Equal(t, "X", out.Specification)
	assert.Equal(t, "SodaCL", out.Type)
	assert.Equal(t, payload, q.Specification)
}
