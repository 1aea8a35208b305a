package yamldoc_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/datacontract"
	"github.com/reoring/datacontract/internal/yamldoc"
)

func TestDecode(t *testing.T) {
	dec := yamldoc.New(nil)
	v, err := dec.Decode([]byte(`
id: orders
info:
  version: 1.0.0
models:
  orders:
    fields:
      amount: {type: decimal, precision: 10, minimum: 0.5}
      tags: {enum: [a, b]}
`))
	require.NoError(t, err)

	want := map[string]any{
		"id":   "orders",
		"info": map[string]any{"version": "1.0.0"},
		"models": map[string]any{
			"orders": map[string]any{
				"fields": map[string]any{
					"amount": map[string]any{"type": "decimal", "precision": 10, "minimum": 0.5},
					"tags":   map[string]any{"enum": []any{"a", "b"}},
				},
			},
		},
	}
	assert.Equal(t, want, v)
}

func TestDecode_Empty(t *testing.T) {
	for _, doc := range []string{"", "# only a comment\n"} {
		v, err := yamldoc.New(nil).Decode([]byte(doc))
		require.NoError(t, err)
		assert.Nil(t, v)
	}
}

func TestDecode_DuplicateKey(t *testing.T) {
	_, err := yamldoc.New(nil).Decode([]byte("models:\n  m1: {}\n  m1: {}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, datacontract.ErrParse)

	var dup *yamldoc.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "m1", dup.Key)
	assert.Equal(t, 2, dup.FirstLine)
	assert.Equal(t, 3, dup.Line)
}

func TestDecode_MergeKeys(t *testing.T) {
	v, err := yamldoc.New(nil).Decode([]byte(`
base: &base
  type: string
  format: uuid
id:
  <<: *base
  format: email
`))
	require.NoError(t, err)

	m := v.(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "format": "email"}, m["id"])
}

func TestDecode_MultipleDocuments(t *testing.T) {
	_, err := yamldoc.New(nil).Decode([]byte("id: a\n---\nid: b\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, yamldoc.ErrMultipleDocuments)
	assert.ErrorIs(t, err, datacontract.ErrParse)
}

// nestedAliases builds a small document whose aliases expand to width^levels
// scalars.
func nestedAliases(levels, width int) string {
	var b strings.Builder
	b.WriteString("a0: &a0 [x]\n")
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&b, "a%d: &a%d [", i, i)
		for j := 0; j < width; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*a%d", i-1)
		}
		b.WriteString("]\n")
	}
	return b.String()
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unterminated flow sequence", doc: "models: [\n"},
		{name: "alias expansion", doc: nestedAliases(8, 10), want: "excessive aliasing"},
		{name: "anchor containing itself", doc: "a: &x [*x]\n", want: `anchor "x" value contains itself`},
		{name: "merge of itself", doc: "a: &x\n  <<: *x\n", want: `anchor "x" value contains itself`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := yamldoc.New(nil).Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, datacontract.ErrParse)

			dcErr, ok := datacontract.AsError(err)
			require.True(t, ok)
			assert.Equal(t, datacontract.CodeParseError, dcErr.Code)
			assert.Contains(t, dcErr.Reason, "Cannot parse YAML. Error: ")
			assert.Contains(t, dcErr.Reason, tt.want)
		})
	}
}

func TestDecode_SharedAnchors(t *testing.T) {
	v, err := yamldoc.New(nil).Decode([]byte(nestedAliases(3, 4)))
	require.NoError(t, err)
	assert.Len(t, v.(map[string]any)["a3"], 4)
}

func TestDecode_Logging(t *testing.T) {
	var buf bytes.Buffer
	dec := yamldoc.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_, err := dec.Decode([]byte("id: orders\n"))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "level=WARN")

	_, err = dec.Decode([]byte("models: [\n"))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `msg="Cannot parse YAML"`)
}

func TestDecodeMapping(t *testing.T) {
	dec := yamldoc.New(nil)
	m, err := dec.DecodeMapping([]byte("type: string\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "string"}, m)

	for _, doc := range []string{"", "- a\n", "just text\n"} {
		_, err := dec.DecodeMapping([]byte(doc))
		assert.ErrorIs(t, err, datacontract.ErrParse, doc)
	}
}
