package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type strategyReply struct {
	Decision  string `json:"decision" jsonschema:"enum=ACCEPT,enum=REJECT,enum=COUNTER"`
	Reasoning string `json:"reasoning"`
}

func TestSchemaFor(t *testing.T) {
	schema, err := SchemaFor(&strategyReply{})
	require.NoError(t, err)

	require.Contains(t, schema, `"decision"`)
	require.Contains(t, schema, `"reasoning"`)
	require.Contains(t, schema, `"ACCEPT"`)
	require.NotContains(t, schema, "$ref")
}

func TestDecodeObjectToleratesFences(t *testing.T) {
	var out strategyReply

	raw := "Here you go:\n```json\n{\"decision\": \"COUNTER\", \"reasoning\": \"cap too low\"}\n```\n"
	require.NoError(t, decodeObject(raw, &out))
	require.Equal(t, "COUNTER", out.Decision)
	require.Equal(t, "cap too low", out.Reasoning)

	require.Error(t, decodeObject("not json at all", &out))
}

func TestMockClientObjectDefaults(t *testing.T) {
	mock := NewMockClient()

	var out strategyReply
	require.NoError(t, mock.GenerateObject(context.Background(), "system", []Message{{Role: RoleUser, Content: "clause"}}, &out))
	require.Equal(t, "COUNTER", out.Decision)
	require.NotEmpty(t, out.Reasoning)
	require.Len(t, mock.Calls, 1)
	require.Contains(t, mock.Calls[0], "clause")
}
