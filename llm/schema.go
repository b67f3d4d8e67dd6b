package llm

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/nexuscore/negotiator/errors"
)

// SchemaFor renders the JSON schema of v's type, inlined without $ref
// indirection so it can be embedded into a prompt.
func SchemaFor(v any) (string, error) {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}

	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return "", errors.Wrapf(err, "failed to marshal schema")
	}
	return string(raw), nil
}

func schemaInstruction(schema string) string {
	return "Respond with a single JSON object matching this JSON schema, with no surrounding prose:\n" + schema
}

// decodeObject parses the model reply into out, tolerating markdown code
// fences and leading prose around the JSON object.
func decodeObject(raw string, out any) error {
	text := strings.TrimSpace(raw)
	if i := strings.Index(text, "{"); i > 0 {
		text = text[i:]
	}
	if j := strings.LastIndex(text, "}"); j >= 0 {
		text = text[:j+1]
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return errors.Wrapf(err, "failed to decode object from model reply")
	}
	return nil
}
