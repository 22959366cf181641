package registry

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema describes Status as its string form.
func (Status) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Enum:        []any{"running", "idle", "dead", "unknown"},
		Description: "Advisory status; values written by other versions are kept as they are.",
	}
}

// FileSchema returns a JSON Schema for processes.json.
func FileSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	sch := r.Reflect(&File{})
	sch.Title = "sessiondeck process registry"
	sch.Description = "Processes launched by sessiondeck that outlive the dashboard."
	return sch
}

// MarshalSchema indents the schema to JSON bytes.
func MarshalSchema(sch *jsonschema.Schema) ([]byte, error) {
	return json.MarshalIndent(sch, "", "  ")
}
