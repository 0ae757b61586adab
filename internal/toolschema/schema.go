// Package toolschema reflects Go request-struct types into JSON
// schemas for MCP tool registration, using invopop/jsonschema — an
// upgrade over the teacher's hand-written json.RawMessage literals
// (mcptools/tools.go) in the same spirit: schema generated from types,
// not maintained by hand alongside them (spec.md §0).
package toolschema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// reflector is shared across every Of call: its settings (no
// definitions indirection, since MCP clients expect one flat schema
// per tool) are the same for every request type this package reflects.
var reflector = &jsonschema.Reflector{
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: false,
}

// Of reflects T into a raw JSON Schema document suitable for an MCP
// tool's inputSchema field.
func Of[T any]() json.RawMessage {
	var zero T
	schema := reflector.Reflect(&zero)
	data, err := json.Marshal(schema)
	if err != nil {
		// Reflection over a plain request struct cannot fail; a panic
		// here means a tool's request type is malformed, which is a
		// programming error caught at registration time, not runtime.
		panic("toolschema: " + err.Error())
	}
	return data
}
