package notifications

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/kaptinlin/jsonschema"
)

//go:embed preferences.schema.json
var preferencesSchemaJSON []byte

var preferencesSchema = mustCompile(preferencesSchemaJSON)

func mustCompile(data []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(data)
	if err != nil {
		panic(fmt.Sprintf("notifications: invalid embedded schema: %v", err))
	}
	return schema
}

// ParsePreferences validates a raw preferences batch against the schema
// and decodes it. Nothing is returned unless every item is valid.
func ParsePreferences(raw []byte) ([]PreferenceItem, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Validation("non_field_errors", "JSON mal formado")
	}
	if _, ok := doc.([]interface{}); !ok {
		return nil, apperr.Validation("non_field_errors", "Se espera una lista")
	}

	result := preferencesSchema.Validate(doc)
	if !result.IsValid() {
		fields := make(map[string]string, len(result.Errors))
		for key, evalErr := range result.Errors {
			fields[key] = evalErr.Error()
		}
		return nil, apperr.ValidationFields("Cada item debe tener tipo (str) y activo (bool)", fields)
	}

	var items []PreferenceItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.Validation("non_field_errors", "Cada item debe tener tipo (str) y activo (bool)")
	}
	return items, nil
}
