// Package seed loads an initial schema from a YAML file.
//
// Example file:
//
//	fields:
//	  - label: Full Name
//	    type: text
//	    validations: [required, "minLength:2"]
//	  - label: Plan
//	    type: select
//	    options: [free, pro]
//
// Missing ids are generated and missing names are derived from labels.
package seed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/schemaform/internal/core"
	"github.com/JonMunkholm/schemaform/internal/idgen"
)

// File is the top-level document of a seed file.
type File struct {
	Fields []core.FieldDefinition `yaml:"fields"`
}

// Load reads and parses the seed file at path.
func Load(path string) (core.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a seed document and fills in ids and names. The returned
// schema has passed core.ValidateSchema.
func Parse(raw []byte) (core.Schema, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSchema, err)
	}

	schema := make(core.Schema, len(f.Fields))
	for i, def := range f.Fields {
		if strings.TrimSpace(def.ID) == "" {
			id, err := idgen.FieldID()
			if err != nil {
				return nil, fmt.Errorf("seed field %d: %w", i+1, err)
			}
			def.ID = id
		}
		if strings.TrimSpace(def.Name) == "" {
			def.Name = core.ToCamelCase(def.Label)
		}
		if def.Type == "" {
			def.Type = core.KindText
		}
		schema[i] = def
	}

	schema = schema.Normalize()
	if err := core.ValidateSchema(schema); err != nil {
		return nil, err
	}
	return schema, nil
}
