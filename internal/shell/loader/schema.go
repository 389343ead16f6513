package loader

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Document Schemas
// =============================================================================

const (
	appSchema   = "appspec.schema.json"
	extraSchema = "extra.schema.json"
	envSchema   = "envspec.schema.json"

	schemaBase = "https://simpled.local/schemas/"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

var compiledSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	names := []string{appSchema, extraSchema, envSchema}
	for _, name := range names {
		raw, err := schemaFiles.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		if err := c.AddResource(schemaBase+name, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		sch, err := c.Compile(schemaBase + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		schemas[name] = sch
	}
	return schemas, nil
})

// checkSchema validates a decoded YAML document against a named schema.
func checkSchema(name string, root *yaml.Node) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}

	var doc any
	if err := root.Decode(&doc); err != nil {
		return err
	}
	// The validator works on JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return schemas[name].Validate(inst)
}
