// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package feed

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/oklog/ulid/v2"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/cargolog/cargolog/internal/event"
)

// schemaCache holds the compiled schema to avoid recompilation.
var schemaCache *jschema.Schema

// SchemaID identifies the event feed schema.
func SchemaID() string {
	return fmt.Sprintf("https://cargolog.dev/schemas/event.v%d.schema.json", Version)
}

// GenerateSchema generates a JSON Schema for the logistics event record.
func GenerateSchema() ([]byte, error) {
	// Enum kinds and the ULID marshal as strings, not their underlying
	// numeric or byte representations.
	stringEnum := func(values ...any) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "string", Enum: values}
	}
	r := jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case reflect.TypeOf(ulid.ULID{}):
				return &jsonschema.Schema{Type: "string"}
			case reflect.TypeOf(event.ActionTake):
				return stringEnum("take", "give", "make")
			case reflect.TypeOf(event.ActorPlayerHand):
				return stringEnum("player-hand", "logistic-robot")
			case reflect.TypeOf(event.LocEntity):
				return stringEnum("entity", "player-inventory", "ground", "logistic-network", "crafting", "world")
			}
			return nil
		},
	}
	schema := r.Reflect(&event.Event{})

	schema.ID = jsonschema.ID(SchemaID())
	schema.Title = "CargoLog Logistics Event"
	schema.Description = "One inferred logistics movement published on the event feed"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateEvent validates a JSON-encoded event against the feed schema.
func ValidateEvent(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	if schemaCache != nil {
		return schemaCache, nil
	}

	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("event.schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := c.Compile("event.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	schemaCache = sch
	return sch, nil
}
