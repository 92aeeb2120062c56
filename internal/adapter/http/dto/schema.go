package dto

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var schemaTypes = map[string]any{
	"party-create":         CreatePartyRequest{},
	"party-update":         UpdatePartyRequest{},
	"reconciliation-start": StartReconciliationRequest{},
	"selection":            SelectionRequest{},
}

// SchemaNames lists the request bodies with a published schema.
func SchemaNames() []string {
	names := make([]string, 0, len(schemaTypes))
	for name := range schemaTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Schema reflects the JSON Schema of a named request body.
func Schema(name string) (*jsonschema.Schema, error) {
	v, ok := schemaTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    decimalMapper,
	}
	return reflector.Reflect(v), nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalMapper describes amounts the way decimal.Decimal accepts them.
func decimalMapper(t reflect.Type) *jsonschema.Schema {
	if t != decimalType {
		return nil
	}
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`},
			{Type: "number"},
		},
		Description: "Decimal amount",
	}
}
