package domain

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

func ptr[T any](v T) *T {
	return &v
}

// inputSchema infers the object schema for T and closes it to unknown keys.
func inputSchema[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("infer input schema for %T: %v", *new(T), err))
	}
	schema.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	return schema
}

func property(schema *jsonschema.Schema, name string) *jsonschema.Schema {
	prop, ok := schema.Properties[name]
	if !ok {
		panic(fmt.Sprintf("schema has no property %q", name))
	}
	return prop
}

func enumOf[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func bounds(prop *jsonschema.Schema, lo, hi float64) {
	prop.Minimum = ptr(lo)
	prop.Maximum = ptr(hi)
}
