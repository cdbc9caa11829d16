package openapi

import (
	"reflect"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

var timeType = reflect.TypeOf(time.Time{})

func (o *OpenAPI) generateSchema(example any) *openapi3.SchemaRef {
	o.mu.Lock()
	defer o.mu.Unlock()

	if example == nil {
		return openapi3.NewObjectSchema().NewRef()
	}
	return o.schemaFor(reflect.TypeOf(example))
}

// schemaFor maps a Go type to a schema. Named structs are registered once as
// components and referenced afterwards.
func (o *OpenAPI) schemaFor(t reflect.Type) *openapi3.SchemaRef {
	if t.Kind() == reflect.Pointer {
		ref := o.schemaFor(t.Elem())
		if ref.Ref != "" {
			return &openapi3.SchemaRef{Value: &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}, Nullable: true}}
		}
		ref.Value.Nullable = true
		return ref
	}

	switch t.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema().NewRef()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return openapi3.NewIntegerSchema().NewRef()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema().WithMin(0).NewRef()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema().NewRef()
	case reflect.Bool:
		return openapi3.NewBoolSchema().NewRef()
	case reflect.Slice, reflect.Array:
		schema := openapi3.NewArraySchema()
		schema.Items = o.schemaFor(t.Elem())
		return schema.NewRef()
	case reflect.Map:
		schema := openapi3.NewObjectSchema()
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: o.schemaFor(t.Elem())}
		return schema.NewRef()
	case reflect.Struct:
		if t == timeType {
			return openapi3.NewDateTimeSchema().NewRef()
		}
		return o.structRef(t)
	default:
		return openapi3.NewObjectSchema().NewRef()
	}
}

// structRef keeps the resolved component alongside each $ref so the document
// validates without a loader pass.
func (o *OpenAPI) structRef(t reflect.Type) *openapi3.SchemaRef {
	if t.Name() == "" {
		schema := openapi3.NewObjectSchema()
		o.fillStruct(schema, t)
		return schema.NewRef()
	}

	name, ok := o.schemas[t]
	if !ok {
		name = t.Name()
		o.schemas[t] = name
		schema := openapi3.NewObjectSchema()
		o.spec.Components.Schemas[name] = schema.NewRef()
		o.fillStruct(schema, t)
	}
	return openapi3.NewSchemaRef("#/components/schemas/"+name, o.spec.Components.Schemas[name].Value)
}

func (o *OpenAPI) fillStruct(schema *openapi3.Schema, t reflect.Type) {

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}

		ref := o.schemaFor(field.Type)
		if ref.Ref == "" {
			if doc := field.Tag.Get("doc"); doc != "" {
				ref.Value.Description = doc
			}
			if ex := field.Tag.Get("example"); ex != "" {
				ref.Value.Example = ex
			}
		}
		schema.Properties[name] = ref

		if !strings.Contains(opts, "omitempty") && field.Type.Kind() != reflect.Pointer {
			schema.Required = append(schema.Required, name)
		}
	}
}
