package openapi

import (
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

type RouteBuilder struct {
	openapi   *OpenAPI
	method    string
	path      string
	operation *openapi3.Operation
}

func (rb *RouteBuilder) extractPathParams() {
	for _, part := range strings.Split(rb.path, "/") {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			rb.param(name, openapi3.ParameterInPath).Required = true
		}
	}
}

func (rb *RouteBuilder) param(name, in string) *openapi3.Parameter {
	for _, p := range rb.operation.Parameters {
		if p.Value != nil && p.Value.Name == name && p.Value.In == in {
			return p.Value
		}
	}

	param := &openapi3.Parameter{
		Name:   name,
		In:     in,
		Schema: openapi3.NewStringSchema().NewRef(),
	}
	rb.operation.Parameters = append(rb.operation.Parameters, &openapi3.ParameterRef{Value: param})
	return param
}

func (rb *RouteBuilder) Summary(summary string) *RouteBuilder {
	rb.operation.Summary = summary
	return rb
}

func (rb *RouteBuilder) Description(description string) *RouteBuilder {
	rb.operation.Description = description
	return rb
}

func (rb *RouteBuilder) OperationID(id string) *RouteBuilder {
	rb.operation.OperationID = id
	return rb
}

func (rb *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	rb.operation.Tags = append(rb.operation.Tags, tags...)
	return rb
}

func (rb *RouteBuilder) PathParam(name, description string) *RouteBuilder {
	param := rb.param(name, openapi3.ParameterInPath)
	param.Description = description
	param.Required = true
	return rb
}

// QueryParam documents an optional query parameter of the given JSON schema type.
func (rb *RouteBuilder) QueryParam(name, typ, description string) *RouteBuilder {
	param := rb.param(name, openapi3.ParameterInQuery)
	param.Description = description
	param.Schema.Value.Type = &openapi3.Types{typ}
	return rb
}

func (rb *RouteBuilder) Body(example any, description string) *RouteBuilder {
	rb.operation.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithDescription(description).
			WithRequired(true).
			WithJSONSchemaRef(rb.openapi.generateSchema(example)),
	}
	return rb
}

func (rb *RouteBuilder) BodyOptional(example any, description string) *RouteBuilder {
	rb.Body(example, description)
	rb.operation.RequestBody.Value.Required = false
	return rb
}

func (rb *RouteBuilder) Response(statusCode int, example any, description string) *RouteBuilder {
	response := openapi3.NewResponse().WithDescription(description)
	if example != nil {
		response.WithJSONSchemaRef(rb.openapi.generateSchema(example))
	}
	rb.operation.Responses.Set(strconv.Itoa(statusCode), &openapi3.ResponseRef{Value: response})
	return rb
}

func (rb *RouteBuilder) ResponseText(statusCode int, description string) *RouteBuilder {
	response := openapi3.NewResponse().
		WithDescription(description).
		WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/plain"}))
	rb.operation.Responses.Set(strconv.Itoa(statusCode), &openapi3.ResponseRef{Value: response})
	return rb
}

func (rb *RouteBuilder) Security(schemes ...string) *RouteBuilder {
	if rb.operation.Security == nil {
		rb.operation.Security = openapi3.NewSecurityRequirements()
	}
	for _, scheme := range schemes {
		rb.operation.Security.With(openapi3.NewSecurityRequirement().Authenticate(scheme))
	}
	return rb
}

func (rb *RouteBuilder) Build() {
	if rb.operation.Responses.Len() == 0 {
		rb.Response(200, nil, "OK")
	}
	rb.openapi.addOperation(rb.method, rb.path, rb.operation)
}
