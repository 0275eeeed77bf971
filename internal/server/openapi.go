package server

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/zoobzio/chefbot"
)

// Document describes the HTTP API. The request schema is derived from the
// State field descriptors so it always matches what FromMap accepts.
func Document() *openapi3.T {
	state := openapi3.NewObjectSchema()
	for _, f := range chefbot.Fields() {
		var prop *openapi3.Schema
		if f.Type == "array" {
			prop = openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
		} else {
			prop = openapi3.NewStringSchema()
		}
		prop.Description = f.Description
		state.WithProperty(f.Name, prop)
	}

	step := openapi3.NewObjectSchema().
		WithProperty("stage", openapi3.NewStringSchema()).
		WithProperty("outcome", openapi3.NewStringSchema().WithEnum(
			string(chefbot.OutcomeRan), string(chefbot.OutcomeNoop),
			string(chefbot.OutcomeSkipped), string(chefbot.OutcomeFailed))).
		WithProperty("prompt", openapi3.NewStringSchema()).
		WithProperty("response", openapi3.NewStringSchema())

	recipe := openapi3.NewObjectSchema().
		WithProperty("recipe", openapi3.NewStringSchema()).
		WithProperty("found", openapi3.NewBoolSchema()).
		WithProperty("state", state).
		WithProperty("transcript", openapi3.NewArraySchema().WithItems(step))

	failure := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())

	generate := &openapi3.Operation{
		OperationID: "generateRecipe",
		Summary:     "Generate a recipe by dish name or from an ingredient list",
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(state),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("generated recipe", recipe)),
			openapi3.WithStatus(http.StatusBadRequest, jsonResponse("invalid or conflicting fields", failure)),
			openapi3.WithStatus(http.StatusRequestEntityTooLarge, jsonResponse("request body too large", failure)),
			openapi3.WithStatus(http.StatusBadGateway, jsonResponse("model unavailable", failure)),
		),
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "chefbot",
			Version: "v1",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/v1/recipes", &openapi3.PathItem{Post: generate}),
			openapi3.WithPath("/v1/fields", getItem("listFields", "state field descriptors")),
			openapi3.WithPath("/v1/choices", getItem("listChoices", "selectable field values")),
			openapi3.WithPath("/v1/graph", getItem("describeGraph", "stage graph")),
			openapi3.WithPath("/healthz", getItem("health", "service health")),
		),
	}
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema),
	}
}

func getItem(operationID, description string) *openapi3.PathItem {
	return &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: operationID,
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, jsonResponse(description, openapi3.NewSchema())),
			),
		},
	}
}
