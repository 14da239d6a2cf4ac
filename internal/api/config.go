// Package api builds the huma configuration shared by the server and by
// handler tests, so both see identical negotiation and response shapes.
package api

import (
	"github.com/danielgtaylor/huma/v2"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
)

// Title is the API title published in the OpenAPI document.
const Title = "Demo Backend API"

// NewConfig returns huma's default configuration without the schema link
// hook, so response bodies carry only their declared fields (no "$schema"
// property and no describedBy Link header). Every JSON response is also
// advertised as CBOR in the OpenAPI document.
func NewConfig(version, docsPath string) huma.Config {
	cfg := huma.DefaultConfig(Title, version)
	cfg.CreateHooks = nil
	cfg.DocsPath = docsPath
	cfg.OnAddOperation = append(cfg.OnAddOperation, addCBORContent)
	return cfg
}

func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}
