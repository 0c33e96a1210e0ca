// Package api carries the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPI is api/openapi.yaml, served at /docs/openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
