// Package openapi provides the embedded OpenAPI specification.
package openapi

import _ "embed"

// Spec is the OpenAPI 3.1 document (YAML) served at /openapi.yaml.
//
//go:embed spec.yaml
var Spec []byte
