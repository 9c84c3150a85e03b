// Package docs registers the OpenAPI document served at /api/swagger.
// swagger.yaml is the source of truth; regenerate it with swag and keep it
// committed so cmd/openapi-compat can diff revisions.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

//go:embed swagger.yaml
var swaggerYAML []byte

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "DevConnector API",
	Description:      "Developer profiles, posts, comments and likes.",
	InfoInstanceName: "swagger",
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

// YAML returns the raw embedded document.
func YAML() []byte {
	return swaggerYAML
}

// JSON converts the embedded YAML document to JSON.
func JSON() ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(swaggerYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse swagger.yaml: %w", err)
	}
	return json.Marshal(doc)
}

func init() {
	doc, err := JSON()
	if err != nil {
		panic(err)
	}
	SwaggerInfo.SwaggerTemplate = string(doc)
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
