// Package docs carries the OpenAPI contract of the token endpoints and
// registers it with swag so the swagger UI can serve it.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.json
var openapiJSON []byte

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "Simple auth manager Service",
	Description:      "Issues access tokens to users authenticated with a username and a password.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  string(openapiJSON),
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// JSON returns the contract exactly as shipped.
func JSON() []byte {
	return openapiJSON
}

// YAML renders the contract as block-style YAML, keeping key order.
func YAML() ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(openapiJSON, &doc); err != nil {
		return nil, err
	}
	toBlockStyle(&doc)
	return yaml.Marshal(&doc)
}

func toBlockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		toBlockStyle(c)
	}
}
