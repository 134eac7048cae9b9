package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

// OpenAPIYAML serves the registered swagger document converted to YAML.
func OpenAPIYAML() fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		out, err := jsonToYAML([]byte(doc))
		if err != nil {
			return err
		}
		c.Type("yaml")
		return c.Send(out)
	}
}

// jsonToYAML re-encodes a JSON document as YAML keeping key order.
func jsonToYAML(in []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(in, &node); err != nil {
		return nil, fmt.Errorf("decode openapi document: %w", err)
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

// clearStyle drops the flow and quoting styles inherited from JSON so the output reads as block YAML.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		clearStyle(child)
	}
}
