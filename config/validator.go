package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// agentConfigSchema pins the YAML config shape: every app override needs a
// name and a package, contacts need a name and a phone, executor knobs must
// be non-negative.
const agentConfigSchema = `{
  "type": "object",
  "properties": {
    "apps": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "package": {"type": "string", "minLength": 1},
          "aliases": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name", "package"]
      }
    },
    "contacts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "phone": {"type": "string", "minLength": 1}
        },
        "required": ["name", "phone"]
      }
    },
    "executor": {
      "type": "object",
      "properties": {
        "safety_ceiling": {"type": "integer", "minimum": 0},
        "default_delay_ms": {"type": "integer", "minimum": 0},
        "cooldown_seconds": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var configSchema = gojsonschema.NewStringLoader(agentConfigSchema)

// validateAgentConfig checks the parsed config against the schema so a typo
// in the YAML fails at startup instead of surfacing as odd runtime behavior.
func validateAgentConfig(cfg *AgentConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	result, err := gojsonschema.Validate(configSchema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, fmt.Sprintf("- %s", e))
		}
		return fmt.Errorf("config validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
