package loader

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"go.yaml.in/yaml/v4"
)

// convertSwagger converts a Swagger 2.0 document, YAML or JSON, into an
// OpenAPI 3 JSON document.
func convertSwagger(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing swagger document: %w", err)
	}

	js, err := json.Marshal(normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("encoding swagger document: %w", err)
	}

	var v2 openapi2.T
	if err := json.Unmarshal(js, &v2); err != nil {
		return nil, fmt.Errorf("decoding swagger document: %w", err)
	}

	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, fmt.Errorf("converting swagger to OpenAPI 3: %w", err)
	}

	out, err := json.Marshal(v3)
	if err != nil {
		return nil, fmt.Errorf("encoding converted document: %w", err)
	}
	return out, nil
}
