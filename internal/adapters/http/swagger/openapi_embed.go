package swagger

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
)

// OpenAPI contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var OpenAPI []byte

// openAPIJSON converts the embedded document once, for clients that only read JSON.
var openAPIJSON = sync.OnceValues(func() ([]byte, error) {
	doc, err := yaml.Parser().Unmarshal(OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	return json.Marshal(doc)
})
