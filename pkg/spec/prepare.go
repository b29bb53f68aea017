package spec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Prepare renders stored artifact bytes into a human-readable document for
// read endpoints. The version lives in the metadata record, so it is
// re-inserted into an info block before rendering. Storage is canonical JSON;
// the display form is YAML.
func Prepare(stored []byte, version string) (string, error) {
	doc := map[string]interface{}{}
	if err := json.Unmarshal(stored, &doc); err != nil {
		return "", fmt.Errorf("stored spec is not valid JSON: %w", err)
	}

	doc["info"] = map[string]interface{}{"version": version}

	rendered, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("unable to render the spec: %w", err)
	}
	return string(rendered), nil
}
