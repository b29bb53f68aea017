package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported declared languages for spec bodies.
const (
	LanguageJSON = "JSON"
	LanguageYAML = "YAML"
)

// LoadError indicates that a spec body could not be parsed or failed
// validation. Both cases map to the same client-facing response.
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string {
	return e.Reason
}

// IsLoadError reports whether err is a LoadError.
func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// Info is the result of processing a spec document.
type Info struct {
	Version     string
	Title       string
	Description string
	ModelCount  int

	// Normalized is the canonical artifact: compact JSON holding only the
	// schema definitions, with stable key ordering.
	Normalized []byte
}

// Load parses raw bytes in the declared language into a document.
func Load(raw []byte, language string) (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	switch strings.ToUpper(language) {
	case LanguageJSON:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &LoadError{Reason: "body must be valid JSON"}
		}
	case LanguageYAML:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, &LoadError{Reason: "body must be valid YAML"}
		}
	default:
		return nil, &LoadError{Reason: fmt.Sprintf(
			"unsupported language %s, supported languages are JSON and YAML", language,
		)}
	}
	return doc, nil
}

// Process parses and validates a spec body and returns the extracted metadata
// together with the normalized artifact bytes.
func Process(raw []byte, language string) (*Info, error) {
	doc, err := Load(raw, language)
	if err != nil {
		return nil, err
	}

	version, title, description, err := extractInfo(doc)
	if err != nil {
		return nil, err
	}

	schemas, err := extractSchemas(doc)
	if err != nil {
		return nil, err
	}

	normalized, err := json.Marshal(map[string]interface{}{
		"components": map[string]interface{}{"schemas": schemas},
	})
	if err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("unable to serialize the spec: %v", err)}
	}

	return &Info{
		Version:     version,
		Title:       title,
		Description: description,
		ModelCount:  len(schemas),
		Normalized:  normalized,
	}, nil
}

// extractInfo pulls version, title and description out of the info block.
// Only the version is mandatory.
func extractInfo(doc map[string]interface{}) (version, title, description string, err error) {
	rawInfo, ok := doc["info"]
	if !ok {
		return "", "", "", &LoadError{Reason: "spec must define info"}
	}
	info, ok := rawInfo.(map[string]interface{})
	if !ok {
		return "", "", "", &LoadError{Reason: "spec info must be an object"}
	}

	rawVersion, ok := info["version"]
	if !ok {
		return "", "", "", &LoadError{Reason: "spec must define info.version"}
	}
	version, ok = rawVersion.(string)
	if !ok || version == "" {
		return "", "", "", &LoadError{Reason: "spec info.version must be a non-empty string"}
	}
	// "latest" is the storage key under which the newest artifact copy is
	// mirrored; a literal version of that name would collide with it.
	if strings.EqualFold(version, "latest") {
		return "", "", "", &LoadError{Reason: "spec info.version must not be latest, that name is reserved"}
	}

	title, _ = info["title"].(string)
	description, _ = info["description"].(string)
	return version, title, description, nil
}

// extractSchemas pulls the model definitions out of components.schemas and
// checks each one is structurally an object, which is the minimum shape the
// downstream package builder can work with.
func extractSchemas(doc map[string]interface{}) (map[string]interface{}, error) {
	rawComponents, ok := doc["components"]
	if !ok {
		return nil, &LoadError{Reason: "spec must define components"}
	}
	components, ok := rawComponents.(map[string]interface{})
	if !ok {
		return nil, &LoadError{Reason: "spec components must be an object"}
	}

	rawSchemas, ok := components["schemas"]
	if !ok {
		return nil, &LoadError{Reason: "spec must define components.schemas"}
	}
	schemas, ok := rawSchemas.(map[string]interface{})
	if !ok {
		return nil, &LoadError{Reason: "spec components.schemas must be an object"}
	}
	if len(schemas) == 0 {
		return nil, &LoadError{Reason: "spec components.schemas must define at least one schema"}
	}

	for name, rawSchema := range schemas {
		if _, ok := rawSchema.(map[string]interface{}); !ok {
			return nil, &LoadError{Reason: fmt.Sprintf(
				"schema %s must be an object", name,
			)}
		}
	}
	return schemas, nil
}
