package api

import "github.com/specstash/specstash/pkg/metadata"

// SpecResponse is a metadata record merged with the rendered spec document.
type SpecResponse struct {
	metadata.Record
	Value string `json:"value"`
}
