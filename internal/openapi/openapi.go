// Package openapi holds the minimal OpenAPI document model shared by the
// backend services, which serve their route manifest at /openapi.json, and
// the gateway, which merges those manifests into one combined description.
package openapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const WellKnownPath = "/openapi.json"

type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components *Components         `json:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// PathItem maps a lowercase HTTP method to its operation.
type PathItem map[string]Operation

// Operation keeps only the fields the gateway reads and rewrites. Anything
// else a backend puts in its manifest is dropped at the merge boundary.
type Operation struct {
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	OperationID string   `json:"operationId,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type Components struct {
	Schemas map[string]json.RawMessage `json:"schemas,omitempty"`
}

func NewDocument(title, version, description string) *Document {
	return &Document{
		OpenAPI: "3.1.0",
		Info: Info{
			Title:       title,
			Version:     version,
			Description: description,
		},
		Paths: make(map[string]PathItem),
	}
}

func (d *Document) AddOperation(method, path string, op Operation) {
	item, ok := d.Paths[path]
	if !ok {
		item = make(PathItem)
		d.Paths[path] = item
	}
	item[method] = op
}

// Handler serves the document at the well-known manifest path.
func (d *Document) Handler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d); err != nil {
			logger.Error("failed to encode openapi document", "error", err)
		}
	}
}
