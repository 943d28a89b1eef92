package domain

// Domain contains core models shared by the export pipeline.

// Resource is one item pulled from a shop collection, e.g. a product or an
// order. Data keeps the raw payload so publishers can forward fields the
// exporter does not model.
type Resource struct {
	ID          string         `json:"id"`
	Collection  string         `json:"collection"`
	Title       string         `json:"title,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	ImageURLs   []string       `json:"image_urls,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Fingerprint string         `json:"fingerprint"`
}
