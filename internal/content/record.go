// Package content defines the typed record produced by the ingestion
// pipeline, the metadata extraction that guards it, the path resolver that
// keys it, and the store that serves it to the rendering layer.
package content

import "time"

// Record is the normalized, validated unit stored and served to the
// rendering layer, keyed by a stable id derived from the source path.
type Record struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"` // mirrors PublishedAt for feed generation
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	TagSlugs    []string  `json:"tagSlugs"`
	Lang        string    `json:"lang"`
	Restricted  bool      `json:"restricted"`
	BodyHTML    string    `json:"bodyHtml"`
}
