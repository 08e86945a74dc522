// Package schemas embeds the JSON Schemas for documents read by leaderboard.
package schemas

import _ "embed"

// ResultsSchemaJSON is the JSON Schema of a benchmark-results document.
//
//go:embed results.schema.json
var ResultsSchemaJSON string
