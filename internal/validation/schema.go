// Package validation reports how a results document deviates from the
// expected schema. It never rejects a document: diagnostics are advisory,
// normalization still applies defaults to whatever is present.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/leaderboard/internal/rawdoc"
	"github.com/spboyer/leaderboard/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// resultsSchema is the compiled JSON Schema for results documents.
var resultsSchema *jsonschema.Schema

func init() {
	resultsSchema = mustCompileSchema(schemas.ResultsSchemaJSON, "results.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Report lists the problems found in a document. Every problem listed is
// recovered by normalization with a default value.
type Report struct {
	// SchemaErrors are "location: message" strings from schema validation.
	SchemaErrors []string `json:"schema_errors"`
	// NonFinite lists locations holding NaN or infinite numbers.
	NonFinite []string `json:"non_finite"`
}

// OK reports whether the document matched the schema with finite numbers.
func (r *Report) OK() bool {
	return len(r.SchemaErrors) == 0 && len(r.NonFinite) == 0
}

// Problems returns all diagnostics as one sorted list.
func (r *Report) Problems() []string {
	out := slices.Clone(r.SchemaErrors)
	for _, loc := range r.NonFinite {
		out = append(out, loc+": non-finite number")
	}
	slices.Sort(out)
	return out
}

// CheckBytes validates a raw results document. An error is returned only
// when data can not be parsed at all.
func CheckBytes(data []byte) (*Report, error) {
	tree, err := rawdoc.Parse(data)
	if err != nil {
		return nil, err
	}
	return Check(tree), nil
}

// Check validates a parsed document tree.
func Check(tree any) *Report {
	r := &Report{}
	collectNonFinite(tree, nil, &r.NonFinite)
	r.SchemaErrors = validateAgainstSchema(resultsSchema, jsonInstance(tree))
	return r
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, fmt.Sprintf("%s: %s", pointer(ve.InstanceLocation), ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

func collectNonFinite(v any, path []string, out *[]string) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			*out = append(*out, pointer(path))
		}
	case *rawdoc.Object:
		if t == nil {
			return
		}
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			collectNonFinite(pair.Value, append(slices.Clone(path), pair.Key), out)
		}
	case []any:
		for i, item := range t {
			collectNonFinite(item, append(slices.Clone(path), strconv.Itoa(i)), out)
		}
	}
}

// jsonInstance converts a tree into the map[string]any form the schema
// validator expects. Non-finite numbers become null so they are reported
// as type mismatches.
func jsonInstance(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case *rawdoc.Object:
		if t == nil {
			return nil
		}
		m := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			m[pair.Key] = jsonInstance(pair.Value)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonInstance(item)
		}
		return out
	}
	return v
}

// tokenEscaper escapes a JSON Pointer reference token (RFC 6901).
var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func pointer(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, token := range path {
		b.WriteByte('/')
		tokenEscaper.WriteString(&b, token) //nolint:errcheck
	}
	return b.String()
}
