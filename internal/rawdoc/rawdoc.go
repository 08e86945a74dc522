// Package rawdoc parses a benchmark-results document into a generic,
// order-preserving tree for the normalize package.
//
// Objects become *orderedmap.OrderedMap[string, any] in source order, arrays
// []any, numbers float64 (or json.Number when out of float range), and
// strings, booleans and null their Go equivalents. Documents that are not
// strict JSON are retried as YAML, which also covers the bare NaN and
// Infinity tokens written by Python's json module.
package rawdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Object is the ordered object type used throughout the tree.
type Object = orderedmap.OrderedMap[string, any]

var errTrailingData = errors.New("unexpected data after top-level value")

// Parse decodes data. Empty or whitespace-only input yields a nil tree and
// no error.
func Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	v, jsonErr := parseJSON(data)
	if jsonErr == nil {
		return v, nil
	}
	v, yamlErr := parseYAML(data)
	if yamlErr == nil {
		return v, nil
	}
	return nil, fmt.Errorf("parsing results document: %w", jsonErr)
}

// ParseObject is like Parse but reports whether the top-level value is an
// object.
func ParseObject(data []byte) (*Object, bool, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, false, err
	}
	obj, ok := v.(*Object)
	return obj, ok, nil
}

func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, nil
		}
		return t, nil
	default:
		return t, nil
	}
}

func readObject(dec *json.Decoder) (any, error) {
	obj := orderedmap.New[string, any]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not string", tok)
		}
		val, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func readArray(dec *json.Decoder) (any, error) {
	list := []any{}
	for dec.More() {
		val, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		list = append(list, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return list, nil
}

func parseYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	return fromNode(doc.Content[0]), nil
}

func fromNode(n *yaml.Node) any {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil
		}
		return fromNode(n.Alias)
	case yaml.MappingNode:
		obj := orderedmap.New[string, any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			obj.Set(n.Content[i].Value, fromNode(n.Content[i+1]))
		}
		return obj
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			list = append(list, fromNode(c))
		}
		return list
	}
	return fromScalar(n)
}

func fromScalar(n *yaml.Node) any {
	if n.Style == 0 {
		switch n.Value {
		case "NaN":
			return math.NaN()
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
	}
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}
