// Package reader loads YAML documents into raw in-memory trees.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes every document in the stream. Mappings become
// map[string]any, sequences []any, scalars their natural Go types
// (timestamps included).
func Parse(r io.Reader) ([]any, error) {
	dec := yaml.NewDecoder(r)
	var docs []any
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ParseFile decodes every document in the file at path.
func ParseFile(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	docs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// ParseString decodes every document in content.
func ParseString(content string) ([]any, error) {
	return Parse(strings.NewReader(content))
}
