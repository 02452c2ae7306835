package sieve

import (
	"fmt"

	"github.com/aretw0/sieve/internal/reader"
	"github.com/aretw0/sieve/pkg/schema"
)

// Version is the current sieve release.
const Version = "1.0.0"

// Document is one parsed data document awaiting validation.
type Document struct {
	Data any
	Path string
}

// MakeSchema loads and compiles one or more schema files. The first
// document of the first file is the root schema; every further
// document, and every document of further files, registers an include.
func MakeSchema(paths ...string) (*schema.Schema, error) {
	var main *schema.Schema
	for _, path := range paths {
		docs, err := reader.ParseFile(path)
		if err != nil {
			return nil, err
		}
		main, err = addSchemaDocs(main, docs, path)
		if err != nil {
			return nil, err
		}
	}
	if main == nil {
		return nil, fmt.Errorf("%s is an empty file", paths[0])
	}
	return main, nil
}

// MakeSchemaFromString compiles schema content held in memory. Multiple
// YAML documents follow the same root-then-includes convention as
// MakeSchema.
func MakeSchemaFromString(content, name string) (*schema.Schema, error) {
	docs, err := reader.ParseString(content)
	if err != nil {
		return nil, err
	}
	main, err := addSchemaDocs(nil, docs, name)
	if err != nil {
		return nil, err
	}
	if main == nil {
		return nil, fmt.Errorf("%s is an empty schema", name)
	}
	return main, nil
}

func addSchemaDocs(main *schema.Schema, docs []any, name string) (*schema.Schema, error) {
	for _, doc := range docs {
		if main == nil {
			compiled, err := schema.New(doc, name)
			if err != nil {
				return nil, err
			}
			main = compiled
			continue
		}
		if err := main.AddInclude(doc); err != nil {
			return nil, err
		}
	}
	return main, nil
}

// MakeData loads every document in a data file. An empty file yields
// one empty document, so validation against a schema of optional
// fields can still succeed.
func MakeData(path string) ([]Document, error) {
	docs, err := reader.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return wrapData(docs, path), nil
}

// MakeDataFromString loads data documents held in memory.
func MakeDataFromString(content string) ([]Document, error) {
	docs, err := reader.ParseString(content)
	if err != nil {
		return nil, err
	}
	return wrapData(docs, "<string>"), nil
}

func wrapData(docs []any, path string) []Document {
	if len(docs) == 0 {
		return []Document{{Data: map[string]any{}, Path: path}}
	}
	out := make([]Document, len(docs))
	for i, doc := range docs {
		out[i] = Document{Data: doc, Path: path}
	}
	return out
}

// Validate checks every data document against the schema. It always
// returns one Result per document; when at least one document is
// invalid it additionally returns a *Error carrying all results, which
// callers that prefer inspecting results directly may ignore.
func Validate(s *schema.Schema, data []Document, strict bool) ([]*schema.Result, error) {
	results := make([]*schema.Result, 0, len(data))
	valid := true
	for _, doc := range data {
		result := s.Validate(doc.Data, doc.Path, strict)
		results = append(results, result)
		valid = valid && result.IsValid()
	}
	if !valid {
		return results, &Error{Results: results}
	}
	return results, nil
}
