package schema

import "fmt"

// SyntaxError reports a malformed schema definition. It is fatal to
// compiling the schema, unlike validation errors, which accumulate in
// a Result.
type SyntaxError struct {
	Schema string // schema document name
	Path   string // node position inside the document, "" for the root
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema error in %s: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("schema error in %s at %s: %v", e.Schema, e.Path, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
