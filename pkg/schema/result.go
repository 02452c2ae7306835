package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Result is the outcome of validating one data document: an ordered
// list of error messages, empty when the document conforms.
type Result struct {
	DataPath   string
	SchemaPath string
	Errors     []string
}

// IsValid reports whether the document passed validation.
func (r *Result) IsValid() bool { return len(r.Errors) == 0 }

func (r *Result) String() string {
	if r.IsValid() {
		return fmt.Sprintf("Data '%s' is valid against schema '%s'", r.DataPath, r.SchemaPath)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Error validating data '%s' with schema '%s'", r.DataPath, r.SchemaPath)
	for _, e := range r.Errors {
		b.WriteString("\n\t")
		b.WriteString(e)
	}
	return b.String()
}

// path is a dotted position inside a document, e.g. "servers.0.host".
type path struct {
	segs []string
}

func (p path) child(seg string) path {
	segs := make([]string, 0, len(p.segs)+1)
	segs = append(segs, p.segs...)
	segs = append(segs, seg)
	return path{segs: segs}
}

func (p path) index(i int) path { return p.child(strconv.Itoa(i)) }

// name is the key the node appears under; the root node is named
// "<document>".
func (p path) name() string {
	if len(p.segs) == 0 {
		return "<document>"
	}
	return p.segs[len(p.segs)-1]
}

func (p path) String() string { return strings.Join(p.segs, ".") }

// errf formats a message attributed to this position.
func (p path) errf(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if len(p.segs) == 0 {
		return msg
	}
	return p.String() + ": " + msg
}
