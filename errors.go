package sieve

import (
	"strings"

	"github.com/aretw0/sieve/pkg/schema"
)

// Error aggregates the per-document results of a failed batch
// validation. It is returned by Validate alongside the results
// themselves whenever at least one document is invalid.
type Error struct {
	Results []*schema.Result
}

func (e *Error) Error() string {
	var parts []string
	for _, r := range e.Results {
		if !r.IsValid() {
			parts = append(parts, r.String())
		}
	}
	return strings.Join(parts, "\n----\n")
}
