package validators

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Include is a named forward reference to an independently compiled
// sub-schema. The name is resolved at validation time against the
// schema's include table, which is threaded through the walk by the
// driver; the validator itself holds no resolution state, so one
// instance is safe to share across concurrent validations.
type Include struct {
	base
	strict *bool
}

type includeOptions struct {
	Strict *bool `mapstructure:"strict"`
}

func NewInclude(args []any, kwargs map[string]any) (Validator, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("include requires a schema name")
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("include name is not a string: %v", args[0])
	}
	var opts includeOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return nil, err
	}
	b, err := newBase("include", kwargs, nil)
	if err != nil {
		return nil, err
	}
	b.name = name
	return &Include{base: b, strict: opts.Strict}, nil
}

// IsValid alone cannot resolve the reference; the tree walker performs
// the lookup and the recursive check. Standalone use reports success so
// the contract stays total.
func (v *Include) IsValid(value any) bool { return true }

// Strict returns the per-include strictness override, or nil to
// inherit the document-level setting.
func (v *Include) Strict() *bool { return v.strict }
