package validators

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// The combinators share one construction step: positional literals fold
// into an implicit enum validator appended to the child set. Each
// combinator owns its combination logic; the tree walker only adds deep
// recursion for children that are containers or includes.

func combine(args []any) ([]Validator, error) {
	children, literals := Partition(args)
	if len(literals) > 0 {
		e, err := NewEnum(literals, nil)
		if err != nil {
			return nil, err
		}
		children = append(children, e)
	}
	return children, nil
}

// Any accepts a value accepted by at least one child validator.
type Any struct {
	base
	children []Validator
}

func NewAny(args []any, kwargs map[string]any) (Validator, error) {
	children, err := combine(args)
	if err != nil {
		return nil, err
	}
	b, err := newBase("any", kwargs, nil)
	if err != nil {
		return nil, err
	}
	return &Any{base: b, children: children}, nil
}

func (v *Any) IsValid(value any) bool {
	for _, c := range v.children {
		if c.IsValid(value) {
			return true
		}
	}
	return len(v.children) == 0
}

func (v *Any) Children() []Validator { return v.children }

// All accepts a value accepted by every child validator.
type All struct {
	base
	children []Validator
}

func NewAll(args []any, kwargs map[string]any) (Validator, error) {
	children, err := combine(args)
	if err != nil {
		return nil, err
	}
	b, err := newBase("all", kwargs, nil)
	if err != nil {
		return nil, err
	}
	return &All{base: b, children: children}, nil
}

func (v *All) IsValid(value any) bool {
	for _, c := range v.children {
		if !c.IsValid(value) {
			return false
		}
	}
	return true
}

func (v *All) Children() []Validator { return v.children }

// NotAny accepts a value accepted by none of its child validators.
type NotAny struct {
	base
	children []Validator
}

func NewNotAny(args []any, kwargs map[string]any) (Validator, error) {
	children, err := combine(args)
	if err != nil {
		return nil, err
	}
	b, err := newBase("notany", kwargs, nil)
	if err != nil {
		return nil, err
	}
	return &NotAny{base: b, children: children}, nil
}

func (v *NotAny) IsValid(value any) bool {
	for _, c := range v.children {
		if c.IsValid(value) {
			return false
		}
	}
	return true
}

func (v *NotAny) Children() []Validator { return v.children }

func (v *NotAny) Fail(value any) string {
	return fmt.Sprintf("'%v' matches a disallowed type", value)
}

// Subset accepts a non-empty collection each of whose elements is
// accepted by at least one child validator. With allow_empty the empty
// collection passes too. A subset with no child validators is a schema
// error, reported at compile time.
type Subset struct {
	base
	children   []Validator
	allowEmpty bool
}

type subsetOptions struct {
	AllowEmpty bool `mapstructure:"allow_empty"`
}

func NewSubset(args []any, kwargs map[string]any) (Validator, error) {
	children, err := combine(args)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("subset requires at least one validator")
	}
	var opts subsetOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return nil, err
	}
	b, err := newBase("subset", kwargs, nil)
	if err != nil {
		return nil, err
	}
	return &Subset{base: b, children: children, allowEmpty: opts.AllowEmpty}, nil
}

func (v *Subset) IsValid(value any) bool {
	elems := Elements(value)
	if len(elems) == 0 {
		return v.allowEmpty
	}
	for _, elem := range elems {
		accepted := false
		for _, c := range v.children {
			if c.IsValid(elem) {
				accepted = true
				break
			}
		}
		if !accepted {
			return false
		}
	}
	return true
}

func (v *Subset) Children() []Validator { return v.children }

func (v *Subset) AllowEmpty() bool { return v.allowEmpty }

// The empty-set policy doubles as the optional/none policy: an empty
// subset may be omitted or null exactly when allow_empty is set.
func (v *Subset) IsOptional() bool { return v.allowEmpty }

func (v *Subset) CanBeNone() bool { return v.allowEmpty }

func (v *Subset) Fail(value any) string {
	return fmt.Sprintf("'%s' may not be an empty set.", v.Name())
}

// Elements flattens a checked value into the element list a subset
// judges: nil is empty, sequences contribute their items, and a scalar
// counts as a single-element collection.
func Elements(value any) []any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{value}
}
