package validators

import "reflect"

// Map accepts mapping values. Child validators describe the acceptable
// value types; applying them to the contained values is the tree
// walker's job, not the validator's.
type Map struct {
	base
	children []Validator
}

func NewMap(args []any, kwargs map[string]any) (Validator, error) {
	children, _ := Partition(args)
	cons, err := buildConstraints(kwargs, newLengthMin, newLengthMax, newKey)
	if err != nil {
		return nil, err
	}
	b, err := newBase("map", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &Map{base: b, children: children}, nil
}

func (v *Map) IsValid(value any) bool { return isMapping(value) }

func (v *Map) Children() []Validator { return v.children }

// List accepts sequence values; strings do not count as sequences.
type List struct {
	base
	children []Validator
}

func NewList(args []any, kwargs map[string]any) (Validator, error) {
	children, _ := Partition(args)
	cons, err := buildConstraints(kwargs, newLengthMin, newLengthMax)
	if err != nil {
		return nil, err
	}
	b, err := newBase("list", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &List{base: b, children: children}, nil
}

func (v *List) IsValid(value any) bool { return isSequence(value) }

func (v *List) Children() []Validator { return v.children }

func isMapping(value any) bool {
	rv := reflect.ValueOf(value)
	return rv.IsValid() && rv.Kind() == reflect.Map
}

func isSequence(value any) bool {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}
