package validators

import "fmt"

// Builder constructs a validator from the positional arguments and
// keyword options of a schema expression. Positional arguments may
// contain other validators (already built) or bare literals.
type Builder func(args []any, kwargs map[string]any) (Validator, error)

// Registry maps validator names to builders. Both the short tag
// ("str") and the display name ("String") resolve to the same builder,
// so schema authors may reference either.
type Registry map[string]Builder

// Default returns the statically enumerated registry of built-in
// validators.
func Default() Registry {
	r := make(Registry)
	add := func(tag, name string, b Builder) {
		r[tag] = b
		r[name] = b
	}
	add("str", "String", NewString)
	add("num", "Number", NewNumber)
	add("int", "Integer", NewInteger)
	add("bool", "Boolean", NewBoolean)
	add("enum", "Enum", NewEnum)
	add("day", "Day", NewDay)
	add("timestamp", "Timestamp", NewTimestamp)
	add("null", "Null", NewNull)
	add("regex", "Regex", NewRegex)
	add("mac", "Mac", NewMac)
	add("semver", "SemVer", NewSemVer)
	add("ip", "Ip", NewIp)
	add("file_line", "FileLine", NewFileLine)
	add("map", "Map", NewMap)
	add("list", "List", NewList)
	add("any", "Any", NewAny)
	add("all", "All", NewAll)
	add("notany", "NotAny", NewNotAny)
	add("subset", "Subset", NewSubset)
	add("include", "Include", NewInclude)
	return r
}

// Build looks up name and invokes its builder.
func (r Registry) Build(name string, args []any, kwargs map[string]any) (Validator, error) {
	b, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("not a registered validator: '%s'", name)
	}
	return b(args, kwargs)
}

// Has reports whether name is registered.
func (r Registry) Has(name string) bool {
	_, ok := r[name]
	return ok
}
