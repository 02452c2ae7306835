package validators

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Validator is the capability contract shared by every checker in a
// compiled schema. Instances are built once at schema-compile time and
// are immutable afterwards, so a single tree can be reused across
// documents (and goroutines) safely.
type Validator interface {
	// Tag returns the short identifier the schema language uses for this
	// validator kind (e.g. "str", "enum").
	Tag() string
	// Name returns the display name used in diagnostics. Defaults to the
	// tag; some validators override it (a named regex, an include target).
	Name() string
	// IsValid reports whether value passes the validator's own check.
	// It must be a pure function of value and the validator's
	// configuration. Constraints are evaluated separately, and only
	// after IsValid succeeds.
	IsValid(value any) bool
	// Fail builds the diagnostic for a value rejected by IsValid.
	Fail(value any) string
	// IsOptional reports whether the field may be absent entirely.
	IsOptional() bool
	// CanBeNone reports whether an explicit null is acceptable even
	// though IsValid would reject it.
	CanBeNone() bool
	// Constraints returns the refinement predicates bound to this
	// validator, in declaration order.
	Constraints() []Constraint
}

// Parent is implemented by validators that own child validators:
// containers (map, list) and combinators (any, all, notany, subset).
// The tree walker uses it to recurse.
type Parent interface {
	Children() []Validator
}

// base carries the state every validator shares. Concrete validators
// embed it and override the methods they need.
type base struct {
	tag         string
	name        string
	required    bool
	noneOK      bool
	constraints []Constraint
}

type baseOptions struct {
	Required *bool `mapstructure:"required"`
	None     *bool `mapstructure:"none"`
}

// newBase decodes the universal keyword options (required, none) and
// attaches the given constraints. Fields are required by default; an
// optional field tolerates null by default.
func newBase(tag string, kwargs map[string]any, constraints []Constraint) (base, error) {
	var opts baseOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return base{}, fmt.Errorf("%s: %w", tag, err)
	}
	b := base{tag: tag, required: true, noneOK: true, constraints: constraints}
	if opts.Required != nil {
		b.required = *opts.Required
	}
	if opts.None != nil {
		b.noneOK = *opts.None
	}
	// The name keyword binds a node-name check on every validator; the
	// regex family strips it first, where it is the display override.
	nn, err := newNodeName(kwargs)
	if err != nil {
		return base{}, fmt.Errorf("%s: %w", tag, err)
	}
	if nn != nil {
		b.constraints = append(b.constraints, nn)
	}
	return b, nil
}

func (b *base) Tag() string { return b.tag }

func (b *base) Name() string {
	if b.name != "" {
		return b.name
	}
	return b.tag
}

func (b *base) IsOptional() bool { return !b.required }

func (b *base) CanBeNone() bool { return b.noneOK }

func (b *base) Constraints() []Constraint { return b.constraints }

func (b *base) Fail(value any) string {
	return fmt.Sprintf("'%v' is not a %s.", value, b.Name())
}

// NodeConstraint is implemented by constraints that judge the key a
// node appears under rather than its value.
type NodeConstraint interface {
	ValidateName(name string) []string
}

// CheckName runs the constraints that judge the node's key. They run
// before the value check, and a failure suppresses it: a misnamed node
// reports only its name error.
func CheckName(v Validator, name string) []string {
	var errs []string
	for _, c := range v.Constraints() {
		if nc, ok := c.(NodeConstraint); ok {
			errs = append(errs, nc.ValidateName(name)...)
		}
	}
	return errs
}

// Check runs a validator's own check followed by its constraints and
// returns every resulting message. A failing own-check short-circuits:
// constraints only apply to structurally acceptable values.
func Check(v Validator, value any) []string {
	if !v.IsValid(value) {
		return []string{v.Fail(value)}
	}
	var errs []string
	for _, c := range v.Constraints() {
		errs = append(errs, c.Validate(value)...)
	}
	return errs
}

// Partition splits the positional arguments of a schema expression into
// child validators and bare literals. The split happens once, at
// schema-compile time; validation never re-inspects argument types.
func Partition(args []any) (children []Validator, literals []any) {
	for _, arg := range args {
		if v, ok := arg.(Validator); ok {
			children = append(children, v)
		} else {
			literals = append(literals, arg)
		}
	}
	return children, literals
}
