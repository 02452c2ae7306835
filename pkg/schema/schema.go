package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/sieve/internal/parser"
	"github.com/aretw0/sieve/pkg/validators"
)

// Schema is a compiled schema document: a tree whose inner nodes mirror
// the document's mappings and sequences and whose leaves are
// validators. A schema also owns the include table shared by every
// sub-schema reachable from it. Compile fully before validating; after
// that the schema is immutable and safe for concurrent use.
type Schema struct {
	// Name identifies the schema in diagnostics, usually its file path
	// or, for an include, its include name.
	Name string

	root     any
	includes map[string]*Schema
	registry validators.Registry
	parser   *parser.Parser
}

// Option configures schema compilation.
type Option func(*Schema)

// WithValidators replaces the default validator registry.
func WithValidators(registry validators.Registry) Option {
	return func(s *Schema) { s.registry = registry }
}

// New compiles a raw schema tree (as produced by the YAML front end)
// into a Schema. Malformed validator expressions surface as a
// *SyntaxError.
func New(raw any, name string, opts ...Option) (*Schema, error) {
	s := &Schema{
		Name:     name,
		includes: make(map[string]*Schema),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = validators.Default()
	}
	s.parser = parser.NewParser(s.registry)

	root, err := s.compile(raw, path{})
	if err != nil {
		return nil, err
	}
	s.root = root
	return s, nil
}

// AddInclude compiles an include document: a mapping from include name
// to sub-schema tree. Sub-schemas share the root schema's include
// table, so includes may reference each other in any order, including
// mutually.
func (s *Schema) AddInclude(raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return &SyntaxError{Schema: s.Name, Err: fmt.Errorf("include document is not a mapping: %v", raw)}
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		root, err := s.compile(m[name], path{}.child(name))
		if err != nil {
			return err
		}
		s.includes[name] = &Schema{
			Name:     name,
			root:     root,
			includes: s.includes,
			registry: s.registry,
			parser:   s.parser,
		}
	}
	return nil
}

// Lookup returns the include registered under name.
func (s *Schema) Lookup(name string) (*Schema, bool) {
	sub, ok := s.includes[name]
	return sub, ok
}

func (s *Schema) compile(raw any, p path) (any, error) {
	switch t := raw.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			node, err := s.compile(v, p.child(k))
			if err != nil {
				return nil, err
			}
			out[k] = node
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			node, err := s.compile(v, p.index(i))
			if err != nil {
				return nil, err
			}
			out[i] = node
		}
		return out, nil
	default:
		v, err := s.parser.Parse(raw)
		if err != nil {
			return nil, &SyntaxError{Schema: s.Name, Path: p.String(), Err: err}
		}
		return v, nil
	}
}

// Validate checks one data document against the schema and returns its
// Result. In strict mode, mapping keys the schema does not mention are
// flagged as unexpected.
func (s *Schema) Validate(data any, dataPath string, strict bool) *Result {
	return &Result{
		DataPath:   dataPath,
		SchemaPath: s.Name,
		Errors:     s.walk(s.root, data, path{}, strict),
	}
}

// --- tree walker ---

func (s *Schema) walk(node, data any, p path, strict bool) []string {
	switch t := node.(type) {
	case map[string]any:
		return s.walkStaticMap(t, data, p, strict)
	case []any:
		return s.walkStaticList(t, data, p, strict)
	case validators.Validator:
		return s.walkValidator(t, data, p, strict)
	default:
		return []string{p.errf("unexpected schema node: %v", node)}
	}
}

// walkStaticMap checks a fixed mapping shape: every schema key must be
// present unless its validator is optional.
func (s *Schema) walkStaticMap(node map[string]any, data any, p path, strict bool) []string {
	m, ok := mappingOf(data)
	if !ok {
		return []string{p.errf("'%v' is not a map", data)}
	}
	var errs []string
	for _, k := range sortedKeys(node) {
		child := node[k]
		value, exists := m[k]
		if !exists {
			if v, isValidator := child.(validators.Validator); isValidator && v.IsOptional() {
				continue
			}
			errs = append(errs, p.child(k).errf("Required field missing"))
			continue
		}
		errs = append(errs, s.walk(child, value, p.child(k), strict)...)
	}
	if strict {
		for _, k := range sortedKeys(m) {
			if _, known := node[k]; !known {
				errs = append(errs, p.child(k).errf("Unexpected element"))
			}
		}
	}
	return errs
}

// walkStaticList checks a fixed sequence shape positionally.
func (s *Schema) walkStaticList(node []any, data any, p path, strict bool) []string {
	seq, ok := sequenceOf(data)
	if !ok {
		return []string{p.errf("'%v' is not a list", data)}
	}
	var errs []string
	for i, child := range node {
		if i >= len(seq) {
			if v, isValidator := child.(validators.Validator); isValidator && v.IsOptional() {
				continue
			}
			errs = append(errs, p.index(i).errf("Required field missing"))
			continue
		}
		errs = append(errs, s.walk(child, seq[i], p.index(i), strict)...)
	}
	if strict {
		for i := len(node); i < len(seq); i++ {
			errs = append(errs, p.index(i).errf("Unexpected element"))
		}
	}
	return errs
}

func (s *Schema) walkValidator(v validators.Validator, data any, p path, strict bool) []string {
	if data == nil && v.IsOptional() && v.CanBeNone() {
		return nil
	}
	// Node-name constraints run before the value check and suppress it
	// when they fail.
	if msgs := validators.CheckName(v, p.name()); len(msgs) > 0 {
		errs := make([]string, 0, len(msgs))
		for _, m := range msgs {
			errs = append(errs, p.errf("%s", m))
		}
		return errs
	}
	switch t := v.(type) {
	case *validators.Include:
		return s.walkInclude(t, data, p, strict)
	case *validators.Map:
		return s.walkMap(t, data, p, strict)
	case *validators.List:
		return s.walkList(t, data, p, strict)
	case *validators.Any:
		return s.acceptAny(t.Children(), data, p, strict)
	case *validators.All:
		var errs []string
		for _, c := range t.Children() {
			errs = append(errs, s.walkValidator(c, data, p, strict)...)
		}
		return errs
	case *validators.NotAny:
		for _, c := range t.Children() {
			if len(s.walkValidator(c, data, p, strict)) == 0 {
				return []string{p.errf("%s", t.Fail(data))}
			}
		}
		return nil
	case *validators.Subset:
		return s.walkSubset(t, data, p, strict)
	default:
		var errs []string
		for _, e := range validators.Check(v, data) {
			errs = append(errs, p.errf("%s", e))
		}
		return errs
	}
}

// walkInclude resolves the include name against the schema's table and
// recursively validates data against the referenced sub-schema. Nested
// failures are re-wrapped under a single message naming the include.
func (s *Schema) walkInclude(v *validators.Include, data any, p path, strict bool) []string {
	sub, ok := s.includes[v.Name()]
	if !ok {
		return []string{p.errf("'%s' is not included", v.Name())}
	}
	effective := strict
	if v.Strict() != nil {
		effective = *v.Strict()
	}
	nested := sub.walk(sub.root, data, path{}, effective)
	if len(nested) == 0 {
		return nil
	}
	return []string{p.errf("'%v' is not a %s because %s", data, v.Name(), strings.Join(nested, "; "))}
}

func (s *Schema) walkMap(v *validators.Map, data any, p path, strict bool) []string {
	if !v.IsValid(data) {
		return []string{p.errf("%s", v.Fail(data))}
	}
	var errs []string
	for _, c := range v.Constraints() {
		for _, e := range c.Validate(data) {
			errs = append(errs, p.errf("%s", e))
		}
	}
	if len(v.Children()) == 0 {
		return errs
	}
	m, _ := mappingOf(data)
	for _, k := range sortedKeys(m) {
		errs = append(errs, s.acceptAny(v.Children(), m[k], p.child(k), strict)...)
	}
	return errs
}

func (s *Schema) walkList(v *validators.List, data any, p path, strict bool) []string {
	if !v.IsValid(data) {
		return []string{p.errf("%s", v.Fail(data))}
	}
	var errs []string
	for _, c := range v.Constraints() {
		for _, e := range c.Validate(data) {
			errs = append(errs, p.errf("%s", e))
		}
	}
	if len(v.Children()) == 0 {
		return errs
	}
	seq, _ := sequenceOf(data)
	for i, elem := range seq {
		errs = append(errs, s.acceptAny(v.Children(), elem, p.index(i), strict)...)
	}
	return errs
}

func (s *Schema) walkSubset(v *validators.Subset, data any, p path, strict bool) []string {
	elems := validators.Elements(data)
	if len(elems) == 0 {
		if v.AllowEmpty() {
			return nil
		}
		return []string{p.errf("%s", v.Fail(data))}
	}
	indexed := isSequenceValue(data)
	var errs []string
	for i, elem := range elems {
		ep := p
		if indexed {
			ep = p.index(i)
		}
		errs = append(errs, s.acceptAny(v.Children(), elem, ep, strict)...)
	}
	return errs
}

// acceptAny validates value against each candidate in turn and
// succeeds on the first match; when none match, every candidate's
// errors are reported.
func (s *Schema) acceptAny(candidates []validators.Validator, value any, p path, strict bool) []string {
	if len(candidates) == 0 {
		return nil
	}
	var all []string
	for _, c := range candidates {
		errs := s.walkValidator(c, value, p, strict)
		if len(errs) == 0 {
			return nil
		}
		all = append(all, errs...)
	}
	return all
}

// --- value helpers ---

func mappingOf(data any) (map[string]any, bool) {
	m, ok := data.(map[string]any)
	return m, ok
}

func sequenceOf(data any) ([]any, bool) {
	seq, ok := data.([]any)
	return seq, ok
}

func isSequenceValue(data any) bool {
	_, ok := sequenceOf(data)
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
