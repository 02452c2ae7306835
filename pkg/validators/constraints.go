package validators

import (
	"bufio"
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
)

// Constraint is a refinement predicate bound to a validator at
// construction time. It is evaluated only after the validator's own
// check passes; every failing constraint contributes its own message.
type Constraint interface {
	Validate(value any) []string
}

// constraintBuilder constructs a constraint from the keyword options of
// a schema expression. It returns nil when the activating keyword is
// absent, so unused constraints cost nothing at validation time.
type constraintBuilder func(kwargs map[string]any) (Constraint, error)

func buildConstraints(kwargs map[string]any, builders ...constraintBuilder) ([]Constraint, error) {
	var out []Constraint
	for _, build := range builders {
		c, err := build(kwargs)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// boundKind selects how min/max bounds are typed: num carries floats,
// int carries integers, day and timestamp carry times.
type boundKind int

const (
	boundFloat boundKind = iota
	boundInt
	boundTime
)

type minConstraint struct {
	kind boundKind
	f    float64
	i    int64
	t    time.Time
}

type maxConstraint struct {
	kind boundKind
	f    float64
	i    int64
	t    time.Time
}

func minOf(kind boundKind) constraintBuilder {
	return func(kwargs map[string]any) (Constraint, error) {
		raw, ok := kwargs["min"]
		if !ok {
			return nil, nil
		}
		c := &minConstraint{kind: kind}
		if err := c.set(raw); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func maxOf(kind boundKind) constraintBuilder {
	return func(kwargs map[string]any) (Constraint, error) {
		raw, ok := kwargs["max"]
		if !ok {
			return nil, nil
		}
		c := &maxConstraint{kind: kind}
		if err := c.set(raw); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (c *minConstraint) set(raw any) (err error) {
	c.f, c.i, c.t, err = convertBound(c.kind, "min", raw)
	return err
}

func (c *maxConstraint) set(raw any) (err error) {
	c.f, c.i, c.t, err = convertBound(c.kind, "max", raw)
	return err
}

func convertBound(kind boundKind, key string, raw any) (f float64, i int64, t time.Time, err error) {
	switch kind {
	case boundFloat:
		v, ok := toFloat(raw)
		if !ok {
			err = fmt.Errorf("%s is not a num: %v", key, raw)
		}
		f = v
	case boundInt:
		v, ok := toInt(raw)
		if !ok {
			err = fmt.Errorf("%s is not an int: %v", key, raw)
		}
		i = v
	case boundTime:
		v, ok := toTime(raw)
		if !ok {
			err = fmt.Errorf("%s is not a day or timestamp: %v", key, raw)
		}
		t = v
	}
	return f, i, t, err
}

func (c *minConstraint) Validate(value any) []string {
	if c.belowMin(value) {
		return []string{fmt.Sprintf("%v is less than %s", value, c.boundString())}
	}
	return nil
}

func (c *minConstraint) belowMin(value any) bool {
	switch c.kind {
	case boundFloat:
		v, ok := toFloat(value)
		return !ok || v < c.f
	case boundInt:
		v, ok := toInt(value)
		return !ok || v < c.i
	default:
		v, ok := value.(time.Time)
		return !ok || v.Before(c.t)
	}
}

func (c *minConstraint) boundString() string {
	switch c.kind {
	case boundFloat:
		return fmt.Sprintf("%v", c.f)
	case boundInt:
		return fmt.Sprintf("%d", c.i)
	default:
		return c.t.Format("2006-01-02 15:04:05")
	}
}

func (c *maxConstraint) Validate(value any) []string {
	if c.aboveMax(value) {
		return []string{fmt.Sprintf("%v is greater than %s", value, c.boundString())}
	}
	return nil
}

func (c *maxConstraint) aboveMax(value any) bool {
	switch c.kind {
	case boundFloat:
		v, ok := toFloat(value)
		return !ok || v > c.f
	case boundInt:
		v, ok := toInt(value)
		return !ok || v > c.i
	default:
		v, ok := value.(time.Time)
		return !ok || v.After(c.t)
	}
}

func (c *maxConstraint) boundString() string {
	switch c.kind {
	case boundFloat:
		return fmt.Sprintf("%v", c.f)
	case boundInt:
		return fmt.Sprintf("%d", c.i)
	default:
		return c.t.Format("2006-01-02 15:04:05")
	}
}

type lengthMin struct{ min int64 }

type lengthMax struct{ max int64 }

func newLengthMin(kwargs map[string]any) (Constraint, error) {
	raw, ok := kwargs["min"]
	if !ok {
		return nil, nil
	}
	n, ok := toInt(raw)
	if !ok {
		return nil, fmt.Errorf("min is not an int: %v", raw)
	}
	return &lengthMin{min: n}, nil
}

func newLengthMax(kwargs map[string]any) (Constraint, error) {
	raw, ok := kwargs["max"]
	if !ok {
		return nil, nil
	}
	n, ok := toInt(raw)
	if !ok {
		return nil, fmt.Errorf("max is not an int: %v", raw)
	}
	return &lengthMax{max: n}, nil
}

func (c *lengthMin) Validate(value any) []string {
	if lengthOf(value) < c.min {
		return []string{fmt.Sprintf("Length of %v is less than %d", value, c.min)}
	}
	return nil
}

func (c *lengthMax) Validate(value any) []string {
	if lengthOf(value) > c.max {
		return []string{fmt.Sprintf("Length of %v is greater than %d", value, c.max)}
	}
	return nil
}

// keyConstraint applies a validator to every key of a mapping value.
// Activated by the reserved "key" keyword on map().
type keyConstraint struct{ key Validator }

func newKey(kwargs map[string]any) (Constraint, error) {
	raw, ok := kwargs["key"]
	if !ok {
		return nil, nil
	}
	v, ok := raw.(Validator)
	if !ok {
		return nil, fmt.Errorf("key is not a validator: %v", raw)
	}
	return &keyConstraint{key: v}, nil
}

func (c *keyConstraint) Validate(value any) []string {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil
	}
	keys := make([]string, 0, rv.Len())
	byName := make(map[string]any, rv.Len())
	for _, k := range rv.MapKeys() {
		name := fmt.Sprintf("%v", k.Interface())
		keys = append(keys, name)
		byName[name] = k.Interface()
	}
	sort.Strings(keys)
	var errs []string
	for _, name := range keys {
		for _, e := range Check(c.key, byName[name]) {
			errs = append(errs, "Key error - "+e)
		}
	}
	return errs
}

type stringOptions struct {
	Equals     *string `mapstructure:"equals"`
	StartsWith *string `mapstructure:"starts_with"`
	EndsWith   *string `mapstructure:"ends_with"`
	Matches    *string `mapstructure:"matches"`
	Exclude    *string `mapstructure:"exclude"`
	IgnoreCase bool    `mapstructure:"ignore_case"`
	Multiline  bool    `mapstructure:"multiline"`
	DotAll     bool    `mapstructure:"dotall"`
}

func decodeStringOptions(kwargs map[string]any) (stringOptions, error) {
	var opts stringOptions
	err := mapstructure.Decode(kwargs, &opts)
	return opts, err
}

type stringEquals struct {
	equals string
	fold   bool
}

func newStringEquals(kwargs map[string]any) (Constraint, error) {
	opts, err := decodeStringOptions(kwargs)
	if err != nil || opts.Equals == nil {
		return nil, err
	}
	return &stringEquals{equals: *opts.Equals, fold: opts.IgnoreCase}, nil
}

func (c *stringEquals) Validate(value any) []string {
	s, _ := value.(string)
	ok := s == c.equals
	if c.fold {
		ok = strings.EqualFold(s, c.equals)
	}
	if !ok {
		return []string{fmt.Sprintf("%v does not equal %s", value, c.equals)}
	}
	return nil
}

type stringStartsWith struct {
	prefix string
	fold   bool
}

func newStringStartsWith(kwargs map[string]any) (Constraint, error) {
	opts, err := decodeStringOptions(kwargs)
	if err != nil || opts.StartsWith == nil {
		return nil, err
	}
	return &stringStartsWith{prefix: *opts.StartsWith, fold: opts.IgnoreCase}, nil
}

func (c *stringStartsWith) Validate(value any) []string {
	s, _ := value.(string)
	ok := strings.HasPrefix(s, c.prefix)
	if c.fold {
		ok = len(s) >= len(c.prefix) && strings.EqualFold(s[:len(c.prefix)], c.prefix)
	}
	if !ok {
		return []string{fmt.Sprintf("%v does not start with %s", value, c.prefix)}
	}
	return nil
}

type stringEndsWith struct {
	suffix string
	fold   bool
}

func newStringEndsWith(kwargs map[string]any) (Constraint, error) {
	opts, err := decodeStringOptions(kwargs)
	if err != nil || opts.EndsWith == nil {
		return nil, err
	}
	return &stringEndsWith{suffix: *opts.EndsWith, fold: opts.IgnoreCase}, nil
}

func (c *stringEndsWith) Validate(value any) []string {
	s, _ := value.(string)
	ok := strings.HasSuffix(s, c.suffix)
	if c.fold {
		ok = len(s) >= len(c.suffix) && strings.EqualFold(s[len(s)-len(c.suffix):], c.suffix)
	}
	if !ok {
		return []string{fmt.Sprintf("%v does not end with %s", value, c.suffix)}
	}
	return nil
}

type stringMatches struct{ re *regexp.Regexp }

func newStringMatches(kwargs map[string]any) (Constraint, error) {
	opts, err := decodeStringOptions(kwargs)
	if err != nil || opts.Matches == nil {
		return nil, err
	}
	re, err := compileAnchored(*opts.Matches, opts.IgnoreCase, opts.Multiline, opts.DotAll)
	if err != nil {
		return nil, fmt.Errorf("matches: %w", err)
	}
	return &stringMatches{re: re}, nil
}

func (c *stringMatches) Validate(value any) []string {
	s, ok := value.(string)
	if !ok || !c.re.MatchString(s) {
		return []string{fmt.Sprintf("%v is not a regex match.", value)}
	}
	return nil
}

type characterExclude struct {
	exclude string
	fold    bool
}

func newCharacterExclude(kwargs map[string]any) (Constraint, error) {
	opts, err := decodeStringOptions(kwargs)
	if err != nil || opts.Exclude == nil {
		return nil, err
	}
	return &characterExclude{exclude: *opts.Exclude, fold: opts.IgnoreCase}, nil
}

func (c *characterExclude) Validate(value any) []string {
	s, _ := value.(string)
	haystack := s
	if c.fold {
		haystack = strings.ToLower(s)
	}
	for _, ch := range c.exclude {
		needle := string(ch)
		if c.fold {
			needle = strings.ToLower(needle)
		}
		if strings.Contains(haystack, needle) {
			return []string{fmt.Sprintf("'%v' contains excluded character '%s'", value, string(ch))}
		}
	}
	return nil
}

type ipVersion struct{ version int64 }

func newIpVersion(kwargs map[string]any) (Constraint, error) {
	raw, ok := kwargs["version"]
	if !ok {
		return nil, nil
	}
	n, ok := toInt(raw)
	if !ok || (n != 4 && n != 6) {
		return nil, fmt.Errorf("version is not 4 or 6: %v", raw)
	}
	return &ipVersion{version: n}, nil
}

func (c *ipVersion) Validate(value any) []string {
	fail := []string{fmt.Sprintf("IP version of %v is not %d", value, c.version)}
	s, ok := value.(string)
	if !ok {
		return fail
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		p, perr := parsePrefix(s)
		if perr != nil {
			return fail
		}
		addr = p.Addr()
	}
	if (c.version == 4) != addr.Is4() {
		return fail
	}
	return nil
}

var ipPrefixShapes = map[string]*regexp.Regexp{
	"length": regexp.MustCompile(`^[^/]+/[0-9]+$`),
	"mask":   regexp.MustCompile(`^[^/]+/([0-9]+\.)+[0-9]+$`),
	"any":    regexp.MustCompile(`^[^/]+/[0-9.]+$`),
	"none":   regexp.MustCompile(`^[^/]+$`),
}

type ipPrefix struct{ shape string }

func newIpPrefix(kwargs map[string]any) (Constraint, error) {
	raw, ok := kwargs["prefix"]
	if !ok {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("prefix is not a string: %v", raw)
	}
	s = strings.ToLower(s)
	if _, known := ipPrefixShapes[s]; !known {
		return nil, fmt.Errorf("prefix is not one of length, mask, any, none: %v", raw)
	}
	return &ipPrefix{shape: s}, nil
}

func (c *ipPrefix) Validate(value any) []string {
	s, ok := value.(string)
	if !ok || !ipPrefixShapes[c.shape].MatchString(s) {
		return []string{fmt.Sprintf("IP prefix of %v is not '%s'", value, c.shape)}
	}
	return nil
}

// nodeName checks the key a node appears under against a literal or a
// validator. The document root is named "<document>".
type nodeName struct {
	want any
}

func newNodeName(kwargs map[string]any) (Constraint, error) {
	raw, ok := kwargs["name"]
	if !ok {
		return nil, nil
	}
	return &nodeName{want: raw}, nil
}

// Validate is a no-op: the judged input is the node's key, which the
// tree walker supplies through ValidateName.
func (c *nodeName) Validate(value any) []string { return nil }

func (c *nodeName) ValidateName(name string) []string {
	if c.accepts(name) {
		return nil
	}
	return []string{fmt.Sprintf("Node name '%s' is not '%s'", name, c.wantString())}
}

func (c *nodeName) accepts(name string) bool {
	switch w := c.want.(type) {
	case Validator:
		return len(Check(w, name)) == 0
	case string:
		return w == name
	default:
		return fmt.Sprintf("%v", w) == name
	}
}

func (c *nodeName) wantString() string {
	if v, ok := c.want.(Validator); ok {
		return v.Name()
	}
	return fmt.Sprintf("%v", c.want)
}

// fileLine checks that the value appears on a line of at least one of
// the listed files. The matches/replace pair rewrites the value before
// the search, re.sub style.
type fileLine struct {
	paths   []string
	method  string
	fold    bool
	matches *regexp.Regexp
	replace string
}

type fileLineOptions struct {
	Method     string `mapstructure:"method"`
	IgnoreCase bool   `mapstructure:"ignore_case"`
	Matches    string `mapstructure:"matches"`
	Replace    string `mapstructure:"replace"`
}

func newFileLine(paths []string, kwargs map[string]any) (Constraint, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	var opts fileLineOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return nil, err
	}
	c := &fileLine{paths: paths, method: "contains", fold: opts.IgnoreCase, replace: "$0"}
	if opts.Method != "" {
		switch opts.Method {
		case "equals", "contains", "starts_with", "ends_with":
			c.method = opts.Method
		default:
			return nil, fmt.Errorf("method is not one of equals, contains, starts_with, ends_with: %v", opts.Method)
		}
	}
	if opts.Matches != "" {
		re, err := regexp.Compile(opts.Matches)
		if err != nil {
			return nil, fmt.Errorf("matches: %w", err)
		}
		c.matches = re
	}
	if opts.Replace != "" {
		c.replace = opts.Replace
	}
	return c, nil
}

func (c *fileLine) Validate(value any) []string {
	target := fmt.Sprintf("%v", value)
	if c.matches != nil {
		if !c.matches.MatchString(target) {
			return []string{fmt.Sprintf("%v does not match to '%s'", value, c.matches.String())}
		}
		target = c.matches.ReplaceAllString(target, c.replace)
	}
	if c.fold {
		target = strings.ToLower(target)
	}
	for _, path := range c.paths {
		if c.fileHasLine(path, target) {
			return nil
		}
	}
	return []string{fmt.Sprintf("%v not found in %s by method %s as '%s'",
		value, strings.Join(c.paths, ", "), c.method, target)}
}

func (c *fileLine) fileHasLine(path, target string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")
		if c.fold {
			text = strings.ToLower(text)
		}
		switch c.method {
		case "equals":
			if text == target {
				return true
			}
		case "contains":
			if strings.Contains(text, target) {
				return true
			}
		case "starts_with":
			if strings.HasPrefix(text, target) {
				return true
			}
		case "ends_with":
			if strings.HasSuffix(text, target) {
				return true
			}
		}
	}
	return false
}

// --- Conversion helpers ---

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func lengthOf(value any) int64 {
	switch v := value.(type) {
	case string:
		return int64(utf8.RuneCountInString(v))
	case nil:
		return 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return int64(rv.Len())
	}
	return 0
}
