package validators

import (
	"fmt"
	"math/bits"
	"net/netip"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// String accepts any string value.
type String struct{ base }

// NewString builds a str() validator. Positional arguments are accepted
// and ignored, so a bare string leaf in a schema compiles to a plain
// string check.
func NewString(args []any, kwargs map[string]any) (Validator, error) {
	cons, err := buildConstraints(kwargs,
		newLengthMin, newLengthMax, newCharacterExclude,
		newStringEquals, newStringStartsWith, newStringEndsWith, newStringMatches)
	if err != nil {
		return nil, err
	}
	b, err := newBase("str", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &String{base: b}, nil
}

func (v *String) IsValid(value any) bool {
	_, ok := value.(string)
	return ok
}

// Number accepts ints and floats. Booleans are rejected explicitly:
// some front ends model them as a numeric subtype.
type Number struct{ base }

func NewNumber(args []any, kwargs map[string]any) (Validator, error) {
	cons, err := buildConstraints(kwargs, minOf(boundFloat), maxOf(boundFloat))
	if err != nil {
		return nil, err
	}
	b, err := newBase("num", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &Number{base: b}, nil
}

func (v *Number) IsValid(value any) bool {
	if _, isBool := value.(bool); isBool {
		return false
	}
	_, ok := toFloat(value)
	return ok
}

// Integer accepts integer values, excluding booleans.
type Integer struct{ base }

func NewInteger(args []any, kwargs map[string]any) (Validator, error) {
	cons, err := buildConstraints(kwargs, minOf(boundInt), maxOf(boundInt))
	if err != nil {
		return nil, err
	}
	b, err := newBase("int", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &Integer{base: b}, nil
}

func (v *Integer) IsValid(value any) bool {
	if _, isBool := value.(bool); isBool {
		return false
	}
	_, ok := toInt(value)
	return ok
}

// Boolean accepts bools.
type Boolean struct{ base }

func NewBoolean(args []any, kwargs map[string]any) (Validator, error) {
	b, err := newBase("bool", kwargs, nil)
	if err != nil {
		return nil, err
	}
	return &Boolean{base: b}, nil
}

func (v *Boolean) IsValid(value any) bool {
	_, ok := value.(bool)
	return ok
}

// Enum accepts values from a fixed literal set captured at construction.
type Enum struct {
	base
	literals []any
}

func NewEnum(args []any, kwargs map[string]any) (Validator, error) {
	b, err := newBase("enum", kwargs, nil)
	if err != nil {
		return nil, err
	}
	return &Enum{base: b, literals: args}, nil
}

func (v *Enum) IsValid(value any) bool {
	for _, lit := range v.literals {
		if literalEqual(lit, value) {
			return true
		}
	}
	return false
}

func (v *Enum) Fail(value any) string {
	parts := make([]string, len(v.literals))
	for i, lit := range v.literals {
		parts[i] = fmt.Sprintf("%v", lit)
	}
	return fmt.Sprintf("'%v' not in (%s)", value, strings.Join(parts, ", "))
}

// literalEqual compares a schema literal to a document value, letting
// ints and floats compare across types the way YAML authors expect.
func literalEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if _, isBool := a.(bool); !isBool {
			bf, bok := toFloat(b)
			if _, bBool := b.(bool); bok && !bBool {
				return af == bf
			}
			return false
		}
	}
	return a == b
}

// Day accepts date values already parsed by the document front end.
// Format: YYYY-MM-DD.
type Day struct{ base }

func NewDay(args []any, kwargs map[string]any) (Validator, error) {
	cons, err := buildConstraints(kwargs, minOf(boundTime), maxOf(boundTime))
	if err != nil {
		return nil, err
	}
	b, err := newBase("day", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &Day{base: b}, nil
}

func (v *Day) IsValid(value any) bool {
	_, ok := value.(time.Time)
	return ok
}

// Timestamp accepts datetime values. Format: YYYY-MM-DD HH:MM:SS.
type Timestamp struct{ base }

func NewTimestamp(args []any, kwargs map[string]any) (Validator, error) {
	cons, err := buildConstraints(kwargs, minOf(boundTime), maxOf(boundTime))
	if err != nil {
		return nil, err
	}
	b, err := newBase("timestamp", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &Timestamp{base: b}, nil
}

func (v *Timestamp) IsValid(value any) bool {
	_, ok := value.(time.Time)
	return ok
}

// Null accepts exactly null.
type Null struct{ base }

func NewNull(args []any, kwargs map[string]any) (Validator, error) {
	b, err := newBase("null", kwargs, nil)
	if err != nil {
		return nil, err
	}
	return &Null{base: b}, nil
}

func (v *Null) IsValid(value any) bool { return value == nil }

// Regex accepts strings matching any of its patterns. Matches are
// anchored at the start of the string, not the full string, mirroring
// re.match semantics.
type Regex struct {
	base
	patterns []*regexp.Regexp
}

type regexOptions struct {
	Name       string `mapstructure:"name"`
	IgnoreCase bool   `mapstructure:"ignore_case"`
	Multiline  bool   `mapstructure:"multiline"`
	DotAll     bool   `mapstructure:"dotall"`
}

func NewRegex(args []any, kwargs map[string]any) (Validator, error) {
	var opts regexOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return nil, err
	}
	var patterns []*regexp.Regexp
	for _, arg := range args {
		expr, ok := arg.(string)
		if !ok {
			continue
		}
		re, err := compileAnchored(expr, opts.IgnoreCase, opts.Multiline, opts.DotAll)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, re)
	}
	b, err := newBase("regex", withoutName(kwargs), nil)
	if err != nil {
		return nil, err
	}
	b.name = opts.Name
	if b.name == "" {
		b.name = "regex match"
	}
	return &Regex{base: b, patterns: patterns}, nil
}

// withoutName drops the name keyword before the universal options are
// decoded. The regex family consumes name as its display override, so
// it must not double as the node-name constraint there.
func withoutName(kwargs map[string]any) map[string]any {
	if _, ok := kwargs["name"]; !ok {
		return kwargs
	}
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		if k != "name" {
			out[k] = v
		}
	}
	return out
}

func (v *Regex) IsValid(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, re := range v.patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// compileAnchored compiles expr so matching starts at the beginning of
// the string but may stop before its end.
func compileAnchored(expr string, ignoreCase, multiline, dotAll bool) (*regexp.Regexp, error) {
	flags := ""
	if ignoreCase {
		flags += "i"
	}
	if multiline {
		flags += "m"
	}
	if dotAll {
		flags += "s"
	}
	if flags != "" {
		flags = "(?" + flags + ")"
	}
	return regexp.Compile(flags + `\A(?:` + expr + `)`)
}

// Mac accepts colon, hyphen, dot or undelimited hex hardware addresses:
// six or eight two-hex groups, or three or four four-hex groups, with a
// consistent separator throughout.
type Mac struct{ Regex }

var macPatterns = buildMacPatterns()

func buildMacPatterns() []*regexp.Regexp {
	var patterns []*regexp.Regexp
	for _, sep := range []string{":", "-", ""} {
		for _, groups := range []int{6, 8} {
			expr := fmt.Sprintf(`\A[0-9a-fA-F]{2}(?:%s[0-9a-fA-F]{2}){%d}\z`, regexp.QuoteMeta(sep), groups-1)
			patterns = append(patterns, regexp.MustCompile(expr))
		}
	}
	for _, sep := range []string{":", "-", ".", ""} {
		for _, groups := range []int{3, 4} {
			expr := fmt.Sprintf(`\A[0-9a-fA-F]{4}(?:%s[0-9a-fA-F]{4}){%d}\z`, regexp.QuoteMeta(sep), groups-1)
			patterns = append(patterns, regexp.MustCompile(expr))
		}
	}
	return patterns
}

func NewMac(args []any, kwargs map[string]any) (Validator, error) {
	var opts regexOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return nil, err
	}
	b, err := newBase("mac", withoutName(kwargs), nil)
	if err != nil {
		return nil, err
	}
	b.name = opts.Name
	if b.name == "" {
		b.name = "mac match"
	}
	return &Mac{Regex: Regex{base: b, patterns: macPatterns}}, nil
}

// SemVer accepts canonical semantic version strings (semver.org).
type SemVer struct{ Regex }

// Suggested pattern from semver.org.
var semverPattern = regexp.MustCompile(`^(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<patch>0|[1-9]\d*)(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+(?P<buildmetadata>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

func NewSemVer(args []any, kwargs map[string]any) (Validator, error) {
	var opts regexOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return nil, err
	}
	b, err := newBase("semver", withoutName(kwargs), nil)
	if err != nil {
		return nil, err
	}
	b.name = opts.Name
	if b.name == "" {
		b.name = "semver match"
	}
	return &SemVer{Regex: Regex{base: b, patterns: []*regexp.Regexp{semverPattern}}}, nil
}

// Ip accepts strings parseable as an IP address or network. With
// strict set, a prefix with host bits set is rejected.
type Ip struct {
	base
	strict bool
}

type ipOptions struct {
	Strict bool `mapstructure:"strict"`
}

func NewIp(args []any, kwargs map[string]any) (Validator, error) {
	var opts ipOptions
	if err := mapstructure.Decode(kwargs, &opts); err != nil {
		return nil, err
	}
	cons, err := buildConstraints(kwargs, newIpVersion, newIpPrefix)
	if err != nil {
		return nil, err
	}
	b, err := newBase("ip", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &Ip{base: b, strict: opts.Strict}, nil
}

func (v *Ip) IsValid(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}
	p, err := parsePrefix(s)
	if err != nil {
		return false
	}
	if v.strict && p != p.Masked() {
		return false
	}
	return true
}

// parsePrefix accepts both prefix-length ("10.0.0.0/8") and dotted
// netmask ("10.0.0.0/255.0.0.0") notation.
func parsePrefix(s string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return p, nil
	}
	addrStr, maskStr, found := strings.Cut(s, "/")
	if !found {
		return netip.Prefix{}, fmt.Errorf("not a prefix: %s", s)
	}
	addr, err := netip.ParseAddr(addrStr)
	if err != nil {
		return netip.Prefix{}, err
	}
	mask, err := netip.ParseAddr(maskStr)
	if err != nil || !addr.Is4() || !mask.Is4() {
		return netip.Prefix{}, fmt.Errorf("not a netmask prefix: %s", s)
	}
	m := mask.As4()
	word := uint32(m[0])<<24 | uint32(m[1])<<16 | uint32(m[2])<<8 | uint32(m[3])
	ones := bits.LeadingZeros32(^word)
	if word != ^uint32(0)<<(32-ones) && word != 0 {
		return netip.Prefix{}, fmt.Errorf("netmask is not contiguous: %s", maskStr)
	}
	return netip.PrefixFrom(addr, ones), nil
}

func (v *Ip) Fail(value any) string {
	return fmt.Sprintf("'%v' is not an ip (strict=%t)", value, v.strict)
}

// FileLine fails when any of its file paths does not exist at
// validation time. This is the one validator whose verdict depends on
// filesystem state rather than the checked value; existence is
// re-checked on every call, never cached.
type FileLine struct {
	base
	paths []string
}

func NewFileLine(args []any, kwargs map[string]any) (Validator, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("file_line argument is not a file path: %v", arg)
		}
		paths = append(paths, s)
	}
	cons, err := buildConstraints(kwargs, func(kw map[string]any) (Constraint, error) {
		return newFileLine(paths, kw)
	})
	if err != nil {
		return nil, err
	}
	b, err := newBase("file_line", kwargs, cons)
	if err != nil {
		return nil, err
	}
	return &FileLine{base: b, paths: paths}, nil
}

// missing returns the first listed path that is not a regular file.
func (v *FileLine) missing() string {
	for _, path := range v.paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func (v *FileLine) IsValid(value any) bool { return v.missing() == "" }

func (v *FileLine) Fail(value any) string {
	return fmt.Sprintf("file '%s' does not exist", v.missing())
}
