package validators

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, b Builder, args []any, kwargs map[string]any) Validator {
	t.Helper()
	v, err := b(args, kwargs)
	require.NoError(t, err)
	return v
}

func TestString(t *testing.T) {
	v := mustBuild(t, NewString, nil, nil)

	assert.True(t, v.IsValid("hello"))
	assert.True(t, v.IsValid(""))
	assert.False(t, v.IsValid(1))
	assert.False(t, v.IsValid(nil))
	assert.Equal(t, "'1' is not a str.", v.Fail(1))
}

func TestNumber(t *testing.T) {
	v := mustBuild(t, NewNumber, nil, nil)

	assert.True(t, v.IsValid(1))
	assert.True(t, v.IsValid(1.5))
	assert.False(t, v.IsValid("1"))
	// Booleans are not numbers even though some front ends model them
	// as a numeric subtype.
	assert.False(t, v.IsValid(true))
}

func TestInteger(t *testing.T) {
	v := mustBuild(t, NewInteger, nil, nil)

	assert.True(t, v.IsValid(42))
	assert.False(t, v.IsValid(1.5))
	assert.False(t, v.IsValid("1"))
	assert.False(t, v.IsValid(false))
}

func TestBoolean(t *testing.T) {
	v := mustBuild(t, NewBoolean, nil, nil)

	assert.True(t, v.IsValid(true))
	assert.True(t, v.IsValid(false))
	assert.False(t, v.IsValid(0))
	assert.False(t, v.IsValid("true"))
}

func TestEnum(t *testing.T) {
	v := mustBuild(t, NewEnum, []any{"a", 1, 2.5}, nil)

	assert.True(t, v.IsValid("a"))
	assert.True(t, v.IsValid(1))
	assert.True(t, v.IsValid(2.5))
	assert.False(t, v.IsValid("b"))
	assert.Equal(t, "'b' not in (a, 1, 2.5)", v.Fail("b"))
}

func TestEnumNumericCrossType(t *testing.T) {
	v := mustBuild(t, NewEnum, []any{1}, nil)

	// An int literal matches the same value parsed as a float.
	assert.True(t, v.IsValid(1.0))
	assert.False(t, v.IsValid(true))
}

func TestDayAndTimestamp(t *testing.T) {
	day := mustBuild(t, NewDay, nil, nil)
	ts := mustBuild(t, NewTimestamp, nil, nil)
	when := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, day.IsValid(when))
	assert.True(t, ts.IsValid(when))
	assert.False(t, day.IsValid("2015-01-01"))
	assert.False(t, ts.IsValid("2015-01-01 00:00:00"))
}

func TestNull(t *testing.T) {
	v := mustBuild(t, NewNull, nil, nil)

	assert.True(t, v.IsValid(nil))
	assert.False(t, v.IsValid(""))
	assert.False(t, v.IsValid(0))
}

func TestRegexMatchesFromStart(t *testing.T) {
	v := mustBuild(t, NewRegex, []any{`ab`}, nil)

	assert.True(t, v.IsValid("ab"))
	assert.True(t, v.IsValid("abc"))
	assert.False(t, v.IsValid("cab"))
	assert.False(t, v.IsValid(1))
}

func TestRegexOptions(t *testing.T) {
	v := mustBuild(t, NewRegex, []any{`abc`}, map[string]any{
		"ignore_case": true,
		"name":        "abc prefix",
	})

	assert.True(t, v.IsValid("ABC"))
	assert.Equal(t, "abc prefix", v.Name())
	assert.Equal(t, "'xyz' is not a abc prefix.", v.Fail("xyz"))
}

func TestRegexMultiplePatterns(t *testing.T) {
	v := mustBuild(t, NewRegex, []any{`cat`, `dog`}, nil)

	assert.True(t, v.IsValid("cat"))
	assert.True(t, v.IsValid("dog"))
	assert.False(t, v.IsValid("bird"))
}

func TestRegexBadPattern(t *testing.T) {
	_, err := NewRegex([]any{`(`}, nil)
	assert.Error(t, err)
}

func TestMac(t *testing.T) {
	v := mustBuild(t, NewMac, nil, nil)

	for _, ok := range []string{
		"12:34:56:78:90:ab",
		"12-34-56-78-90-ab",
		"1234567890ab",
		"1234.5678.90ab",
		"1234:5678:90ab",
		"12:34:56:78:90:ab:cd:ef",
		"1234.5678.90ab.cdef",
	} {
		assert.True(t, v.IsValid(ok), ok)
	}
	for _, bad := range []string{
		"12:34:56:78:90",
		"12:34:56:78:90:zz",
		"12:34-56:78:90:ab",
		"12345",
		"",
	} {
		assert.False(t, v.IsValid(bad), bad)
	}

	assert.Equal(t, "mac match", v.Name())
	assert.Equal(t, "'12345' is not a mac match.", v.Fail("12345"))
}

func TestSemVer(t *testing.T) {
	v := mustBuild(t, NewSemVer, nil, nil)

	for _, ok := range []string{
		"0.0.0",
		"1.2.3",
		"1.0.0-alpha.1",
		"1.0.0+build.5",
		"1.0.0-rc.1+meta",
	} {
		assert.True(t, v.IsValid(ok), ok)
	}
	for _, bad := range []string{
		"1",
		"1.2",
		"01.2.3",
		"1.2.3-",
		"v1.2.3",
	} {
		assert.False(t, v.IsValid(bad), bad)
	}

	assert.Equal(t, "semver match", v.Name())
	assert.Equal(t, "'v1.2.3' is not a semver match.", v.Fail("v1.2.3"))
}

func TestIp(t *testing.T) {
	v := mustBuild(t, NewIp, nil, nil)

	assert.True(t, v.IsValid("192.168.1.1"))
	assert.True(t, v.IsValid("192.168.1.0/24"))
	assert.True(t, v.IsValid("2001:db8::1"))
	assert.True(t, v.IsValid("2001:db8::/64"))
	// Host bits set in the prefix are tolerated by default.
	assert.True(t, v.IsValid("192.168.1.1/24"))
	assert.False(t, v.IsValid("not an ip"))
	assert.False(t, v.IsValid(42))
}

func TestIpStrict(t *testing.T) {
	v := mustBuild(t, NewIp, nil, map[string]any{"strict": true})

	assert.True(t, v.IsValid("192.168.1.1"))
	assert.True(t, v.IsValid("192.168.1.0/24"))
	assert.False(t, v.IsValid("192.168.1.1/24"))
	assert.Equal(t, "'192.168.1.1/24' is not an ip (strict=true)", v.Fail("192.168.1.1/24"))
}

func TestFileLineExistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644))

	v := mustBuild(t, NewFileLine, []any{path}, nil)
	assert.True(t, v.IsValid("anything"))

	missing := mustBuild(t, NewFileLine, []any{filepath.Join(dir, "absent.txt")}, nil)
	assert.False(t, missing.IsValid("anything"))
	assert.Contains(t, missing.Fail("anything"), "absent.txt")
}

func TestFileLineLookup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644))

	v := mustBuild(t, NewFileLine, []any{path}, map[string]any{"method": "equals"})

	assert.Empty(t, Check(v, "alpha"))
	errs := Check(v, "gamma")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "gamma not found in")
}

func TestRequiredAndNoneDefaults(t *testing.T) {
	v := mustBuild(t, NewString, nil, nil)
	assert.False(t, v.IsOptional())
	assert.True(t, v.CanBeNone())

	opt := mustBuild(t, NewString, nil, map[string]any{"required": false, "none": false})
	assert.True(t, opt.IsOptional())
	assert.False(t, opt.CanBeNone())
}

func TestCheckShortCircuitsConstraints(t *testing.T) {
	v := mustBuild(t, NewInteger, nil, map[string]any{"min": 3})

	// A type failure reports only the type error, never the bound.
	errs := Check(v, "nope")
	require.Len(t, errs, 1)
	assert.Equal(t, "'nope' is not a int.", errs[0])

	errs = Check(v, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, "1 is less than 3", errs[0])

	assert.Empty(t, Check(v, 5))
}

func TestPartition(t *testing.T) {
	str := mustBuild(t, NewString, nil, nil)
	children, literals := Partition([]any{str, "lit", 4})

	require.Len(t, children, 1)
	assert.Equal(t, str, children[0])
	assert.Equal(t, []any{"lit", 4}, literals)
}

func TestRegistryBuild(t *testing.T) {
	r := Default()

	v, err := r.Build("str", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "str", v.Tag())

	// The display name resolves to the same builder as the tag.
	v2, err := r.Build("String", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, v.Tag(), v2.Tag())

	_, err = r.Build("nope", nil, nil)
	assert.EqualError(t, err, "not a registered validator: 'nope'")
}
