package keyexpr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keysub/types"
)

func TestMatches(t *testing.T) {
	cases := []struct {
		pattern types.KeyExpr
		key     types.KeyExpr
		want    bool
	}{
		{"sensor/temp", "sensor/temp", true},
		{"sensor/temp", "sensor/hum", false},
		{"sensor/*", "sensor/temp", true},
		{"sensor/*", "sensor/temp/room1", false},
		{"sensor/*/room1", "sensor/temp/room1", true},
		{"sensor/**", "sensor", true},
		{"sensor/**", "sensor/temp/room1", true},
		{"**", "anything/at/all", true},
		{"a/**/z", "a/z", true},
		{"a/**/z", "a/b/c/z", true},
		{"a/**/z", "a/b/c/y", false},
		{"a/**/*/z", "a/b/z", true},
		{"a/**/*/z", "a/z", false},
		{"*", "a/b", false},
	}

	for _, c := range cases {
		t.Run(string(c.pattern)+"~"+string(c.key), func(t *testing.T) {
			require.Equal(t, c.want, Matches(c.pattern, c.key))
		})
	}
}

func TestFingerprint(t *testing.T) {
	require.Equal(t, Fingerprint("sensor/temp"), Fingerprint("sensor/temp"))
	require.NotEqual(t, Fingerprint("sensor/temp"), Fingerprint("sensor/hum"))
}

func TestToSubject(t *testing.T) {
	cases := []struct {
		prefix    string
		key       types.KeyExpr
		subject   string
		wantExact bool
	}{
		{"", "sensor/temp", "sensor.temp", true},
		{"ks", "sensor/temp", "ks.sensor.temp", true},
		{"", "sensor/*/room", "sensor.*.room", true},
		{"", "sensor/**", "sensor.>", true},
		{"", "a/**/z", "a.>", false},
		{"", "v1.2/x", "v1%2E2.x", true},
		{"", "100%/x", "100%25.x", true},
	}

	for _, c := range cases {
		t.Run(string(c.key), func(t *testing.T) {
			subject, exact := ToSubject(c.prefix, c.key)
			require.Equal(t, c.subject, subject)
			require.Equal(t, c.wantExact, exact)
		})
	}
}

func TestSubjects(t *testing.T) {
	t.Run("literal", func(t *testing.T) {
		subjects, exact := Subjects("ks", "sensor/temp")
		require.Equal(t, []string{"ks.sensor.temp"}, subjects)
		require.True(t, exact)
	})

	t.Run("trailing double wildcard adds the parent", func(t *testing.T) {
		subjects, exact := Subjects("ks", "sensor/**")
		require.Equal(t, []string{"ks.sensor", "ks.sensor.>"}, subjects)
		require.True(t, exact)
	})

	t.Run("bare double wildcard", func(t *testing.T) {
		subjects, exact := Subjects("ks", "**")
		require.Equal(t, []string{"ks.>"}, subjects)
		require.True(t, exact)
	})

	t.Run("inner double wildcard widens", func(t *testing.T) {
		subjects, exact := Subjects("", "a/**/z/**")
		require.Equal(t, []string{"a.>"}, subjects)
		require.False(t, exact)
	})
}
