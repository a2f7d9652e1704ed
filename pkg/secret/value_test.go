package secret

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormattingNeverLeaksValue(t *testing.T) {
	s := New("hunter2")

	for _, f := range []string{"%s", "%v", "%+v", "%#v", "%q", "%x", "%d"} {
		out := fmt.Sprintf(f, s)
		require.NotContains(t, out, "hunter2", "format %s", f)
	}

	require.Equal(t, Redacted, s.String())
	require.Equal(t, "hunter2", s.Reveal())
}

func TestFormattingNestedInStructDoesNotLeak(t *testing.T) {
	c := struct {
		User     string
		Password Value
	}{"admin", New("hunter2")}

	require.NotContains(t, fmt.Sprintf("%+v", c), "hunter2")
	require.NotContains(t, fmt.Sprintf("%#v", c), "hunter2")
}

func TestJSONIsRedacted(t *testing.T) {
	d, err := json.Marshal(map[string]Value{"password": New("hunter2")})
	require.NoError(t, err)

	require.JSONEq(t, `{"password":"[redacted]"}`, string(d))
}

func TestZeroValueIsEmpty(t *testing.T) {
	var s Value

	require.True(t, s.IsEmpty())
	require.Equal(t, "", s.Reveal())
	require.Equal(t, "", s.String())
}

func TestCutKeepsBothHalvesSecret(t *testing.T) {
	b, a, ok := New("AWS:se:cret").Cut(":")

	require.True(t, ok)
	require.Equal(t, "AWS", b.Reveal())
	require.Equal(t, "se:cret", a.Reveal())
	require.Equal(t, Redacted, a.String())
}

func TestCutWithoutSeparator(t *testing.T) {
	b, a, ok := New("nocolon").Cut(":")

	require.False(t, ok)
	require.Equal(t, "nocolon", b.Reveal())
	require.True(t, a.IsEmpty())
}

func TestMapKeepsTaint(t *testing.T) {
	s := New("abc").Map(func(v string) string { return v + "def" })

	require.Equal(t, "abcdef", s.Reveal())
	require.Equal(t, Redacted, fmt.Sprint(s))
}

func TestRedactReplacesAllOccurrences(t *testing.T) {
	out := Redact("token hunter2 and hunter2 again", New("hunter2"), Value{})

	require.Equal(t, "token [redacted] and [redacted] again", out)
}

func TestRedactErrorHidesValueAndUnwraps(t *testing.T) {
	cause := errors.New("stderr: invalid key hc-supersecret-1234")

	err := fmt.Errorf("unable to update stack: %w", RedactError(cause, New("hc-supersecret-1234")))

	require.NotContains(t, err.Error(), "hc-supersecret-1234")
	require.Contains(t, err.Error(), "invalid key "+Redacted)
	require.ErrorIs(t, err, cause)
}

func TestRedactErrorNil(t *testing.T) {
	require.NoError(t, RedactError(nil, New("x")))
}
