package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", -100, "-100"},
		{"zero", 0, "0"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"float keeps literal", 1.5, "1.5"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"null", nil, "null"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of ints", []int{1, 2, 3}, "[1,2,3]"},
		{"simple object", map[string]any{"a": 1}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  3,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalNestedSortedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{
			"b": 1,
			"a": 2,
		},
		"a": 3,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalStructFields(t *testing.T) {
	type payload struct {
		Name  string         `json:"name"`
		Count int            `json:"count"`
		Attrs map[string]any `json:"attrs,omitempty"`
	}

	result, err := Marshal(payload{Name: "cart", Count: 5})
	require.NoError(t, err)
	assert.Equal(t, `{"count":5,"name":"cart"}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000 - UTF-16 order differs from UTF-8.
	// UTF-16: 0xD800 0xDC00 (surrogate pair) sorts before 0xE000, so the
	// supplementary-plane key comes first.
	obj := map[string]any{
		"": 1,
		"𐀀":      2,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)

	expected := `{"𐀀":2,"` + "" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"less than", "<script>", `"<script>"`},
		{"greater than", "</script>", `"</script>"`},
		{"ampersand", "a & b", `"a & b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))

			assert.NotContains(t, string(result), `<`)
			assert.NotContains(t, string(result), `>`)
			assert.NotContains(t, string(result), `&`)
		})
	}
}

func TestMarshalLineSeparators(t *testing.T) {
	// U+2028 and U+2029 must appear literally, not as   escapes.
	result, err := Marshal("a b c")
	require.NoError(t, err)
	assert.Equal(t, "\"a b c\"", string(result))

	// A literal backslash followed by the text "u2028" must stay escaped.
	result, err = Marshal(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestMarshalNFCNormalization(t *testing.T) {
	// "e" + combining acute (NFD) must normalize to the precomposed form.
	decomposed := "é"
	composed := "é"

	r1, err := Marshal(decomposed)
	require.NoError(t, err)
	r2, err := Marshal(composed)
	require.NoError(t, err)
	assert.Equal(t, string(r2), string(r1))
}

func TestMarshalRejectsNonJSONValues(t *testing.T) {
	_, err := Marshal(func() {})
	assert.Error(t, err)

	_, err = Marshal(make(chan int))
	assert.Error(t, err)
}

func TestMarshalDeterministic(t *testing.T) {
	obj := map[string]any{
		"id":    "user-1",
		"email": "a@x.com",
		"tags":  []any{"a", "b"},
		"n":     7,
	}

	first, err := Marshal(obj)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Marshal(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
