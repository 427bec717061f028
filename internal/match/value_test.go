package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalDoc_Scalars(t *testing.T) {
	testCases := []struct {
		name string
		json string
		want Doc
	}{
		{"string", `"guard"`, DocString("guard")},
		{"int", `42`, DocInt(42)},
		{"negative int", `-7`, DocInt(-7)},
		{"bool true", `true`, DocBool(true)},
		{"bool false", `false`, DocBool(false)},
		{"null", `null`, DocNull{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := UnmarshalDoc([]byte(tc.json))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnmarshalDoc_RejectsFloats(t *testing.T) {
	testCases := []string{`1.5`, `1e3`, `{"noise": 0.5}`, `[1, 2.0]`}

	for _, js := range testCases {
		t.Run(js, func(t *testing.T) {
			_, err := UnmarshalDoc([]byte(js))
			assert.Error(t, err, "floats must be rejected")
		})
	}
}

func TestUnmarshalDoc_Nested(t *testing.T) {
	got, err := UnmarshalDoc([]byte(`{"rooms": [{"id": "r1", "locked": true}], "count": 2}`))
	require.NoError(t, err)

	want := DocObject{
		"rooms": DocArray{
			DocObject{"id": DocString("r1"), "locked": DocBool(true)},
		},
		"count": DocInt(2),
	}
	assert.Equal(t, want, got)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+FF01 (FULLWIDTH EXCLAMATION) sorts after "z" in UTF-16 code
	// units; a naive byte sort over UTF-8 would agree here, but the
	// emoji case differs: U+1F600 is a surrogate pair starting 0xD83D,
	// which sorts BEFORE U+FF01 in UTF-16 but after it in UTF-8.
	obj := DocObject{
		"！":     DocInt(1),
		"\U0001F600": DocInt(2),
		"a":          DocInt(3),
	}

	keys := obj.SortedKeys()
	assert.Equal(t, []string{"a", "\U0001F600", "！"}, keys)
}

func TestClone_NoAliasing(t *testing.T) {
	orig := DocObject{
		"outer": DocObject{"inner": DocArray{DocInt(1)}},
	}

	cp := orig.Clone()
	cp["outer"].(DocObject)["inner"] = DocString("mutated")

	inner, ok := orig["outer"].(DocObject)["inner"].(DocArray)
	require.True(t, ok, "original must be untouched")
	assert.Equal(t, DocArray{DocInt(1)}, inner)
}

func TestMarshalDoc_SortedKeys(t *testing.T) {
	obj := DocObject{"b": DocInt(2), "a": DocInt(1)}

	data, err := MarshalDoc(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, string(data))
}
