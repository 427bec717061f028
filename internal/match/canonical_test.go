package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedNoEscape(t *testing.T) {
	obj := DocObject{
		"b":    DocString("<tag> & more"),
		"a":    DocInt(1),
		"list": DocArray{DocBool(true), DocNull{}},
	}

	data, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"<tag> & more","list":[true,null]}`, string(data))
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_NullAllowed(t *testing.T) {
	data, err := MarshalCanonical(DocObject{"redacted": DocNull{}})
	require.NoError(t, err)
	assert.Equal(t, `{"redacted":null}`, string(data))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := DocObject{
		"guard": DocString("g1"),
		"rooms": DocArray{DocString("vault"), DocString("hall")},
		"turn":  DocInt(5),
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, first, again, "canonical bytes must be stable across calls")
	}
}

func TestMarshalCanonical_U2028NotEscaped(t *testing.T) {
	data, err := MarshalCanonical(DocString("line\u2028sep"))
	require.NoError(t, err)
	assert.Equal(t, "\"line\u2028sep\"", string(data))
}

func TestHashDomain_Separation(t *testing.T) {
	payload := []byte("locked_door:ghost:5:12")

	a := HashDomain(DomainTemplate, payload)
	b := HashDomain(DomainTrace, payload)
	assert.NotEqual(t, a, b, "different domains must produce different hashes")

	again := HashDomain(DomainTemplate, payload)
	assert.Equal(t, a, again)
}

func TestHashDomainUint64_Stable(t *testing.T) {
	a := HashDomainUint64(DomainTemplate, []byte("x"))
	b := HashDomainUint64(DomainTemplate, []byte("x"))
	assert.Equal(t, a, b)
}
