package match

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// Doc is a sealed interface representing constrained payload value types.
// Only DocNull, DocString, DocInt, DocBool, DocArray, and DocObject
// implement it. NO DocFloat - floats are forbidden in payloads because
// they break byte-identical recomputation across platforms.
//
// Unlike hashable identity fields, payloads MAY contain null: redaction
// must pass null values through unchanged rather than erroring.
type Doc interface {
	doc() // Sealed - only these types implement it
}

// DocNull represents a JSON null inside a payload.
type DocNull struct{}

func (DocNull) doc() {}

// MarshalJSON implements json.Marshaler for DocNull.
func (DocNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// DocString represents a string payload value.
type DocString string

func (DocString) doc() {}

// DocInt represents an integer payload value. Always int64, never float64.
type DocInt int64

func (DocInt) doc() {}

// DocBool represents a boolean payload value.
type DocBool bool

func (DocBool) doc() {}

// DocArray represents an array of payload values.
type DocArray []Doc

func (DocArray) doc() {}

// DocObject represents a map of string keys to payload values.
// Use SortedKeys() for deterministic iteration.
type DocObject map[string]Doc

func (DocObject) doc() {}

// S creates a DocString value.
func S(s string) DocString { return DocString(s) }

// I creates a DocInt value.
func I(n int64) DocInt { return DocInt(n) }

// B creates a DocBool value.
func B(b bool) DocBool { return DocBool(b) }

// A creates a DocArray from values.
func A(vals ...Doc) DocArray { return DocArray(vals) }

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (obj DocObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering as
// required by RFC 8785 (Canonical JSON). Must use unicode/utf16.Encode for
// correct surrogate handling.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}

	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// Clone returns a structurally independent deep copy of the object.
// The redaction gate relies on this: a redacted view must never alias
// the input payload.
func (obj DocObject) Clone() DocObject {
	if obj == nil {
		return nil
	}
	out := make(DocObject, len(obj))
	for k, v := range obj {
		out[k] = CloneDoc(v)
	}
	return out
}

// CloneDoc deep-copies any Doc value. Scalars are value types and copy
// for free; arrays and objects are rebuilt node by node.
func CloneDoc(v Doc) Doc {
	switch val := v.(type) {
	case DocArray:
		out := make(DocArray, len(val))
		for i, elem := range val {
			out[i] = CloneDoc(elem)
		}
		return out
	case DocObject:
		return val.Clone()
	default:
		return val
	}
}

// UnmarshalJSON implements json.Unmarshaler for DocObject.
func (obj *DocObject) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*obj = make(DocObject, len(raw))
	for k, v := range raw {
		val, err := unmarshalDoc(v)
		if err != nil {
			return fmt.Errorf("DocObject key %q: %w", k, err)
		}
		(*obj)[k] = val
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for DocArray.
func (arr *DocArray) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*arr = make(DocArray, len(raw))
	for i, v := range raw {
		val, err := unmarshalDoc(v)
		if err != nil {
			return fmt.Errorf("DocArray index %d: %w", i, err)
		}
		(*arr)[i] = val
	}
	return nil
}

// unmarshalDoc decodes a JSON value into the appropriate Doc type.
// Floats in JSON are rejected; null becomes DocNull.
func unmarshalDoc(data []byte) (Doc, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return DocString(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return DocBool(b), nil

	case 'n':
		// null becomes DocNull (not nil) to satisfy the sealed interface
		return DocNull{}, nil

	case '[':
		var arr DocArray
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, err
		}
		return arr, nil

	case '{':
		var obj DocObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		return obj, nil

	default:
		// Must be a number - int64 only
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}

		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats not allowed in payloads: %s", string(data))
		}
		return DocInt(i), nil
	}
}

// UnmarshalDoc deserializes arbitrary JSON into a Doc with float rejection.
// This is the primary API for parsing externally supplied payload JSON.
func UnmarshalDoc(data []byte) (Doc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return ToDoc(raw)
}

// ToDoc recursively converts a decoded Go value to a Doc.
// Rejects floats; maps nil to DocNull.
func ToDoc(v any) (Doc, error) {
	switch val := v.(type) {
	case nil:
		return DocNull{}, nil
	case bool:
		return DocBool(val), nil
	case string:
		return DocString(val), nil
	case int:
		return DocInt(int64(val)), nil
	case int64:
		return DocInt(val), nil
	case Doc:
		return val, nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are forbidden in payloads: %s", val)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", val)
		}
		return DocInt(n), nil
	case []any:
		arr := make(DocArray, len(val))
		for i, elem := range val {
			docElem, err := ToDoc(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = docElem
		}
		return arr, nil
	case map[string]any:
		obj := make(DocObject, len(val))
		for k, elem := range val {
			docElem, err := ToDoc(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = docElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported payload type: %T", v)
	}
}

// MarshalJSON implements json.Marshaler for DocObject with sorted keys
// (RFC 8785 ordering). NOTE: This is NOT canonical marshaling - it may
// HTML-escape. Use MarshalCanonical for anything that feeds a hash.
func (obj DocObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	keys := obj.SortedKeys()
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalDoc(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalDoc marshals a Doc to JSON bytes.
// Uses type-switch dispatch to handle all Doc types correctly.
func MarshalDoc(v Doc) ([]byte, error) {
	switch val := v.(type) {
	case nil, DocNull:
		return []byte("null"), nil
	case DocString:
		return json.Marshal(string(val))
	case DocInt:
		return json.Marshal(int64(val))
	case DocBool:
		return json.Marshal(bool(val))
	case DocArray:
		return marshalDocArray(val)
	case DocObject:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Doc type: %T", v)
	}
}

func marshalDocArray(arr DocArray) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalDoc(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}
