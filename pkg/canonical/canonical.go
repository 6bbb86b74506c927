// Package canonical implements the platform's deterministic JSON
// serialization: object keys sorted lexicographically by code point, array
// order preserved, no insignificant whitespace, minimal string escaping, and
// shortest round-trip number form. Equal logical values always encode to the
// same bytes, which makes the output safe to hash and diff. The same rules
// are used by the kernel wire format and the offline tooling.
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType is returned when a value outside the JSON data model is
// encoded.
var ErrUnsupportedType = errors.New("canonical: unsupported type")

// Decode parses data into the generic JSON value tree used by the encoder.
// Numbers are kept as json.Number so integer literals keep their exact
// digits; Encode rewrites fractions and exponents in shortest round-trip form.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("canonical: decode: %w", err)
	}
	// Reject trailing content after the first value.
	if dec.More() {
		return nil, errors.New("canonical: decode: trailing data after JSON value")
	}
	return v, nil
}

// Encode serializes v to its canonical form.
func Encode(v any) (string, error) {
	buf, err := appendValue(nil, v)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// EncodeBytes parses raw JSON and re-serializes it canonically.
func EncodeBytes(data []byte) (string, error) {
	v, err := Decode(data)
	if err != nil {
		return "", err
	}
	return Encode(v)
}

func appendValue(buf []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		if val {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case string:
		return appendString(buf, val), nil
	case json.Number:
		s := val.String()
		if !strings.ContainsAny(s, ".eE") {
			return append(buf, s...), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrUnsupportedType, s)
		}
		return appendFloat(buf, f)
	case float64:
		return appendFloat(buf, val)
	case int:
		return strconv.AppendInt(buf, int64(val), 10), nil
	case int64:
		return strconv.AppendInt(buf, val, 10), nil
	case uint64:
		return strconv.AppendUint(buf, val, 10), nil
	case []any:
		return appendArray(buf, val)
	case map[string]any:
		return appendObject(buf, val)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

func appendArray(buf []byte, arr []any) ([]byte, error) {
	var err error
	buf = append(buf, '[')
	for i, item := range arr {
		if i > 0 {
			buf = append(buf, ',')
		}
		if buf, err = appendValue(buf, item); err != nil {
			return nil, err
		}
	}
	return append(buf, ']'), nil
}

func appendObject(buf []byte, obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var err error
	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendString(buf, k)
		buf = append(buf, ':')
		if buf, err = appendValue(buf, obj[k]); err != nil {
			return nil, err
		}
	}
	return append(buf, '}'), nil
}

// appendString writes s with minimal JSON escaping: quote, backslash, and
// control characters only. No HTML escaping; non-ASCII passes through as
// UTF-8.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, fmt.Sprintf(`\u%04x`, r)...)
			} else {
				buf = utf8.AppendRune(buf, r)
			}
		}
	}
	return append(buf, '"')
}

// appendFloat writes f in the shortest form that round-trips, using the same
// fixed/exponent split as encoding/json.
func appendFloat(buf []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite float", ErrUnsupportedType)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	buf = strconv.AppendFloat(buf, f, format, -1, 64)
	if format == 'e' {
		// Normalize exponent: e-09 -> e-9, matching encoding/json.
		if n := len(buf); n >= 4 && buf[n-4] == 'e' && buf[n-3] == '-' && buf[n-2] == '0' {
			buf[n-2] = buf[n-1]
			buf = buf[:n-1]
		}
	}
	return buf, nil
}
