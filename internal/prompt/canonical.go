package prompt

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// CanonicalJSON serializes v the way spec.md §4.2 requires for both
// the wire call and the persisted prompt_payload_raw field: stable
// key order, ASCII escaping, and no incidental whitespace.
//
// encoding/json already sorts map[string]T keys and emits struct
// fields in declaration order with no indentation by default, so the
// only gap to close is ASCII-only output: Marshal leaves multi-byte
// UTF-8 runes as literal bytes, and this re-escapes anything outside
// the printable ASCII range as \uXXXX (with surrogate pairs above the
// basic multilingual plane).
func CanonicalJSON(v any) ([]byte, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return escapeNonASCII(buf), nil
}

func escapeNonASCII(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		if c < utf8.RuneSelf {
			out = append(out, c)
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			out = append(out, c)
			i++
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			out = appendUnicodeEscape(out, r1)
			out = appendUnicodeEscape(out, r2)
		} else {
			out = appendUnicodeEscape(out, r)
		}
		i += size
	}
	return out
}

func utf16Surrogates(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r >> 10), 0xDC00 + (r & 0x3FF)
}

const hexDigits = "0123456789abcdef"

func appendUnicodeEscape(out []byte, r rune) []byte {
	out = append(out, '\\', 'u')
	out = append(out, hexDigits[(r>>12)&0xF], hexDigits[(r>>8)&0xF], hexDigits[(r>>4)&0xF], hexDigits[r&0xF])
	return out
}

// Equal reports whether two values serialize to byte-identical
// canonical JSON, useful for prompt-determinism assertions.
func Equal(a, b any) (bool, error) {
	ja, err := CanonicalJSON(a)
	if err != nil {
		return false, err
	}
	jb, err := CanonicalJSON(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ja, jb), nil
}
