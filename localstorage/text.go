package localstorage

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// DecodeText runs the full autodetect chain against b and returns the
// first encoding that produces a plausible string, with control
// characters trimmed from the result. It is used for both local-storage
// keys/origins and, as the fallback half of value decoding, values.
func DecodeText(b []byte) (string, bool) {
	if s, ok := decodePrefixed(b); ok {
		return trimControl(s), true
	}
	if looksLikeUTF16LE(b) {
		if s, ok := decodeUTF16LE(b); ok {
			return trimControl(s), true
		}
	}
	if utf8.Valid(b) {
		return trimControl(string(b)), true
	}
	if len(b)%2 == 0 {
		if s, ok := decodeUTF16LE(b); ok {
			return trimControl(s), true
		}
	}
	if s, ok := decodeISO88591(b); ok {
		return trimControl(s), true
	}
	return "", false
}

// decodeValueLonger decodes b two ways, the encoding-prefixed form and
// the full autodetect chain, and keeps whichever produced the longer
// string. Used by the text-entries query, which has no reason to prefer
// one encoding over the other beyond which one recovered more text.
func decodeValueLonger(b []byte) (string, bool) {
	prefixText, prefixOK := decodePrefixed(b)
	if prefixOK {
		prefixText = trimControl(prefixText)
	}
	autoText, autoOK := DecodeText(b)

	switch {
	case prefixOK && autoOK:
		if utf8.RuneCountInString(prefixText) >= utf8.RuneCountInString(autoText) {
			return prefixText, true
		}
		return autoText, true
	case prefixOK:
		return prefixText, true
	case autoOK:
		return autoText, true
	default:
		return "", false
	}
}

// decodePrefixed decodes b as an encoding-prefixed payload: a leading
// 0x00 selects a UTF-16LE body, 0x01 selects ISO-8859-1.
func decodePrefixed(b []byte) (string, bool) {
	if len(b) < 2 {
		return "", false
	}
	switch b[0] {
	case 0x00:
		return decodeUTF16LE(b[1:])
	case 0x01:
		return decodeISO88591(b[1:])
	default:
		return "", false
	}
}

func decodeUTF16LE(b []byte) (string, bool) {
	if len(b)%2 != 0 {
		return "", false
	}
	out, err := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func decodeISO88591(b []byte) (string, bool) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// looksLikeUTF16LE flags byte strings whose odd-indexed bytes are
// overwhelmingly zero within the first 64 bytes, the signature of
// ASCII text stored as UTF-16LE code units.
func looksLikeUTF16LE(b []byte) bool {
	if len(b) < 6 || len(b)%2 != 0 {
		return false
	}
	window := b
	if len(window) > 64 {
		window = window[:64]
	}
	oddCount, zeroOdd := 0, 0
	for i := 1; i < len(window); i += 2 {
		oddCount++
		if window[i] == 0 {
			zeroOdd++
		}
	}
	return oddCount > 0 && float64(zeroOdd)/float64(oddCount) > 0.6
}

func trimControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
