package localstorage

import (
	"bytes"
	"net/url"
	"strings"

	"lsmview/bytesio"
)

const keyOriginPrefix = 0x5F

// splitKey recovers the origin bytes and key-payload bytes from a raw
// local-storage user key. It tries the prefixed form first, then falls
// back to the unprefixed form, which is only accepted when the
// candidate origin decodes to something that looks like one.
func splitKey(raw []byte) (originBytes, keyBytes []byte, ok bool) {
	if len(raw) >= 1 && raw[0] == keyOriginPrefix {
		if idx := bytes.IndexByte(raw[1:], 0x00); idx >= 0 {
			return raw[1 : 1+idx], raw[2+idx:], true
		}
	}

	if idx := bytes.IndexByte(raw, 0x00); idx >= 0 {
		candidate := raw[:idx]
		if text, ok := DecodeText(candidate); ok && looksLikeOrigin(text) {
			return candidate, raw[idx+1:], true
		}
	}
	return nil, nil, false
}

// decodeKeyPayload decodes the key half of a split local-storage key,
// preferring the length-prefixed string form Chromium uses for
// serialized std::string values and falling back to plain text decoding
// when the length prefix doesn't account for every remaining byte.
func decodeKeyPayload(b []byte) string {
	c := bytesio.NewCursor(b)
	if s, ok := c.ReadLengthPrefixed(); ok && c.Len() == 0 {
		if text, ok := DecodeText(s); ok {
			return text
		}
	}
	text, _ := DecodeText(b)
	return text
}

// looksLikeOrigin is the heuristic gate for accepting an unprefixed key's
// leading segment as an origin rather than arbitrary binary data.
func looksLikeOrigin(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "localhost") || strings.Contains(s, ".")
}

// normalizeEntryOrigin strips a trailing nonce suffix and any path
// component beyond the authority, leaving just scheme://host[:port] (or
// host[:port] for the schemeless fallback form).
func normalizeEntryOrigin(s string) string {
	if idx := strings.IndexByte(s, '^'); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, "://"); idx >= 0 {
		rest := s[idx+3:]
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			s = s[:idx+3+slash]
		}
	} else if slash := strings.IndexByte(s, '/'); slash >= 0 {
		s = s[:slash]
	}
	return strings.TrimSuffix(s, "/")
}

// NormalizeRequestedOrigin applies the same light normalization to the
// caller-supplied origin before matching begins.
func NormalizeRequestedOrigin(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), "/")
}

// originsMatch compares an already-normalized entry origin against an
// already-normalized requested origin: exact bytes, equal host:port, or
// equal after stripping the entry origin's scheme.
func originsMatch(entryOrigin, requested string) bool {
	if entryOrigin == requested {
		return true
	}
	if h1, ok := parseHostPort(entryOrigin); ok {
		if h2, ok := parseHostPort(requested); ok && h1 == h2 {
			return true
		}
	}
	return stripScheme(entryOrigin) == requested
}

func parseHostPort(origin string) (string, bool) {
	s := origin
	if !strings.Contains(s, "://") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Host, true
}

func stripScheme(s string) string {
	if idx := strings.Index(s, "://"); idx >= 0 {
		return s[idx+3:]
	}
	return s
}
