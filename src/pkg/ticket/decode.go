package ticket

import "encoding/base64"

// decodePayload decodes the base64 content of a RawPayload into raw bytes.
// It accepts both standard and URL-safe alphabets, and tolerates a missing
// padding, matching the leniency real clients exhibit when they forget to
// strip a data: URL prefix.
func decodePayload(payload RawPayload) ([]byte, *Error) {
	content := payload.ContentB64
	if idx := indexDataURLComma(content); idx >= 0 {
		content = content[idx+1:]
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(content); err == nil {
			return data, nil
		}
	}

	return nil, errInvalidEncoding(base64.CorruptInputError(0))
}

// indexDataURLComma returns the index of the comma that ends a "data:...;base64,"
// prefix, or -1 if s does not look like a data URL.
func indexDataURLComma(s string) int {
	if len(s) < 5 || s[:5] != "data:" {
		return -1
	}
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			return i
		}
	}
	return -1
}
