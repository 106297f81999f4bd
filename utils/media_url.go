package utils

import (
	"encoding/json"
	"strings"
)

// ResolveMediaURL extracts the url of an upstream media descriptor and makes it absolute.
// Accepted shapes:
//   {"url": "/uploads/x.glb"}
//   {"data": {"attributes": {"url": "/uploads/x.glb"}}}
//   {"data": {"url": "/uploads/x.glb"}}
//   "/uploads/x.glb"
// Missing or malformed media is a normal state and returns ok=false.
func ResolveMediaURL(media json.RawMessage, origin string) (string, bool) {
	raw, ok := mediaPath(media)
	if !ok {
		return "", false
	}
	return AbsoluteURL(raw, origin), true
}

// AbsoluteURL joins path onto origin unless path already carries a URL scheme
func AbsoluteURL(path, origin string) string {
	if hasURLScheme(path) || origin == "" {
		return path
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(path, "/")
}

func mediaPath(media json.RawMessage) (string, bool) {
	// Some content types store the media path as a plain text field
	if path, ok := stringValue(media); ok {
		return path, path != ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(media, &obj); err != nil || obj == nil {
		return "", false
	}

	if url, ok := stringValue(obj["url"]); ok {
		return url, url != ""
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(obj["data"], &data); err != nil || data == nil {
		return "", false
	}

	// v4 nests the file under attributes, v5 with the v4 wrapper may not
	target := data
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(data["attributes"], &attrs); err == nil && attrs != nil {
		target = attrs
	}

	url, ok := stringValue(target["url"])
	return url, ok && url != ""
}

func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// hasURLScheme reports whether s starts with "scheme:" as defined by RFC 3986
func hasURLScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}
