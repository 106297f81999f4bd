package utils

import (
	"encoding/json"
	"math"
	"strings"
)

// maxStableID is the modulus of the reduced hash (2^31 - 1)
const maxStableID = 2147483647

// DeriveStableID turns an opaque upstream document token into a positive integer.
// The same token always yields the same id. An empty token yields 0, which callers
// must treat as "no id"; every non-empty token maps into [1, 2147483646].
// Collisions between different tokens are possible and are not detected.
func DeriveStableID(token string) int64 {
	if token == "" {
		return 0
	}

	var acc uint32
	for _, r := range token {
		// uint32 arithmetic wraps, which is exactly mod 2^32
		acc = acc*31 + uint32(r)
	}

	id := int64(acc % maxStableID)
	if id == 0 {
		return 1
	}
	return id
}

// StableID returns the upstream numeric id when one is present and finite,
// otherwise the id derived from token.
func StableID(rawID json.RawMessage, token string) int64 {
	if id, ok := NumericID(rawID); ok {
		return id
	}
	return DeriveStableID(token)
}

// NumericID parses a JSON number id. Strings, null and absent values are not numeric ids.
func NumericID(rawID json.RawMessage) (int64, bool) {
	raw := strings.TrimSpace(string(rawID))
	if raw == "" || raw == "null" || raw[0] == '"' {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
