package client

import (
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"
)

// decodedPayload returns a map with one of payload_json, payload_text,
// or payload_b64, picking the richest representation that fits.
func decodedPayload(payload []byte) map[string]any {
	out := map[string]any{}
	// Try JSON first if it looks like JSON
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		var v any
		if json.Unmarshal(payload, &v) == nil {
			out["payload_json"] = v
			return out
		}
	}
	// Then UTF-8 text if valid
	if utf8.Valid(payload) {
		out["payload_text"] = string(payload)
		return out
	}
	// Fallback to base64
	out["payload_b64"] = base64.StdEncoding.EncodeToString(payload)
	return out
}
