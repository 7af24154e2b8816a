// Package sanitize redacts secrets from outgoing payloads.
//
// This is defence in depth, not the primary control: handlers already build
// responses that exclude tokens, and the session record is never serialized
// to the client. The sanitizer is the last line — if a secret ever does end
// up in a payload (a refactor regression, an upstream body echoed by
// mistake), it leaves the process as a redaction marker instead.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Redacted is the literal marker substituted for secret values.
const Redacted = "[REDACTED]"

// tokenPrefixes are GitHub's documented token formats. A string value with
// one of these prefixes is a credential regardless of what key it sits under.
var tokenPrefixes = []string{
	"ghp_",        // personal access token (classic)
	"gho_",        // OAuth access token
	"ghu_",        // user-to-server token
	"ghs_",        // server-to-server token
	"ghr_",        // refresh token
	"github_pat_", // fine-grained personal access token
}

// secretKey reports whether a key names a secret. Pure function of the key.
func secretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "secret")
}

// secretValue reports whether a string value looks like a platform token.
// Pure function of the value.
func secretValue(v string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}

// Clean walks a decoded JSON value (the object/array/string/number/bool/null
// union produced by encoding/json into any) and returns a copy with secrets
// replaced by Redacted. The input is not mutated.
//
// Redaction triggers on either signal:
//   - the key under which a value sits contains "token" or "secret"
//     (case-insensitive), whatever the value's type
//   - a string value carries a known GitHub token prefix, whatever its key
func Clean(v any) any {
	return cleanValue("", v)
}

func cleanValue(key string, v any) any {
	if key != "" && secretKey(key) {
		return Redacted
	}

	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = cleanValue(k, child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			// Array elements have no key of their own; the enclosing key
			// already had its chance above.
			out[i] = cleanValue("", child)
		}
		return out
	case string:
		if secretValue(val) {
			return Redacted
		}
		return val
	default:
		// number, bool, null — nothing to redact by value
		return v
	}
}

// Payload round-trips an arbitrary response value through JSON and cleans
// the result. This is what the handlers feed every structured response
// through: the round trip normalizes structs into the tagged union Clean
// understands, using the same marshalling the response itself would get.
func Payload(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("sanitize: marshalling payload: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("sanitize: decoding payload: %w", err)
	}
	return Clean(tree), nil
}
