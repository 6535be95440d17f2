// Package signature authenticates provider webhooks with an HMAC-SHA256 over
// the compacted JSON body followed by the request path and raw query.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Header carries the hex signature on inbound webhooks.
const Header = "X-Signature"

// Canonicalize builds the signing string. Key order is kept as received.
func Canonicalize(path, query string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, err
	}
	buf.WriteString(path)
	buf.WriteString(query)
	return buf.Bytes(), nil
}

// Sign returns the lowercase hex HMAC-SHA256 of the signing string.
func Sign(secret, path, query string, body []byte) (string, error) {
	canonical, err := Canonicalize(path, query, body)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether header is the signature of the request. It never
// panics; any malformed input yields false.
func Verify(path, query string, body []byte, header, secret string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	given := strings.ToLower(strings.TrimSpace(header))
	if given == "" || secret == "" {
		return false
	}
	expected, err := Sign(secret, path, query, body)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(given))
}
