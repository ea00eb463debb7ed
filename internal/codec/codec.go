// Package codec converts arbitrary byte payloads to and from the text-safe
// form used inside protocol lines.
//
// Protocol lines are space-separated and newline-terminated, so any payload
// that may contain spaces, newlines or non-text bytes (log messages, file
// contents, socket payloads) crosses the boundary as standard base64. Plain
// tokens (verbs, correlation ids, resource ids, ports) are never encoded.
package codec

import "encoding/base64"

// Encode converts raw bytes into a single protocol-safe token.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode converts a protocol token back into raw bytes. The error is
// non-nil when the token is not valid base64; callers map it to the verb's
// failure payload.
func Decode(token string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(token)
}
