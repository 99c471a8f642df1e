package wire

import "strings"

// ProtocolString maps an HTTP version pair (as reported by Go's
// net/http, ProtoMajor/ProtoMinor) to the bridge protocol field value.
func ProtocolString(major, minor int) string {
	switch {
	case major == 0 && minor == 9:
		return "0.9"
	case major == 1 && minor == 0:
		return "1.0"
	case major == 1 && minor == 1:
		return "1.1"
	case major == 2:
		return "2"
	case major == 3:
		return "3"
	default:
		return "1.1"
	}
}

// SplitPathAndQuery splits a request target at its first '?'.
func SplitPathAndQuery(target string) (path, query string) {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}

// IsWebSocketUpgrade reports whether the Connection and Upgrade header
// values together request a WebSocket upgrade: Connection must contain
// "upgrade" case-insensitively, and Upgrade must equal "websocket"
// case-insensitively. Both must hold.
func IsWebSocketUpgrade(connection, upgrade string) bool {
	return containsTokenFold(connection, "upgrade") && strings.EqualFold(strings.TrimSpace(upgrade), "websocket")
}

func containsTokenFold(headerValue, token string) bool {
	for _, part := range strings.Split(headerValue, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
