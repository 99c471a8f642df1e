package wire

// LiteralHeaderToken marks a header name as length-prefixed literal text
// rather than a table lookup.
const LiteralHeaderToken uint16 = 0xFFFF

// headerTokenTable is the normative 29-entry header-name token table. Order
// is part of the wire contract: do not reorder or insert without bumping
// ProtocolVersion.
var headerTokenTable = [...]string{
	"host",                      // 0
	"connection",                // 1
	"user-agent",                // 2
	"accept",                    // 3
	"accept-encoding",           // 4
	"accept-language",           // 5
	"content-type",              // 6
	"content-length",            // 7
	"transfer-encoding",         // 8
	"cookie",                    // 9
	"set-cookie",                // 10
	"cache-control",             // 11
	"pragma",                    // 12
	"upgrade",                   // 13
	"authorization",             // 14
	"origin",                    // 15
	"referer",                   // 16
	"location",                  // 17
	"server",                    // 18
	"date",                      // 19
	"x-forwarded-for",           // 20
	"x-forwarded-proto",         // 21
	"x-forwarded-host",          // 22
	"x-forwarded-port",          // 23
	"x-request-id",              // 24
	"sec-websocket-key",         // 25
	"sec-websocket-version",     // 26
	"sec-websocket-protocol",    // 27
	"sec-websocket-extensions",  // 28
}

var headerNameToToken = func() map[string]uint16 {
	m := make(map[string]uint16, len(headerTokenTable))
	for i, name := range headerTokenTable {
		m[name] = uint16(i)
	}
	return m
}()

func headerToken(name string) uint16 {
	if tok, ok := headerNameToToken[name]; ok {
		return tok
	}
	return LiteralHeaderToken
}

func headerNameFromToken(tok uint16) (string, bool) {
	if int(tok) < len(headerTokenTable) {
		return headerTokenTable[tok], true
	}
	return "", false
}
