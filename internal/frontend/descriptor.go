// Package frontend translates between net/http and the bridge protocol:
// building a RequestDescriptor from an inbound *http.Request, dispatching
// it over whichever transport is configured, and writing the bridge's
// response back onto the ResponseWriter (or, for an upgraded connection,
// splicing raw bytes through a tunnel).
package frontend

import (
	"net/http"
	"strings"

	"github.com/sadewadee/bridged/internal/wire"
)

// BuildRequestDescriptor translates an inbound HTTP request into the
// bridge's wire representation. Header names are lowercased. Distinct
// names are emitted in http.Header map iteration order, so the order they
// arrived in is not kept; the values of a repeated name keep their relative
// order and are kept as separate fields rather than joined, since a joined
// Cookie or Set-Cookie-shaped header is not generally reversible on the
// far side.
func BuildRequestDescriptor(req *http.Request) *wire.RequestDescriptor {
	path, query := wire.SplitPathAndQuery(req.URL.RequestURI())

	var headers []wire.HeaderField
	for name, values := range req.Header {
		for _, v := range values {
			headers = append(headers, wire.HeaderField{Name: strings.ToLower(name), Value: []byte(v)})
		}
	}

	return &wire.RequestDescriptor{
		Method:    req.Method,
		Scheme:    requestScheme(req),
		Authority: req.Host,
		Path:      path,
		Query:     query,
		Protocol:  wire.ProtocolString(req.ProtoMajor, req.ProtoMinor),
		Headers:   headers,
	}
}

func requestScheme(req *http.Request) string {
	if req.TLS != nil {
		return "https"
	}
	if scheme := req.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
