package wire

import "unicode/utf8"

// HeaderField is a single ordered (name, value) pair. Name is expected to
// already be lowercase (HTTP/2 style); Value is opaque bytes on decode but
// must be valid UTF-8 text to survive encoding (see writeHeadersTokenized).
type HeaderField struct {
	Name  string
	Value []byte
}

func writeHeaderNameTokenized(w *Writer, name string) error {
	tok := headerToken(name)
	w.PutU16(tok)
	if tok == LiteralHeaderToken {
		return w.PutString(name)
	}
	return nil
}

func readHeaderNameTokenized(r *Reader) (string, error) {
	tok, err := r.GetU16()
	if err != nil {
		return "", err
	}
	if tok == LiteralHeaderToken {
		return r.GetString()
	}
	name, ok := headerNameFromToken(tok)
	if !ok {
		return "", errInvalidHeaderToken(tok)
	}
	return name, nil
}

// writeHeadersTokenized writes a back-patched header count followed by
// tokenized (name, value) pairs. A header whose value is not valid UTF-8
// text is silently skipped and does not count toward the header count;
// this asymmetry (request encode is text-only, response decode accepts
// arbitrary bytes) is intentional, not a bug.
func writeHeadersTokenized(w *Writer, headers []HeaderField) error {
	countPos := w.ReserveU32()
	var count uint32
	for _, h := range headers {
		if !utf8.Valid(h.Value) {
			continue
		}
		if err := writeHeaderNameTokenized(w, h.Name); err != nil {
			return err
		}
		if err := w.PutBytes(h.Value); err != nil {
			return err
		}
		count++
	}
	w.PatchU32(countPos, count)
	return nil
}

func readHeadersTokenized(r *Reader) ([]HeaderField, error) {
	count, err := r.GetU32()
	if err != nil {
		return nil, err
	}
	headers := make([]HeaderField, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := readHeaderNameTokenized(r)
		if err != nil {
			return nil, err
		}
		value, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		headers = append(headers, HeaderField{Name: name, Value: value})
	}
	return headers, nil
}

// writeHeadersLiteral writes the legacy (non-tokenized) header encoding:
// a back-patched count followed by length-prefixed name/value pairs.
func writeHeadersLiteral(w *Writer, headers []HeaderField) error {
	countPos := w.ReserveU32()
	var count uint32
	for _, h := range headers {
		if !utf8.Valid(h.Value) {
			continue
		}
		if err := w.PutString(h.Name); err != nil {
			return err
		}
		if err := w.PutBytes(h.Value); err != nil {
			return err
		}
		count++
	}
	w.PatchU32(countPos, count)
	return nil
}

func readHeadersLiteral(r *Reader) ([]HeaderField, error) {
	count, err := r.GetU32()
	if err != nil {
		return nil, err
	}
	headers := make([]HeaderField, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.GetString()
		if err != nil {
			return nil, err
		}
		value, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		headers = append(headers, HeaderField{Name: name, Value: value})
	}
	return headers, nil
}
