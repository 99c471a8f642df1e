package wire

import "io"

// RequestDescriptor carries everything the bridge protocol needs to
// reconstruct an HTTP request on the far side: the request line fields,
// an ordered header list, and (for single-frame requests) the body.
type RequestDescriptor struct {
	Method    string
	Scheme    string
	Authority string
	Path      string
	Query     string
	Protocol  string
	Headers   []HeaderField
}

func (req *RequestDescriptor) encodeFields(w *Writer) error {
	for _, s := range [...]string{req.Method, req.Scheme, req.Authority, req.Path, req.Query, req.Protocol} {
		if err := w.PutString(s); err != nil {
			return err
		}
	}
	return writeHeadersTokenized(w, req.Headers)
}

func decodeRequestFields(r *Reader, tokenized bool) (*RequestDescriptor, error) {
	var vals [6]string
	for i := range vals {
		s, err := r.GetString()
		if err != nil {
			return nil, err
		}
		vals[i] = s
	}

	var headers []HeaderField
	var err error
	if tokenized {
		headers, err = readHeadersTokenized(r)
	} else {
		headers, err = readHeadersLiteral(r)
	}
	if err != nil {
		return nil, err
	}

	return &RequestDescriptor{
		Method: vals[0], Scheme: vals[1], Authority: vals[2],
		Path: vals[3], Query: vals[4], Protocol: vals[5],
		Headers: headers,
	}, nil
}

// EncodeRequestSingle writes a complete, empty-body-or-materialized-body
// request as one frame. Encoding always emits the tokenized frame type.
func EncodeRequestSingle(w io.Writer, req *RequestDescriptor, body []byte) error {
	bw := NewWriter(make([]byte, 0, 256+len(body)))
	bw.PutU8(ProtocolVersion)
	bw.PutU8(byte(TypeRequestTokenized))
	if err := req.encodeFields(bw); err != nil {
		return err
	}
	if err := bw.PutBytes(body); err != nil {
		return err
	}
	return WritePayload(w, bw.Bytes())
}

// EncodeRequestStart writes the header portion of a streaming request.
func EncodeRequestStart(w io.Writer, req *RequestDescriptor) error {
	bw := NewWriter(make([]byte, 0, 256))
	bw.PutU8(ProtocolVersion)
	bw.PutU8(byte(TypeRequestStartTokenized))
	if err := req.encodeFields(bw); err != nil {
		return err
	}
	return WritePayload(w, bw.Bytes())
}

// EncodeRequestChunk writes one request body chunk frame.
func EncodeRequestChunk(w io.Writer, chunk []byte) error {
	return WriteChunkFrame(w, TypeRequestChunk, chunk)
}

// EncodeRequestEnd writes the terminal frame of a streaming request.
func EncodeRequestEnd(w io.Writer) error {
	return WriteEmptyFrame(w, TypeRequestEnd)
}

// DecodeRequestSingle decodes a single-frame request body, accepting both
// the tokenized and legacy literal frame types.
func DecodeRequestSingle(typ FrameType, body []byte) (*RequestDescriptor, []byte, error) {
	if typ != TypeRequest && typ != TypeRequestTokenized {
		return nil, nil, ErrUnexpectedFrameType
	}
	r := NewReader(body)
	req, err := decodeRequestFields(r, typ == TypeRequestTokenized)
	if err != nil {
		return nil, nil, err
	}
	reqBody, err := r.GetBytes()
	if err != nil {
		return nil, nil, err
	}
	if err := r.EnsureDone(); err != nil {
		return nil, nil, err
	}
	return req, reqBody, nil
}

// DecodeRequestStart decodes the header portion of a streaming request.
func DecodeRequestStart(typ FrameType, body []byte) (*RequestDescriptor, error) {
	if typ != TypeRequestStart && typ != TypeRequestStartTokenized {
		return nil, ErrUnexpectedFrameType
	}
	r := NewReader(body)
	req, err := decodeRequestFields(r, typ == TypeRequestStartTokenized)
	if err != nil {
		return nil, err
	}
	if err := r.EnsureDone(); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeRequestChunk decodes a request body chunk frame.
func DecodeRequestChunk(typ FrameType, body []byte) ([]byte, error) {
	if typ != TypeRequestChunk {
		return nil, ErrUnexpectedFrameType
	}
	return DecodeChunkBody(body)
}

// DecodeRequestEnd validates a request-end frame's empty body.
func DecodeRequestEnd(typ FrameType, body []byte) error {
	if typ != TypeRequestEnd {
		return ErrUnexpectedFrameType
	}
	return DecodeEmptyBody(body)
}
