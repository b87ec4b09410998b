package restcore

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/gjson"
)

// MediaTypeJSON and MediaTypeCBOR are the entity media types the core can
// decode and encode.
const (
	MediaTypeJSON = "application/json"
	MediaTypeCBOR = "application/cbor"
)

// ErrInvalidEntity is returned when a request body cannot be parsed as a
// structured document.
var ErrInvalidEntity = errors.New("invalid entity")

// Document is the semi-typed structured form of a request or response
// entity.
type Document map[string]any

// codec encodes and decodes structured entities for one media type.
type codec interface {
	MediaType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(raw []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) MediaType() string { return MediaTypeJSON }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(raw []byte, v any) error {
	// gjson validation first: it rejects malformed input without allocating
	// the document, and its error position is not needed here.
	if !gjson.ValidBytes(raw) {
		return ErrInvalidEntity
	}
	return json.Unmarshal(raw, v)
}

type cborCodec struct{}

func (cborCodec) MediaType() string { return MediaTypeCBOR }

func (cborCodec) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (cborCodec) Unmarshal(raw []byte, v any) error { return cbor.Unmarshal(raw, v) }

// codecForContentType selects the request-body codec. JSON is the default
// when no Content-Type is present.
func codecForContentType(contentType string) (codec, error) {
	switch contentType {
	case "", MediaTypeJSON:
		return jsonCodec{}, nil
	case MediaTypeCBOR:
		return cborCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported media type %q", contentType)
}

// codecForAccept selects the response codec from an Accept header value.
// Elements are taken in the client's order, parameters stripped; the first
// supported media type wins and anything unrecognized encodes as JSON.
func codecForAccept(accept string) codec {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case MediaTypeCBOR:
			return cborCodec{}
		case MediaTypeJSON, "*/*":
			return jsonCodec{}
		}
	}
	return jsonCodec{}
}

// decodeEntity parses a non-empty request body into a Document. An empty or
// absent body yields a nil Document and no error. Malformed input and
// unsupported media types yield a decode error, never a panic.
func decodeEntity(req *Request) (Document, error) {
	if !req.HasEntity() {
		return nil, nil
	}
	c, err := codecForContentType(req.ContentType())
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := c.Unmarshal(req.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	return doc, nil
}
