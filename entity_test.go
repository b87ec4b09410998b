package restcore

import (
	"net/http"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/suite"
)

type EntitySuite struct {
	suite.Suite
}

func (s *EntitySuite) request(contentType string, body []byte) *Request {
	req := &Request{Method: "POST", Path: "/users", Header: make(http.Header), Body: body}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func (s *EntitySuite) TestEmptyBodyDecodesToNil() {
	doc, err := decodeEntity(s.request("", nil))
	s.NoError(err)
	s.Nil(doc)
}

func (s *EntitySuite) TestJSONBody() {
	doc, err := decodeEntity(s.request(MediaTypeJSON, []byte(`{"name":"Ada","age":36}`)))
	s.Require().NoError(err)
	s.Equal("Ada", doc["name"])
	s.Equal(float64(36), doc["age"])
}

func (s *EntitySuite) TestMissingContentTypeDefaultsToJSON() {
	doc, err := decodeEntity(s.request("", []byte(`{"name":"Ada"}`)))
	s.Require().NoError(err)
	s.Equal("Ada", doc["name"])
}

func (s *EntitySuite) TestContentTypeParametersAreIgnored() {
	doc, err := decodeEntity(s.request("application/json; charset=utf-8", []byte(`{"name":"Ada"}`)))
	s.Require().NoError(err)
	s.Equal("Ada", doc["name"])
}

func (s *EntitySuite) TestMalformedJSON() {
	_, err := decodeEntity(s.request(MediaTypeJSON, []byte(`{"name":`)))
	s.ErrorIs(err, ErrInvalidEntity)
}

func (s *EntitySuite) TestCBORBody() {
	raw, err := cbor.Marshal(map[string]any{"name": "Ada"})
	s.Require().NoError(err)

	doc, err := decodeEntity(s.request(MediaTypeCBOR, raw))
	s.Require().NoError(err)
	s.Equal("Ada", doc["name"])
}

func (s *EntitySuite) TestMalformedCBOR() {
	_, err := decodeEntity(s.request(MediaTypeCBOR, []byte{0xff, 0xff, 0xff}))
	s.Error(err)
}

func (s *EntitySuite) TestUnsupportedMediaType() {
	_, err := decodeEntity(s.request("text/csv", []byte("a,b,c")))
	s.Error(err)
	s.Contains(err.Error(), "unsupported media type")
}

func (s *EntitySuite) TestAcceptNegotiation() {
	s.Equal(MediaTypeCBOR, codecForAccept(MediaTypeCBOR).MediaType())
	s.Equal(MediaTypeJSON, codecForAccept(MediaTypeJSON).MediaType())
	s.Equal(MediaTypeJSON, codecForAccept("").MediaType())
	s.Equal(MediaTypeJSON, codecForAccept("text/html").MediaType())
}

func (s *EntitySuite) TestAcceptNegotiationParsesElements() {
	s.Equal(MediaTypeCBOR, codecForAccept("application/cbor;q=0.9").MediaType())
	s.Equal(MediaTypeCBOR, codecForAccept("application/cbor, application/json").MediaType())
	s.Equal(MediaTypeJSON, codecForAccept("application/json, application/cbor").MediaType())
	s.Equal(MediaTypeCBOR, codecForAccept("text/html, application/cbor").MediaType())
	s.Equal(MediaTypeJSON, codecForAccept("*/*").MediaType())
}

func TestEntitySuite(t *testing.T) {
	suite.Run(t, new(EntitySuite))
}
