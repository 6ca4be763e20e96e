package resize

import (
	"net/url"

	"github.com/multiformats/go-multihash"

	"github.com/resizeto/resizeto/pkg/options"
	"github.com/resizeto/resizeto/pkg/store/objectstore"
	"github.com/resizeto/resizeto/pkg/transformer"
)

// ObjectParams addresses an object in a bucket.
type ObjectParams struct {
	Bucket      string
	Key         string
	ContentType string
}

// Session is the state of a single invocation. Fields are populated as the
// pipeline advances and are never changed afterwards.
type Session struct {
	request     Request
	parsed      *options.Parsed
	originals   string
	destination string
	transformer *transformer.Transformer
	location    url.URL
	output      objectstore.PutResult
	digest      multihash.Multihash
	size        int64
}

func (s *Session) Request() Request {
	return s.request
}

// Path is the resolved source object path.
func (s *Session) Path() string {
	return s.parsed.Path
}

// Options is the parsed option collection, in application order.
func (s *Session) Options() options.Collection {
	return s.parsed.Collection
}

// OptionsString is the options substring of the fragment without any
// signature.
func (s *Session) OptionsString() string {
	return s.parsed.OptionsString
}

// ContentType is the output content type declared by the transformer.
func (s *Session) ContentType() string {
	return s.transformer.ContentType()
}

func (s *Session) SourceParams() ObjectParams {
	return ObjectParams{Bucket: s.originals, Key: s.parsed.Path}
}

// UploadParams addresses the destination object. The key is the full
// fragment so every option combination is cached under its own key.
func (s *Session) UploadParams() ObjectParams {
	return ObjectParams{
		Bucket:      s.destination,
		Key:         s.request.Fragment,
		ContentType: s.transformer.ContentType(),
	}
}

// Location is the public URL of the processed object.
func (s *Session) Location() url.URL {
	return s.location
}

// Output is the store metadata of the completed upload.
func (s *Session) Output() objectstore.PutResult {
	return s.output
}

// Digest is the sha2-256 multihash of the uploaded bytes.
func (s *Session) Digest() multihash.Multihash {
	return s.digest
}

// Size is the number of bytes uploaded.
func (s *Session) Size() int64 {
	return s.size
}
