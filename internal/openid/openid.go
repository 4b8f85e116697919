// Package openid defines the boundary to the OpenID protocol engine. The
// decision engine and HTTP layer talk to these interfaces only; message
// validation, associations, signatures, and discovery live behind them.
package openid

import "net/url"

// Authentication modes that require a decision from this identity provider.
// Every other mode is handled generically by the protocol engine.
const (
	ModeCheckIDImmediate = "checkid_immediate"
	ModeCheckIDSetup     = "checkid_setup"
)

// Interactive reports whether mode is an end-user authentication mode.
func Interactive(mode string) bool {
	return mode == ModeCheckIDImmediate || mode == ModeCheckIDSetup
}

// Request is a decoded protocol message. Immutable once decoded.
type Request interface {
	Mode() string
	Identity() string
	TrustRoot() string
	Immediate() bool

	// Simple Registration extension fields requested by the relying party.
	RequiredFields() []string
	OptionalFields() []string

	// Answer produces a positive or negative assertion for this request.
	// identity is the URL asserted on approval; ignored when allow is false.
	Answer(allow bool, identity string) Response
}

// Response is a protocol-level response under construction.
type Response interface {
	// AddProfile attaches extracted profile attributes as a Simple
	// Registration extension. Keys are canonical sreg field names.
	AddProfile(fields map[string]string)
}

// WireResponse is a protocol response encoded for HTTP transport.
type WireResponse struct {
	Code    int
	Headers map[string]string
	Body    string
}

// Engine is the protocol engine boundary.
type Engine interface {
	// Decode parses an inbound query into a protocol request. A nil request
	// with nil error means the query carried no protocol message at all.
	Decode(query url.Values) (Request, error)

	// Handle processes non-interactive protocol modes (association
	// establishment, signature verification).
	Handle(req Request) (Response, error)

	// Encode serializes a response for the wire.
	Encode(resp Response) (WireResponse, error)
}
