// Package openidtest provides hand-rolled fakes for the protocol engine
// boundary. Tests script the decoded request and observe the answers the
// decision engine produces.
package openidtest

import (
	"net/url"

	"ownidp/internal/openid"
)

// Request is a scriptable decoded protocol request.
type Request struct {
	ModeValue      string
	IdentityValue  string
	TrustRootValue string
	ImmediateValue bool
	Required       []string
	Optional       []string
}

func (r *Request) Mode() string             { return r.ModeValue }
func (r *Request) Identity() string         { return r.IdentityValue }
func (r *Request) TrustRoot() string        { return r.TrustRootValue }
func (r *Request) Immediate() bool          { return r.ImmediateValue }
func (r *Request) RequiredFields() []string { return r.Required }
func (r *Request) OptionalFields() []string { return r.Optional }

func (r *Request) Answer(allow bool, identity string) openid.Response {
	return &Response{Allow: allow, AssertedIdentity: identity}
}

// Response records what the decision engine answered.
type Response struct {
	Allow            bool
	AssertedIdentity string
	Profile          map[string]string
}

func (r *Response) AddProfile(fields map[string]string) { r.Profile = fields }

// Engine is a scriptable protocol engine.
type Engine struct {
	Request    openid.Request
	DecodeErr  error
	HandleResp openid.Response
	HandleErr  error
	EncodeErr  error

	Handled []openid.Request
	Encoded []openid.Response
}

func (e *Engine) Decode(url.Values) (openid.Request, error) {
	return e.Request, e.DecodeErr
}

func (e *Engine) Handle(req openid.Request) (openid.Response, error) {
	e.Handled = append(e.Handled, req)
	return e.HandleResp, e.HandleErr
}

func (e *Engine) Encode(resp openid.Response) (openid.WireResponse, error) {
	if e.EncodeErr != nil {
		return openid.WireResponse{}, e.EncodeErr
	}
	e.Encoded = append(e.Encoded, resp)

	if r, ok := resp.(*Response); ok {
		mode := "cancel"
		if r.Allow {
			mode = "id_res"
		}
		return openid.WireResponse{
			Code:    302,
			Headers: map[string]string{"Location": "https://rp.example.com/return?openid.mode=" + mode},
		}, nil
	}
	return openid.WireResponse{Code: 200, Body: "handled"}, nil
}

// LastEncoded returns the most recently encoded fake response, or nil.
func (e *Engine) LastEncoded() *Response {
	for i := len(e.Encoded) - 1; i >= 0; i-- {
		if r, ok := e.Encoded[i].(*Response); ok {
			return r
		}
	}
	return nil
}
