package openid

import (
	"net/http"
	"net/url"
	"strings"

	"ownidp/pkg/domainerrors"
)

const sregNamespace = "http://openid.net/extensions/sreg/1.1"

// UnsignedEngine is a minimal protocol binding: it decodes checkid messages
// and encodes unsigned assertions as return_to redirects. It performs no
// association or signature handling, so relying parties running in anything
// but dumb-consumer test setups will reject its assertions. Deployments swap
// in a full protocol implementation behind the Engine interface.
type UnsignedEngine struct{}

func NewUnsignedEngine() *UnsignedEngine {
	return &UnsignedEngine{}
}

type unsignedRequest struct {
	mode      string
	identity  string
	trustRoot string
	returnTo  string
	required  []string
	optional  []string
}

func (r *unsignedRequest) Mode() string      { return r.mode }
func (r *unsignedRequest) Identity() string  { return r.identity }
func (r *unsignedRequest) TrustRoot() string { return r.trustRoot }
func (r *unsignedRequest) Immediate() bool   { return r.mode == ModeCheckIDImmediate }

func (r *unsignedRequest) RequiredFields() []string { return r.required }
func (r *unsignedRequest) OptionalFields() []string { return r.optional }

func (r *unsignedRequest) Answer(allow bool, identity string) Response {
	if identity == "" {
		identity = r.identity
	}
	return &unsignedResponse{request: r, allow: allow, identity: identity}
}

type unsignedResponse struct {
	request  *unsignedRequest
	allow    bool
	identity string
	profile  map[string]string
}

func (r *unsignedResponse) AddProfile(fields map[string]string) {
	r.profile = fields
}

func (e *UnsignedEngine) Decode(query url.Values) (Request, error) {
	mode := query.Get("openid.mode")
	if mode == "" {
		return nil, nil
	}
	if !Interactive(mode) {
		return &unsignedRequest{mode: mode}, nil
	}

	req := &unsignedRequest{
		mode:      mode,
		identity:  query.Get("openid.identity"),
		trustRoot: query.Get("openid.trust_root"),
		returnTo:  query.Get("openid.return_to"),
		required:  splitFields(query.Get("openid.sreg.required")),
		optional:  splitFields(query.Get("openid.sreg.optional")),
	}
	if req.identity == "" {
		req.identity = query.Get("openid.claimed_id")
	}
	if req.trustRoot == "" {
		req.trustRoot = query.Get("openid.realm")
	}
	if req.identity == "" || req.returnTo == "" {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "checkid request missing identity or return_to")
	}
	if req.trustRoot == "" {
		req.trustRoot = req.returnTo
	}
	return req, nil
}

func (e *UnsignedEngine) Handle(req Request) (Response, error) {
	return nil, domainerrors.New(domainerrors.CodeBadRequest,
		"mode "+req.Mode()+" not supported by the unsigned binding")
}

func (e *UnsignedEngine) Encode(resp Response) (WireResponse, error) {
	r, ok := resp.(*unsignedResponse)
	if !ok {
		return WireResponse{}, domainerrors.New(domainerrors.CodeInternal, "response not produced by this engine")
	}

	location, err := url.Parse(r.request.returnTo)
	if err != nil {
		return WireResponse{}, domainerrors.Wrap(domainerrors.CodeBadRequest, "invalid return_to", err)
	}

	params := location.Query()
	if !r.allow {
		params.Set("openid.mode", "cancel")
	} else {
		params.Set("openid.mode", "id_res")
		params.Set("openid.identity", r.identity)
		params.Set("openid.return_to", r.request.returnTo)
		if len(r.profile) > 0 {
			params.Set("openid.ns.sreg", sregNamespace)
			for field, value := range r.profile {
				params.Set("openid.sreg."+field, value)
			}
		}
	}
	location.RawQuery = params.Encode()

	return WireResponse{
		Code:    http.StatusFound,
		Headers: map[string]string{"Location": location.String()},
	}, nil
}

func splitFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
