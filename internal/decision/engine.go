// Package decision orchestrates a single authentication request: it decodes
// the protocol message, consults the trust-root store, and drives the
// login-required / decision-required / approve / decline state machine.
package decision

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"ownidp/internal/decision/metrics"
	"ownidp/internal/hcard"
	"ownidp/internal/openid"
	"ownidp/internal/trustroot"
	"ownidp/pkg/domainerrors"
)

// ProfileExtractor supplies profile data mined from the claimed identity
// page. Implementations absorb their own failures and return empty results.
type ProfileExtractor interface {
	Profile(ctx context.Context, documentURL string, required, optional []string) []hcard.ProfileField
	Values(ctx context.Context, documentURL string, fields []string) map[string]string
}

// Engine is request-scoped and stateless between invocations except through
// the trust-root store; it is safe to share across concurrent requests.
type Engine struct {
	protocol openid.Engine
	roots    trustroot.Store
	profiles ProfileExtractor
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewEngine(
	protocol openid.Engine,
	roots trustroot.Store,
	profiles ProfileExtractor,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Engine {
	return &Engine{
		protocol: protocol,
		roots:    roots,
		profiles: profiles,
		logger:   logger,
		metrics:  m,
	}
}

// Begin processes an inbound query. Trust-store failures are returned as
// errors: the decision cannot proceed without a reliable verdict and must
// never fall back to a guessed allow or deny.
func (e *Engine) Begin(ctx context.Context, query url.Values, loggedIn bool) (Outcome, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveEvaluateLatency(time.Since(start)) }()

	req, outcome, ok := e.decode(query)
	if !ok {
		return outcome, nil
	}
	mode := req.Mode()

	if !openid.Interactive(mode) {
		resp, err := e.protocol.Handle(req)
		if err != nil {
			e.metrics.IncOutcome(string(StateRejected), mode)
			return Outcome{State: StateRejected, Reason: err.Error()}, nil
		}
		wire, err := e.protocol.Encode(resp)
		if err != nil {
			return Outcome{}, fmt.Errorf("decision: encode response: %w", err)
		}
		e.metrics.IncOutcome(string(StateApproved), mode)
		return Outcome{State: StateApproved, Wire: wire}, nil
	}

	trusted, err := e.roots.Check(ctx, req.TrustRoot())
	if err != nil {
		return Outcome{}, fmt.Errorf("decision: trust root lookup: %w", err)
	}

	// An immediate request forbids all interaction, including a login
	// redirect, so an untrusted root is declined whatever the login state.
	if req.Immediate() && !trusted {
		return e.decline(req)
	}
	if !loggedIn {
		e.metrics.IncOutcome(string(StateNeedsLogin), mode)
		return Outcome{State: StateNeedsLogin}, nil
	}
	if trusted {
		return e.approve(ctx, req)
	}

	e.metrics.IncOutcome(string(StateNeedsDecision), mode)
	return Outcome{State: StateNeedsDecision}, nil
}

// Resolve answers a request the owner has decided on. Only meaningful after
// Begin returned StateNeedsDecision; the caller must not resolve the same
// protocol request twice.
func (e *Engine) Resolve(ctx context.Context, query url.Values, choice Choice) (Outcome, error) {
	req, outcome, ok := e.decode(query)
	if !ok {
		return outcome, nil
	}
	if !openid.Interactive(req.Mode()) {
		return Outcome{State: StateRejected, Reason: "not an authentication request"}, nil
	}

	switch choice {
	case ChoiceApprove:
		return e.approve(ctx, req)
	case ChoiceAlways:
		if err := e.roots.Add(ctx, req.TrustRoot()); err != nil {
			return Outcome{}, fmt.Errorf("decision: persist trust root: %w", err)
		}
		return e.approve(ctx, req)
	default:
		return e.decline(req)
	}
}

// Preview describes what an approval would disclose, for display on the
// confirmation page. Display-only; no effect on the eventual response.
type Preview struct {
	Identity  string
	TrustRoot string
	Profile   []hcard.ProfileField
}

func (e *Engine) Preview(ctx context.Context, query url.Values) (Preview, error) {
	req, _, ok := e.decode(query)
	if !ok {
		return Preview{}, domainerrors.New(domainerrors.CodeBadRequest, "no decodable request")
	}

	p := Preview{Identity: req.Identity(), TrustRoot: req.TrustRoot()}
	required, optional := req.RequiredFields(), req.OptionalFields()
	if len(required)+len(optional) > 0 {
		p.Profile = e.profiles.Profile(ctx, req.Identity(), required, optional)
	}
	return p, nil
}

// decode maps the protocol decode step onto the state machine entry. The
// third return is false when processing should stop with the given outcome.
func (e *Engine) decode(query url.Values) (openid.Request, Outcome, bool) {
	req, err := e.protocol.Decode(query)
	if err != nil {
		e.metrics.IncOutcome(string(StateRejected), "")
		return nil, Outcome{State: StateRejected, Reason: err.Error()}, false
	}
	if req == nil {
		e.metrics.IncOutcome(string(StateRejected), "")
		return nil, Outcome{State: StateRejected, Reason: "empty request"}, false
	}
	return req, Outcome{}, true
}

func (e *Engine) approve(ctx context.Context, req openid.Request) (Outcome, error) {
	resp := req.Answer(true, req.Identity())
	e.attachProfile(ctx, req, resp)

	wire, err := e.protocol.Encode(resp)
	if err != nil {
		return Outcome{}, fmt.Errorf("decision: encode approval: %w", err)
	}
	e.metrics.IncOutcome(string(StateApproved), req.Mode())
	e.logger.Info("authentication approved",
		"identity", req.Identity(),
		"trust_root", req.TrustRoot(),
	)
	return Outcome{State: StateApproved, Wire: wire}, nil
}

func (e *Engine) decline(req openid.Request) (Outcome, error) {
	wire, err := e.protocol.Encode(req.Answer(false, ""))
	if err != nil {
		return Outcome{}, fmt.Errorf("decision: encode decline: %w", err)
	}
	e.metrics.IncOutcome(string(StateDeclined), req.Mode())
	e.logger.Info("authentication declined",
		"identity", req.Identity(),
		"trust_root", req.TrustRoot(),
	)
	return Outcome{State: StateDeclined, Wire: wire}, nil
}

// attachProfile augments a positive assertion with requested profile fields.
// The extractor absorbs its own failures, so a missing or broken identity
// page can never turn an approval into an error.
func (e *Engine) attachProfile(ctx context.Context, req openid.Request, resp openid.Response) {
	fields := append(append([]string{}, req.RequiredFields()...), req.OptionalFields()...)
	if len(fields) == 0 {
		return
	}
	values := e.profiles.Values(ctx, req.Identity(), fields)
	if len(values) == 0 {
		e.logger.Debug("no profile data extracted", "identity", req.Identity())
		return
	}
	resp.AddProfile(values)
}
