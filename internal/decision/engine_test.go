package decision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"

	"ownidp/internal/hcard"
	"ownidp/internal/openid"
	"ownidp/internal/openid/openidtest"
	"ownidp/internal/trustroot"
)

type stubProfiles struct {
	profile []hcard.ProfileField
	values  map[string]string
}

func (s *stubProfiles) Profile(context.Context, string, []string, []string) []hcard.ProfileField {
	return s.profile
}

func (s *stubProfiles) Values(context.Context, string, []string) map[string]string {
	return s.values
}

type failingStore struct {
	trustroot.Store
}

func (failingStore) Check(context.Context, string) (bool, error) {
	return false, errors.New("disk gone")
}

func (failingStore) Add(context.Context, string) error {
	return errors.New("disk gone")
}

type EngineSuite struct {
	suite.Suite
	ctx      context.Context
	protocol *openidtest.Engine
	roots    *trustroot.MemoryStore
	profiles *stubProfiles
	engine   *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.protocol = &openidtest.Engine{}
	s.roots = trustroot.NewMemoryStore()
	s.profiles = &stubProfiles{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.engine = NewEngine(s.protocol, s.roots, s.profiles, logger, nil)
}

func (s *EngineSuite) setupRequest(mode string, immediate bool) *openidtest.Request {
	req := &openidtest.Request{
		ModeValue:      mode,
		IdentityValue:  "https://jane.example.com/",
		TrustRootValue: "https://rp.example.com/",
		ImmediateValue: immediate,
	}
	s.protocol.Request = req
	return req
}

func (s *EngineSuite) TestEmptyQueryRejected() {
	outcome, err := s.engine.Begin(s.ctx, url.Values{}, true)
	s.Require().NoError(err)
	s.Equal(StateRejected, outcome.State)
	s.Equal("empty request", outcome.Reason)
}

func (s *EngineSuite) TestDecodeErrorRejected() {
	s.protocol.DecodeErr = errors.New("malformed checkid message")
	outcome, err := s.engine.Begin(s.ctx, url.Values{}, true)
	s.Require().NoError(err)
	s.Equal(StateRejected, outcome.State)
	s.Contains(outcome.Reason, "malformed")
}

func (s *EngineSuite) TestSetupNotLoggedInNeedsLogin() {
	s.setupRequest(openid.ModeCheckIDSetup, false)
	s.Require().NoError(s.roots.Add(s.ctx, "https://rp.example.com/"))

	outcome, err := s.engine.Begin(s.ctx, url.Values{}, false)
	s.Require().NoError(err)
	s.Equal(StateNeedsLogin, outcome.State)
	s.Empty(s.protocol.Encoded, "no answer may be produced before login")
}

func (s *EngineSuite) TestTrustedRootApprovedWithoutInteraction() {
	s.setupRequest(openid.ModeCheckIDSetup, false)
	s.Require().NoError(s.roots.Add(s.ctx, "https://rp.example.com/"))

	outcome, err := s.engine.Begin(s.ctx, url.Values{}, true)
	s.Require().NoError(err)
	s.Equal(StateApproved, outcome.State)
	s.Equal(302, outcome.Wire.Code)

	answered := s.protocol.LastEncoded()
	s.Require().NotNil(answered)
	s.True(answered.Allow)
	s.Equal("https://jane.example.com/", answered.AssertedIdentity)
}

func (s *EngineSuite) TestImmediateUntrustedDeclined() {
	s.setupRequest(openid.ModeCheckIDImmediate, true)

	// Declined either way: an immediate request cannot be bounced to login.
	for _, loggedIn := range []bool{true, false} {
		s.protocol.Encoded = nil
		outcome, err := s.engine.Begin(s.ctx, url.Values{}, loggedIn)
		s.Require().NoError(err)
		s.Equal(StateDeclined, outcome.State)
		answered := s.protocol.LastEncoded()
		s.Require().NotNil(answered)
		s.False(answered.Allow)
	}
}

func (s *EngineSuite) TestUntrustedSetupNeedsDecision() {
	s.setupRequest(openid.ModeCheckIDSetup, false)

	outcome, err := s.engine.Begin(s.ctx, url.Values{}, true)
	s.Require().NoError(err)
	s.Equal(StateNeedsDecision, outcome.State)
	s.Empty(s.protocol.Encoded)
}

func (s *EngineSuite) TestResolveAlwaysPersistsTrustRoot() {
	s.setupRequest(openid.ModeCheckIDSetup, false)

	outcome, err := s.engine.Resolve(s.ctx, url.Values{}, ChoiceAlways)
	s.Require().NoError(err)
	s.Equal(StateApproved, outcome.State)

	trusted, err := s.roots.Check(s.ctx, "https://rp.example.com/")
	s.Require().NoError(err)
	s.True(trusted)
}

func (s *EngineSuite) TestResolveApproveDoesNotPersist() {
	s.setupRequest(openid.ModeCheckIDSetup, false)

	outcome, err := s.engine.Resolve(s.ctx, url.Values{}, ChoiceApprove)
	s.Require().NoError(err)
	s.Equal(StateApproved, outcome.State)

	trusted, err := s.roots.Check(s.ctx, "https://rp.example.com/")
	s.Require().NoError(err)
	s.False(trusted)
}

func (s *EngineSuite) TestResolveDeclineLeavesRootAbsent() {
	s.setupRequest(openid.ModeCheckIDSetup, false)

	outcome, err := s.engine.Resolve(s.ctx, url.Values{}, ChoiceDecline)
	s.Require().NoError(err)
	s.Equal(StateDeclined, outcome.State)

	trusted, err := s.roots.Check(s.ctx, "https://rp.example.com/")
	s.Require().NoError(err)
	s.False(trusted)

	answered := s.protocol.LastEncoded()
	s.Require().NotNil(answered)
	s.False(answered.Allow)
}

func (s *EngineSuite) TestUnknownChoiceDeclines() {
	s.setupRequest(openid.ModeCheckIDSetup, false)

	outcome, err := s.engine.Resolve(s.ctx, url.Values{}, Choice("whatever"))
	s.Require().NoError(err)
	s.Equal(StateDeclined, outcome.State)
}

func (s *EngineSuite) TestNonInteractiveModeDelegated() {
	req := s.setupRequest("associate", false)
	s.protocol.HandleResp = &openidtest.Response{}

	outcome, err := s.engine.Begin(s.ctx, url.Values{}, false)
	s.Require().NoError(err)
	s.Equal(StateApproved, outcome.State)
	s.Require().Len(s.protocol.Handled, 1)
	s.Equal(openid.Request(req), s.protocol.Handled[0])
}

func (s *EngineSuite) TestNonInteractiveHandleErrorRejected() {
	s.setupRequest("associate", false)
	s.protocol.HandleErr = errors.New("unsupported mode")

	outcome, err := s.engine.Begin(s.ctx, url.Values{}, false)
	s.Require().NoError(err)
	s.Equal(StateRejected, outcome.State)
}

func (s *EngineSuite) TestTrustStoreFailureIsHardError() {
	s.setupRequest(openid.ModeCheckIDSetup, false)
	engine := NewEngine(s.protocol, failingStore{}, s.profiles,
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	_, err := engine.Begin(s.ctx, url.Values{}, true)
	s.Require().Error(err)
	s.Empty(s.protocol.Encoded, "a storage failure must not produce a verdict")
}

func (s *EngineSuite) TestPersistFailureIsHardError() {
	s.setupRequest(openid.ModeCheckIDSetup, false)
	engine := NewEngine(s.protocol, failingStore{}, s.profiles,
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	_, err := engine.Resolve(s.ctx, url.Values{}, ChoiceAlways)
	s.Require().Error(err)
}

func (s *EngineSuite) TestApprovalAttachesExtractedProfile() {
	req := s.setupRequest(openid.ModeCheckIDSetup, false)
	req.Required = []string{"fullname"}
	req.Optional = []string{"email"}
	s.profiles.values = map[string]string{"fullname": "Jane Doe"}
	s.Require().NoError(s.roots.Add(s.ctx, "https://rp.example.com/"))

	outcome, err := s.engine.Begin(s.ctx, url.Values{}, true)
	s.Require().NoError(err)
	s.Equal(StateApproved, outcome.State)

	answered := s.protocol.LastEncoded()
	s.Require().NotNil(answered)
	s.Equal(map[string]string{"fullname": "Jane Doe"}, answered.Profile)
}

func (s *EngineSuite) TestExtractionFailureDoesNotBlockApproval() {
	req := s.setupRequest(openid.ModeCheckIDSetup, false)
	req.Required = []string{"fullname"}
	s.profiles.values = nil // extractor found nothing
	s.Require().NoError(s.roots.Add(s.ctx, "https://rp.example.com/"))

	outcome, err := s.engine.Begin(s.ctx, url.Values{}, true)
	s.Require().NoError(err)
	s.Equal(StateApproved, outcome.State)

	answered := s.protocol.LastEncoded()
	s.Require().NotNil(answered)
	s.True(answered.Allow)
	s.Nil(answered.Profile)
}

func (s *EngineSuite) TestNoFieldsRequestedSkipsExtraction() {
	s.setupRequest(openid.ModeCheckIDSetup, false)
	s.profiles.values = map[string]string{"fullname": "should not appear"}
	s.Require().NoError(s.roots.Add(s.ctx, "https://rp.example.com/"))

	_, err := s.engine.Begin(s.ctx, url.Values{}, true)
	s.Require().NoError(err)

	answered := s.protocol.LastEncoded()
	s.Require().NotNil(answered)
	s.Nil(answered.Profile)
}

func (s *EngineSuite) TestPreview() {
	req := s.setupRequest(openid.ModeCheckIDSetup, false)
	req.Required = []string{"fullname"}
	s.profiles.profile = []hcard.ProfileField{{Label: "Full name", Value: "Jane Doe"}}

	preview, err := s.engine.Preview(s.ctx, url.Values{})
	s.Require().NoError(err)
	s.Equal("https://jane.example.com/", preview.Identity)
	s.Equal("https://rp.example.com/", preview.TrustRoot)
	s.Equal(s.profiles.profile, preview.Profile)

	s.Empty(s.protocol.Encoded, "preview must not answer the request")
}

func (s *EngineSuite) TestPreviewEmptyRequest() {
	_, err := s.engine.Preview(s.ctx, url.Values{})
	s.Require().Error(err)
}
