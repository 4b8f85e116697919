package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ownidp/internal/decision"
	"ownidp/internal/openid"
	"ownidp/internal/password"
	"ownidp/internal/session"
	"ownidp/internal/trustroot"
	"ownidp/internal/web/mocks"
)

type HandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *HandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

type testEnv struct {
	router    chi.Router
	decisions *mocks.MockDecisionService
	roots     *trustroot.MemoryStore
	sessions  *session.MemoryStore
	codec     *session.TokenCodec
	passwords *password.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roots := trustroot.NewMemoryStore()
	sessions := session.NewMemoryStore()
	codec := session.NewTokenCodec([]byte("test-signing-key"))
	passwords, err := password.NewManager(t.TempDir())
	require.NoError(t, err)
	decisions := mocks.NewMockDecisionService(ctrl)

	h := NewHandler(logger, decisions, roots, sessions, codec, passwords, nil, "http://id.example", time.Hour)
	r := chi.NewRouter()
	h.Register(r)
	return &testEnv{
		router:    r,
		decisions: decisions,
		roots:     roots,
		sessions:  sessions,
		codec:     codec,
		passwords: passwords,
	}
}

// loginCookie creates a live session and returns its cookie.
func (e *testEnv) loginCookie(t *testing.T) *http.Cookie {
	t.Helper()
	sess := session.New("", time.Hour)
	require.NoError(t, e.sessions.Save(context.Background(), sess))
	token, err := e.codec.Issue(sess.ID, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func checkidQuery() url.Values {
	return url.Values{
		"openid.mode":       {"checkid_setup"},
		"openid.identity":   {"http://id.example/"},
		"openid.trust_root": {"http://rp.example/"},
		"openid.return_to":  {"http://rp.example/return"},
	}
}

func (s *HandlerSuite) TestEndpointNeedsLoginRedirects() {
	env := newTestEnv(s.T())
	env.decisions.EXPECT().Begin(gomock.Any(), gomock.Any(), false).
		Return(decision.Outcome{State: decision.StateNeedsLogin}, nil)

	w := env.get("/endpoint?"+checkidQuery().Encode(), nil)

	require.Equal(s.T(), http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "/account/login", loc.Path)
	assert.Contains(s.T(), loc.Query().Get("return_to"), "checkid_setup")
}

func (s *HandlerSuite) TestEndpointNeedsDecisionRedirects() {
	env := newTestEnv(s.T())
	env.decisions.EXPECT().Begin(gomock.Any(), gomock.Any(), true).
		Return(decision.Outcome{State: decision.StateNeedsDecision}, nil)

	w := env.get("/endpoint?"+checkidQuery().Encode(), env.loginCookie(s.T()))

	require.Equal(s.T(), http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "/account/decision", loc.Path)
	assert.Equal(s.T(), "checkid_setup", loc.Query().Get("openid.mode"))
}

func (s *HandlerSuite) TestEndpointRelaysTerminalWire() {
	env := newTestEnv(s.T())
	env.decisions.EXPECT().Begin(gomock.Any(), gomock.Any(), true).
		Return(decision.Outcome{
			State: decision.StateApproved,
			Wire: openid.WireResponse{
				Code:    http.StatusFound,
				Headers: map[string]string{"Location": "http://rp.example/return?openid.mode=id_res"},
			},
		}, nil)

	w := env.get("/endpoint?"+checkidQuery().Encode(), env.loginCookie(s.T()))

	require.Equal(s.T(), http.StatusFound, w.Code)
	assert.Contains(s.T(), w.Header().Get("Location"), "openid.mode=id_res")
}

func (s *HandlerSuite) TestEndpointRejectedIsBadRequest() {
	env := newTestEnv(s.T())
	env.decisions.EXPECT().Begin(gomock.Any(), gomock.Any(), false).
		Return(decision.Outcome{State: decision.StateRejected, Reason: "empty request"}, nil)

	w := env.get("/endpoint", nil)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "empty request")
}

func (s *HandlerSuite) TestEndpointHardErrorIsInternal() {
	env := newTestEnv(s.T())
	env.decisions.EXPECT().Begin(gomock.Any(), gomock.Any(), false).
		Return(decision.Outcome{}, assert.AnError)

	w := env.get("/endpoint?"+checkidQuery().Encode(), nil)

	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
}

func (s *HandlerSuite) TestDecisionFormRequiresLogin() {
	env := newTestEnv(s.T())

	w := env.get("/account/decision?"+checkidQuery().Encode(), nil)

	require.Equal(s.T(), http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "/account/login", loc.Path)
}

func (s *HandlerSuite) TestDecisionFormRendersPreview() {
	env := newTestEnv(s.T())
	env.decisions.EXPECT().Preview(gomock.Any(), gomock.Any()).
		Return(decision.Preview{
			Identity:  "http://id.example/",
			TrustRoot: "http://rp.example/",
		}, nil)

	w := env.get("/account/decision?"+checkidQuery().Encode(), env.loginCookie(s.T()))

	require.Equal(s.T(), http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(s.T(), body, "http://rp.example/")
	assert.Contains(s.T(), body, `name="always"`)
}

func (s *HandlerSuite) TestDecisionPostChoices() {
	cases := []struct {
		name   string
		field  string
		choice decision.Choice
	}{
		{"approve", "approve", decision.ChoiceApprove},
		{"always", "always", decision.ChoiceAlways},
		{"decline", "decline", decision.ChoiceDecline},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			env := newTestEnv(s.T())
			env.decisions.EXPECT().Resolve(gomock.Any(), gomock.Any(), tc.choice).
				Return(decision.Outcome{
					State: decision.StateApproved,
					Wire:  openid.WireResponse{Code: http.StatusFound, Headers: map[string]string{"Location": "http://rp.example/return"}},
				}, nil)

			form := checkidQuery()
			form.Set(tc.field, "1")
			w := env.postForm("/account/decision", form, env.loginCookie(s.T()))

			assert.Equal(s.T(), http.StatusFound, w.Code)
		})
	}
}

func (s *HandlerSuite) TestDecisionPostRejected() {
	env := newTestEnv(s.T())
	env.decisions.EXPECT().Resolve(gomock.Any(), gomock.Any(), decision.ChoiceDecline).
		Return(decision.Outcome{State: decision.StateRejected, Reason: "no longer an authorization request"}, nil)

	w := env.postForm("/account/decision", url.Values{}, env.loginCookie(s.T()))

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestYadisDocument() {
	env := newTestEnv(s.T())

	w := env.get("/yadis.xrds", nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "application/xrds+xml", w.Header().Get("Content-Type"))
	assert.Contains(s.T(), w.Body.String(), "http://id.example/endpoint")
	assert.Contains(s.T(), w.Body.String(), "http://specs.openid.net/auth/2.0/signon")
}

func (s *HandlerSuite) TestIndexAnonymousShowsLogin() {
	env := newTestEnv(s.T())

	w := env.get("/", nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "/account/login")
	assert.Contains(s.T(), w.Body.String(), `rel="openid2.provider"`)
}

func (s *HandlerSuite) TestHealthz() {
	env := newTestEnv(s.T())

	w := env.get("/healthz", nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"status":"ok"}`, w.Body.String())
}
