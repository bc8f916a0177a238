package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/rjmoggach/litigation-support-sub001/internal/apiclient"
	"github.com/rjmoggach/litigation-support-sub001/internal/config"
	"github.com/rjmoggach/litigation-support-sub001/internal/session"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testOrigin = "http://portal.test"
)

func newTestServer(t *testing.T, backendURL string) *Server {
	t.Helper()
	cfg := &config.Config{
		AppEnv:           "test",
		Port:             "0",
		LogLevel:         "error",
		LogFormat:        "text",
		APIBaseURL:       backendURL,
		PublicAPIBaseURL: backendURL,
		PortalOrigin:     testOrigin,
		SessionSecret:    testSecret,
		LoginRateLimit:   100,
		LoginRateBurst:   100,
	}
	api := apiclient.New(backendURL)
	srv, err := NewServer(cfg, api, clockwork.NewRealClock())
	require.NoError(t, err)
	return srv
}

// mintAccessToken issues a backend-style JWT. Only the exp claim matters to
// the portal; the signature is never verified here.
func mintAccessToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "42",
		"email": "user@example.com",
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte("backend-signing-secret"))
	require.NoError(t, err)
	return signed
}

func testUser() *session.User {
	return &session.User{
		ID:         42,
		Email:      "user@example.com",
		FullName:   "Test User",
		Roles:      []string{"staff"},
		IsActive:   true,
		IsVerified: true,
	}
}

func newTestSession(t *testing.T, user *session.User, tokenExp time.Time) *session.Session {
	t.Helper()
	pair := session.TokenPair{
		AccessToken:  mintAccessToken(t, tokenExp),
		RefreshToken: "refresh-1",
	}
	sess, err := session.New(pair, user, nil)
	require.NoError(t, err)
	return sess
}

func sessionCookie(t *testing.T, srv *Server, sess *session.Session) *http.Cookie {
	t.Helper()
	cookie, err := srv.codec.Encode(sess)
	require.NoError(t, err)
	return cookie
}

// stateCookies writes a value into the gorilla state session and returns the
// cookies a browser would carry back.
func stateCookies(t *testing.T, srv *Server, key, value string) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	state, err := srv.stateStore.Get(req, stateSessionName)
	require.NoError(t, err)
	state.Values[key] = value
	require.NoError(t, state.Save(req, rec))
	return rec.Result().Cookies()
}
