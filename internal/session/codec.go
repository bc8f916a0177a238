package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// CookieName is the portal's session cookie.
const CookieName = "portal_session"

const cookieMaxAgeDays = 7

// cookieClaims wraps the session payload in a signed JWT. The signature is
// the portal's own (HS256 over SessionSecret); it protects the cookie against
// tampering and is unrelated to the backend's token signatures.
type cookieClaims struct {
	Session *Session `json:"session"`
	jwt.RegisteredClaims
}

// Codec signs sessions into cookies and reads them back.
type Codec struct {
	secret []byte
	secure bool
	clock  clockwork.Clock
}

func NewCodec(secret string, secure bool, clock clockwork.Clock) *Codec {
	return &Codec{secret: []byte(secret), secure: secure, clock: clock}
}

// Encode signs the session into a cookie ready to be set on the response.
func (c *Codec) Encode(s *Session) (*http.Cookie, error) {
	now := c.clock.Now()
	claims := cookieClaims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cookieMaxAgeDays * 24 * time.Hour)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session cookie: %w", err)
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   86400 * cookieMaxAgeDays,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode reads and verifies the session out of a request's cookie.
// Returns ErrInvalidCookie for missing, tampered or expired cookies.
func (c *Codec) Decode(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrInvalidCookie
	}

	var claims cookieClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.clock.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidCookie
	}
	if !token.Valid || claims.Session == nil {
		return nil, ErrInvalidCookie
	}

	return claims.Session, nil
}

// Drop returns an expired cookie that clears the session client-side.
func (c *Codec) Drop() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
