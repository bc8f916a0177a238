// Package errclass classifies backend and OAuth errors into user-facing
// categories with a severity and a suggested recovery action.
//
// Classification is deliberately shallow: it inspects the error's shape
// (an HTTP status, a net error) and substrings of its message. The backend
// owns the wording, so substring matches track its current phrasing.
package errclass

import (
	"context"
	"errors"
	"net"
	"strings"
)

type Category string

const (
	NetworkError            Category = "NETWORK_ERROR"
	Unauthorized            Category = "UNAUTHORIZED"
	Forbidden               Category = "FORBIDDEN"
	ConnectionNotFound      Category = "CONNECTION_NOT_FOUND"
	Timeout                 Category = "TIMEOUT"
	RateLimited             Category = "RATE_LIMITED"
	ServerError             Category = "SERVER_ERROR"
	PopupBlocked            Category = "POPUP_BLOCKED"
	UserDenied              Category = "USER_DENIED"
	InvalidState            Category = "INVALID_STATE"
	OAuthTimeout            Category = "OAUTH_TIMEOUT"
	ConnectionExpired       Category = "CONNECTION_EXPIRED"
	ConnectionRevoked       Category = "CONNECTION_REVOKED"
	ConnectionAlreadyExists Category = "CONNECTION_ALREADY_EXISTS"
	Unknown                 Category = "UNKNOWN_ERROR"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Recovery is the action suggested to the user alongside the message.
type Recovery string

const (
	RecoverRetry          Recovery = "retry"
	RecoverRefresh        Recovery = "refresh"
	RecoverReauthenticate Recovery = "reauthenticate"
	RecoverReauthorize    Recovery = "reauthorize"
	RecoverAllowPopups    Recovery = "allow-popups"
	RecoverCheckNetwork   Recovery = "check-network"
	RecoverContactSupport Recovery = "contact-support"
)

// Classified wraps an error with its category, severity, user-facing message
// and suggested recovery.
type Classified struct {
	Category Category
	Severity Severity
	Message  string
	Recovery Recovery
	CanRetry bool
	Err      error
}

func (c *Classified) Error() string {
	if c.Err != nil {
		return string(c.Category) + ": " + c.Err.Error()
	}
	return string(c.Category)
}

func (c *Classified) Unwrap() error { return c.Err }

// statusError is the shape of backend API errors: an HTTP status plus the
// backend's detail string. Matched structurally so this package does not
// depend on the API client.
type statusError interface {
	error
	HTTPStatus() int
}

// Classify maps an arbitrary error to a Classified. A nil error returns nil.
func Classify(err error) *Classified {
	if err == nil {
		return nil
	}

	var already *Classified
	if errors.As(err, &already) {
		return already
	}

	if isNetworkError(err) {
		return build(NetworkError, err)
	}

	var se statusError
	if errors.As(err, &se) {
		return classifyStatus(se.HTTPStatus(), err)
	}

	if cat, ok := matchMessage(err.Error()); ok {
		return build(cat, err)
	}

	return build(Unknown, err)
}

func classifyStatus(status int, err error) *Classified {
	msg := strings.ToLower(err.Error())

	switch {
	case status == 401:
		return build(Unauthorized, err)
	case status == 403:
		return build(Forbidden, err)
	case status == 404:
		return build(ConnectionNotFound, err)
	case status == 408:
		return build(Timeout, err)
	case status == 409:
		return build(ConnectionAlreadyExists, err)
	case status == 429:
		return build(RateLimited, err)
	case status >= 500:
		return build(ServerError, err)
	}

	// 4xx with a connection-state detail from the backend
	if cat, ok := matchMessage(msg); ok {
		return build(cat, err)
	}
	return build(Unknown, err)
}

// matchMessage applies the substring heuristics for OAuth and
// connection-state errors.
func matchMessage(msg string) (Category, bool) {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "popup") && strings.Contains(msg, "block"):
		return PopupBlocked, true
	case strings.Contains(msg, "access_denied") || strings.Contains(msg, "denied by user"):
		return UserDenied, true
	case strings.Contains(msg, "invalid state") || strings.Contains(msg, "state mismatch"):
		return InvalidState, true
	case strings.Contains(msg, "oauth") && strings.Contains(msg, "timeout"):
		return OAuthTimeout, true
	case strings.Contains(msg, "already exists") || strings.Contains(msg, "already connected"):
		return ConnectionAlreadyExists, true
	case strings.Contains(msg, "revoked"):
		return ConnectionRevoked, true
	case strings.Contains(msg, "expired"):
		return ConnectionExpired, true
	case strings.Contains(msg, "connection not found"):
		return ConnectionNotFound, true
	}
	return "", false
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// profile describes the fixed severity/message/recovery per category.
type profile struct {
	severity Severity
	message  string
	recovery Recovery
	canRetry bool
}

var profiles = map[Category]profile{
	NetworkError:            {SeverityMedium, "A network problem interrupted the request.", RecoverCheckNetwork, true},
	Unauthorized:            {SeverityHigh, "Your session is no longer valid. Please sign in again.", RecoverReauthenticate, false},
	Forbidden:               {SeverityHigh, "You do not have permission to do that.", RecoverContactSupport, false},
	ConnectionNotFound:      {SeverityMedium, "The connected account could not be found.", RecoverReauthorize, false},
	Timeout:                 {SeverityLow, "The request timed out.", RecoverRetry, true},
	RateLimited:             {SeverityLow, "Too many requests. Please wait a moment.", RecoverRetry, true},
	ServerError:             {SeverityHigh, "The server had a problem handling the request.", RecoverRetry, true},
	PopupBlocked:            {SeverityMedium, "The sign-in popup was blocked by your browser.", RecoverAllowPopups, false},
	UserDenied:              {SeverityLow, "Authorization was cancelled.", RecoverReauthorize, false},
	InvalidState:            {SeverityHigh, "The authorization could not be verified. Please try again.", RecoverReauthorize, false},
	OAuthTimeout:            {SeverityMedium, "The authorization timed out.", RecoverRetry, true},
	ConnectionExpired:       {SeverityMedium, "The account connection has expired.", RecoverReauthorize, false},
	ConnectionRevoked:       {SeverityCritical, "Access to the connected account was revoked.", RecoverReauthorize, false},
	ConnectionAlreadyExists: {SeverityLow, "That account is already connected.", RecoverRefresh, false},
	Unknown:                 {SeverityMedium, "Something went wrong.", RecoverContactSupport, false},
}

func build(cat Category, err error) *Classified {
	p := profiles[cat]
	return &Classified{
		Category: cat,
		Severity: p.severity,
		Message:  p.message,
		Recovery: p.recovery,
		CanRetry: p.canRetry,
		Err:      err,
	}
}
