package purchase

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// ErrNoSession is returned by Verify when the request carries no valid
// session cookie.
var ErrNoSession = errors.New("no valid session")

// SessionCookie carries the signed session token.
const SessionCookie = "cargo_session"

// DefaultSessionTTL is how long a visitor keeps the same transaction log.
const DefaultSessionTTL = 24 * time.Hour

// Sessions issues and verifies the HS256-signed cookie that ties a browser to
// its transaction log. The subject is a random session id; nothing about the
// wallet is stored.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Resolve returns the request's session id, issuing a new cookie when the
// request has none or carries an invalid one.
func (s *Sessions) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := s.verify(c.Value); err == nil {
			return id, nil
		}
	}
	return s.issue(w)
}

// Verify returns the request's session id without issuing a cookie.
func (s *Sessions) Verify(r *http.Request) (string, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", ErrNoSession
	}
	id, err := s.verify(c.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return id, nil
}

func (s *Sessions) issue(w http.ResponseWriter) (string, error) {
	id := uuid.NewString()
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.StandardClaims{
		Subject:   id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

func (s *Sessions) verify(signed string) (string, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.New("session subject is not a session id")
	}
	return claims.Subject, nil
}
