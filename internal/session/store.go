package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

// Store holds the signed-in user's access token. The client never
// verifies signatures; it only refuses to send a token it can tell has
// expired, so the user is asked to sign in again instead of seeing an
// opaque backend rejection.
type Store struct {
	mu     sync.RWMutex
	token  string
	leeway time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewStore(token string, leeway time.Duration) *Store {
	return &Store{
		token:  strings.TrimSpace(token),
		leeway: leeway,
		now:    time.Now,
		parser: jwt.NewParser(),
	}
}

func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

func (s *Store) Clear() {
	s.Set("")
}

// AccessToken implements backend.TokenSource.
func (s *Store) AccessToken(_ context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "please sign in to continue")
	}
	expiry, ok := s.expiry(token)
	if ok && !s.now().Add(s.leeway).Before(expiry) {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired, please sign in again").
			WithDetails(map[string]string{"expiredAt": expiry.UTC().Format(time.RFC3339)})
	}
	return token, nil
}

// Subject returns the token's subject claim, if it carries one.
func (s *Store) Subject() string {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	claims := jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(token, &claims); err != nil {
		return ""
	}
	return claims.Subject
}

// expiry reads exp without checking the signature. Opaque tokens report
// no expiry and are passed through for the backend to judge.
func (s *Store) expiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
