package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/prismanis/prismanis/internal/typeid"
)

var ErrInvalidToken = errors.New("invalid token")

const sessionTTL = 24 * time.Hour

type Service struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// Session is an anonymous identity. Scenes are owned by the subject.
type Session struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StartSession issues a token for a fresh anonymous subject.
func (s *Service) StartSession() (*Session, error) {
	subject := uuid.NewString()
	sessionID := typeid.NewSessionID()
	expires := s.now().Add(sessionTTL)

	token, err := s.issueToken(subject, sessionID, expires)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, SessionID: sessionID, Subject: subject, ExpiresAt: expires}, nil
}

// ValidateToken returns the subject of a valid token.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if _, err := uuid.Parse(subject); err != nil {
		return "", fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	return subject, nil
}

func (s *Service) issueToken(subject, sessionID string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"jti": sessionID,
		"iat": s.now().Unix(),
		"exp": expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
