package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	adminSubject = "admin"
	tokenTTL     = 12 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and checks back-office session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: tokenTTL, now: time.Now}
}

// GenerateToken creates a signed admin token.
func (i *Issuer) GenerateToken() (string, time.Time, error) {
	// 1. Build the claims. There is a single admin account, so the
	// subject is fixed.
	now := i.now()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	// 2. Sign it with HS256.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, exp, nil
}

// ValidateToken parses tokenString and returns its subject.
func (i *Issuer) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Reject anything not signed with HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject != adminSubject {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
