package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = time.Hour

// sessionClaims is the payload of a bearer token: the user id plus the
// registered claims. The outer ID shadows RegisteredClaims.ID (jti), which is
// set through the embedded literal.
type sessionClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID that expires after the issuer's TTL.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := sessionClaims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens issued within the same second distinct.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the user id carried by raw.
func (i *TokenIssuer) Parse(raw string) (string, error) {
	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !tkn.Valid || claims.ID == "" {
		return "", errors.New("parse token: missing subject")
	}
	return claims.ID, nil
}
