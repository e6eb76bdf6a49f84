// Package jwttoken issues and verifies signer tokens: short-lived JWTs signed
// with EdDSA by the ed25519 key whose public half is the token subject.
package jwttoken

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
)

var (
	ErrInvalidToken = dErrors.Define(dErrors.CodeUnauthorized, "invalid_token", "invalid token")
	ErrTokenExpired = dErrors.Define(dErrors.CodeUnauthorized, "token_expired", "token has expired")
)

type SignerClaims struct {
	jwt.RegisteredClaims
}

type JWTService struct {
	audience string
	maxAge   time.Duration
	now      func() time.Time
}

// NewJWTService verifies tokens for audience. Tokens issued more than maxAge
// ago are treated as expired whatever their exp claim says.
func NewJWTService(audience string, maxAge time.Duration) *JWTService {
	return &JWTService{audience: audience, maxAge: maxAge, now: time.Now}
}

// GenerateSignerToken signs a token asserting the holder of key.
func (s *JWTService) GenerateSignerToken(key ed25519.PrivateKey, expiresIn time.Duration) (string, error) {
	signer, err := domain.PubkeyFromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, SignerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   signer.String(),
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	})
	return token.SignedString(key)
}

// ValidateToken returns the signer a token proves. The verification key is
// the subject itself, so a valid signature means the caller holds its
// private key.
func (s *JWTService) ValidateToken(tokenString string) (domain.Pubkey, error) {
	claims := &SignerClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		sub, err := token.Claims.GetSubject()
		if err != nil {
			return nil, err
		}
		signer, err := domain.ParsePubkey(sub)
		if err != nil {
			return nil, jwt.ErrTokenUnverifiable
		}
		return ed25519.PublicKey(signer.Bytes()), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Pubkey{}, ErrTokenExpired
		}
		return domain.Pubkey{}, ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid || claims.IssuedAt == nil {
		return domain.Pubkey{}, ErrInvalidToken
	}
	if s.maxAge > 0 && s.now().Sub(claims.IssuedAt.Time) > s.maxAge {
		return domain.Pubkey{}, ErrTokenExpired
	}
	return domain.ParsePubkey(claims.Subject)
}
