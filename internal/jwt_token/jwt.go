package jwttoken

import (
	"errors"
	"fmt"
	"time"

	dErrors "onecore/pkg/domain-errors"
	strs "onecore/pkg/platform/strings"
	"onecore/pkg/requestcontext"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims mirrors the access tokens issued by the identity provider
// fronting the SPAs.
type AccessTokenClaims struct {
	PreferredUsername string      `json:"preferred_username,omitempty"`
	Email             string      `json:"email,omitempty"`
	Roles             []string    `json:"roles,omitempty"`
	RealmAccess       realmAccess `json:"realm_access,omitempty"`
	jwt.RegisteredClaims
}

type realmAccess struct {
	Roles []string `json:"roles,omitempty"`
}

// Validator checks HS256 access tokens and turns them into principals.
type Validator struct {
	signingKey []byte
	issuer     string
	audience   string
	leeway     time.Duration
}

// NewValidator builds a Validator; empty issuer or audience disables that check.
func NewValidator(signingKey, issuer, audience string) *Validator {
	return &Validator{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		leeway:     30 * time.Second,
	}
}

// ValidateToken verifies signature, expiry, issuer and audience.
func (v *Validator) ValidateToken(tokenString string) (*requestcontext.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := new(AccessTokenClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return &requestcontext.Principal{
		Subject:  claims.Subject,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
		Roles:    mergeRoles(claims.Roles, claims.RealmAccess.Roles),
	}, nil
}

func mergeRoles(a, b []string) []string {
	return strs.DedupeAndTrim(append(append([]string{}, a...), b...))
}

// Issuer mints tokens the Validator accepts. Used by cmd/tokengen and tests.
type Issuer struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewIssuer(signingKey, issuer, audience string) *Issuer {
	return &Issuer{signingKey: []byte(signingKey), issuer: issuer, audience: audience}
}

// Issue signs a token for p valid for ttl from now.
func (i *Issuer) Issue(p requestcontext.Principal, now time.Time, ttl time.Duration) (string, error) {
	if p.Subject == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "subject is required")
	}
	claims := AccessTokenClaims{
		PreferredUsername: p.Username,
		Email:             p.Email,
		Roles:             p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
