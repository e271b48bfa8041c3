package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are split so callers can apply different policy:
// an expired token should prompt the client to refresh, a malformed or
// badly-signed one is rejected outright (and worth logging as tampering).
var (
	// ErrTokenExpired is returned when the token signature is valid but exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned for any other verification failure
	// (bad signature, wrong shape, wrong issuer/audience/type).
	ErrTokenMalformed = errors.New("token malformed")
)

// Token type claim values. Issued on every token so an access token can never
// be presented where a refresh token is expected, or the reverse.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims holds the JWT claims for both access and refresh tokens.
// Subject carries the principal's email.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// TokenProvider signs and verifies access and refresh JWTs with an asymmetric
// keypair (RS256 or ES256). Only the private-key holder can mint tokens; any
// holder of the public key can verify them.
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowF       func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with privateKey.
// issuer and audience are stamped on claims and checked on verification.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// AccessTTL returns the configured access-token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access token for the principal identified by email.
func (p *TokenProvider) IssueAccess(email string) (token string, expiresAt time.Time, err error) {
	return p.issue(email, tokenTypeAccess, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh token for the principal identified by email.
func (p *TokenProvider) IssueRefresh(email string) (token string, expiresAt time.Time, err error) {
	return p.issue(email, tokenTypeRefresh, p.refreshTTL)
}

func (p *TokenProvider) issue(email, typ string, ttl time.Duration) (string, time.Time, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.nowF()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   email,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: typ,
	}
	signed, err := p.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrTokenMalformed
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

// VerifyAccess verifies an access token and returns the principal's email.
// Returns ErrTokenExpired or ErrTokenMalformed on failure.
func (p *TokenProvider) VerifyAccess(tokenString string) (string, error) {
	return p.verify(tokenString, tokenTypeAccess)
}

// VerifyRefresh verifies a refresh token and returns the principal's email.
// Returns ErrTokenExpired or ErrTokenMalformed on failure.
func (p *TokenProvider) VerifyRefresh(tokenString string) (string, error) {
	return p.verify(tokenString, tokenTypeRefresh)
}

func (p *TokenProvider) verify(tokenString, typ string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return p.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return p.publicKey, nil
		}
		return nil, ErrTokenMalformed
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrTokenMalformed
	}
	if claims.TokenType != typ {
		return "", ErrTokenMalformed
	}
	if claims.Issuer != p.issuer {
		return "", ErrTokenMalformed
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrTokenMalformed
	}
	if claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
