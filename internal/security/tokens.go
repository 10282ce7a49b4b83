package security

import (
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSigningUnavailable is returned by IssueAccess on a verify-only provider.
	ErrSigningUnavailable = errors.New("token signing key not configured")
)

// AccessClaims holds JWT claims for the access token. Subject is the user id.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	Email     string `json:"email,omitempty"`
}

// TokenProvider validates (and optionally issues) JWT access tokens.
// Asymmetric providers use RS256 or ES256 depending on the key type; shared-secret providers use HS256.
type TokenProvider struct {
	signingKey any // crypto.Signer, []byte, or nil when verify-only
	verifyKey  any // crypto.PublicKey or []byte
	method     jwt.SigningMethod
	issuer     string
	audience   string
	accessTTL  time.Duration
}

// NewTokenProvider returns a TokenProvider for an RSA or ECDSA key pair.
// privateKey may be nil for a verify-only provider.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL time.Duration) (*TokenProvider, error) {
	if publicKey == nil && privateKey != nil {
		publicKey = privateKey.Public()
	}
	method := signingMethod(publicKey)
	if method == nil {
		return nil, ErrInvalidKey
	}
	if privateKey != nil && signingMethod(privateKey.Public()) != method {
		return nil, ErrInvalidKey
	}
	p := &TokenProvider{
		verifyKey: publicKey,
		method:    method,
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
	if privateKey != nil {
		p.signingKey = privateKey
	}
	return p, nil
}

// NewHMACTokenProvider returns a TokenProvider that signs and verifies with a shared HS256 secret.
func NewHMACTokenProvider(secret []byte, issuer, audience string, accessTTL time.Duration) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidKey
	}
	return &TokenProvider{
		signingKey: secret,
		verifyKey:  secret,
		method:     jwt.SigningMethodHS256,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
	}, nil
}

// CanIssue reports whether the provider holds a signing key.
func (p *TokenProvider) CanIssue() bool {
	return p.signingKey != nil
}

// Alg returns the JWT alg the provider signs and accepts.
func (p *TokenProvider) Alg() string {
	return p.method.Alg()
}

// IssueAccess issues an access JWT for the given session and user.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(sessionID, userID, email string) (token string, expiresAt time.Time, err error) {
	if !p.CanIssue() {
		return "", time.Time{}, ErrSigningUnavailable
	}
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
		Email:     email,
	}
	token, err = jwt.NewWithClaims(p.method, claims).SignedString(p.signingKey)
	return token, expiresAt, err
}

// ValidateAccess parses and validates the access token (alg, signature, exp, iss, aud).
// Returns sessionID and userID, or ErrInvalidToken.
func (p *TokenProvider) ValidateAccess(tokenString string) (sessionID, userID string, err error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return p.verifyKey, nil },
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.SessionID, claims.Subject, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
