package security

import (
	"crypto"
	"fmt"
	"time"
)

// KeySettings selects how access tokens are signed and verified.
type KeySettings struct {
	// Secret enables HS256 and takes precedence over the key pair.
	Secret string
	// PrivateKey and PublicKey are inline PEM or file paths. Either may be empty; one is required without Secret.
	PrivateKey string
	PublicKey  string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
}

// LoadTokenProvider builds a TokenProvider from s. A provider built from a public key alone is verify-only.
func LoadTokenProvider(s KeySettings) (*TokenProvider, error) {
	if s.Secret != "" {
		return NewHMACTokenProvider([]byte(s.Secret), s.Issuer, s.Audience, s.AccessTTL)
	}
	var (
		priv crypto.Signer
		pub  crypto.PublicKey
		err  error
	)
	if s.PrivateKey != "" {
		if priv, err = ParsePrivateKey(s.PrivateKey); err != nil {
			return nil, fmt.Errorf("private key: %w", err)
		}
	}
	if s.PublicKey != "" {
		if pub, err = ParsePublicKey(s.PublicKey); err != nil {
			return nil, fmt.Errorf("public key: %w", err)
		}
	}
	if priv == nil && pub == nil {
		return nil, fmt.Errorf("no signing secret or key configured: %w", ErrInvalidKey)
	}
	return NewTokenProvider(priv, pub, s.Issuer, s.Audience, s.AccessTTL)
}
