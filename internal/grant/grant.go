// Package grant issues and verifies signed battle grants.
//
// A grant is an EdDSA-signed JWT scoping one commander to one battle.
// Verification is opt-in: with no public key configured the API runs open,
// which is the development default.
package grant

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/ashveldt/wartide/internal/platform/errors"
	"github.com/ashveldt/wartide/internal/platform/id"
)

// verifierEnv holds raw env values before post-parse validation.
type verifierEnv struct {
	Issuer    string `env:"WARTIDE_GRANT_ISSUER"`
	Audience  string `env:"WARTIDE_GRANT_AUDIENCE"`
	PublicKey string `env:"WARTIDE_GRANT_PUBLIC_KEY"`
}

// signerEnv holds raw env values before post-parse validation.
type signerEnv struct {
	Issuer     string        `env:"WARTIDE_GRANT_ISSUER"`
	Audience   string        `env:"WARTIDE_GRANT_AUDIENCE"`
	PrivateKey string        `env:"WARTIDE_GRANT_PRIVATE_KEY"`
	TTL        time.Duration `env:"WARTIDE_GRANT_TTL"         envDefault:"5m"`
}

// Expectation pins the identity a grant must carry.
type Expectation struct {
	BattleID string
}

// Claims captures validated battle grant claims.
type Claims struct {
	Issuer      string
	Audience    []string
	ExpiresAt   time.Time
	NotBefore   time.Time
	IssuedAt    time.Time
	JWTID       string
	BattleID    string
	CommanderID string
}

// battleGrantClaims is the internal claims type used for JWT parsing.
type battleGrantClaims struct {
	jwt.RegisteredClaims
	BattleID    string `json:"battle_id"`
	CommanderID string `json:"commander_id"`
}

// Verifier checks battle grants against a configured trust anchor.
type Verifier struct {
	issuer   string
	audience string
	key      ed25519.PublicKey
	now      func() time.Time
}

// NewVerifier builds a verifier from explicit parts.
func NewVerifier(issuer, audience string, key ed25519.PublicKey, now func() time.Time) (*Verifier, error) {
	issuer = strings.TrimSpace(issuer)
	audience = strings.TrimSpace(audience)
	if issuer == "" {
		return nil, fmt.Errorf("grant issuer is required")
	}
	if audience == "" {
		return nil, fmt.Errorf("grant audience is required")
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{issuer: issuer, audience: audience, key: key, now: now}, nil
}

// LoadVerifierFromEnv reads grant verification configuration. A nil verifier
// with a nil error means no public key is configured and verification is
// disabled.
func LoadVerifierFromEnv(now func() time.Time) (*Verifier, error) {
	var raw verifierEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse grant env: %w", err)
	}
	publicKey := strings.TrimSpace(raw.PublicKey)
	if publicKey == "" {
		return nil, nil
	}

	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return nil, fmt.Errorf("decode grant public key: %w", err)
	}
	return NewVerifier(raw.Issuer, raw.Audience, ed25519.PublicKey(keyBytes), now)
}

// Verify checks a grant token's signature and claims against the expected
// battle.
func (v *Verifier) Verify(token string, expected Expectation) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "battle grant is required")
	}
	if v == nil || v.issuer == "" || v.audience == "" || len(v.key) != ed25519.PublicKeySize {
		return Claims{}, errors.New("grant verifier is not configured")
	}
	now := v.now
	if now == nil {
		now = time.Now
	}

	var parsed battleGrantClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != v.issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"battle grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, v.audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"battle grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}

	if parsed.ID == "" {
		return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "battle grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "battle grant exp is required")
	}

	at := now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(at) {
		return Claims{}, apperrors.New(apperrors.CodeGrantExpired, "battle grant is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if at.Before(nbf) {
			return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "battle grant not active yet")
		}
	}

	if strings.TrimSpace(parsed.BattleID) == "" || parsed.BattleID != expected.BattleID {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"battle grant battle mismatch",
			map[string]string{"Field": "battle_id"},
		)
	}
	if strings.TrimSpace(parsed.CommanderID) == "" {
		return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "battle grant commander is required")
	}

	claims := Claims{
		Issuer:      parsed.Issuer,
		Audience:    []string(parsed.Audience),
		ExpiresAt:   exp,
		JWTID:       parsed.ID,
		BattleID:    parsed.BattleID,
		CommanderID: parsed.CommanderID,
	}
	if parsed.NotBefore != nil {
		claims.NotBefore = parsed.NotBefore.Time.UTC()
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// Signer mints battle grants.
type Signer struct {
	issuer   string
	audience string
	key      ed25519.PrivateKey
	ttl      time.Duration
	now      func() time.Time
	newID    func() (string, error)
}

// NewSigner builds a signer from explicit parts.
func NewSigner(issuer, audience string, key ed25519.PrivateKey, ttl time.Duration, now func() time.Time) (*Signer, error) {
	issuer = strings.TrimSpace(issuer)
	audience = strings.TrimSpace(audience)
	if issuer == "" {
		return nil, fmt.Errorf("grant issuer is required")
	}
	if audience == "" {
		return nil, fmt.Errorf("grant audience is required")
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("grant private key must be %d bytes", ed25519.PrivateKeySize)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("grant ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{
		issuer:   issuer,
		audience: audience,
		key:      key,
		ttl:      ttl,
		now:      now,
		newID:    id.NewID,
	}, nil
}

// LoadSignerFromEnv reads grant signing configuration. A nil signer with a
// nil error means no private key is configured.
func LoadSignerFromEnv(now func() time.Time) (*Signer, error) {
	var raw signerEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse grant env: %w", err)
	}
	privateKey := strings.TrimSpace(raw.PrivateKey)
	if privateKey == "" {
		return nil, nil
	}

	keyBytes, err := decodeBase64(privateKey)
	if err != nil {
		return nil, fmt.Errorf("decode grant private key: %w", err)
	}
	return NewSigner(raw.Issuer, raw.Audience, ed25519.PrivateKey(keyBytes), raw.TTL, now)
}

// Issue mints a grant scoping commanderID to battleID.
func (s *Signer) Issue(battleID, commanderID string) (string, error) {
	if s == nil {
		return "", errors.New("grant signer is not configured")
	}
	battleID = strings.TrimSpace(battleID)
	commanderID = strings.TrimSpace(commanderID)
	if battleID == "" {
		return "", fmt.Errorf("battle id is required")
	}
	if commanderID == "" {
		return "", fmt.Errorf("commander id is required")
	}

	newID := s.newID
	if newID == nil {
		newID = id.NewID
	}
	jwtID, err := newID()
	if err != nil {
		return "", fmt.Errorf("generate grant id: %w", err)
	}

	at := s.now().UTC()
	claims := battleGrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(at.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(at),
			ID:        jwtID,
		},
		BattleID:    battleID,
		CommanderID: commanderID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign battle grant: %w", err)
	}
	return token, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeGrantInvalid, "battle grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeGrantInvalid, "battle grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeGrantInvalid, "battle grant is invalid")
}

// audienceContains reports whether the audience list contains the given
// value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
