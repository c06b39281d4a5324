package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims the app reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 access tokens issued by the identity provider.
type Verifier struct {
	secret []byte
	cfg    Config
	now    func() time.Time
}

// NewVerifier fails when no secret is configured.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{secret: []byte(cfg.Secret), cfg: cfg, now: time.Now}, nil
}

// Verify parses token and returns the user in its subject claim.
func (v *Verifier) Verify(token string) (User, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.cfg.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return User{}, errors.Join(ErrUnauthorized, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return User{}, errors.Join(ErrUnauthorized, errors.New("token has no subject"))
	}

	return User{ID: claims.Subject, Email: claims.Email}, nil
}

// Issue signs a token for u valid for ttl. Used by the CLI for local
// development and by tests.
func (v *Verifier) Issue(u User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    v.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.cfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
