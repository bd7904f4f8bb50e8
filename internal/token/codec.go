package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// clockSkewLeeway matches the tolerance the verification parser grants on
// exp/iat comparisons.
const clockSkewLeeway = 30 * time.Second

// AccessClaims is the fixed claim set carried by an access token. It is never
// persisted; the version stamp is checked against the account's current
// counter on every request.
type AccessClaims struct {
	AccountID int64
	Version   int
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

type wireClaims struct {
	Ver *int `json:"ver,omitempty"`
	jwt.RegisteredClaims
}

// CodecConfig is the immutable configuration a Codec is built from.
type CodecConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Codec signs and verifies access tokens with a server-held symmetric key.
type Codec struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(cfg CodecConfig) *Codec {
	return &Codec{
		key:    cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Issue builds and signs an access token for the account at the given version
// counter. It has no side effects.
func (c *Codec) Issue(accountID int64, version int) (string, error) {
	now := c.now()
	claims := wireClaims{
		Ver: &version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Verify checks signature, issuer, and expiry (with clock-skew leeway) and
// returns the decoded claims. Any violation collapses into ErrInvalidToken so
// callers cannot leak the sub-reason.
func (c *Codec) Verify(raw string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &wireClaims{},
		func(t *jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*wireClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	// A missing or negative version never means "version 0".
	if claims.Ver == nil || *claims.Ver < 0 {
		return nil, ErrInvalidToken
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return nil, ErrInvalidToken
	}

	out := &AccessClaims{
		AccountID: accountID,
		Version:   *claims.Ver,
		Issuer:    claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
