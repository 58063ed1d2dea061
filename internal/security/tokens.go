package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or its signature does not verify.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenType tags a token as access or refresh. Carried in the typ claim.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims holds the decoded claims of an access or refresh token.
// Claims are never mutated after issuance; Issue always produces a fresh set.
type TokenClaims struct {
	UserID    string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
	JTI       string
}

type signedClaims struct {
	jwt.RegisteredClaims
	Typ string `json:"typ"`
}

// TokenCodec issues and decodes JWT access and refresh tokens signed with a
// process-wide symmetric key (HS256). The key is loaded once at startup and
// must never be logged.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenCodec returns a TokenCodec that signs with the given HS256 secret.
// issuer and audience are set on claims and validated on decode.
func NewTokenCodec(secret []byte, issuer, audience string) *TokenCodec {
	return &TokenCodec{secret: secret, issuer: issuer, audience: audience}
}

// Issue signs a token for userID with the given type and TTL. The jti is
// generated from a cryptographically secure random source on every call, so
// two tokens issued in the same instant for the same subject never collide.
// Returns the compact token string, its jti, and expiration time.
func (c *TokenCodec) Issue(userID string, typ TokenType, ttl time.Duration) (token, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(ttl)
	claims := signedClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Typ: string(typ),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(c.secret)
	return token, jti, expiresAt, err
}

// Decode parses and validates the token (signature, exp, iss, aud) and returns
// its claims. Returns ErrInvalidToken on signature mismatch, malformed
// structure, expiry, or a non-HMAC signing method.
func (c *TokenCodec) Decode(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &signedClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*signedClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != c.issuer {
		return nil, ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == c.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return nil, ErrInvalidToken
	}
	typ := TokenType(claims.Typ)
	if typ != TokenTypeAccess && typ != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	out := &TokenClaims{
		UserID: claims.Subject,
		Type:   typ,
		JTI:    claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
