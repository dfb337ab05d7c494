package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued for dashboard sessions.
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// JWTVerifier signs and validates HS256 tokens.
type JWTVerifier struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewJWTVerifier(secret string, ttl time.Duration) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), ttl: ttl, nowFunc: time.Now}
}

func (j *JWTVerifier) Issue(subject string, admin bool) (string, error) {
	now := j.nowFunc()
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTVerifier) Verify(token string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.nowFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return Identity{Subject: claims.Subject, Admin: claims.Admin}, nil
}
