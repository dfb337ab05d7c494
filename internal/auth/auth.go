// Package auth checks the bearer tokens sent by the admin dashboard.
//
// Without a signing secret tokens are opaque strings and only their shape is
// checked: any token is a user, an "admin_" token is an admin. With a secret,
// tokens are HS256 JWTs carrying an admin claim.
package auth

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// AdminPrefix marks unsigned admin tokens.
const AdminPrefix = "admin_"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
)

// Identity is what a verified token says about its holder.
type Identity struct {
	Subject string
	Admin   bool
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Issuer mints tokens for the admin-token endpoint.
type Issuer interface {
	Issue(subject string, admin bool) (string, error)
}

// NewAdminToken returns an unsigned admin_<millis>_<random> token.
func NewAdminToken(now time.Time) string {
	return fmt.Sprintf("%s%d_%s", AdminPrefix, now.UnixMilli(), strconv.FormatUint(rand.Uint64(), 36))
}

// PrefixVerifier accepts any non-empty token.
type PrefixVerifier struct {
	nowFunc func() time.Time
}

func NewPrefixVerifier() *PrefixVerifier {
	return &PrefixVerifier{nowFunc: time.Now}
}

func (p *PrefixVerifier) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	return Identity{Subject: token, Admin: strings.HasPrefix(token, AdminPrefix)}, nil
}

// Issue returns an admin_ token for admins and a random opaque one otherwise.
func (p *PrefixVerifier) Issue(subject string, admin bool) (string, error) {
	if admin {
		return NewAdminToken(p.nowFunc()), nil
	}
	return fmt.Sprintf("user_%d_%s", p.nowFunc().UnixMilli(), strconv.FormatUint(rand.Uint64(), 36)), nil
}
