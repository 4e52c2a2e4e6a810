// Package auth implements the session/token identity store used to gate
// every coordinator operation. It is grounded on the teacher's KeyedAuth
// (symmetric pre-shared keys, golang-jwt/jwt/v5 signing and verification,
// a capability bitmask check with a helpful missing-capability message),
// adapted from a gRPC-metadata-carried bearer token to a directly-passed
// token string, since this system has no RPC boundary of its own.
package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go.cachefs.dev/core/fserr"
)

// Capability is a bitmask of what an authenticated caller may do.
type Capability uint32

const (
	CapRead Capability = 1 << iota
	CapWrite
	CapAdmin
)

// Claims is the JWT payload signed at Login and checked at Verify.
type Claims struct {
	jwt.RegisteredClaims
	Administrator bool       `json:"administrator"`
	Capability    Capability `json:"capability"`
}

// Session is a record per authenticated caller: subject, administrator
// flag, issue and expiry timestamps, and the signed token. Returned by
// Login and by a successful Verify.
type Session struct {
	Subject       string
	Administrator bool
	Capability    Capability
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Token         string

	id string // JWT ID, used to revoke this session at Logout.
}

// Store implements login, token verification, and logout using symmetric,
// pre-shared keys. The first key signs new sessions; any key may verify a
// presented token, supporting key rotation.
type Store struct {
	mu      sync.Mutex
	keys    jwt.VerificationKeySet
	revoked map[string]struct{}
}

// NewStore builds a Store from pre-shared keys, base64 encoded and
// separated by whitespace and/or commas.
func NewStore(base64Keys string) (*Store, error) {
	var keys jwt.VerificationKeySet

	for i, key := range strings.Fields(strings.ReplaceAll(base64Keys, ",", " ")) {
		var b, err = base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fserr.Wrapf(err, fserr.Protocol, "auth.NewStore", "decoding key at index %d", i)
		}
		keys.Keys = append(keys.Keys, b)
	}
	if len(keys.Keys) == 0 {
		return nil, fserr.New(fserr.Protocol, "auth.NewStore", "at least one key must be provided")
	}
	return &Store{keys: keys, revoked: make(map[string]struct{})}, nil
}

// Login issues a signed Session valid for ttl.
func (s *Store) Login(subject string, administrator bool, capability Capability, ttl time.Duration) (*Session, error) {
	var now = time.Now()
	var id = uuid.New().String()

	var claims = Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Administrator: administrator,
		Capability:    capability,
	}

	var token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.keys.Keys[0])
	if err != nil {
		return nil, fserr.Wrap(err, fserr.Internal, "auth.Login")
	}

	return &Session{
		Subject: subject, Administrator: administrator, Capability: capability,
		IssuedAt: now, ExpiresAt: now.Add(ttl), Token: token, id: id,
	}, nil
}

// Verify parses and validates token, checks it against the require
// capability bitmask, and returns the Session it encodes.
func (s *Store) Verify(token string, require Capability) (*Session, error) {
	var claims Claims

	var parsed, err = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.keys, nil },
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(5*time.Second),
		jwt.WithValidMethods([]string{"HS256", "HS384"}),
	)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.Permission, "auth.Verify", "verifying token")
	}
	if !parsed.Valid {
		return nil, fserr.New(fserr.Permission, "auth.Verify", "token is not valid")
	}

	s.mu.Lock()
	var _, revoked = s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, fserr.New(fserr.Permission, "auth.Verify", "token has been revoked")
	}

	if err := verifyCapability(claims.Capability, require); err != nil {
		return nil, fserr.Wrap(err, fserr.Permission, "auth.Verify")
	}

	return &Session{
		Subject: claims.Subject, Administrator: claims.Administrator, Capability: claims.Capability,
		IssuedAt: claims.IssuedAt.Time, ExpiresAt: claims.ExpiresAt.Time, Token: token, id: claims.ID,
	}, nil
}

// Logout revokes session's token; a subsequent Verify of the same token
// fails with a permission error.
func (s *Store) Logout(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[session.id] = struct{}{}
}

// CanAccess reports whether session may read or write a resource owned by
// owner: either the session's subject is the owner, or the session is an
// administrator.
func CanAccess(session *Session, owner string) bool {
	return session.Administrator || session.Subject == owner
}

func verifyCapability(actual, require Capability) error {
	if actual&require == require {
		return nil
	}

	for _, c := range []struct {
		cap  Capability
		name string
	}{
		{CapRead, "READ"},
		{CapWrite, "WRITE"},
		{CapAdmin, "ADMIN"},
	} {
		if require&c.cap != 0 && actual&c.cap == 0 {
			return fmt.Errorf("authorization is missing required %s capability", c.name)
		}
	}

	return fmt.Errorf("authorization is missing required capability (have %s, require %s)",
		strconv.FormatUint(uint64(actual), 2), strconv.FormatUint(uint64(require), 2))
}
