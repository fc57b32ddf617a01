package host

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
)

// Role is a principal's role, ordered from most to least privileged.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleEditor      Role = "editor"
	RoleAuthor      Role = "author"
	RoleContributor Role = "contributor"
	RoleSubscriber  Role = "subscriber"
)

var roleRank = map[Role]int{
	RoleAdmin:       5,
	RoleEditor:      4,
	RoleAuthor:      3,
	RoleContributor: 2,
	RoleSubscriber:  1,
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// AtLeast reports whether r is as privileged as min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] > 0 && roleRank[r] >= roleRank[min]
}

// Principal is the caller submitting an upload.
type Principal struct {
	ID   string
	Role Role
}

// Anonymous is the principal of unauthenticated callers.
var Anonymous = Principal{}

// Authorizer decides whether a principal may submit SVG files.
type Authorizer interface {
	CanUploadSVG(ctx context.Context, p Principal) bool
}

// RoleAuthorizer allows principals holding at least a required role.
type RoleAuthorizer struct {
	Required Role
}

var _ Authorizer = RoleAuthorizer{}

// NewRoleAuthorizer creates an authorizer. Only admin and editor are
// accepted as the required role.
func NewRoleAuthorizer(required Role) (RoleAuthorizer, error) {
	switch required {
	case RoleAdmin, RoleEditor:
		return RoleAuthorizer{Required: required}, nil
	default:
		return RoleAuthorizer{}, fmt.Errorf("%w: %q", ErrInvalidUploadRole, required)
	}
}

// CanUploadSVG implements Authorizer.
func (a RoleAuthorizer) CanUploadSVG(ctx context.Context, p Principal) bool {
	if ctx.Err() != nil || p.ID == "" {
		return false
	}
	required := a.Required
	if required == "" {
		required = RoleAdmin
	}
	return p.Role.AtLeast(required)
}

// Directory resolves bearer tokens to principals.
type Directory interface {
	Lookup(token string) (Principal, bool)
}

// StaticDirectory is a fixed token table.
type StaticDirectory struct {
	entries []directoryEntry
}

type directoryEntry struct {
	token     []byte
	principal Principal
}

var _ Directory = (*StaticDirectory)(nil)

// NewStaticDirectory builds a directory from token → principal pairs.
func NewStaticDirectory(tokens map[string]Principal) *StaticDirectory {
	d := &StaticDirectory{entries: make([]directoryEntry, 0, len(tokens))}
	for token, p := range tokens {
		if token == "" {
			continue
		}
		d.entries = append(d.entries, directoryEntry{token: []byte(token), principal: p})
	}
	return d
}

// Lookup compares token against every entry in constant time.
func (d *StaticDirectory) Lookup(token string) (Principal, bool) {
	if d == nil || token == "" {
		return Anonymous, false
	}
	var (
		found Principal
		ok    bool
	)
	b := []byte(token)
	for _, e := range d.entries {
		if subtle.ConstantTimeCompare(e.token, b) == 1 {
			found, ok = e.principal, true
		}
	}
	return found, ok
}

// Len returns the number of tokens.
func (d *StaticDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
