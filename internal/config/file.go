package config

import (
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/policy"
)

// PrincipalEntry maps an API token to a principal.
type PrincipalEntry struct {
	// Token is the bearer token.
	Token string `yaml:"token"`
	// ID identifies the principal in logs and the audit database.
	ID string `yaml:"id"`
	// Role is the principal's role.
	Role string `yaml:"role"`
}

// File represents the structure of the .easysvg configuration file.
// Pointer fields distinguish "unset" from the zero value.
type File struct {
	Enabled         *bool            `yaml:"enabled,omitempty"`
	UploadRole      string           `yaml:"uploadRole,omitempty"`
	MaxUploadKiB    int              `yaml:"maxUploadKiB,omitempty"`
	Concurrency     int              `yaml:"concurrency,omitempty"`
	SanitizeTimeout string           `yaml:"sanitizeTimeout,omitempty"`
	Minify          *bool            `yaml:"minify,omitempty"`
	StorageDir      string           `yaml:"storageDir,omitempty"`
	ListenAddr      string           `yaml:"listenAddr,omitempty"`
	DBDir           string           `yaml:"dbDir,omitempty"`
	Policy          *policy.Spec     `yaml:"policy,omitempty"`
	Principals      []PrincipalEntry `yaml:"principals,omitempty"`
}

// Directory builds the token directory for the upload API.
func (f *File) Directory() (*host.StaticDirectory, error) {
	tokens := make(map[string]host.Principal)
	if f == nil {
		return host.NewStaticDirectory(tokens), nil
	}
	for _, p := range f.Principals {
		if p.Token == "" || p.ID == "" {
			return nil, ErrInvalidPrincipal
		}
		role, err := host.ParseRole(p.Role)
		if err != nil {
			return nil, err
		}
		if _, dup := tokens[p.Token]; dup {
			return nil, ErrDuplicateToken
		}
		tokens[p.Token] = host.Principal{ID: p.ID, Role: role}
	}
	return host.NewStaticDirectory(tokens), nil
}
