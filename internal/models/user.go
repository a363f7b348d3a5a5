package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the access level granted to a user.
type Role string

const (
	RoleViewer Role = "VIEWER"
	RoleUser   Role = "USER"
	RoleOp     Role = "OP"
	RoleAdmin  Role = "ADMIN"
)

// ErrUnknownRole is returned when a role name is not recognised.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a case-insensitive role name to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleViewer, RoleUser, RoleOp, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"id" db:"user_id"`            // Primary key
	Username     string    `json:"username" db:"username"`     // Unique username
	Role         Role      `json:"role" db:"role"`             // Access level
	PasswordHash string    `json:"-" db:"password_hash"`       // Bcrypt hash
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // Last update timestamp
}

// UserSpec is a configured user in "username:role" form.
type UserSpec struct {
	Username string
	Role     Role
}

// ParseUserSpecs parses a comma separated list of "username:role" entries.
// Blank entries are skipped; duplicated usernames are rejected.
func ParseUserSpecs(s string) ([]UserSpec, error) {
	var specs []UserSpec
	seen := make(map[string]struct{})

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, roleName, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid user entry %q, expected username:role", entry)
		}

		role, err := ParseRole(roleName)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", name, err)
		}

		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("user %q is configured more than once", name)
		}
		seen[name] = struct{}{}

		specs = append(specs, UserSpec{Username: name, Role: role})
	}

	return specs, nil
}
