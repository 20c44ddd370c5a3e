package access

import (
	"fmt"
	"slices"
	"strings"
)

// Permissions used by the dataset operations.
const (
	PermRead    = "read"
	PermWrite   = "write"
	PermDelete  = "delete"
	PermScale   = "scale"
	PermEncode  = "encode"
	PermSplit   = "split"
	PermProcess = "process"
)

// Built-in role names.
const (
	RoleAdmin         = "admin"
	RoleDataScientist = "data_scientist"
	RoleDataAnalyst   = "data_analyst"
	RoleViewer        = "viewer"
)

// Roles maps a role name to the permissions it grants. It is fixed once a
// Guard has been constructed.
type Roles map[string][]string

// DefaultRoles returns the built-in role table.
func DefaultRoles() Roles {
	return Roles{
		RoleAdmin:         {PermRead, PermWrite, PermDelete, PermScale, PermEncode, PermSplit, PermProcess},
		RoleDataScientist: {PermRead, PermWrite, PermScale, PermEncode, PermSplit, PermProcess},
		RoleDataAnalyst:   {PermRead, PermScale, PermEncode, PermProcess},
		RoleViewer:        {PermRead},
	}
}

// Names returns the role names sorted.
func (r Roles) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks that role and permission names are non-empty and free of
// whitespace.
func (r Roles) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("no roles defined")
	}
	for role, perms := range r {
		if !validName(role) {
			return fmt.Errorf("invalid role name %q", role)
		}
		for _, p := range perms {
			if !validName(p) {
				return fmt.Errorf("role %s: invalid permission name %q", role, p)
			}
		}
	}
	return nil
}

func validName(s string) bool {
	return s != "" && !strings.ContainsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Requirement is what an operation demands of the caller: exactly one
// permission or exactly one role.
type Requirement struct {
	permission string
	role       string
}

// Permission requires the session's role to grant perm.
func Permission(perm string) Requirement {
	return Requirement{permission: perm}
}

// Role requires the session to hold exactly role.
func Role(role string) Requirement {
	return Requirement{role: role}
}

// IsRole reports whether the requirement names a role rather than a permission.
func (r Requirement) IsRole() bool {
	return r.role != ""
}

// String returns "permission:<p>" or "role:<r>".
func (r Requirement) String() string {
	if r.IsRole() {
		return "role:" + r.role
	}
	return "permission:" + r.permission
}
