package authroles

import (
	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	"github.com/zephir/path-explorer/internal/ports"
)

var _ ports.RoleMapper = StaticRoleMapper{}

// Numeric role identifiers issued by the HR backend.
const (
	RoleIDAdmin    = 1
	RoleIDLead     = 2
	RoleIDEmployee = 3
)

// MapRoleIDToName maps a backend role id to a role. Unrecognized ids map to RoleUnknown.
func MapRoleIDToName(id int) domainauth.Role {
	switch id {
	case RoleIDAdmin:
		return domainauth.RoleAdmin
	case RoleIDLead:
		return domainauth.RoleLead
	case RoleIDEmployee:
		return domainauth.RoleEmployee
	default:
		return domainauth.RoleUnknown
	}
}

// StaticRoleMapper is the production ports.RoleMapper. The role set is closed.
type StaticRoleMapper struct{}

func (StaticRoleMapper) Map(roleID int) domainauth.Role {
	return MapRoleIDToName(roleID)
}
