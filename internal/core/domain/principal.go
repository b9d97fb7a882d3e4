package domain

// Role is a permission level a principal holds within its tenants.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAccountant Role = "ACCOUNTANT"
	RoleViewer     Role = "VIEWER"
)

// Access is the kind of access an operation needs.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
)

// Principal is the authenticated caller as established by the transport layer.
type Principal struct {
	UserID  string
	Tenants []string
	Roles   []Role
}

// HasTenant reports whether the principal may act on tenantID.
func (p Principal) HasTenant(tenantID string) bool {
	for _, t := range p.Tenants {
		if t == tenantID {
			return true
		}
	}
	return false
}

// Allows reports whether the principal's roles grant the given access.
func (p Principal) Allows(access Access) bool {
	for _, r := range p.Roles {
		switch r {
		case RoleAdmin, RoleAccountant:
			return true
		case RoleViewer:
			if access == AccessRead {
				return true
			}
		}
	}
	return false
}
