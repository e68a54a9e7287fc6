package domain

// Role is the principal's role
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Role quotas enforced at registration
const (
	MaxAdmins   = 1
	MaxManagers = 2
)

// Permission is a capability tag granted through a role
type Permission string

const (
	PermCartUse       Permission = "cart:use"
	PermCatalogManage Permission = "catalog:manage"
	PermUsersManage   Permission = "users:manage"
)

// rolePermissions maps each role to its full capability set. The admin
// set is computed from the manager set at init time rather than resolved
// through inheritance at check time.
var rolePermissions map[Role][]Permission

func init() {
	userPerms := []Permission{PermCartUse}
	managerPerms := append([]Permission{}, userPerms...)
	managerPerms = append(managerPerms, PermCatalogManage)
	adminPerms := append([]Permission{}, managerPerms...)
	adminPerms = append(adminPerms, PermUsersManage)

	rolePermissions = map[Role][]Permission{
		RoleUser:    userPerms,
		RoleManager: managerPerms,
		RoleAdmin:   adminPerms,
	}
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns the capability tags carried by the role
func (r Role) Permissions() []Permission {
	return rolePermissions[r]
}

// HasPermission reports whether the role carries the given capability
func (r Role) HasPermission(p Permission) bool {
	for _, perm := range rolePermissions[r] {
		if perm == p {
			return true
		}
	}
	return false
}
