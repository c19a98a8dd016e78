package auth

import "blockvault/internal/domain"

// Permission names guarding the API surface.
const (
	PermFilesRead  = "files:read"
	PermFilesWrite = "files:write"
	PermFilesShare = "files:share"
	PermLegal      = "legal:manage"
	PermAdmin      = "admin"
)

// requiredRole is the static permission table. A caller holds a permission
// when their role level is at least the listed minimum.
var requiredRole = map[string]domain.Role{
	PermFilesRead:  domain.RoleViewer,
	PermFilesWrite: domain.RoleOwner,
	PermFilesShare: domain.RoleOwner,
	PermLegal:      domain.RoleOwner,
	PermAdmin:      domain.RoleAdmin,
}

// Allowed reports whether role holds perm. Unknown permissions are denied.
func Allowed(role domain.Role, perm string) bool {
	min, ok := requiredRole[perm]
	return ok && role >= min
}
