// Package access holds the authorization rules: which roles may read or
// write a resource, and who may touch a specific customer-owned record.
package access

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/auth"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"
)

type RoleSet map[models.UserRole]struct{}

func Roles(roles ...models.UserRole) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r models.UserRole) bool {
	_, ok := s[r]
	return ok
}

// Staff may see every customer-owned record.
var Staff = Roles(models.RoleAdmin, models.RoleManager, models.RoleWaiter, models.RoleChef)

// IsAuthenticatedRole is false for the resolver's sentinels.
func IsAuthenticatedRole(r models.UserRole) bool {
	return r != models.RoleAnonymous && r != ""
}

// Allow is the plain allow-list check. Anonymous principals are always denied,
// whatever the set contains.
func Allow(role models.UserRole, allowed RoleSet) bool {
	if !IsAuthenticatedRole(role) {
		return false
	}
	return allowed.Has(role)
}

// IsReadMethod reports whether an HTTP method cannot change state.
func IsReadMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// AllowReadOrWrite lets any authenticated principal read and only writeRoles write.
func AllowReadOrWrite(role models.UserRole, method string, writeRoles RoleSet) bool {
	if !IsAuthenticatedRole(role) {
		return false
	}
	if IsReadMethod(method) {
		return true
	}
	return writeRoles.Has(role)
}

// CanAccessOwned is the object-level check for records that belong to a
// customer profile. Staff always pass; a customer passes only for their own
// records, and a record without an owner belongs to no customer.
func CanAccessOwned(p *auth.Principal, ownerCustomerID *uint) bool {
	role := auth.RoleOf(p)
	if Staff.Has(role) {
		return true
	}
	if role == models.RoleCustomer {
		return p.CustomerID != nil && ownerCustomerID != nil && *p.CustomerID == *ownerCustomerID
	}
	return false
}
