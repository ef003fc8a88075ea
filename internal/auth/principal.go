package auth

import (
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxPrincipalKey = "principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID     uint
	Username   string
	Email      string
	Role       models.UserRole
	CustomerID *uint // set only when Role is customer
}

// rolePrecedence is the order in which stored role tags are honoured.
var rolePrecedence = []models.UserRole{
	models.RoleAdmin,
	models.RoleManager,
	models.RoleChef,
	models.RoleWaiter,
	models.RoleEditor,
}

// ResolveRole derives the authorization role of u. It reads only the flags,
// the role tag and the loaded customer profile, and never touches the store.
func ResolveRole(u *models.User) models.UserRole {
	if u == nil || u.ID == 0 {
		return models.RoleAnonymous
	}
	if u.IsSuperuser || u.IsStaff {
		return models.RoleAdmin
	}
	for _, r := range rolePrecedence {
		if u.Role == r {
			return r
		}
	}
	if u.Role == models.RoleCustomer && u.CustomerProfile != nil {
		return models.RoleCustomer
	}
	return models.RoleUnknown
}

func NewPrincipal(u *models.User) *Principal {
	p := &Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     ResolveRole(u),
	}
	if p.Role == models.RoleCustomer {
		id := u.CustomerProfile.ID
		p.CustomerID = &id
	}
	return p
}

// RoleOf treats a nil principal as anonymous.
func RoleOf(p *Principal) models.UserRole {
	if p == nil {
		return models.RoleAnonymous
	}
	return p.Role
}

// CurrentPrincipal returns nil when the request is unauthenticated.
func CurrentPrincipal(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(CtxPrincipalKey).(*Principal)
	return p
}
