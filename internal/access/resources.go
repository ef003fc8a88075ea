package access

import "github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/models"

type Resource string

const (
	ResourceTables      Resource = "tables"
	ResourceMenuItems   Resource = "menu-items"
	ResourceInventory   Resource = "inventory"
	ResourceCategories  Resource = "categories"
	ResourceDiscounts   Resource = "discount-codes"
	ResourceStaff       Resource = "staff"
	ResourceAuditLogs   Resource = "audit-logs"
	ResourceReports     Resource = "reports"
	ResourceOrderStatus Resource = "order-status"
	ResourceOrderCreate Resource = "order-create"
	ResourceOrderDelete Resource = "order-delete"
	ResourceEstimate    Resource = "order-estimate"
	ResourceInvoicing   Resource = "invoicing"
	ResourcePaymentEdit Resource = "payment-edit"
)

// Policy configures a resource. A nil Read set means any authenticated
// principal may read; Write applies to every non-read method.
type Policy struct {
	Read  RoleSet
	Write RoleSet
}

var (
	admin    = models.RoleAdmin
	manager  = models.RoleManager
	chef     = models.RoleChef
	waiter   = models.RoleWaiter
	customer = models.RoleCustomer
)

// Policies maps each gated resource to its roles.
var Policies = map[Resource]Policy{
	ResourceTables:      {Write: Roles(waiter, manager, admin)},
	ResourceMenuItems:   {Write: Roles(chef, manager, admin)},
	ResourceInventory:   {Write: Roles(chef, manager, admin)},
	ResourceCategories:  {Write: Roles()},
	ResourceDiscounts:   {Read: Roles(admin, manager), Write: Roles(admin, manager)},
	ResourceStaff:       {Read: Roles(admin, manager), Write: Roles(admin)},
	ResourceAuditLogs:   {Read: Roles(admin), Write: Roles()},
	ResourceReports:     {Read: Roles(admin, manager), Write: Roles()},
	ResourceOrderStatus: {Write: Roles(admin, manager, chef, waiter)},
	ResourceOrderCreate: {Write: Roles(customer)},
	ResourceOrderDelete: {Write: Roles(admin, manager)},
	ResourceEstimate:    {Write: Roles(admin, manager, chef)},
	ResourceInvoicing:   {Write: Roles(admin, manager, waiter)},
	ResourcePaymentEdit: {Write: Roles(admin, manager, waiter)},
}

// Check evaluates the policy of resource for a request method. Unknown
// resources deny everything.
func Check(resource Resource, role models.UserRole, method string) bool {
	pol, ok := Policies[resource]
	if !ok {
		return false
	}
	if IsReadMethod(method) && pol.Read != nil {
		return Allow(role, pol.Read)
	}
	return AllowReadOrWrite(role, method, pol.Write)
}

// CanWrite is the write half of Check, for services that gate operations
// themselves rather than through route middleware.
func CanWrite(resource Resource, role models.UserRole) bool {
	pol, ok := Policies[resource]
	if !ok {
		return false
	}
	return Allow(role, pol.Write)
}
