package session

// Role values mirror the users table. Guest is the absent-session role and is
// never persisted.
const (
	RoleGuest     = "guest"
	RoleUser      = "user"
	RoleKitchen   = "kitchen"
	RoleCashier   = "cashier"
	RoleAdmin     = "admin"
	RoleSuperuser = "superuser"
)

// Capability names what an actor may do, so authorization is one function
// instead of role-string comparisons scattered across handlers.
type Capability string

const (
	CapManageCourses Capability = "manage_courses"
	CapManageUsers   Capability = "manage_users"
	CapManageMenu    Capability = "manage_menu"
	CapAdvanceOrders Capability = "advance_orders"
	CapViewAllOrders Capability = "view_all_orders"
	CapEditOrders    Capability = "edit_orders"
	CapSendMarketing Capability = "send_marketing"
)

var grants = map[string]map[Capability]bool{
	RoleKitchen: {
		CapAdvanceOrders: true,
		CapViewAllOrders: true,
	},
	RoleCashier: {
		CapAdvanceOrders: true,
		CapViewAllOrders: true,
	},
	RoleAdmin: {
		CapManageMenu:    true,
		CapAdvanceOrders: true,
		CapViewAllOrders: true,
		CapEditOrders:    true,
	},
	RoleSuperuser: {
		CapManageCourses: true,
		CapManageUsers:   true,
		CapManageMenu:    true,
		CapAdvanceOrders: true,
		CapViewAllOrders: true,
		CapEditOrders:    true,
		CapSendMarketing: true,
	},
}

// Allows reports whether the role holds the capability. Unknown roles hold
// nothing.
func Allows(role string, cap Capability) bool {
	return grants[role][cap]
}

// ValidRole reports whether the role may be stored on a user account.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleKitchen, RoleCashier, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}

// StaffRole reports whether course assignments are meaningful for the role.
func StaffRole(role string) bool {
	switch role {
	case RoleKitchen, RoleCashier, RoleAdmin:
		return true
	}
	return false
}
