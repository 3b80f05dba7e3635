package auth

import "github.com/festpos/api/internal/database"

// Permissions mirrors the capability columns of a role.
type Permissions struct {
	CreateOrders   bool `json:"create_orders"`
	ConfirmOrders  bool `json:"confirm_orders"`
	ReviseOrders   bool `json:"revise_orders"`
	ManagePrinters bool `json:"manage_printers"`
	ManageCatalog  bool `json:"manage_catalog"`
}

type Capability string

const (
	CapCreateOrders   Capability = "create_orders"
	CapConfirmOrders  Capability = "confirm_orders"
	CapReviseOrders   Capability = "revise_orders"
	CapManagePrinters Capability = "manage_printers"
	CapManageCatalog  Capability = "manage_catalog"
)

// Has reports whether the permission set grants c. Unknown capabilities are
// never granted.
func (p Permissions) Has(c Capability) bool {
	switch c {
	case CapCreateOrders:
		return p.CreateOrders
	case CapConfirmOrders:
		return p.ConfirmOrders
	case CapReviseOrders:
		return p.ReviseOrders
	case CapManagePrinters:
		return p.ManagePrinters
	case CapManageCatalog:
		return p.ManageCatalog
	}
	return false
}

func PermissionsFromRole(r database.Role) Permissions {
	return Permissions{
		CreateOrders:   r.CanCreateOrders,
		ConfirmOrders:  r.CanConfirmOrders,
		ReviseOrders:   r.CanReviseOrders,
		ManagePrinters: r.CanManagePrinters,
		ManageCatalog:  r.CanManageCatalog,
	}
}
