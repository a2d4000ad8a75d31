package auth

import "context"

type PermissionChecker interface {
	CanRefundTransactions(userPermissions []string) bool
	CanViewAllTransactions(userPermissions []string) bool
	CanManageCatalog(userPermissions []string) bool
	HasAnyPermission(userPermissions []string, requiredPermissions []string) bool
	IsConsultant(userPermissions []string) bool
	IsAdmin(userPermissions []string) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error) {
	return c.HasAnyPermission(userPermissions, []string{permission}), nil
}

func (c *DefaultPermissionChecker) CanRefundTransactionsCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.CanRefundTransactions(userPermissions), nil
}

func (c *DefaultPermissionChecker) IsConsultantCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.IsConsultant(userPermissions), nil
}

func (c *DefaultPermissionChecker) IsAdminCtx(ctx context.Context, userPermissions []string) (bool, error) {
	return c.IsAdmin(userPermissions), nil
}

func (c *DefaultPermissionChecker) CanRefundTransactions(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{"refund_transactions", "admin"})
}

func (c *DefaultPermissionChecker) CanViewAllTransactions(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{"view_all_transactions", "admin"})
}

func (c *DefaultPermissionChecker) CanManageCatalog(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{"manage_catalog", "admin"})
}

func (c *DefaultPermissionChecker) HasAnyPermission(userPermissions []string, requiredPermissions []string) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (c *DefaultPermissionChecker) IsConsultant(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{"consultant", "admin"})
}

func (c *DefaultPermissionChecker) IsAdmin(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{"admin"})
}
