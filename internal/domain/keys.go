package domain

import "context"

type CtxKey string

const (
	KeyAdminUser CtxKey = "AdminUser"
	KeyAdminRole CtxKey = "AdminRole"
	KeyRequestID CtxKey = "RequestID"
)

// RoleAdmin is the only role allowed on /admin routes.
const RoleAdmin = "admin"

// Admin is the authenticated HR operator behind a request.
type Admin struct {
	Username string
	Role     string
}

// WithAdmin stores the authenticated operator in ctx.
func WithAdmin(ctx context.Context, a Admin) context.Context {
	ctx = context.WithValue(ctx, KeyAdminUser, a.Username)
	return context.WithValue(ctx, KeyAdminRole, a.Role)
}

// AdminFromContext reads the operator set by the auth middleware. It understands
// both gin's string keys (c.Set) and CtxKey values (context.WithValue).
func AdminFromContext(ctx context.Context) (Admin, bool) {
	var a Admin
	if v, ok := ctx.Value(string(KeyAdminUser)).(string); ok {
		a.Username = v
	}
	if a.Username == "" {
		if v, ok := ctx.Value(KeyAdminUser).(string); ok {
			a.Username = v
		}
	}
	if v, ok := ctx.Value(string(KeyAdminRole)).(string); ok {
		a.Role = v
	}
	if a.Role == "" {
		if v, ok := ctx.Value(KeyAdminRole).(string); ok {
			a.Role = v
		}
	}
	if a.Username == "" || a.Role != RoleAdmin {
		return Admin{}, false
	}
	return a, true
}
