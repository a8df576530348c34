package auth

import "context"

type contextKey struct{}

// AuthContext carries the authenticated role and session through a request.
type AuthContext struct {
	Role      string
	SessionID int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func Role(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Role
}

// gear inventory management is restricted to the quartermaster roles
var gearManagerRoles = map[string]struct{}{
	"Developer":               {},
	"Quartermaster":           {},
	"Assistant Quartermaster": {},
}

// CanManageGear reports whether the request's role may mutate the shared
// gear inventory.
func CanManageGear(ctx context.Context) bool {
	_, ok := gearManagerRoles[Role(ctx)]
	return ok
}
