package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/peoplecore/leave-backend-go/internal/handler/http/response"
)

// RequireRole allows only the listed roles past. The service layer re-checks
// authorization against the database; this gate just rejects obvious misses
// before any work happens.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	allowed := make(map[user.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, "Role claim missing")
				return
			}
			if _, ok := allowed[user.Role(roleStr)]; !ok {
				response.Forbidden(w, "Insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// ApproverOnly shortcuts the three approval-chain roles
func ApproverOnly(next http.Handler) http.Handler {
	return RequireRole(user.RoleHRAdmin, user.RoleDeptHead, user.RoleHRHead)(next)
}

// HRAdminOnly gates holiday and balance administration
func HRAdminOnly(next http.Handler) http.Handler {
	return RequireRole(user.RoleHRAdmin, user.RoleHRHead)(next)
}
