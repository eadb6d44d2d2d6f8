package auth

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/auth"
)

type Role string

const (
	// RoleDonor may only read their own donation records.
	RoleDonor Role = "donor"
	// RoleFinance sees all records, with anonymous donor identity stripped.
	RoleFinance Role = "finance"
	// RoleAdmin sees everything and may hard-delete for corrections.
	RoleAdmin Role = "admin"
)

// Principal is the authenticated caller, built from the verified Firebase
// token's uid and role claim.
type Principal struct {
	UID  string
	Role Role
}

func (p *Principal) CanSeeAll() bool {
	return p != nil && (p.Role == RoleFinance || p.Role == RoleAdmin)
}

// A private key for context that only this package can access. This is important
// to prevent collisions between different context uses
var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// Middleware verifies the bearer token and packs the caller into context.
// Requests without a token pass through unauthenticated; handlers decide
// whether to require a principal.
func Middleware(client *auth.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(t) == 2 && t[0] == "Bearer" {
				token, err := client.VerifyIDToken(r.Context(), t[1])
				if err != nil {
					http.Error(w, "Invalid token", http.StatusForbidden)
					return
				}

				r = r.WithContext(WithPrincipal(r.Context(), fromToken(token)))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func fromToken(token *auth.Token) *Principal {
	role := RoleDonor
	if claim, ok := token.Claims["role"].(string); ok && claim != "" {
		role = Role(claim)
	}
	return &Principal{UID: token.UID, Role: role}
}

// WithPrincipal returns a context carrying the caller. Exposed for tests.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// ForContext finds the caller from the context. REQUIRES Middleware to have run.
func ForContext(ctx context.Context) *Principal {
	raw, _ := ctx.Value(principalCtxKey).(*Principal)
	return raw
}
