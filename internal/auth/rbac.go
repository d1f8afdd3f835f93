package auth

import (
	"net/http"
	"slices"
)

type Permission string

const (
	PermTranslate Permission = "translate"
	PermSpeech    Permission = "speech"
	PermJobsRead  Permission = "jobs:read"
	PermAdminRead Permission = "admin:read"
	PermWildcard  Permission = "*"
)

// HasPermission reports whether claims grant perm.
func (c *Claims) HasPermission(perm Permission) bool {
	return slices.ContainsFunc(c.Scopes, func(s string) bool {
		return Permission(s) == PermWildcard || Permission(s) == perm
	})
}

// RequirePermission rejects requests whose claims lack perm.
func RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			claims := ClaimsFromContext(req.Context())
			if claims == nil {
				writeError(w, http.StatusForbidden, "no credentials in context")
				return
			}
			if !claims.HasPermission(perm) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
