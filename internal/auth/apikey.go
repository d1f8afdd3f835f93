package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// APIKeyMiddleware accepts a static set of keys. Authenticated requests get
// wildcard claims; requests without the header pass through unchanged.
type APIKeyMiddleware struct {
	headerName string
	hashes     []string
}

func NewAPIKeyMiddleware(headerName string, keys []string) *APIKeyMiddleware {
	hashes := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			hashes = append(hashes, HashAPIKey(k))
		}
	}
	return &APIKeyMiddleware{headerName: headerName, hashes: hashes}
}

func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(m.headerName)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		hash := HashAPIKey(key)
		matched := 0
		for _, h := range m.hashes {
			matched |= subtle.ConstantTimeCompare([]byte(h), []byte(hash))
		}
		if matched != 1 {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		claims := &Claims{Scopes: []string{string(PermWildcard)}}
		claims.Subject = "api-key:" + hash[:8]
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
