package middleware

import (
	"net/http"

	"github.com/2beens/liftdiary/pkg"

	log "github.com/sirupsen/logrus"
)

const MCPSecretHeader = "X-MCP-Secret"

// MCPSecret only lets through requests carrying a secret matching the bcrypt hash.
// An empty hash disables the endpoint.
func MCPSecret(secretHash string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if !pkg.CheckSecretHash(r.Header.Get(MCPSecretHeader), secretHash) {
				log.Warnf("[mcp secret middleware] rejected request from %s", pkg.ReadUserIP(r))
				pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
