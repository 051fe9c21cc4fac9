package middleware

import (
	"net/http"
	"strings"

	"github.com/2beens/liftdiary/internal/auth"
	"github.com/2beens/liftdiary/internal/telemetry/tracing"
	"github.com/2beens/liftdiary/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// SessionCookieName is the cookie the identity provider sets for browser sessions.
const SessionCookieName = "__session"

// TokenFromRequest reads the identity token from the bearer header, or from the session cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Identity resolves the request identity and stores it on the context.
// It never rejects a request, RequireIdentity and RequireAPIIdentity do that.
func Identity(checker auth.Checker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.identity")
			identity, err := checker.Check(ctx, token)
			if err != nil {
				log.Tracef("[identity middleware] %s => %s", r.URL.Path, err)
				span.SetStatus(codes.Error, "identity-check-failed")
				span.RecordError(err)
				span.End()
				next.ServeHTTP(w, r)
				return
			}
			span.SetStatus(codes.Ok, "ok")
			span.End()

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireIdentity redirects anonymous page requests to the sign-in page.
func RequireIdentity(signInURL string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.IdentityFromContext(r.Context()) == nil {
				http.Redirect(w, r, signInURL, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIIdentity answers anonymous API requests with 401.
func RequireAPIIdentity() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.IdentityFromContext(r.Context()) == nil {
				pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
