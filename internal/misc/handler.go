package misc

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/liftdiary/internal/auth"
	"github.com/2beens/liftdiary/internal/middleware"
	"github.com/2beens/liftdiary/internal/telemetry/metrics"
	"github.com/2beens/liftdiary/internal/telemetry/tracing"
	"github.com/2beens/liftdiary/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	healthCheckTimeout     = 2 * time.Second
	sessionRateLimitPerMin = 15
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type identityRevoker interface {
	Revoke(ctx context.Context, identity *auth.Identity) error
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type Handler struct {
	versionInfo string
	db          dbPinger
	revoker     identityRevoker
	signInURL   string
}

func NewHandler(
	versionInfo string,
	db dbPinger,
	revoker identityRevoker,
	signInURL string,
) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		db:          db,
		revoker:     revoker,
		signInURL:   signInURL,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/healthz", handler.handleHealth).Methods("GET").Name("healthz")

	sessionSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	sessionSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "POST", "OPTIONS").Name("logout")

	// logout touches redis, keep it cheap for abusers
	sessionSubrouter.Use(middleware.RateLimit(rateLimiter, "session", sessionRateLimitPerMin, metricsManager))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := handler.db.Ping(ctx); err != nil {
		log.Errorf("health check, db ping: %s", err)
		span.SetStatus(codes.Error, err.Error())
		pkg.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}

	pkg.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: handler.versionInfo})
}

// handleLogout stops honoring the presented token. The identity provider session itself
// is ended by the provider.
func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	apiClient := strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
	identity := auth.IdentityFromContext(ctx)
	if identity == nil && apiClient {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if identity != nil {
		if err := handler.revoker.Revoke(ctx, identity); err != nil {
			log.Errorf("logout for [%s] failed: %s", identity.UserID, err)
			span.SetStatus(codes.Error, err.Error())
			http.Error(w, "logout failed", http.StatusInternalServerError)
			return
		}
		log.Debugf("logout for [%s] success", identity.UserID)
	}

	if apiClient {
		pkg.WriteTextResponseOK(w, "logged-out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, handler.signInURL, http.StatusSeeOther)
}
