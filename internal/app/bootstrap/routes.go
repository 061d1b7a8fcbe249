// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	consolefeature "github.com/townlocal/minisite/internal/app/features/console"
	errorsfeature "github.com/townlocal/minisite/internal/app/features/errors"
	healthfeature "github.com/townlocal/minisite/internal/app/features/health"
	siteapifeature "github.com/townlocal/minisite/internal/app/features/siteapi"
	sitepublicfeature "github.com/townlocal/minisite/internal/app/features/sitepublic"
	appresources "github.com/townlocal/minisite/internal/app/resources"
	sitenavstore "github.com/townlocal/minisite/internal/app/store/sitenav"
	sitepagestore "github.com/townlocal/minisite/internal/app/store/sitepages"
	"github.com/townlocal/minisite/internal/app/system/auth"
	"github.com/townlocal/minisite/internal/app/system/siterender"
	"github.com/townlocal/minisite/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Route groups by authentication:
//   - /api/site/*  - site management API: API key auth, no CSRF, permissive CORS
//   - /console/*   - operator console: session auth + CSRF
//   - /site/*      - public mini-sites: no auth
//   - /health, /assets, /static - open infrastructure routes
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	viewdata.Init(appCfg.ConsoleName)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	pageStore := sitepagestore.New(deps.MongoDatabase, logger)
	navStore := sitenavstore.New(deps.MongoDatabase, logger)
	renderer := siterender.New(logger)

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// CSRF protection with a path-based exemption for the site API, which
	// authenticates with a bearer key instead of cookies.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("minisite_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			errorsHandler.Forbidden(w, req)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)

	csrfMiddleware := func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	}
	r.Use(csrfMiddleware)

	// Site management API.
	apiHandler := siteapifeature.NewHandler(pageStore, navStore, logger)
	r.Mount("/api/site", siteapifeature.Routes(apiHandler, appCfg.APIKey, logger))

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Static assets with pre-compressed file support (gzip/brotli).
	// /static/* serves files from disk; /assets/* serves embedded assets.
	r.Handle("/static/*", fileserver.Handler("/static", "static"))
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// Public mini-sites.
	publicHandler := sitepublicfeature.NewHandler(pageStore, navStore, renderer, errLog, appCfg.DefaultThemeColor, logger)
	r.Mount("/site", sitepublicfeature.Routes(publicHandler))

	// Operator console.
	consoleHandler := consolefeature.NewHandler(pageStore, navStore, sessionMgr, errLog, appCfg.ConsolePassphraseHash, appCfg.BaseURL, logger)
	r.Mount("/console", consolefeature.Routes(consoleHandler, sessionMgr))

	// Error pages.
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// The console is the only thing at the root.
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/console", http.StatusSeeOther)
	})

	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
