package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/templui/passreset/internal/app"
	"github.com/templui/passreset/internal/handler"
	"github.com/templui/passreset/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	reset := handler.NewPasswordResetHandler(app.PasswordResetService, app.Cfg.PasswordResetConcealUnknown)
	account := handler.NewAccountHandler(app.AccountService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	}

	// ============================================================================
	// ACCOUNTS & PASSWORD RESET (rate limited)
	// ============================================================================

	limit := app.RateLimiter.Middleware

	mux.HandleFunc("POST /register", limit(account.Register))
	mux.HandleFunc("POST /password-forgot", limit(reset.ForgotPassword))
	mux.HandleFunc("GET /reset-password/{token}/", reset.ValidateToken)
	mux.HandleFunc("POST /reset-password/{token}/", limit(reset.ResetPassword))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestContext,  // Request time and client IP, read by everything below
		middleware.SecurityHeaders, // No caching or referrers for token URLs
		middleware.RequestLogging,
	)

	return handler
}
