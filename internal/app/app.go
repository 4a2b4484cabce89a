package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/templui/passreset/internal/config"
	"github.com/templui/passreset/internal/db"
	"github.com/templui/passreset/internal/metrics"
	"github.com/templui/passreset/internal/middleware"
	"github.com/templui/passreset/internal/repository"
	"github.com/templui/passreset/internal/service"
)

type App struct {
	Cfg                  *config.Config
	DB                   *sqlx.DB
	Registry             *prometheus.Registry
	Metrics              *metrics.Metrics
	RateLimiter          *middleware.RateLimiter
	AccountService       *service.AccountService
	EmailService         *service.EmailService
	PasswordResetService *service.PasswordResetService
}

// Options tune construction for callers other than the server.
type Options struct {
	// BcryptCost overrides bcrypt.DefaultCost when non-zero.
	BcryptCost int
	// Mailer replaces the Resend email service when set.
	Mailer service.Mailer
}

func New(cfg *config.Config) (*App, error) {
	return NewWithOptions(cfg, Options{})
}

func NewWithOptions(cfg *config.Config, opts Options) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Repositories
	userRepository := repository.NewUserRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	transactor := repository.NewTransactor(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.IsDevelopment(),
	)
	var mailer service.Mailer = emailService
	if opts.Mailer != nil {
		mailer = opts.Mailer
	}

	accountService := service.NewAccountService(userRepository, opts.BcryptCost)
	passwordResetService, err := service.NewPasswordResetService(
		tokenRepository,
		accountService,
		mailer,
		transactor,
		m,
		cfg.AppURL,
		cfg.AppName,
	)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to initialize password reset service: %w", err)
	}

	return &App{
		Cfg:                  cfg,
		DB:                   database,
		Registry:             registry,
		Metrics:              m,
		RateLimiter:          middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		AccountService:       accountService,
		EmailService:         emailService,
		PasswordResetService: passwordResetService,
	}, nil
}

func (a *App) Close() error {
	if a.RateLimiter != nil {
		a.RateLimiter.Stop()
	}
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
