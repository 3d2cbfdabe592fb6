package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/backend"
	"github.com/scanctum/scanctum-web/pkg/handlers"
	"github.com/scanctum/scanctum-web/pkg/interfaces"
	middleware "github.com/scanctum/scanctum-web/pkg/middlewares"
	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/progress"
	service "github.com/scanctum/scanctum-web/pkg/services"
	"github.com/scanctum/scanctum-web/pkg/session"
	"github.com/scanctum/scanctum-web/pkg/utils"
	"github.com/scanctum/scanctum-web/pkg/version"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	logConfig := utils.Config{
		LogLevel:  cfg.Logging.Level,
		LogFormat: cfg.Logging.Format,
		Pretty:    true,
	}
	if logConfig.LogLevel == "" {
		logConfig.LogLevel = "info"
	}
	if logConfig.LogFormat == "" {
		logConfig.LogFormat = "text"
	}
	log := utils.NewLogger(logConfig)

	log.WithFields(logrus.Fields{
		"version": version.Version,
		"commit":  version.Commit,
	}).Info("scanctum-web starting")

	store, err := setupSessionStore(cfg, log)
	if err != nil {
		return err
	}

	client := backend.NewClient(cfg, log)
	checkBackend(client, log)

	hub := progress.NewHub(client, log)
	defer hub.Close()

	var archive interfaces.ArchiveServiceInterface
	archiveService, err := service.NewArchiveService(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize archive service: %w", err)
	}
	if archiveService != nil {
		archive = archiveService
	}

	app := setupApp(cfg, client, hub, archive, store, log)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("Shutting down")
		hub.Close()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.WithField("addr", addr).Info("🚀 Server listening")
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// loadConfig reads the config file; a missing file falls back to
// defaults plus environment overrides so the binary runs out of the box.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.WithError(err).Warn("Config file not loaded, using defaults and environment")
		return config.Defaults()
	}
	return cfg
}

func setupSessionStore(cfg *config.Config, log *utils.Logger) (session.Store, error) {
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour

	switch cfg.Session.Backend {
	case "redis":
		store, err := session.NewRedisStore(cfg.Session, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis session store: %w", err)
		}
		return store, nil
	default:
		log.Info("Using in-memory session store")
		return session.NewMemoryStore(ttl, log), nil
	}
}

// checkBackend logs whether the backend is reachable and version
// compatible. Startup continues either way; pages degrade per request.
func checkBackend(client *backend.Client, log *utils.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	compatible, backendVersion, err := client.CheckCompatibility(ctx)
	switch {
	case err != nil:
		log.WithError(err).Warn("Backend not reachable at startup")
	case !compatible:
		log.WithField("backendVersion", backendVersion).Warn("Backend version below supported minimum")
	default:
		log.WithField("backendVersion", backendVersion).Info("Backend reachable")
	}
}

func setupApp(
	cfg *config.Config,
	client *backend.Client,
	hub *progress.Hub,
	archive interfaces.ArchiveServiceInterface,
	store session.Store,
	log *utils.Logger,
) *fiber.App {
	engine := html.New("./views", ".html")
	engine.AddFunc("statusLabel", func(status string) string {
		if label, ok := models.ScanStatusLabels[status]; ok {
			return label
		}
		return status
	})
	engine.AddFunc("owaspLabel", func(category string) string {
		if label, ok := models.OWASPLabels[category]; ok {
			return label
		}
		return category
	})
	engine.AddFunc("severityClass", func(severity string) string {
		return "sev-" + severity
	})

	app := fiber.New(fiber.Config{
		AppName:      "scanctum-web",
		ServerHeader: "scanctum-web",
		Views:        engine,

		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
				"error":  err.Error(),
			}).Error("Error handling request")
			return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
				"Title": "Error",
				"Error": "Something went wrong.",
			})
		},
	})

	// Request logging, health checks at debug to avoid spam
	app.Use(func(c *fiber.Ctx) error {
		if c.Path() == "/health" {
			log.Debug("Health check")
			return c.Next()
		}
		log.WithFields(logrus.Fields{
			"path":   c.Path(),
			"method": c.Method(),
		}).Info("Incoming request")
		return c.Next()
	})

	app.Static("/static", "./views/static")

	setupRoutes(app, cfg, client, hub, archive, store, log)
	return app
}

func setupRoutes(
	app *fiber.App,
	cfg *config.Config,
	client *backend.Client,
	hub *progress.Hub,
	archive interfaces.ArchiveServiceInterface,
	store session.Store,
	log *utils.Logger,
) {
	authMW := middleware.NewAuthMiddleware(cfg, store, log)
	loginLimiter := middleware.NewLoginRateLimiter(cfg, log)

	authHandler := handlers.NewAuthHandler(client, cfg, store, log)
	dashboardHandler := handlers.NewDashboardHandler(client, cfg, store, log)
	scanHandler := handlers.NewScanHandler(client, hub, cfg, store, log)
	reportHandler := handlers.NewReportHandler(client, archive, cfg, store, log)
	compareHandler := handlers.NewCompareHandler(client, cfg, store, log)
	scheduleHandler := handlers.NewScheduleHandler(client, cfg, store, log)
	vulnDBHandler := handlers.NewVulnDBHandler(client, cfg, store, log)
	assetHandler := handlers.NewAssetHandler(client, cfg, store, log)
	settingsHandler := handlers.NewSettingsHandler(client, cfg, store, log)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": version.String()})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	})

	// Public pages
	app.Get("/login", authMW.RedirectIfAuthenticated(), authHandler.ShowLogin)
	app.Post("/login", loginLimiter.Limit(), authHandler.Login)
	app.Get("/signup", authMW.RedirectIfAuthenticated(), authHandler.ShowSignup)
	app.Post("/signup", loginLimiter.Limit(), authHandler.Signup)
	app.Get("/logout", authMW.RequireSession(), authHandler.Logout)

	// Everything below requires a session
	requireSession := authMW.RequireSession()

	app.Get("/dashboard", requireSession, dashboardHandler.DisplayDashboard)

	app.Get("/scans", requireSession, scanHandler.ListScans)
	app.Get("/scans/new", requireSession, scanHandler.ShowNewScan)
	app.Post("/scans", requireSession, scanHandler.CreateScan)
	app.Get("/scans/:id", requireSession, scanHandler.DisplayScanDetail)
	app.Get("/scans/:id/progress.json", requireSession, scanHandler.GetProgress)
	app.Post("/scans/:id/cancel", requireSession, scanHandler.CancelScan)

	app.Get("/scans/:id/report", requireSession, reportHandler.DisplayReport)
	app.Get("/scans/:id/report/download", requireSession, reportHandler.DownloadReport)

	app.Get("/compare", requireSession, compareHandler.ShowPicker)
	app.Post("/compare", requireSession, compareHandler.PickScans)
	app.Get("/compare/:scan1/:scan2", requireSession, compareHandler.DisplayComparison)

	app.Get("/schedules", requireSession, scheduleHandler.DisplaySchedules)
	app.Post("/schedules", requireSession, scheduleHandler.CreateSchedule)
	app.Post("/schedules/:id/toggle", requireSession, scheduleHandler.ToggleSchedule)
	app.Post("/schedules/:id/delete", requireSession, scheduleHandler.DeleteSchedule)

	app.Get("/vulndb", requireSession, vulnDBHandler.DisplayVulnDB)
	app.Get("/assets", requireSession, assetHandler.DisplayAssets)
	app.Get("/settings", requireSession, settingsHandler.DisplaySettings)
}
