package routes

import (
	"time"

	"amana-grc/internal/adapters/directory"
	"amana-grc/internal/adapters/http/handlers"
	"amana-grc/internal/adapters/http/middleware"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/config"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the cron
// service so main can manage its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CronService {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	standardRepo := repositories.NewStandardRepository(db)
	controlRepo := repositories.NewControlRepository(db)
	riskRepo := repositories.NewRiskRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	findingRepo := repositories.NewFindingRepository(db)
	evidenceRepo := repositories.NewEvidenceRepository(db)

	// Directory client, only wired when the directory strategy is on
	var dirClient services.DirectoryClient
	if cfg.LDAP.Enabled {
		dirClient = directory.NewLDAPClient(cfg.LDAP)
	}

	// Services
	authService := services.NewAuthService(userRepo, dirClient, cfg)
	userService := services.NewUserService(userRepo)
	standardService := services.NewStandardService(standardRepo, controlRepo)
	riskService := services.NewRiskService(riskRepo)

	notifyService := services.NewNotificationService(services.NewSMTPMailer(cfg.SMTP), cfg.SMTP.Enabled)
	auditService := services.NewAuditService(auditRepo, findingRepo, userRepo, notifyService)

	aiService := services.NewAIService(cfg.AI)
	evidenceService := services.NewEvidenceService(evidenceRepo, controlRepo, aiService)

	exportService := services.NewExportService(riskRepo, controlRepo, auditRepo, findingRepo)
	dashboardService := services.NewDashboardService(
		userRepo, standardRepo, controlRepo, riskRepo, auditRepo, findingRepo, evidenceRepo,
	)

	cronService := services.NewCronService(auditService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(authService, userService)
	standardHandler := handlers.NewStandardHandler(standardService)
	riskHandler := handlers.NewRiskHandler(riskService)
	auditHandler := handlers.NewAuditHandler(auditService)
	evidenceHandler := handlers.NewEvidenceHandler(evidenceService, cfg)
	exportHandler := handlers.NewExportHandler(exportService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	authn := middleware.AuthMiddleware(authService)

	apiV1 := app.Group("/api/v1")

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", authn, authHandler.Me)

	// User management (Admin only) plus self-service password change
	userRoutes := apiV1.Group("/users", authn)
	userRoutes.Put("/me/password", userHandler.ChangePassword)
	userRoutes.Post("/", middleware.AdminOnly(), userHandler.CreateUser)
	userRoutes.Get("/", middleware.AdminOnly(), userHandler.ListUsers)
	userRoutes.Get("/:id", middleware.AdminOnly(), userHandler.GetUser)
	userRoutes.Put("/:id", middleware.AdminOnly(), userHandler.UpdateUser)
	userRoutes.Delete("/:id", middleware.AdminOnly(), userHandler.DeactivateUser)

	// Standards & controls. The catalog is reference data, cache it briefly.
	standardRoutes := apiV1.Group("/standards", authn)
	standardRoutes.Get("/", middleware.CacheControl(5*time.Minute), standardHandler.ListStandards)
	standardRoutes.Get("/:id", standardHandler.GetStandard)
	standardRoutes.Get("/:id/compliance", standardHandler.GetComplianceSummary)
	standardRoutes.Post("/", middleware.AdminOnly(), standardHandler.CreateStandard)

	controlRoutes := apiV1.Group("/controls", authn)
	controlRoutes.Get("/", standardHandler.ListControls)
	controlRoutes.Get("/:id", standardHandler.GetControl)
	controlRoutes.Post("/", middleware.AdminOnly(), standardHandler.CreateControl)
	controlRoutes.Put("/:id/status",
		middleware.RequireRole(domain.RoleAdmin, domain.RoleRiskOfficer),
		standardHandler.UpdateControlStatus)

	// Risk register
	riskRoutes := apiV1.Group("/risks", authn)
	riskRoutes.Get("/", riskHandler.ListRisks)
	riskRoutes.Get("/:id", riskHandler.GetRisk)

	riskWrite := middleware.RequireRole(domain.RoleAdmin, domain.RoleRiskOfficer)
	riskRoutes.Post("/", riskWrite, riskHandler.CreateRisk)
	riskRoutes.Put("/:id", riskWrite, riskHandler.UpdateRisk)
	riskRoutes.Delete("/:id", riskWrite, riskHandler.CloseRisk)

	// Audits & findings
	auditRoutes := apiV1.Group("/audits", authn)
	auditRoutes.Get("/", auditHandler.ListAudits)
	auditRoutes.Get("/:id", auditHandler.GetAudit)
	auditRoutes.Get("/:id/findings", auditHandler.ListFindings)

	auditWrite := middleware.RequireRole(domain.RoleAdmin, domain.RoleAuditor)
	auditRoutes.Post("/", auditWrite, auditHandler.CreateAudit)
	auditRoutes.Put("/:id", auditWrite, auditHandler.UpdateAudit)
	auditRoutes.Post("/:id/findings", auditWrite, auditHandler.CreateFinding)

	findingRoutes := apiV1.Group("/findings", authn)
	findingRoutes.Put("/:id", auditWrite, auditHandler.UpdateFinding)

	// Evidence
	evidenceRoutes := apiV1.Group("/evidence", authn)
	evidenceRoutes.Get("/", evidenceHandler.ListEvidence)
	evidenceRoutes.Get("/:id", evidenceHandler.GetEvidence)

	evidenceWrite := middleware.RequireRole(domain.RoleAdmin, domain.RoleRiskOfficer, domain.RoleAuditor)
	evidenceRoutes.Post("/", evidenceWrite, evidenceHandler.UploadEvidence)
	evidenceRoutes.Post("/:id/assess", evidenceWrite, evidenceHandler.AssessEvidence)
	evidenceRoutes.Put("/:id/review",
		middleware.RequireRole(domain.RoleAdmin, domain.RoleAuditor),
		evidenceHandler.ReviewEvidence)
	evidenceRoutes.Delete("/:id", middleware.AdminOnly(), evidenceHandler.DeleteEvidence)

	// CSV export
	exportRoutes := apiV1.Group("/export", authn)
	exportRoutes.Get("/risks", exportHandler.ExportRisks)
	exportRoutes.Get("/standards/:id/controls", exportHandler.ExportControls)
	exportRoutes.Get("/audits/:id", exportHandler.ExportAuditReport)

	// Dashboard & analytics
	dashboardRoutes := apiV1.Group("/dashboard", authn)
	dashboardRoutes.Get("/overview", dashboardHandler.GetOverview)
	dashboardRoutes.Get("/risk-trends", dashboardHandler.GetRiskTrends)
	dashboardRoutes.Get("/compliance-by-domain", dashboardHandler.GetComplianceByDomain)
	dashboardRoutes.Get("/compliance-trend", dashboardHandler.GetComplianceTrend)

	return cronService
}
