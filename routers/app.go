package routers

import (
	"errors"
	"time"

	"regdesk/config"
	"regdesk/controllers"
	paymentController "regdesk/controllers/payment"
	registrationController "regdesk/controllers/registration"
	tradingController "regdesk/controllers/trading"
	"regdesk/database"
	"regdesk/logger"
	"regdesk/metrics"
	"regdesk/middleware"
	"regdesk/routers/paymentRoutes"
	"regdesk/routers/registrationRoutes"
	"regdesk/routers/tradingRoutes"
	"regdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Deps are the shared services the HTTP layer is built from.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Store   *database.Store
	Intake  *utils.FileIntake
}

// NewApp assembles the Fiber application with every route mounted.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Registration Desk",
		// Three document uploads plus the form fields
		BodyLimit:    int(3*d.Config.MaxUploadSize) + 1<<20,
		ErrorHandler: errorHandler(d.Intake),
	})

	app.Use(middleware.RequestID(d.Log))
	app.Use(middleware.RequestLogger())
	app.Use(d.Metrics.Middleware())
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: d.Config.CredentialedCORS(),
	}))

	// Uploaded documents are public, as submitted
	app.Static("/uploads", d.Intake.Root())

	app.Get("/health", health(d.Store, d.Config.DBTimeout))
	app.Get("/metrics", d.Metrics.Handler())

	api := app.Group("/api")
	registrationRoutes.SetupRegistrationRoutes(api, registrationController.New(d.Store.UserForms, d.Intake, d.Config.DBTimeout))
	paymentRoutes.SetupPaymentRoutes(api, paymentController.New(d.Store.Payments, d.Config.DBTimeout))
	tradingRoutes.SetupTradingRoutes(api, tradingController.New(d.Store.TradingRegistrations, d.Intake, d.Config.DBTimeout))

	return app
}

func health(store *database.Store, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := fiber.Map{
			"status":   "ok",
			"database": "ok",
			"time":     time.Now().Format(time.RFC3339),
		}

		ctx, cancel := controllers.StoreContext(c, timeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.FromContext(c).Error("Database ping failed", zap.Error(err))
			data["status"] = "degraded"
			data["database"] = "unreachable"
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unreachable!", data)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Service is healthy!", data)
	}
}

// errorHandler renders errors that escaped the handlers, such as unknown
// routes, oversized bodies and recovered panics. An oversized body is
// reported as a file rejection.
func errorHandler(intake *utils.FileIntake) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusRequestEntityTooLarge:
			return middleware.ErrorResponse(c, intake.RequestTooLarge(), "", "")
		case code >= fiber.StatusInternalServerError:
			logger.FromContext(c).Error("Unhandled error", zap.Error(err))
			return middleware.InternalErrorResponse(c, "Internal server error!", err)
		}
		return middleware.JsonResponse(c, code, false, fe.Message, nil)
	}
}
