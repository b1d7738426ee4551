package tradingRoutes

import (
	tradingController "regdesk/controllers/trading"
	tradingValidator "regdesk/validators/trading"

	"github.com/gofiber/fiber/v2"
)

func SetupTradingRoutes(router fiber.Router, controller *tradingController.Controller) {
	trading := router.Group("/trading-registration")

	trading.Post("/", tradingValidator.Create(), controller.Create)
	trading.Get("/", tradingValidator.List(), controller.List)
	trading.Get("/stats", controller.Stats)

	trading.Get("/:id", controller.Get)
	trading.Put("/:id", tradingValidator.Update(), controller.Update)
	trading.Delete("/:id", controller.Delete)
	trading.Put("/:id/status", tradingValidator.UpdateStatus(), controller.UpdateStatus)
	trading.Put("/:id/verify", tradingValidator.Verify(), controller.Verify)
}
