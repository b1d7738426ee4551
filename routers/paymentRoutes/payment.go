package paymentRoutes

import (
	paymentController "regdesk/controllers/payment"
	paymentValidator "regdesk/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(router fiber.Router, controller *paymentController.Controller) {
	payments := router.Group("/payments")
	payments.Post("/add", paymentValidator.Add(), controller.Add)
	payments.Get("/all", paymentValidator.List(), controller.List)
}
