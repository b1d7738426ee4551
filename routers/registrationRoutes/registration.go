package registrationRoutes

import (
	registrationController "regdesk/controllers/registration"
	registrationValidator "regdesk/validators/registration"

	"github.com/gofiber/fiber/v2"
)

func SetupRegistrationRoutes(router fiber.Router, controller *registrationController.Controller) {
	registration := router.Group("/registration")
	registration.Post("/submit", registrationValidator.Submit(), controller.Submit)
	registration.Get("/all", registrationValidator.List(), controller.List)
}
