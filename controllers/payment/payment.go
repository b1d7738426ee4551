package paymentController

import (
	"time"

	"regdesk/controllers"
	"regdesk/database"
	"regdesk/logger"
	"regdesk/middleware"
	paymentValidator "regdesk/validators/payment"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Controller struct {
	Store   database.PaymentRepository
	Timeout time.Duration
}

func New(store database.PaymentRepository, timeout time.Duration) *Controller {
	return &Controller{Store: store, Timeout: timeout}
}

// Add logs a payment. The amount is recorded only, never charged.
func (ctl *Controller) Add(c *fiber.Ctx) error {
	reqData, ok := c.Locals(paymentValidator.AddKey).(*paymentValidator.AddRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	payment := reqData.Payment()

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	if err := ctl.Store.Create(ctx, payment); err != nil {
		return middleware.ErrorResponse(c, err, "Payment not found!", "Failed to record payment!")
	}

	logger.FromContext(c).Info("Payment recorded",
		zap.String("id", payment.ID), zap.String("status", string(payment.PaymentStatus)))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment recorded successfully!", payment)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData, ok := c.Locals(paymentValidator.ListKey).(*paymentValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	query := reqData.Query()

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	payments, total, err := ctl.Store.List(ctx, query)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Payment not found!", "Failed to fetch payments!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched!", fiber.Map{
		"payments":   payments,
		"pagination": controllers.NewPagination(total, query.Page, query.Limit),
	})
}
