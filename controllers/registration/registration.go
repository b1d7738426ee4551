package registrationController

import (
	"time"

	"regdesk/controllers"
	"regdesk/database"
	"regdesk/logger"
	"regdesk/middleware"
	"regdesk/models"
	"regdesk/utils"
	registrationValidator "regdesk/validators/registration"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Controller struct {
	Store   database.UserFormRepository
	Intake  *utils.FileIntake
	Timeout time.Duration
}

func New(store database.UserFormRepository, intake *utils.FileIntake, timeout time.Duration) *Controller {
	return &Controller{Store: store, Intake: intake, Timeout: timeout}
}

type submissionView struct {
	models.UserFormSubmission
	AadharFileURL    string `json:"aadharFileUrl"`
	SignatureFileURL string `json:"signatureFileUrl"`
}

func (ctl *Controller) view(form models.UserFormSubmission) submissionView {
	return submissionView{
		UserFormSubmission: form,
		AadharFileURL:      ctl.Intake.URL(form.AadharFile),
		SignatureFileURL:   ctl.Intake.URL(form.SignatureFile),
	}
}

// Submit stores both required documents and then the form.
func (ctl *Controller) Submit(c *fiber.Ctx) error {
	reqData, ok := c.Locals(registrationValidator.SubmitKey).(*registrationValidator.SubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	form := reqData.Submission()
	batch := ctl.Intake.NewBatch()
	for _, field := range []string{utils.AadharField, utils.SignatureField} {
		info, err := batch.Save(field, reqData.Files[field])
		if err != nil {
			if rbErr := batch.Rollback(); rbErr != nil {
				logger.FromContext(c).Warn("Failed to remove uploaded files", zap.Error(rbErr))
			}
			return middleware.ErrorResponse(c, err, "Registration not found!", "Failed to store uploaded file!")
		}
		if field == utils.AadharField {
			form.AadharFile = info.Path
		} else {
			form.SignatureFile = info.Path
		}
	}

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	if err := ctl.Store.Create(ctx, form); err != nil {
		if rbErr := batch.Rollback(); rbErr != nil {
			logger.FromContext(c).Warn("Failed to remove uploaded files", zap.Error(rbErr))
		}
		return middleware.ErrorResponse(c, err, "Registration not found!", "Failed to submit registration!")
	}

	logger.FromContext(c).Info("Registration form submitted", zap.String("id", form.ID))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration submitted successfully!", fiber.Map{
		"id":        form.ID,
		"firstName": form.FirstName,
		"lastName":  form.LastName,
		"email":     form.Email,
		"createdAt": form.CreatedAt,
	})
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData, ok := c.Locals(registrationValidator.ListKey).(*registrationValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	query := reqData.Query()

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	items, total, err := ctl.Store.List(ctx, query)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Registration not found!", "Failed to fetch registrations!")
	}

	registrations := make([]submissionView, 0, len(items))
	for _, item := range items {
		registrations = append(registrations, ctl.view(item))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registrations fetched!", fiber.Map{
		"registrations": registrations,
		"pagination":    controllers.NewPagination(total, query.Page, query.Limit),
	})
}
