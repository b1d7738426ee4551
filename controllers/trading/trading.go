package tradingController

import (
	"time"

	"regdesk/controllers"
	"regdesk/database"
	"regdesk/logger"
	"regdesk/middleware"
	"regdesk/models"
	"regdesk/utils"
	tradingValidator "regdesk/validators/trading"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"go.uber.org/zap"
)

const notFound = "Trading registration not found!"

// documentFields is the order in which uploads are stored.
var documentFields = []string{utils.AadharField, utils.PanField, utils.SignatureField}

type Controller struct {
	Store   database.TradingRegistrationRepository
	Intake  *utils.FileIntake
	Timeout time.Duration
}

func New(store database.TradingRegistrationRepository, intake *utils.FileIntake, timeout time.Duration) *Controller {
	return &Controller{Store: store, Intake: intake, Timeout: timeout}
}

type documentView struct {
	models.FileInfo
	URL string `json:"url"`
}

// registrationView shadows the stored documents with public URLs, or hides
// them entirely in list responses.
type registrationView struct {
	*models.TradingRegistration
	AadharDocument    *documentView `json:"aadharDocument,omitempty"`
	PanDocument       *documentView `json:"panDocument,omitempty"`
	SignatureDocument *documentView `json:"signatureDocument,omitempty"`
	IsFullyVerified   bool          `json:"isFullyVerified"`
}

func (ctl *Controller) detailView(reg *models.TradingRegistration) registrationView {
	doc := func(info models.FileInfo) *documentView {
		if !info.Attached() {
			return nil
		}
		return &documentView{FileInfo: info, URL: ctl.Intake.URL(info.Path)}
	}
	return registrationView{
		TradingRegistration: reg,
		AadharDocument:      doc(reg.AadharDocument),
		PanDocument:         doc(reg.PanDocument),
		SignatureDocument:   doc(reg.SignatureDocument),
		IsFullyVerified:     reg.VerificationStatus.IsFullyVerified(),
	}
}

func listView(reg *models.TradingRegistration) registrationView {
	return registrationView{
		TradingRegistration: reg,
		IsFullyVerified:     reg.VerificationStatus.IsFullyVerified(),
	}
}

// rollback removes files written for a request that did not persist.
func (ctl *Controller) rollback(c *fiber.Ctx, batch *utils.Batch) {
	if err := batch.Rollback(); err != nil {
		logger.FromContext(c).Warn("Failed to remove uploaded files", zap.Error(err))
	}
}

// Create stores the uploaded documents and then the registration.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	reqData, ok := c.Locals(tradingValidator.CreateKey).(*tradingValidator.CreateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	reg := reqData.Registration()
	reg.SubmissionDate = time.Now()

	batch := ctl.Intake.NewBatch()
	documents := reg.Documents()
	for _, field := range documentFields {
		header, ok := reqData.Files[field]
		if !ok {
			continue
		}
		info, err := batch.Save(field, header)
		if err != nil {
			ctl.rollback(c, batch)
			return middleware.ErrorResponse(c, err, notFound, "Failed to store uploaded file!")
		}
		*documents[field] = *info
	}

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	if err := ctl.Store.Create(ctx, reg); err != nil {
		ctl.rollback(c, batch)
		return middleware.ErrorResponse(c, err, notFound, "Failed to submit trading registration!")
	}

	logger.FromContext(c).Info("Trading registration created", zap.String("id", reg.ID))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Trading registration submitted successfully!", fiber.Map{
		"id":                 reg.ID,
		"firstName":          reg.FirstName,
		"lastName":           reg.LastName,
		"email":              reg.Email,
		"registrationStatus": reg.RegistrationStatus,
		"submissionDate":     reg.SubmissionDate,
	})
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	reqData, ok := c.Locals(tradingValidator.ListKey).(*tradingValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	query := reqData.Query()

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	items, total, err := ctl.Store.List(ctx, query)
	if err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to fetch trading registrations!")
	}

	registrations := make([]registrationView, 0, len(items))
	for i := range items {
		registrations = append(registrations, listView(&items[i]))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading registrations fetched!", fiber.Map{
		"registrations": registrations,
		"pagination":    controllers.NewPagination(total, query.Page, query.Limit),
	})
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	reg, err := ctl.Store.Get(ctx, c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to fetch trading registration!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading registration fetched!", ctl.detailView(reg))
}

// Update merges the request into the stored registration. New files are
// written first, the record is saved, and only then are the files they
// replace deleted. A failed save removes the new files instead.
func (ctl *Controller) Update(c *fiber.Ctx) error {
	reqData, ok := c.Locals(tradingValidator.UpdateKey).(*tradingValidator.UpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	reg, err := ctl.Store.Get(ctx, c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to fetch trading registration!")
	}

	reqData.Apply(reg)

	batch := ctl.Intake.NewBatch()
	documents := reg.Documents()
	var superseded []string
	for _, field := range documentFields {
		header, ok := reqData.Files[field]
		if !ok {
			continue
		}
		info, err := batch.Save(field, header)
		if err != nil {
			ctl.rollback(c, batch)
			return middleware.ErrorResponse(c, err, notFound, "Failed to store uploaded file!")
		}
		if documents[field].Attached() {
			superseded = append(superseded, documents[field].Path)
		}
		*documents[field] = *info
	}

	if err := ctl.Store.Update(ctx, reg); err != nil {
		ctl.rollback(c, batch)
		return middleware.ErrorResponse(c, err, notFound, "Failed to update trading registration!")
	}

	if err := ctl.Intake.Remove(superseded...); err != nil {
		logger.FromContext(c).Warn("Failed to remove replaced files", zap.String("id", reg.ID), zap.Error(err))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading registration updated successfully!", ctl.detailView(reg))
}

func (ctl *Controller) UpdateStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals(tradingValidator.StatusKey).(*tradingValidator.StatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	reg, err := ctl.Store.UpdateStatus(ctx, c.Params("id"), models.RegistrationStatus(reqData.Status), reqData.AdminNotes)
	if err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to update registration status!")
	}

	logger.FromContext(c).Info("Trading registration status changed",
		zap.String("id", reg.ID), zap.String("status", string(reg.RegistrationStatus)))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration status updated successfully!", ctl.detailView(reg))
}

func (ctl *Controller) Verify(c *fiber.Ctx) error {
	reqData, ok := c.Locals(tradingValidator.VerifyKey).(*tradingValidator.VerifyRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	reg, err := ctl.Store.SetVerification(ctx, c.Params("id"), reqData.Flag(), *reqData.Status)
	if err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to update verification status!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification status updated successfully!", fiber.Map{
		"id":                 reg.ID,
		"verificationStatus": reg.VerificationStatus,
		"isFullyVerified":    reg.VerificationStatus.IsFullyVerified(),
	})
}

// Delete removes the record and then every file it referenced. Files that
// are already gone are ignored.
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	id := c.Params("id")
	reg, err := ctl.Store.Get(ctx, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to fetch trading registration!")
	}

	if err := ctl.Store.Delete(ctx, id); err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to delete trading registration!")
	}

	if err := ctl.Intake.Remove(reg.FilePaths()...); err != nil {
		logger.FromContext(c).Warn("Failed to remove registration files", zap.String("id", id), zap.Error(err))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trading registration deleted successfully!", nil)
}

func (ctl *Controller) Stats(c *fiber.Ctx) error {
	ctx, cancel := controllers.StoreContext(c, ctl.Timeout)
	defer cancel()

	stats, err := ctl.Store.Stats(ctx, now.BeginningOfDay())
	if err != nil {
		return middleware.ErrorResponse(c, err, notFound, "Failed to fetch registration stats!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration stats fetched!", stats)
}
