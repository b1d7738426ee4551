package tradingValidator

import (
	"mime/multipart"
	"strings"

	"regdesk/database"
	"regdesk/middleware"
	"regdesk/models"
	"regdesk/utils"
	"regdesk/validators"

	"github.com/gofiber/fiber/v2"
)

// Locals keys read by the trading registration controller
const (
	CreateKey = "validatedTradingRegistration"
	UpdateKey = "validatedTradingUpdate"
	StatusKey = "validatedTradingStatus"
	VerifyKey = "validatedTradingVerify"
	ListKey   = "validatedTradingList"
)

var uploadFields = []string{utils.AadharField, utils.PanField, utils.SignatureField}

type CreateRequest struct {
	FirstName      string              `json:"firstName" form:"firstName" validate:"required,min=2,max=50"`
	LastName       string              `json:"lastName" form:"lastName" validate:"required,min=2,max=50"`
	Email          string              `json:"email" form:"email" validate:"required,emailpattern"`
	Phone          string              `json:"phone" form:"phone" validate:"required,digits=10"`
	DateOfBirth    string              `json:"dateOfBirth" form:"dateOfBirth" validate:"required,pastdate"`
	Address        string              `json:"address" form:"address" validate:"required,min=5"`
	City           string              `json:"city" form:"city" validate:"required,max=100"`
	State          string              `json:"state" form:"state" validate:"required,max=100"`
	Pincode        string              `json:"pincode" form:"pincode" validate:"required,digits=6"`
	AadharNumber   string              `json:"aadharNumber" form:"aadharNumber" validate:"required,digits=12"`
	PanNumber      string              `json:"panNumber" form:"panNumber" validate:"omitempty,pan"`
	AgreeTerms     validators.FormBool `json:"agreeTerms" form:"agreeTerms" validate:"accepted"`
	AgreeMarketing validators.FormBool `json:"agreeMarketing" form:"agreeMarketing" validate:"omitempty,boolean"`

	Files map[string]*multipart.FileHeader `json:"-" form:"-" validate:"-"`
}

func (r *CreateRequest) normalize() {
	validators.Trim(&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.DateOfBirth, &r.Address,
		&r.City, &r.State, &r.Pincode, &r.AadharNumber, &r.PanNumber)
	r.Email = strings.ToLower(r.Email)
	r.PanNumber = strings.ToUpper(r.PanNumber)
}

// Registration builds a pending registration without documents.
func (r *CreateRequest) Registration() *models.TradingRegistration {
	dob, _ := validators.ParseDate(r.DateOfBirth)
	return &models.TradingRegistration{
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Email:              r.Email,
		Phone:              r.Phone,
		DateOfBirth:        dob,
		Address:            r.Address,
		City:               r.City,
		State:              r.State,
		Pincode:            r.Pincode,
		AadharNumber:       r.AadharNumber,
		PanNumber:          r.PanNumber,
		AgreeTerms:         true,
		AgreeMarketing:     r.AgreeMarketing.Bool(),
		RegistrationStatus: models.RegistrationPending,
	}
}

// UpdateRequest carries only the fields present in the request.
type UpdateRequest struct {
	FirstName          *string              `json:"firstName" form:"firstName" validate:"omitempty,min=2,max=50"`
	LastName           *string              `json:"lastName" form:"lastName" validate:"omitempty,min=2,max=50"`
	Email              *string              `json:"email" form:"email" validate:"omitempty,emailpattern"`
	Phone              *string              `json:"phone" form:"phone" validate:"omitempty,digits=10"`
	DateOfBirth        *string              `json:"dateOfBirth" form:"dateOfBirth" validate:"omitempty,pastdate"`
	Address            *string              `json:"address" form:"address" validate:"omitempty,min=5"`
	City               *string              `json:"city" form:"city" validate:"omitempty,max=100"`
	State              *string              `json:"state" form:"state" validate:"omitempty,max=100"`
	Pincode            *string              `json:"pincode" form:"pincode" validate:"omitempty,digits=6"`
	AadharNumber       *string              `json:"aadharNumber" form:"aadharNumber" validate:"omitempty,digits=12"`
	PanNumber          *string              `json:"panNumber" form:"panNumber" validate:"omitempty,pan"`
	AgreeMarketing     *validators.FormBool `json:"agreeMarketing" form:"agreeMarketing" validate:"omitempty,boolean"`
	RegistrationStatus *string              `json:"registrationStatus" form:"registrationStatus" validate:"omitempty,oneof=pending approved rejected under_review"`
	AdminNotes         *string              `json:"adminNotes" form:"adminNotes" validate:"omitempty,max=2000"`

	Files map[string]*multipart.FileHeader `json:"-" form:"-" validate:"-"`
}

func (r *UpdateRequest) normalize() {
	validators.Trim(r.FirstName, r.LastName, r.Email, r.Phone, r.DateOfBirth, r.Address, r.City,
		r.State, r.Pincode, r.AadharNumber, r.PanNumber, r.RegistrationStatus, r.AdminNotes)
	if r.Email != nil {
		*r.Email = strings.ToLower(*r.Email)
	}
	if r.PanNumber != nil {
		*r.PanNumber = strings.ToUpper(*r.PanNumber)
	}
}

// Apply merges the provided fields into reg. Empty values leave the stored
// value untouched, except for admin notes which may be cleared.
func (r *UpdateRequest) Apply(reg *models.TradingRegistration) {
	set := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	set(&reg.FirstName, r.FirstName)
	set(&reg.LastName, r.LastName)
	set(&reg.Email, r.Email)
	set(&reg.Phone, r.Phone)
	set(&reg.Address, r.Address)
	set(&reg.City, r.City)
	set(&reg.State, r.State)
	set(&reg.Pincode, r.Pincode)
	set(&reg.AadharNumber, r.AadharNumber)
	set(&reg.PanNumber, r.PanNumber)

	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		if dob, err := validators.ParseDate(*r.DateOfBirth); err == nil {
			reg.DateOfBirth = dob
		}
	}
	if r.AgreeMarketing != nil && *r.AgreeMarketing != "" {
		reg.AgreeMarketing = r.AgreeMarketing.Bool()
	}
	if r.RegistrationStatus != nil && *r.RegistrationStatus != "" {
		reg.RegistrationStatus = models.RegistrationStatus(*r.RegistrationStatus)
	}
	if r.AdminNotes != nil {
		reg.AdminNotes = *r.AdminNotes
	}
}

type StatusRequest struct {
	Status     string  `json:"status" form:"status" validate:"required,oneof=pending approved rejected under_review"`
	AdminNotes *string `json:"adminNotes" form:"adminNotes" validate:"omitempty,max=2000"`
}

type VerifyRequest struct {
	VerificationType string `json:"verificationType" form:"verificationType" validate:"required,oneof=aadharVerified panVerified signatureVerified emailVerified phoneVerified"`
	Status           *bool  `json:"status" form:"status" validate:"required"`
}

// Flag returns the validated verification flag.
func (r *VerifyRequest) Flag() models.VerificationFlag {
	flag, _ := models.ParseVerificationFlag(r.VerificationType)
	return flag
}

type ListRequest struct {
	Page      int    `query:"page" validate:"gte=0"`
	Limit     int    `query:"limit" validate:"gte=0,lte=100"`
	Status    string `query:"status" validate:"omitempty,oneof=pending approved rejected under_review"`
	Search    string `query:"search" validate:"max=100"`
	SortBy    string `query:"sortBy" validate:"omitempty,oneof=submissionDate createdAt updatedAt firstName lastName email city registrationStatus"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

func (r *ListRequest) Query() database.ListQuery {
	return validators.Paging(r.Page, r.Limit, r.Status, r.Search, r.SortBy, r.SortOrder, "submissionDate")
}

func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"general": "Invalid request body!"})
		}
		reqData.normalize()

		errors := validators.Struct(reqData)
		reqData.Files = validators.FormFiles(c, uploadFields...)
		errors = validators.RequireFiles(errors, reqData.Files, utils.AadharField, utils.SignatureField)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(CreateKey, reqData)
		return c.Next()
	}
}

func Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.ValidationErrorResponse(c, map[string]string{"general": "Invalid request body!"})
			}
		}
		reqData.normalize()

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Files = validators.FormFiles(c, uploadFields...)

		c.Locals(UpdateKey, reqData)
		return c.Next()
	}
}

func UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StatusRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"general": "Invalid request body!"})
		}
		validators.Trim(&reqData.Status, reqData.AdminNotes)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(StatusKey, reqData)
		return c.Next()
	}
}

func Verify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VerifyRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"general": "Invalid request body!"})
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(VerifyKey, reqData)
		return c.Next()
	}
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"general": "Invalid query parameters!"})
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(ListKey, reqData)
		return c.Next()
	}
}
