package registrationValidator

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

const (
	SubmitKey = "validatedUserForm"
	ListKey   = "validatedUserFormList"
)

type SubmitRequest struct {
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
	AgreeTerms     validators.FormBool `json:"agreeTerms" form:"agreeTerms" validate:"accepted"`
	AgreeMarketing validators.FormBool `json:"agreeMarketing" form:"agreeMarketing" validate:"omitempty,boolean"`

	Files map[string]*multipart.FileHeader `json:"-" form:"-" validate:"-"`
}

// Submission builds the record; file paths are filled in by the caller.
func (r *SubmitRequest) Submission() *models.UserFormSubmission {
	dob, _ := validators.ParseDate(r.DateOfBirth)
	return &models.UserFormSubmission{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		DateOfBirth:    dob,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		Pincode:        r.Pincode,
		AadharNumber:   r.AadharNumber,
		AgreeTerms:     true,
		AgreeMarketing: r.AgreeMarketing.Bool(),
	}
}

type ListRequest struct {
	Page      int    `query:"page" validate:"gte=0"`
	Limit     int    `query:"limit" validate:"gte=0,lte=100"`
	Search    string `query:"search" validate:"max=100"`
	SortBy    string `query:"sortBy" validate:"omitempty,oneof=createdAt updatedAt firstName lastName email city"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

func (r *ListRequest) Query() database.ListQuery {
	return validators.Paging(r.Page, r.Limit, "", r.Search, r.SortBy, r.SortOrder, "createdAt")
}

func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"general": "Invalid request body!"})
		}
		validators.Trim(&reqData.FirstName, &reqData.LastName, &reqData.Email, &reqData.Phone,
			&reqData.DateOfBirth, &reqData.Address, &reqData.City, &reqData.State, &reqData.Pincode,
			&reqData.AadharNumber)
		reqData.Email = strings.ToLower(reqData.Email)

		errors := validators.Struct(reqData)
		reqData.Files = validators.FormFiles(c, utils.AadharField, utils.SignatureField)
		errors = validators.RequireFiles(errors, reqData.Files, utils.AadharField, utils.SignatureField)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(SubmitKey, reqData)
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
