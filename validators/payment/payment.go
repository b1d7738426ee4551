package paymentValidator

import (
	"strings"

	"regdesk/database"
	"regdesk/middleware"
	"regdesk/models"
	"regdesk/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	AddKey  = "validatedPayment"
	ListKey = "validatedPaymentList"
)

// AddRequest accepts the amount as a JSON number or a numeric string.
type AddRequest struct {
	UserName      string          `json:"userName" form:"userName" validate:"required,min=2,max=100"`
	CourseName    string          `json:"courseName" form:"courseName" validate:"required,max=255"`
	Amount        decimal.Decimal `json:"amount" form:"amount" validate:"-"`
	PaymentStatus string          `json:"paymentStatus" form:"paymentStatus" validate:"omitempty,oneof=Paid Pending Failed"`
	UserPhone     string          `json:"userPhone" form:"userPhone" validate:"omitempty,digits=10"`
	UserEmail     string          `json:"userEmail" form:"userEmail" validate:"omitempty,email"`
}

// Payment builds the record with the amount rounded to two decimals.
func (r *AddRequest) Payment() *models.PaymentRecord {
	status := models.PaymentStatus(r.PaymentStatus)
	if status == "" {
		status = models.PaymentPending
	}
	return &models.PaymentRecord{
		UserName:      r.UserName,
		CourseName:    r.CourseName,
		Amount:        r.Amount.Round(2).InexactFloat64(),
		PaymentStatus: status,
		UserPhone:     r.UserPhone,
		UserEmail:     r.UserEmail,
	}
}

type ListRequest struct {
	Page      int    `query:"page" validate:"gte=0"`
	Limit     int    `query:"limit" validate:"gte=0,lte=100"`
	Status    string `query:"status" validate:"omitempty,oneof=Paid Pending Failed"`
	SortBy    string `query:"sortBy" validate:"omitempty,oneof=createdAt amount userName courseName paymentStatus"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

func (r *ListRequest) Query() database.ListQuery {
	return validators.Paging(r.Page, r.Limit, r.Status, "", r.SortBy, r.SortOrder, "createdAt")
}

func Add() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"general": "Invalid request body!"})
		}
		validators.Trim(&reqData.UserName, &reqData.CourseName, &reqData.PaymentStatus,
			&reqData.UserPhone, &reqData.UserEmail)
		reqData.UserEmail = strings.ToLower(reqData.UserEmail)

		errors := validators.Struct(reqData)
		if !reqData.Amount.Round(2).IsPositive() {
			if errors == nil {
				errors = make(map[string]string)
			}
			errors["amount"] = "amount must be a positive number"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(AddKey, reqData)
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
