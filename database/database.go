package database

import (
	"context"
	"fmt"
	"time"

	"regdesk/config"
	"regdesk/models"

	"go.uber.org/zap"
)

// ListQuery describes one page of a list endpoint. SortBy is a JSON field
// name that the request validators have already checked.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
	SortBy string
	Desc   bool
}

func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

type UserFormRepository interface {
	Create(ctx context.Context, form *models.UserFormSubmission) error
	List(ctx context.Context, q ListQuery) ([]models.UserFormSubmission, int64, error)
}

type TradingRegistrationRepository interface {
	Create(ctx context.Context, reg *models.TradingRegistration) error
	List(ctx context.Context, q ListQuery) ([]models.TradingRegistration, int64, error)
	Get(ctx context.Context, id string) (*models.TradingRegistration, error)
	Update(ctx context.Context, reg *models.TradingRegistration) error
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus, adminNotes *string) (*models.TradingRegistration, error)
	SetVerification(ctx context.Context, id string, flag models.VerificationFlag, value bool) (*models.TradingRegistration, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, since time.Time) (*models.RegistrationStats, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.PaymentRecord) error
	List(ctx context.Context, q ListQuery) ([]models.PaymentRecord, int64, error)
}

// Store is the record store handle shared by all handlers
type Store struct {
	UserForms            UserFormRepository
	TradingRegistrations TradingRegistrationRepository
	Payments             PaymentRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects the backend selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	switch cfg.DBDriver {
	case "mongo", "mongodb":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	case "postgres", "mysql", "sqlite":
		return OpenGorm(cfg.DBDriver, cfg.DSN, log)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// sortKeys maps the sortable JSON fields of one collection to column
// names. Mongo sorts on the JSON field, GORM on the column.
type sortKeys map[string]string

// defaultSort is sortable in every collection.
const defaultSort = "createdAt"

// resolve returns the field and column to sort by, falling back to
// defaultSort for fields this collection cannot sort on.
func (s sortKeys) resolve(sortBy string) (string, string) {
	if column, ok := s[sortBy]; ok {
		return sortBy, column
	}
	return defaultSort, s[defaultSort]
}

var (
	userFormSorts = sortKeys{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"firstName": "first_name",
		"lastName":  "last_name",
		"email":     "email",
		"city":      "city",
	}
	tradingSorts = sortKeys{
		"submissionDate":     "submission_date",
		"createdAt":          "created_at",
		"updatedAt":          "updated_at",
		"firstName":          "first_name",
		"lastName":           "last_name",
		"email":              "email",
		"city":               "city",
		"registrationStatus": "registration_status",
	}
	paymentSorts = sortKeys{
		"createdAt":     "created_at",
		"amount":        "amount",
		"userName":      "user_name",
		"courseName":    "course_name",
		"paymentStatus": "payment_status",
	}
)
