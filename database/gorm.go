package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"regdesk/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to postgres, mysql or sqlite and migrates the schema.
func OpenGorm(driver, dsn string, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases alive and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
	}
	sqlDB.SetConnMaxLifetime(0)

	if err := runMigrations(db, log); err != nil {
		return nil, err
	}

	return NewGormStore(db), nil
}

// NewGormStore wraps an already migrated connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		UserForms:            &gormUserForms{db: db},
		TradingRegistrations: &gormTradingRegistrations{db: db},
		Payments:             &gormPayments{db: db},
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running migrations")

	err := db.AutoMigrate(
		&models.UserFormSubmission{},
		&models.TradingRegistration{},
		&models.PaymentRecord{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Migrations completed successfully")
	return nil
}

// validID rejects anything that is not a UUID so malformed ids read as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if search == "" {
			return tx
		}
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		return tx.Where("(LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!' OR phone LIKE ? ESCAPE '!')",
			like, like, like, like)
	}
}

// likeEscaper makes a search term match literally under ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func statusScope(column, status string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if status == "" {
			return tx
		}
		return tx.Where(column+" = ?", status)
	}
}

// gormPage counts and fetches one page; both queries share the same scopes.
func gormPage[T any](ctx context.Context, db *gorm.DB, q ListQuery, sorts sortKeys, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var model T

	var total int64
	if err := db.WithContext(ctx).Model(&model).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, mapGormError(err)
	}

	_, column := sorts.resolve(q.SortBy)

	items := make([]T, 0, q.Limit)
	err := db.WithContext(ctx).Model(&model).Scopes(scopes...).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, mapGormError(err)
	}
	return items, total, nil
}

type gormUserForms struct {
	db *gorm.DB
}

func (r *gormUserForms) Create(ctx context.Context, form *models.UserFormSubmission) error {
	form.ID = uuid.NewString()
	return mapGormError(r.db.WithContext(ctx).Create(form).Error)
}

func (r *gormUserForms) List(ctx context.Context, q ListQuery) ([]models.UserFormSubmission, int64, error) {
	return gormPage[models.UserFormSubmission](ctx, r.db, q, userFormSorts, searchScope(q.Search))
}

type gormTradingRegistrations struct {
	db *gorm.DB
}

func (r *gormTradingRegistrations) Create(ctx context.Context, reg *models.TradingRegistration) error {
	reg.ID = uuid.NewString()
	return mapGormError(r.db.WithContext(ctx).Create(reg).Error)
}

func (r *gormTradingRegistrations) List(ctx context.Context, q ListQuery) ([]models.TradingRegistration, int64, error) {
	return gormPage[models.TradingRegistration](ctx, r.db, q, tradingSorts,
		statusScope("registration_status", q.Status),
		searchScope(q.Search),
	)
}

func (r *gormTradingRegistrations) Get(ctx context.Context, id string) (*models.TradingRegistration, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var reg models.TradingRegistration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error; err != nil {
		return nil, mapGormError(err)
	}
	return &reg, nil
}

func (r *gormTradingRegistrations) Update(ctx context.Context, reg *models.TradingRegistration) error {
	if !validID(reg.ID) {
		return ErrNotFound
	}
	reg.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(reg).Select("*").Omit("id", "created_at").Updates(reg)
	if res.Error != nil {
		return mapGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTradingRegistrations) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus, adminNotes *string) (*models.TradingRegistration, error) {
	updates := map[string]interface{}{
		"registration_status": status,
		"updated_at":          time.Now(),
	}
	if adminNotes != nil {
		updates["admin_notes"] = *adminNotes
	}
	return r.updateColumns(ctx, id, updates)
}

func (r *gormTradingRegistrations) SetVerification(ctx context.Context, id string, flag models.VerificationFlag, value bool) (*models.TradingRegistration, error) {
	column := flag.Column()
	if column == "" {
		return nil, fmt.Errorf("unknown verification flag %q", flag)
	}
	return r.updateColumns(ctx, id, map[string]interface{}{
		column:       value,
		"updated_at": time.Now(),
	})
}

func (r *gormTradingRegistrations) updateColumns(ctx context.Context, id string, updates map[string]interface{}) (*models.TradingRegistration, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&models.TradingRegistration{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, mapGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *gormTradingRegistrations) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TradingRegistration{})
	if res.Error != nil {
		return mapGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTradingRegistrations) Stats(ctx context.Context, since time.Time) (*models.RegistrationStats, error) {
	stats := models.NewRegistrationStats()
	db := r.db.WithContext(ctx)

	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.TradingRegistration{}).
		Select("registration_status AS status, COUNT(*) AS count").
		Group("registration_status").
		Scan(&rows).Error
	if err != nil {
		return nil, mapGormError(err)
	}
	for _, row := range rows {
		stats.ByStatus[models.RegistrationStatus(row.Status)] = row.Count
		stats.Total += row.Count
	}

	if err := db.Model(&models.TradingRegistration{}).Where("created_at >= ?", since).Count(&stats.Today).Error; err != nil {
		return nil, mapGormError(err)
	}

	err = db.Model(&models.TradingRegistration{}).Where(map[string]interface{}{
		models.AadharVerified.Column():    true,
		models.SignatureVerified.Column(): true,
		models.EmailVerified.Column():     true,
		models.PhoneVerified.Column():     true,
	}).Count(&stats.FullyVerified).Error
	if err != nil {
		return nil, mapGormError(err)
	}
	stats.NotFullyVerified = stats.Total - stats.FullyVerified

	return stats, nil
}

type gormPayments struct {
	db *gorm.DB
}

func (r *gormPayments) Create(ctx context.Context, payment *models.PaymentRecord) error {
	payment.ID = uuid.NewString()
	return mapGormError(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *gormPayments) List(ctx context.Context, q ListQuery) ([]models.PaymentRecord, int64, error) {
	return gormPage[models.PaymentRecord](ctx, r.db, q, paymentSorts, statusScope("payment_status", q.Status))
}
