package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches, including malformed ids.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey matches every *DuplicateKeyError via errors.Is.
	ErrDuplicateKey = errors.New("duplicate key")
)

// DuplicateKeyError reports which unique field rejected a write.
type DuplicateKeyError struct {
	Field string
	Cause error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s: %v", e.Field, e.Cause)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }
func (e *DuplicateKeyError) Unwrap() error        { return e.Cause }

// uniqueMarkers maps index, constraint or column names to the JSON field
// they guard. Checked in order.
var uniqueMarkers = []struct {
	marker string
	field  string
}{
	{"aadhar_number", "aadharNumber"},
	{"aadharNumber", "aadharNumber"},
	{"email", "email"},
}

func duplicateKey(detail string, cause error) *DuplicateKeyError {
	for _, u := range uniqueMarkers {
		if strings.Contains(detail, u.marker) {
			return &DuplicateKeyError{Field: u.field, Cause: cause}
		}
	}
	return &DuplicateKeyError{Field: "record", Cause: cause}
}

// mapGormError normalizes driver errors from postgres (pgx), MySQL and SQLite.
func mapGormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return duplicateKey(pgErr.ConstraintName, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 { // ER_DUP_ENTRY
		return duplicateKey(myErr.Message, err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return duplicateKey(liteErr.Error(), err)
	}

	return err
}

func mapMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return duplicateKey(err.Error(), err)
	}
	return err
}
