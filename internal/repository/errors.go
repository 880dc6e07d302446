package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Repository-level sentinel errors.
// These are distinct from service errors but can be mapped to them.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrDataTooLong indicates data exceeds column capacity.
	ErrDataTooLong = errors.New("data too long for column")

	// ErrSchemaMissing indicates the archive tables have not been migrated.
	ErrSchemaMissing = errors.New("archive schema missing, run lnkgen migrate")
)

// MySQL server error numbers handled by ParseDBError.
const (
	mysqlDupEntry    = 1062 // ER_DUP_ENTRY
	mysqlDataTooLong = 1406 // ER_DATA_TOO_LONG
	mysqlNoSuchTable = 1146 // ER_NO_SUCH_TABLE
)

// ParseDBError converts MySQL-specific errors to repository errors.
func ParseDBError(err error) error {
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDupEntry:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case mysqlDataTooLong:
			return fmt.Errorf("%w: %v", ErrDataTooLong, err)
		case mysqlNoSuchTable:
			return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
	}

	// Fallback to string matching for wrapped driver errors
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "Duplicate entry"):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case strings.Contains(errStr, "Data too long"):
		return fmt.Errorf("%w: %v", ErrDataTooLong, err)
	default:
		return err
	}
}
