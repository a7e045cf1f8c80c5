package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound signals a lookup miss. Services translate it to a nil
	// return so callers can branch on nil instead of catching errors.
	ErrNotFound = errors.New("record not found")

	// ErrUnsupported is returned by composite-key repositories for the
	// single-id operations they deliberately do not implement.
	ErrUnsupported = errors.New("operation not supported for composite-key repository")
)

// IsNotFoundError reports whether err is a lookup miss, from either this
// package or the underlying driver.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUnsupportedError reports whether err is a composite-key contract
// violation.
func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
