package postgres

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// isUniqueConstraintViolation reports whether err is a unique-index breach.
// The email column on users and the task_number column on cases both carry
// unique indexes; repositories translate this into their own sentinels. GORM
// surfaces translated driver errors as ErrDuplicatedKey when the dialect
// supports it; the message check covers drivers that do not translate.
func isUniqueConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505") // postgres unique_violation
}
