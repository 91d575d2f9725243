package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/prof-it/school-service/internal/repositories"
)

// handleDBError is a package-level helper for wrapping database errors.
// Missing records surface as repositories.ErrNotFound so services can
// tell an empty lookup apart from a failing database.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", operation, repositories.ErrNotFound)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPaginationAndSort applies pagination and sorting with a column
// whitelist so user input never reaches the ORDER BY clause directly.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed map[string]string) *gorm.DB {
	column, ok := allowed[sortBy]
	if !ok {
		column = "created_at"
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
