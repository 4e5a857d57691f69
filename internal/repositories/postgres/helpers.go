package postgres

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers holds query building shared by the gorm repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort orders by sortBy when it is in allowed, else by fallback.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed []string, fallback string) *gorm.DB {
	column := fallback
	for _, a := range allowed {
		if a == sortBy {
			column = a
			break
		}
	}
	direction := "ASC"
	if sortOrder == "desc" {
		direction = "DESC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, direction))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// TranslateError maps gorm sentinel errors onto the repository ones.
func (h *SharedHelpers) TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	default:
		return err
	}
}
