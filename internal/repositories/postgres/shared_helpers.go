package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/repositories"
)

// wrapError wraps a query error after mapping it onto the repository sentinels
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", op, repositories.TranslateError(err))
}

// requireAffected turns a statement that touched no rows into ErrNotFound
func requireAffected(op string, result *gorm.DB) error {
	if result.Error != nil {
		return wrapError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to %s: %w", op, repositories.ErrNotFound)
	}
	return nil
}

// applyPage applies limit/offset for a 1-based page; a non-positive limit returns every row
func applyPage(query *gorm.DB, page, limit int) *gorm.DB {
	if limit <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(limit).Offset((page - 1) * limit)
}

// containsPattern builds an ILIKE pattern, escaping the wildcards in the search term
func containsPattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(term)) + "%"
}

// applySort orders by a whitelisted column, falling back to created_at DESC
func applySort(query *gorm.DB, sortBy string, allowed map[string]string) *gorm.DB {
	if order, ok := allowed[sortBy]; ok {
		return query.Order(order)
	}
	return query.Order("created_at DESC")
}
