package option

import (
	"strings"
	"time"

	"github.com/voltvend/voltvend/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination applies cursor pagination. The statement fetches one row
// beyond the page size so callers can detect whether more rows remain.
func ApplyPagination(page pagination.Pagination) Option {
	return paginationOption{page: page}
}

func (o paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	pageSize := o.page.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	if token := strings.TrimSpace(o.page.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err == nil {
			createdAt, terr := time.Parse(time.RFC3339, cursor.CreatedAt)
			if terr == nil {
				stmt = stmt.Where(
					"created_at < ? OR (created_at = ? AND id < ?)",
					createdAt, createdAt, cursor.ID,
				)
			}
		}
	}

	return stmt.Limit(pageSize + 1)
}
