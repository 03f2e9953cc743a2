package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book is soft-deleted through gorm.Model's DeletedAt, so the default scope
// hides deleted rows from every query. The isbn index only covers live rows.
type Book struct {
	gorm.Model
	Title       string          `gorm:"size:255;not null"`
	Author      string          `gorm:"size:255;not null"`
	ISBN        string          `gorm:"column:isbn;size:20;not null;uniqueIndex:idx_books_isbn,where:deleted_at IS NULL"`
	Price       decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Description string          `gorm:"size:2000"`
	CoverImage  string          `gorm:"size:512"`
	Categories  []Category      `gorm:"many2many:books_categories;"`
}

type Category struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Description string
	Books       []Book `gorm:"many2many:books_categories;"`
}

// CategoryIDs returns the ids of the loaded categories.
func (b Book) CategoryIDs() []uint {
	ids := make([]uint, 0, len(b.Categories))
	for _, c := range b.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
