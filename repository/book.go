package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/judyrop/bookstore/models"
)

// BookSortColumns maps sortable request fields to book columns.
var BookSortColumns = map[string]string{
	"id":     "id",
	"title":  "title",
	"author": "author",
	"isbn":   "isbn",
	"price":  "price",
}

// BookFilter holds optional substring filters. Blank fields match anything.
type BookFilter struct {
	Title  string
	Author string
	ISBN   string
}

// Scope ANDs a case-insensitive substring predicate for every non-blank
// field. The soft-delete condition comes from the model's default scope.
func (f BookFilter) Scope() func(*gorm.DB) *gorm.DB {
	predicates := []struct{ column, value string }{
		{"title", f.Title},
		{"author", f.Author},
		{"isbn", f.ISBN},
	}
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range predicates {
			if strings.TrimSpace(p.value) == "" {
				continue
			}
			db = db.Where("LOWER("+p.column+") LIKE ? ESCAPE '\\'", containsPattern(p.value))
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

type BookRepository struct {
	db *gorm.DB
}

func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	return wrap("create book", r.db.WithContext(ctx).Omit("Categories.*").Create(book).Error)
}

func (r *BookRepository) FindByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Preload("Categories").First(&book, id).Error; err != nil {
		return nil, wrap("find book", err)
	}
	return &book, nil
}

// ISBNTaken reports whether a live book other than excludeID uses isbn.
func (r *BookRepository) ISBNTaken(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Book{}).Where("isbn = ?", isbn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, wrap("check isbn", err)
	}
	return count > 0, nil
}

// Update saves the book's columns and replaces its category links.
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Categories").Save(book).Error; err != nil {
		return wrap("update book", err)
	}
	assoc := db.Model(book).Association("Categories")
	if len(book.Categories) == 0 {
		return wrap("clear book categories", assoc.Clear())
	}
	return wrap("update book categories", assoc.Replace(book.Categories))
}

// Delete soft-deletes a live book.
func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if res.Error != nil {
		return wrap("delete book", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete book", ErrNotFound)
	}
	return nil
}

func (r *BookRepository) FindAll(ctx context.Context, page PageRequest) (Page[models.Book], error) {
	return r.Search(ctx, BookFilter{}, page)
}

func (r *BookRepository) Search(ctx context.Context, filter BookFilter, page PageRequest) (Page[models.Book], error) {
	out := Page[models.Book]{Page: page.Page, Size: page.Size}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Book{}).Scopes(filter.Scope())
	}
	if err := base().Count(&out.Total).Error; err != nil {
		return out, wrap("count books", err)
	}
	if err := base().Scopes(Paginate(page)).Preload("Categories").Find(&out.Items).Error; err != nil {
		return out, wrap("search books", err)
	}
	return out, nil
}

// FindByCategoryID returns live books linked to the category, ordered by title.
func (r *BookRepository) FindByCategoryID(ctx context.Context, categoryID uint) ([]models.Book, error) {
	var books []models.Book
	err := r.db.WithContext(ctx).
		Joins("JOIN books_categories ON books_categories.book_id = books.id").
		Where("books_categories.category_id = ?", categoryID).
		Order("books.title").
		Find(&books).Error
	return books, wrap("find books by category", err)
}
