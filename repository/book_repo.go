package repository

import (
	"context"

	"elibro/models"
)

// BookFilter narrows catalog listings. Title and Author match
// case-insensitively as substrings; Language matches membership in the
// book's language list.
type BookFilter struct {
	Title    string
	Author   string
	Language string
}

// BookRepository defines the interface for catalog operations.
type BookRepository interface {
	// CreateBook persists a new book, failing with a 409 error when the
	// Gutenberg id is already present.
	CreateBook(ctx context.Context, book *models.Book) error

	// GetAllBooks returns a page of books matching filter, sorted by
	// title. page is zero-based.
	GetAllBooks(ctx context.Context, filter BookFilter, page, limit int) ([]*models.Book, error)

	CountBooks(ctx context.Context, filter BookFilter) (int64, error)

	// GetBookByID returns the book, or nil when absent.
	GetBookByID(ctx context.Context, id string) (*models.Book, error)

	// IncrementDownloads bumps the download counter atomically and returns
	// the updated book, or nil when absent.
	IncrementDownloads(ctx context.Context, id string) (*models.Book, error)

	// TopBooks returns up to limit books ordered by downloads descending.
	TopBooks(ctx context.Context, limit int) ([]*models.Book, error)

	// LanguagesDistribution counts books per language, sorted by language.
	LanguagesDistribution(ctx context.Context) ([]models.LanguageCount, error)
}
