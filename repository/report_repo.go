package repository

import (
	"context"
	"fmt"

	"elibro/models"
)

const topBooksLimit = 10

// ReportRepository combines the catalog and user stores for the reporting
// endpoints.
type ReportRepository struct {
	Books BookRepository
	Users UserRepository
}

func NewReportRepository(books BookRepository, users UserRepository) *ReportRepository {
	return &ReportRepository{Books: books, Users: users}
}

// TopBooks returns the ten most downloaded books with each book's share of
// their combined downloads.
func (r *ReportRepository) TopBooks(ctx context.Context) ([]models.TopBook, error) {
	books, err := r.Books.TopBooks(ctx, topBooksLimit)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, b := range books {
		total += b.Downloads
	}

	rows := make([]models.TopBook, 0, len(books))
	for _, b := range books {
		pct := "0.00"
		if total > 0 {
			pct = fmt.Sprintf("%.2f", float64(b.Downloads)/float64(total)*100)
		}
		rows = append(rows, models.TopBook{
			ID:         b.ID,
			Title:      b.Title,
			Downloads:  b.Downloads,
			Percentage: pct,
		})
	}
	return rows, nil
}

func (r *ReportRepository) LanguagesDistribution(ctx context.Context) ([]models.LanguageCount, error) {
	return r.Books.LanguagesDistribution(ctx)
}

func (r *ReportRepository) MonthlySignups(ctx context.Context) ([]models.MonthlySignup, error) {
	return r.Users.MonthlySignups(ctx)
}
