package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"elibro/apierr"
	"elibro/models"
)

// PostgresBookRepo stores the book's nested arrays (authors, translators,
// formats, subjects, languages, bookshelves) as JSONB columns.
type PostgresBookRepo struct {
	DB *sql.DB
}

func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{DB: db}
}

const bookColumns = `id, gutenberg_id, title, type, authors, translators, subjects, languages, formats, bookshelves, copyright, downloads`

func (r *PostgresBookRepo) CreateBook(ctx context.Context, book *models.Book) error {
	existing, err := r.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE gutenberg_id = $1`, book.GutenbergID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apierr.Conflict("a book with this Gutenberg ID already exists")
	}

	if book.ID == "" {
		book.ID = models.NewID()
	}
	authors, translators, subjects, languages, formats, shelves, err := marshalBookArrays(book)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO books (id, gutenberg_id, title, type, authors, translators, subjects, languages, formats, bookshelves, copyright, downloads)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, book.ID, book.GutenbergID, book.Title, book.Type,
		authors, translators, subjects, languages, formats, shelves,
		book.Copyright, book.Downloads)
	return err
}

func (r *PostgresBookRepo) GetAllBooks(ctx context.Context, filter BookFilter, page, limit int) ([]*models.Book, error) {
	where, args := filterToSQL(filter)
	args = append(args, page*limit, limit)
	query := fmt.Sprintf(`
		SELECT `+bookColumns+` FROM books
		%s
		ORDER BY title
		OFFSET $%d LIMIT $%d
	`, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *PostgresBookRepo) CountBooks(ctx context.Context, filter BookFilter) (int64, error) {
	where, args := filterToSQL(filter)
	var total int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM books `+where, args...).Scan(&total)
	return total, err
}

func (r *PostgresBookRepo) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	return r.findOne(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
}

func (r *PostgresBookRepo) IncrementDownloads(ctx context.Context, id string) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE books SET downloads = downloads + 1
		WHERE id = $1
		RETURNING `+bookColumns, id)
	book, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

func (r *PostgresBookRepo) TopBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		ORDER BY downloads DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *PostgresBookRepo) LanguagesDistribution(ctx context.Context) ([]models.LanguageCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT lang, COUNT(*)
		FROM books, jsonb_array_elements_text(languages) AS lang
		GROUP BY lang
		ORDER BY lang
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LanguageCount
	for rows.Next() {
		var row models.LanguageCount
		if err := rows.Scan(&row.Language, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PostgresBookRepo) findOne(ctx context.Context, query string, arg interface{}) (*models.Book, error) {
	book, err := scanBook(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

func filterToSQL(filter BookFilter) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		where += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if filter.Author != "" {
		args = append(args, "%"+filter.Author+"%")
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(authors) a
			WHERE a->>'name' ILIKE $%d)`, len(args))
	}
	if filter.Language != "" {
		args = append(args, filter.Language)
		where += fmt.Sprintf(" AND languages @> to_jsonb(ARRAY[$%d::text])", len(args))
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	book := &models.Book{}
	var authors, translators, subjects, languages, formats, shelves []byte
	if err := row.Scan(
		&book.ID, &book.GutenbergID, &book.Title, &book.Type,
		&authors, &translators, &subjects, &languages, &formats, &shelves,
		&book.Copyright, &book.Downloads,
	); err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw []byte
		dst interface{}
	}{
		{authors, &book.Authors},
		{translators, &book.Translators},
		{subjects, &book.Subjects},
		{languages, &book.Languages},
		{formats, &book.Formats},
		{shelves, &book.Bookshelves},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, err
		}
	}
	return book, nil
}

func marshalBookArrays(book *models.Book) (authors, translators, subjects, languages, formats, shelves []byte, err error) {
	if authors, err = json.Marshal(book.Authors); err != nil {
		return
	}
	if translators, err = json.Marshal(book.Translators); err != nil {
		return
	}
	if subjects, err = json.Marshal(book.Subjects); err != nil {
		return
	}
	if languages, err = json.Marshal(book.Languages); err != nil {
		return
	}
	if formats, err = json.Marshal(book.Formats); err != nil {
		return
	}
	shelves, err = json.Marshal(book.Bookshelves)
	return
}
