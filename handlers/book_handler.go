package handlers

import (
	"math"
	"net/http"

	"go.uber.org/zap"

	"elibro/apierr"
	"elibro/models"
	"elibro/repository"
)

type BookHandler struct {
	Repo   repository.BookRepository
	Logger *zap.Logger
}

// defaultLanguage is applied when the catalog query carries no language
// filter.
const defaultLanguage = "es"

type bookListResponse struct {
	TotalBooks int64                 `json:"totalBooks"`
	TotalPages int                   `json:"totalPages"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	Books      []models.BookResponse `json:"books"`
	Language   string                `json:"language"`
}

// GetAllBooks lists the catalog with title/author substring filters, a
// language filter and 1-based pagination.
func (h *BookHandler) GetAllBooks(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 0, 5)

	q := r.URL.Query()
	filter := repository.BookFilter{
		Title:    q.Get("title"),
		Author:   q.Get("author"),
		Language: q.Get("language"),
	}
	if filter.Language == "" {
		filter.Language = defaultLanguage
	}

	books, err := h.Repo.GetAllBooks(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if len(books) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	total, err := h.Repo.CountBooks(r.Context(), filter)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	responses := make([]models.BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, book.Response())
	}

	writeSuccess(w, http.StatusOK, "Books retrieved successfully", bookListResponse{
		TotalBooks: total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Page:       page + 1,
		Limit:      limit,
		Books:      responses,
		Language:   filter.Language,
	})
}

func (h *BookHandler) GetBookByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, h.Logger, apierr.BadRequest("book ID is required"))
		return
	}

	book, err := h.Repo.GetBookByID(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if book == nil {
		writeError(w, h.Logger, apierr.NotFound("book not found"))
		return
	}

	writeSuccess(w, http.StatusOK, "Book retrieved successfully", book.Response())
}

// IncrementDownloads bumps the download counter for a book.
func (h *BookHandler) IncrementDownloads(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, h.Logger, apierr.BadRequest("book ID is required"))
		return
	}

	book, err := h.Repo.IncrementDownloads(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if book == nil {
		writeError(w, h.Logger, apierr.NotFound("book not found"))
		return
	}

	writeSuccess(w, http.StatusOK, "Book downloads incremented successfully", book.Response())
}
