package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elibro/models"
	"elibro/repository"
)

func newReportHandler(t *testing.T) (*ReportHandler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return &ReportHandler{
		Repo:   repository.NewReportRepository(env.books, env.users),
		Logger: env.logger,
	}, env
}

func TestTopBooksReport(t *testing.T) {
	h, env := newReportHandler(t)
	seedBook(t, env.books, 1, "Don Quijote", "Cervantes", []string{"es"}, 60)
	seedBook(t, env.books, 2, "La Regenta", "Alas", []string{"es"}, 30)
	seedBook(t, env.books, 3, "Niebla", "Unamuno", []string{"es"}, 10)

	rec := httptest.NewRecorder()
	h.TopBooks(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/books/top-books", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.TopBook
	decodeData(t, rec, &rows)
	require.Len(t, rows, 3)

	assert.Equal(t, "Don Quijote", rows[0].Title)
	assert.Equal(t, "60.00", rows[0].Percentage)
	assert.Equal(t, "La Regenta", rows[1].Title)
	assert.Equal(t, "30.00", rows[1].Percentage)
	assert.Equal(t, "Niebla", rows[2].Title)
	assert.Equal(t, "10.00", rows[2].Percentage)
}

func TestTopBooksReportCapsAtTen(t *testing.T) {
	h, env := newReportHandler(t)
	for i := int64(1); i <= 12; i++ {
		seedBook(t, env.books, i, "Libro", "Autor", []string{"es"}, i*10)
	}

	rec := httptest.NewRecorder()
	h.TopBooks(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/books/top-books", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.TopBook
	decodeData(t, rec, &rows)
	require.Len(t, rows, 10)
	assert.Equal(t, int64(120), rows[0].Downloads)
	assert.Equal(t, int64(30), rows[9].Downloads)
}

func TestTopBooksReportZeroDownloads(t *testing.T) {
	h, env := newReportHandler(t)
	seedBook(t, env.books, 1, "Don Quijote", "Cervantes", []string{"es"}, 0)

	rec := httptest.NewRecorder()
	h.TopBooks(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/books/top-books", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.TopBook
	decodeData(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "0.00", rows[0].Percentage)
}

func TestLanguagesDistributionReport(t *testing.T) {
	h, env := newReportHandler(t)
	seedBook(t, env.books, 1, "Don Quijote", "Cervantes", []string{"es"}, 10)
	seedBook(t, env.books, 2, "La Regenta", "Alas", []string{"es"}, 5)
	seedBook(t, env.books, 3, "Moby Dick", "Melville", []string{"en"}, 7)

	rec := httptest.NewRecorder()
	h.LanguagesDistribution(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/books/languages-distribution", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.LanguageCount
	decodeData(t, rec, &rows)
	assert.Equal(t, []models.LanguageCount{
		{Language: "en", Count: 1},
		{Language: "es", Count: 2},
	}, rows)
}

func TestMonthlySignupsReport(t *testing.T) {
	h, env := newReportHandler(t)
	env.seedUser(t, "Jane Doe", "jane@example.com", "Secret123!", models.RoleUser)
	env.seedUser(t, "John Doe", "john@example.com", "Secret123!", models.RoleUser)

	rec := httptest.NewRecorder()
	h.MonthlySignups(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/users/monthly-signups", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.MonthlySignup
	decodeData(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].Count)
}
