package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"elibro/apierr"
	"elibro/models"
	"elibro/repository"
)

// memUserRepo is an in-memory UserRepository for handler tests. It keeps
// fields in plaintext but mirrors the real stores' observable behavior:
// passwords are hashed on create, duplicate emails conflict, reads return
// copies so callers mutate nothing until UpdateUser.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (m *memUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apierr.Conflict("the email address is already in use")
		}
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := user.SetPassword(user.Password); err != nil {
		return err
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUserRepo) GetUserByRefreshToken(_ context.Context, encryptedToken string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshToken != "" && u.RefreshToken == encryptedToken {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) GetAllUsers(_ context.Context, page, limit int) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	start := page * limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memUserRepo) CountUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return apierr.NotFound("user not found")
	}
	user.UpdatedAt = time.Now().UTC()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserRepo) SetRefreshToken(_ context.Context, userID, encryptedToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return apierr.NotFound("user not found")
	}
	u.RefreshToken = encryptedToken
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memUserRepo) ClearRefreshToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return apierr.NotFound("user not found")
	}
	u.RefreshToken = ""
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memUserRepo) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apierr.NotFound("user not found")
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) MonthlySignups(_ context.Context) ([]models.MonthlySignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, u := range m.users {
		counts[u.CreatedAt.Format("2006-01")]++
	}
	months := make([]string, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Strings(months)

	rows := make([]models.MonthlySignup, 0, len(months))
	for _, month := range months {
		rows = append(rows, models.MonthlySignup{Month: month, Count: counts[month]})
	}
	return rows, nil
}

// memBookRepo is an in-memory BookRepository with the stores' filter and
// ordering semantics.
type memBookRepo struct {
	mu    sync.Mutex
	books map[string]*models.Book
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{books: make(map[string]*models.Book)}
}

func (m *memBookRepo) CreateBook(_ context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.GutenbergID == book.GutenbergID {
			return apierr.Conflict("the book is already in the catalog")
		}
	}
	if book.ID == "" {
		book.ID = models.NewID()
	}
	cp := *book
	m.books[book.ID] = &cp
	return nil
}

func matchesFilter(b *models.Book, filter repository.BookFilter) bool {
	if filter.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Title)) {
		return false
	}
	if filter.Author != "" {
		found := false
		for _, a := range b.Authors {
			if strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Author)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Language != "" {
		found := false
		for _, l := range b.Languages {
			if l == filter.Language {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *memBookRepo) matching(filter repository.BookFilter) []*models.Book {
	matched := make([]*models.Book, 0, len(m.books))
	for _, b := range m.books {
		if matchesFilter(b, filter) {
			cp := *b
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })
	return matched
}

func (m *memBookRepo) GetAllBooks(_ context.Context, filter repository.BookFilter, page, limit int) ([]*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := m.matching(filter)

	start := page * limit
	if start >= len(matched) {
		return nil, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (m *memBookRepo) CountBooks(_ context.Context, filter repository.BookFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(filter))), nil
}

func (m *memBookRepo) GetBookByID(_ context.Context, id string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.books[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (m *memBookRepo) IncrementDownloads(_ context.Context, id string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	b.Downloads++
	cp := *b
	return &cp, nil
}

func (m *memBookRepo) TopBooks(_ context.Context, limit int) ([]*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.Book, 0, len(m.books))
	for _, b := range m.books {
		cp := *b
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Downloads > all[j].Downloads })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memBookRepo) LanguagesDistribution(_ context.Context) ([]models.LanguageCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range m.books {
		for _, l := range b.Languages {
			counts[l]++
		}
	}
	languages := make([]string, 0, len(counts))
	for l := range counts {
		languages = append(languages, l)
	}
	sort.Strings(languages)

	rows := make([]models.LanguageCount, 0, len(languages))
	for _, l := range languages {
		rows = append(rows, models.LanguageCount{Language: l, Count: counts[l]})
	}
	return rows, nil
}
