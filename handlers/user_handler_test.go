package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elibro/models"
)

func newUserHandler(t *testing.T) (*UserHandler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return &UserHandler{Repo: env.users, Logger: env.logger}, env
}

func TestAdminCreateUser(t *testing.T) {
	h, env := newUserHandler(t)

	rec := httptest.NewRecorder()
	h.CreateUser(rec, jsonRequest(http.MethodPost, "/v1/users", map[string]string{
		"fullname": "Jane Doe",
		"email":    "jane@example.com",
		"password": "Secret123!",
		"role":     "admin",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.PublicUser
	decodeData(t, rec, &created)
	assert.Equal(t, models.RoleAdmin, created.Role)

	stored, err := env.users.GetUserByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.CheckPassword("Secret123!"))
}

func TestAdminCreateUserDefaultsRole(t *testing.T) {
	h, _ := newUserHandler(t)

	rec := httptest.NewRecorder()
	h.CreateUser(rec, jsonRequest(http.MethodPost, "/v1/users", map[string]string{
		"fullname": "Jane Doe",
		"email":    "jane@example.com",
		"password": "Secret123!",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.PublicUser
	decodeData(t, rec, &created)
	assert.Equal(t, models.RoleUser, created.Role)
}

func TestAdminCreateUserInvalidRole(t *testing.T) {
	h, _ := newUserHandler(t)

	rec := httptest.NewRecorder()
	h.CreateUser(rec, jsonRequest(http.MethodPost, "/v1/users", map[string]string{
		"fullname": "Jane Doe",
		"email":    "jane@example.com",
		"password": "Secret123!",
		"role":     "superuser",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAllUsers(t *testing.T) {
	h, env := newUserHandler(t)

	rec := httptest.NewRecorder()
	h.GetAllUsers(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for i := 0; i < 3; i++ {
		env.seedUser(t, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i), "Secret123!", models.RoleUser)
	}

	rec = httptest.NewRecorder()
	h.GetAllUsers(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.PublicUser
	decodeData(t, rec, &users)
	assert.Len(t, users, 3)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	h.GetAllUsers(rec, httptest.NewRequest(http.MethodGet, "/v1/users?page=1&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &users)
	assert.Len(t, users, 2)
}

func TestGetUserByID(t *testing.T) {
	h, env := newUserHandler(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com", "Secret123!", models.RoleUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/"+user.ID, nil)
	req.SetPathValue("id", user.ID)
	h.GetUserByID(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.PublicUser
	decodeData(t, rec, &got)
	assert.Equal(t, user.Public(), got)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/users/missing", nil)
	req.SetPathValue("id", "missing")
	h.GetUserByID(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	h, env := newUserHandler(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com", "Secret123!", models.RoleUser)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPatch, "/v1/users/"+user.ID, map[string]string{
		"fullname": "Jane Q. Doe",
		"email":    "jane.q@example.com",
		"role":     "admin",
	})
	req.SetPathValue("id", user.ID)
	h.UpdateUser(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", stored.Fullname)
	assert.Equal(t, "jane.q@example.com", stored.Email)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	// Untouched fields survive the update.
	assert.True(t, stored.CheckPassword("Secret123!"))
}

func TestUpdateUserEmailConflict(t *testing.T) {
	h, env := newUserHandler(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com", "Secret123!", models.RoleUser)
	env.seedUser(t, "John Doe", "john@example.com", "Secret123!", models.RoleUser)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPatch, "/v1/users/"+user.ID, map[string]string{
		"email": "john@example.com",
	})
	req.SetPathValue("id", user.ID)
	h.UpdateUser(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateUserInvalidRole(t *testing.T) {
	h, env := newUserHandler(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com", "Secret123!", models.RoleUser)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPatch, "/v1/users/"+user.ID, map[string]string{
		"role": "root",
	})
	req.SetPathValue("id", user.ID)
	h.UpdateUser(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	h, env := newUserHandler(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com", "Secret123!", models.RoleUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/users/"+user.ID, nil)
	req.SetPathValue("id", user.ID)
	h.DeleteUser(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var deleted models.PublicUser
	decodeData(t, rec, &deleted)
	assert.Equal(t, user.ID, deleted.ID)

	stored, err := env.users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/v1/users/"+user.ID, nil)
	req.SetPathValue("id", user.ID)
	h.DeleteUser(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
