package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"elibro/apierr"
	"elibro/models"
	"elibro/repository"
)

// UserHandler exposes the admin user CRUD.
type UserHandler struct {
	Repo   repository.UserRepository
	Logger *zap.Logger
}

type createUserRequest struct {
	Fullname string      `json:"fullname"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type updateUserRequest struct {
	Fullname string      `json:"fullname"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Logger, apierr.BadRequest("invalid request payload"))
		return
	}
	if req.Fullname == "" || req.Email == "" || req.Password == "" {
		writeError(w, h.Logger, apierr.BadRequest("fullname, email and password are required"))
		return
	}
	if !validEmail(req.Email) {
		writeError(w, h.Logger, apierr.BadRequest("invalid email address"))
		return
	}
	if !validPassword(req.Password) {
		writeError(w, h.Logger, apierr.BadRequest("password does not meet complexity requirements"))
		return
	}
	if req.Role != "" && req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		writeError(w, h.Logger, apierr.BadRequest("role must be user or admin"))
		return
	}

	user := &models.User{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	if err := h.Repo.CreateUser(r.Context(), user); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User created successfully", user.Public())
}

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 0, 20)

	users, err := h.Repo.GetAllUsers(r.Context(), page, limit)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if len(users) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	projections := make([]models.PublicUser, 0, len(users))
	for _, user := range users {
		projections = append(projections, user.Public())
	}
	writeSuccess(w, http.StatusOK, "Users retrieved successfully", projections)
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.load(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User retrieved successfully", user.Public())
}

// UpdateUser mutates the record load-then-save; concurrent updates of the
// same record are last-writer-wins.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.load(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Logger, apierr.BadRequest("invalid request payload"))
		return
	}
	if req.Fullname != "" {
		user.Fullname = req.Fullname
	}
	if req.Email != "" && req.Email != user.Email {
		if !validEmail(req.Email) {
			writeError(w, h.Logger, apierr.BadRequest("invalid email address"))
			return
		}
		existing, err := h.Repo.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			writeError(w, h.Logger, err)
			return
		}
		if existing != nil {
			writeError(w, h.Logger, apierr.Conflict("the email address is already in use"))
			return
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
			writeError(w, h.Logger, apierr.BadRequest("role must be user or admin"))
			return
		}
		user.Role = req.Role
	}

	if err := h.Repo.UpdateUser(r.Context(), user); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User updated successfully", user.Public())
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.load(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if err := h.Repo.DeleteUser(r.Context(), user.ID); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User deleted successfully", user.Public())
}

func (h *UserHandler) load(r *http.Request) (*models.User, error) {
	id := r.PathValue("id")
	if id == "" {
		return nil, apierr.BadRequest("user ID is required")
	}
	user, err := h.Repo.GetUserByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierr.NotFound("user not found")
	}
	return user, nil
}

// pagination reads the 1-based "page" and "limit" query parameters,
// returning a zero-based page.
func pagination(r *http.Request, defPage, defLimit int) (int, int) {
	page := defPage
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v - 1
	}
	limit := defLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}
