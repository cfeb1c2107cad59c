package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"elibro/apierr"
	"elibro/models"
	"elibro/repository"
	"elibro/token"
)

// refreshCookieName is the cookie carrying the encrypted refresh token in
// the browser flow.
const refreshCookieName = "jwt"

// refreshCookieMaxAge is the browser-side cookie lifetime. It is shorter
// than the refresh token's own signed expiry on purpose; the cookie going
// stale just forces a new signin.
const refreshCookieMaxAge = 24 * 60 * 60

type AuthHandler struct {
	Users  repository.UserRepository
	Tokens *token.Service
	Logger *zap.Logger
}

type signupRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Signup registers a new account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Logger, apierr.BadRequest("invalid request payload"))
		return
	}
	if req.Fullname == "" || req.Email == "" || req.Password == "" {
		writeError(w, h.Logger, apierr.BadRequest("fullname, email and password are required"))
		return
	}
	if !validFullname(req.Fullname) {
		writeError(w, h.Logger, apierr.BadRequest("fullname must be at least 3 characters long"))
		return
	}
	if !validEmail(req.Email) {
		writeError(w, h.Logger, apierr.BadRequest("invalid email address"))
		return
	}
	if !validPassword(req.Password) {
		writeError(w, h.Logger, apierr.BadRequest("password must be at least 8 characters long and contain upper and lower case letters, a number and a special character"))
		return
	}

	user := &models.User{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleUser,
	}
	if err := h.Users.CreateUser(r.Context(), user); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Signup successful", user.Public())
}

// Signin authenticates with email/password and starts a session: the
// access token goes in the body, the refresh token in an HTTP-only cookie.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticate(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	accessToken, err := h.Tokens.IssueAccessToken(user)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	refreshToken, err := h.Tokens.IssueRefreshToken(r.Context(), user)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	setRefreshCookie(w, refreshToken)
	writeSuccess(w, http.StatusOK, "Signin successful", map[string]string{
		"accessToken": accessToken,
	})
}

// Refresh exchanges the refresh cookie for a new token pair, rotating the
// stored refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, h.Logger, apierr.Unauthorized("refresh token not provided"))
		return
	}

	_, accessToken, refreshToken, err := h.rotate(r, cookie.Value)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	setRefreshCookie(w, refreshToken)
	writeSuccess(w, http.StatusOK, "Refresh successful", map[string]string{
		"accessToken": accessToken,
	})
}

// Signout ends the session: the stored refresh token is cleared and the
// cookie removed. A refresh with the old cookie fails afterwards.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, h.Logger, apierr.NotFound("no active session"))
		return
	}

	user, _, err := h.Tokens.VerifyRefreshToken(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, h.Logger, apierr.NotFound("no active session"))
		return
	}
	if err := h.Tokens.Revoke(r.Context(), user); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated caller's public projection.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, h.Logger, apierr.Unauthorized(""))
		return
	}
	writeSuccess(w, http.StatusOK, "Authenticated user retrieved successfully", user.Public())
}

// ChangePassword re-verifies the current password, then regenerates salt
// and hash for the new one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, h.Logger, apierr.Unauthorized(""))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Logger, apierr.BadRequest("invalid request payload"))
		return
	}
	if !user.CheckPassword(req.CurrentPassword) {
		writeError(w, h.Logger, apierr.Unauthorized("current password is incorrect"))
		return
	}
	if !validPassword(req.NewPassword) {
		writeError(w, h.Logger, apierr.BadRequest("new password must be at least 8 characters long and contain upper and lower case letters, a number and a special character"))
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if err := h.Users.UpdateUser(r.Context(), user); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

// SigninMobile is the cookie-less variant: both tokens are returned in the
// body for clients that cannot hold cookies.
func (h *AuthHandler) SigninMobile(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticate(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	accessToken, err := h.Tokens.IssueAccessToken(user)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	refreshToken, err := h.Tokens.IssueRefreshToken(r.Context(), user)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Signin successful", map[string]string{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// RefreshMobile rotates a refresh token presented in the x-refresh-token
// header instead of a cookie.
func (h *AuthHandler) RefreshMobile(w http.ResponseWriter, r *http.Request) {
	presented := r.Header.Get("x-refresh-token")
	if presented == "" {
		writeError(w, h.Logger, apierr.Unauthorized("refresh token not provided"))
		return
	}

	_, accessToken, refreshToken, err := h.rotate(r, presented)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Refresh successful", map[string]string{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

func (h *AuthHandler) authenticate(r *http.Request) (*models.User, error) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apierr.BadRequest("invalid request payload")
	}
	if req.Email == "" || req.Password == "" {
		return nil, apierr.BadRequest("email and password are required")
	}

	user, err := h.Users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		return nil, err
	}
	// Same answer whether the account is missing or the password is wrong.
	if user == nil || !user.CheckPassword(req.Password) {
		return nil, apierr.Unauthorized("invalid email or password")
	}
	return user, nil
}

func (h *AuthHandler) rotate(r *http.Request, presented string) (*models.User, string, string, error) {
	user, _, err := h.Tokens.VerifyRefreshToken(r.Context(), presented)
	if err != nil {
		return nil, "", "", apierr.Unauthorized("invalid or expired refresh token")
	}

	accessToken, err := h.Tokens.IssueAccessToken(user)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := h.Tokens.IssueRefreshToken(r.Context(), user)
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/v1/auth",
		MaxAge:   refreshCookieMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
