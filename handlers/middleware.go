package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"elibro/apierr"
	"elibro/models"
	"elibro/repository"
	"elibro/token"
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

// UserFromContext returns the user attached by RequireAuth, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// Auth is the request guard: it resolves the caller's identity from the
// bearer access token and enforces role-based access.
type Auth struct {
	Tokens *token.Service
	Users  repository.UserRepository
	Logger *zap.Logger
}

// RequireAuth verifies the Authorization bearer token, loads the caller
// and attaches it to the request context. Expired tokens answer 401 with a
// message distinct from forged or malformed ones so clients know whether
// to refresh or to re-authenticate. A user without a stored refresh token
// has no active session and is answered 403.
func (a *Auth) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bearer := bearerToken(r)
		if bearer == "" {
			writeError(w, a.Logger, apierr.Unauthorized("token not provided"))
			return
		}

		claims, err := a.Tokens.VerifyAccessToken(bearer)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				writeError(w, a.Logger, apierr.Unauthorized("token expired"))
				return
			}
			writeError(w, a.Logger, apierr.Unauthorized("invalid token"))
			return
		}

		user, err := a.Users.GetUserByID(r.Context(), claims.User.ID)
		if err != nil {
			writeError(w, a.Logger, err)
			return
		}
		if user == nil {
			writeError(w, a.Logger, apierr.NotFound("user not found"))
			return
		}
		if !user.HasActiveSession() {
			writeError(w, a.Logger, apierr.Forbidden("no active session"))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole gates an already-authenticated request on the caller's role.
func (a *Auth) RequireRole(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeError(w, a.Logger, apierr.Forbidden("you do not have permission to access this resource"))
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next(w, r)
					return
				}
			}
			writeError(w, a.Logger, apierr.Forbidden("you do not have permission to access this resource"))
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
