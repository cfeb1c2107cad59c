package routes

import (
	"net/http"

	"go.uber.org/zap"

	"elibro/apierr"
	"elibro/handlers"
	"elibro/models"
)

// withCORS answers preflight requests and stamps CORS headers before the
// mux dispatches.
func withCORS(origin string, next http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-refresh-token")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func SetupRoutes(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	bookHandler *handlers.BookHandler,
	reportHandler *handlers.ReportHandler,
	guard *handlers.Auth,
	corsOrigin string,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return handlers.RecoverWrapper(logger, handlers.LogRequests(logger, h))
	}
	adminOnly := guard.RequireRole(models.RoleAdmin)

	// Auth (browser cookie flow)
	mux.Handle("POST /v1/auth/signup", wrap(authHandler.Signup))
	mux.Handle("POST /v1/auth/signin", wrap(authHandler.Signin))
	mux.Handle("POST /v1/auth/refresh", wrap(authHandler.Refresh))
	mux.Handle("GET /v1/auth/signout", wrap(authHandler.Signout))
	mux.Handle("POST /v1/auth/signout", wrap(authHandler.Signout))
	mux.Handle("GET /v1/auth/me", wrap(guard.RequireAuth(authHandler.Me)))
	mux.Handle("PATCH /v1/auth/change-password", wrap(guard.RequireAuth(authHandler.ChangePassword)))

	// Auth (mobile header flow)
	mux.Handle("POST /v1/mobile/auth/signin", wrap(authHandler.SigninMobile))
	mux.Handle("POST /v1/mobile/auth/refresh", wrap(authHandler.RefreshMobile))

	// Users (admin)
	mux.Handle("POST /v1/users", wrap(guard.RequireAuth(adminOnly(userHandler.CreateUser))))
	mux.Handle("GET /v1/users", wrap(guard.RequireAuth(adminOnly(userHandler.GetAllUsers))))
	mux.Handle("GET /v1/users/{id}", wrap(guard.RequireAuth(adminOnly(userHandler.GetUserByID))))
	mux.Handle("PUT /v1/users/{id}", wrap(guard.RequireAuth(adminOnly(userHandler.UpdateUser))))
	mux.Handle("DELETE /v1/users/{id}", wrap(guard.RequireAuth(adminOnly(userHandler.DeleteUser))))

	// Books
	mux.Handle("GET /v1/books", wrap(bookHandler.GetAllBooks))
	mux.Handle("GET /v1/books/{id}", wrap(bookHandler.GetBookByID))
	mux.Handle("PATCH /v1/books/{id}/downloads", wrap(bookHandler.IncrementDownloads))

	// Reports
	mux.Handle("GET /v1/reports/books/top-books", wrap(guard.RequireAuth(adminOnly(reportHandler.TopBooks))))
	mux.Handle("POST /v1/reports/books/top-books/export", wrap(guard.RequireAuth(adminOnly(reportHandler.ExportTopBooks))))
	mux.Handle("GET /v1/reports/books/languages-distribution", wrap(guard.RequireAuth(reportHandler.LanguagesDistribution)))
	mux.Handle("GET /v1/reports/users/monthly-signups", wrap(guard.RequireAuth(reportHandler.MonthlySignups)))

	// Everything else
	mux.Handle("/", wrap(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteAPIError(w, logger, apierr.NotFound("the requested resource could not be found"))
	}))

	return withCORS(corsOrigin, mux)
}
