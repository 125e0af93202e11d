package middleware

import (
	"net/http"
	"strings"

	"rental-service/internal/model"
	"rental-service/internal/repository"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const currentUserKey = "current_user"

// AuthMiddleware validates the bearer token from the Authorization header and
// loads the caller from the request's namespace. Only access-kind tokens are
// accepted here; a refresh token presented as a bearer credential is rejected.
func AuthMiddleware(codec *jwtutil.JWTUtil, users repository.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Get the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			userID, kind, err := codec.Parse(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			if kind != jwtutil.KindAccess {
				log.Warn("Refresh token presented as bearer credential",
					zap.String("user_id", userID.String()))
				prometheus.RecordAuthError("wrong_token_kind")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			ns, err := MustNamespace(c)
			if err != nil {
				return err
			}

			user, err := users.GetUserByID(ns, userID)
			if err != nil {
				log.Error("Failed to load authenticated user", zap.Error(err))
				prometheus.RecordAuthError("user_lookup_failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if user == nil || !user.IsActive {
				prometheus.RecordAuthError("unknown_subject")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
			}

			c.Set(currentUserKey, user)
			log.Debug("Request authenticated",
				zap.String("user_id", user.ID.String()),
				zap.String("role", string(user.Role)))

			return next(c)
		}
	}
}

// CurrentUser returns the authenticated caller. Handlers behind
// AuthMiddleware can rely on it being present.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(currentUserKey).(*model.User)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return user, nil
}
