package handler

import (
	"net/http"
	"time"

	"rental-service/internal/apperr"
	"rental-service/internal/middleware"
	"rental-service/internal/service"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler exposes signup, signin, signout and refresh.
//
// Signin failures are deliberately uniform at this boundary: "user not found"
// and "wrong password" both surface as 401 "invalid credentials" so account
// existence cannot be probed. The distinct error kinds still reach logs and
// metrics.
type AuthHandler struct {
	auth  *service.AuthService
	codec *jwtutil.JWTUtil
}

// NewAuthHandler creates the auth HTTP surface.
func NewAuthHandler(auth *service.AuthService, codec *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{auth: auth, codec: codec}
}

// Signup handles public registration.
func (h *AuthHandler) Signup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	result, err := h.auth.Signup(ns, service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		log.Warn("Signup failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError(apperr.Kind(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	prometheus.IncreaseActiveTokens()
	return c.JSON(http.StatusCreated, result)
}

// Signin handles credential login.
func (h *AuthHandler) Signin(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SigninCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signin request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	result, err := h.auth.Signin(ns, service.SigninInput{Email: req.Email, Password: req.Password})
	if err != nil {
		log.Warn("Signin failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError(apperr.Kind(err))
		if apperr.IsKind(err, "user_not_found") || apperr.IsKind(err, "invalid_password") {
			// Uniform response, see type doc.
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	if !result.PairReplaced {
		prometheus.IncreaseActiveTokens()
	}
	return c.JSON(http.StatusOK, result)
}

// Signout deletes the caller's active token pair.
func (h *AuthHandler) Signout(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	removed, err := h.auth.Signout(ns, user.ID)
	if err != nil {
		log.Error("Signout failed", zap.Error(err))
		prometheus.RecordAuthError(apperr.Kind(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	if removed {
		prometheus.DecreaseActiveTokens()
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User signed out successfully"})
}

// Refresh rotates a token pair. The refresh token is presented in the body
// and must verify with kind "refresh"; an access token here is rejected.
func (h *AuthHandler) Refresh(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RefreshCounter.Inc()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}

	userID, kind, err := h.codec.Parse(req.RefreshToken)
	if err != nil || kind != jwtutil.KindRefresh {
		log.Warn("Refresh with invalid token", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result, err := h.auth.Refresh(ns, userID, req.RefreshToken)
	if err != nil {
		log.Warn("Refresh failed", zap.String("user_id", userID.String()), zap.Error(err))
		prometheus.RecordAuthError(apperr.Kind(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	return c.JSON(http.StatusOK, result)
}
