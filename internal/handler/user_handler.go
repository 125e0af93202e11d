package handler

import (
	"net/http"
	"time"

	"rental-service/internal/apperr"
	"rental-service/internal/middleware"
	"rental-service/internal/model"
	"rental-service/internal/service"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler exposes user management within the request's tenant namespace.
type UserHandler struct {
	users  *service.UserService
	access *service.AccessControl
}

// NewUserHandler creates the user management HTTP surface.
func NewUserHandler(users *service.UserService, access *service.AccessControl) *UserHandler {
	return &UserHandler{users: users, access: access}
}

// List returns all users in the namespace. Staff only.
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("list")

	caller, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.access.RequireAnyOf(caller.Role, model.RoleSuperadmin, model.RoleAdmin, model.RoleEmployee); err != nil {
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	users, err := h.users.List(ns)
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Create adds a user with an explicit role. Superadmin/admin only.
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("create")

	caller, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.access.RequireAnyOf(caller.Role, model.RoleSuperadmin, model.RoleAdmin); err != nil {
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	user, err := h.users.Create(ns, service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		log.Warn("User creation failed", zap.String("email", req.Email), zap.Error(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// Get returns a single user by id.
func (h *UserHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.users.GetByID(ns, id)
	if err != nil {
		log.Warn("User lookup failed", zap.String("id", id.String()), zap.Error(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	return c.JSON(http.StatusOK, user)
}

// Update modifies a user, gated by the role-update rules.
func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("update")

	caller, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	user, err := h.users.Update(ns, caller, id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		log.Warn("User update failed", zap.String("id", id.String()), zap.Error(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// Delete removes a user. Superadmin/admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("delete")

	caller, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.access.RequireAnyOf(caller.Role, model.RoleSuperadmin, model.RoleAdmin); err != nil {
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.users.Delete(ns, id); err != nil {
		log.Warn("User deletion failed", zap.String("id", id.String()), zap.Error(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
