package handler

import (
	"net/http"
	"time"

	"rental-service/internal/apperr"
	"rental-service/internal/middleware"
	"rental-service/internal/model"
	"rental-service/internal/service"
	"rental-service/internal/tenant"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler exposes tenant provisioning and lookup in the public schema.
type TenantHandler struct {
	resolver *tenant.Resolver
	access   *service.AccessControl
}

// NewTenantHandler creates the tenant management HTTP surface.
func NewTenantHandler(resolver *tenant.Resolver, access *service.AccessControl) *TenantHandler {
	return &TenantHandler{resolver: resolver, access: access}
}

// Create provisions a tenant: persists the identifier→schema mapping,
// creates the schema and tables, and records a pending domain verification
// when a custom domain is supplied. Provisioning an existing tenant is
// idempotent.
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	caller, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.access.RequireAnyOf(caller.Role, model.RoleSuperadmin, model.RoleAdmin); err != nil {
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	var req struct {
		Name         string     `json:"name"`
		CustomDomain string     `json:"custom_domain,omitempty"`
		PlanID       *uuid.UUID `json:"plan_id,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	row, err := h.resolver.Provision(req.Name, req.CustomDomain, req.PlanID)
	if err != nil {
		log.Error("Tenant provisioning failed", zap.String("name", req.Name), zap.Error(err))
		prometheus.RecordTenantError(apperr.Kind(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	log.Info("Tenant provisioned",
		zap.String("name", row.Name),
		zap.String("schema", row.SchemaName))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tenant created successfully",
		"tenant":  row,
	})
}

// Get returns tenant details with the plan preloaded.
func (h *TenantHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	row, err := h.resolver.FindByID(id)
	if err != nil {
		log.Warn("Tenant lookup failed", zap.String("id", id.String()), zap.Error(err))
		prometheus.RecordTenantError(apperr.Kind(err))
		return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
	}

	return c.JSON(http.StatusOK, row)
}
