package handler

import (
	"errors"
	"net/http"
	"time"

	"rental-service/internal/middleware"
	"rental-service/internal/model"
	"rental-service/internal/service"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PropertyHandler is the thin CRUD surface for rental listings. Any
// authenticated user in the namespace may act; there is no extra
// authorization beyond the bearer check.
type PropertyHandler struct {
	db    *gorm.DB
	plans service.PlanSource
}

// NewPropertyHandler creates the property HTTP surface.
func NewPropertyHandler(db *gorm.DB, plans service.PlanSource) *PropertyHandler {
	return &PropertyHandler{db: db, plans: plans}
}

// Create lists a new property. Address and title are unique per namespace.
func (h *PropertyHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	caller, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Price       int    `json:"price"`
		Address     string `json:"address"`
		CoverImage  string `json:"cover_image"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" || req.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and address are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var existing model.Property
	err = h.db.Table(ns.Table("properties")).Where("address = ?", req.Address).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "property already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("Property lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if h.plans != nil {
		plan, perr := h.plans.PlanFor(ns)
		if perr != nil {
			log.Error("Plan lookup failed", zap.Error(perr))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		if plan != nil && plan.MaxProperties > 0 {
			var count int64
			if cerr := h.db.Table(ns.Table("properties")).Count(&count).Error; cerr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if count >= int64(plan.MaxProperties) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant property limit reached"})
			}
		}
	}

	property := model.Property{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Status:      model.PropertyAvailable,
		Address:     req.Address,
		CoverImage:  req.CoverImage,
		AgentID:     caller.ID,
		ListedAt:    time.Now(),
	}
	if err := h.db.Table(ns.Table("properties")).Create(&property).Error; err != nil {
		log.Error("Failed to create property", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "property creation failed"})
	}

	log.Info("Property created",
		zap.String("id", property.ID.String()),
		zap.String("schema", ns.Schema))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Property created successfully",
		"property": property,
	})
}

// List returns all properties in the namespace.
func (h *PropertyHandler) List(c echo.Context) error {
	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var properties []model.Property
	if err := h.db.Table(ns.Table("properties")).Order("created_at").Find(&properties).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": properties})
}

// Get returns a property by id.
func (h *PropertyHandler) Get(c echo.Context) error {
	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var property model.Property
	err = h.db.Table(ns.Table("properties")).Where("id = ?", id).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, property)
}

// Update applies partial changes to a property.
func (h *PropertyHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property ID"})
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Price       *int    `json:"price"`
		Status      *string `json:"status"`
		Address     *string `json:"address"`
		CoverImage  *string `json:"cover_image"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Status != nil {
		switch model.PropertyStatus(*req.Status) {
		case model.PropertyAvailable, model.PropertyRented, model.PropertySold:
			updates["status"] = *req.Status
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property status"})
		}
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.CoverImage != nil {
		updates["cover_image"] = *req.CoverImage
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Table(ns.Table("properties")).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		log.Error("Failed to update property", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Property updated successfully"})
}

// Delete removes a property.
func (h *PropertyHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := h.db.Table(ns.Table("properties")).Where("id = ?", id).Delete(&model.Property{})
	if result.Error != nil {
		log.Error("Failed to delete property", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Property deleted successfully"})
}
