package handler

import (
	"errors"
	"net/http"
	"time"

	"rental-service/internal/middleware"
	"rental-service/internal/model"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReservationHandler is the thin CRUD surface for bookings.
type ReservationHandler struct {
	db *gorm.DB
}

// NewReservationHandler creates the reservation HTTP surface.
func NewReservationHandler(db *gorm.DB) *ReservationHandler {
	return &ReservationHandler{db: db}
}

// Create books a property for a client.
func (h *ReservationHandler) Create(c echo.Context) error {
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
		StartDate  time.Time `json:"start_date"`
		EndDate    time.Time `json:"end_date"`
		PropertyID uuid.UUID `json:"property_id"`
		ClientID   uuid.UUID `json:"client_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.PropertyID == uuid.Nil || req.ClientID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id and client_id are required"})
	}
	if !req.EndDate.After(req.StartDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be after start_date"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var property model.Property
	err = h.db.Table(ns.Table("properties")).Where("id = ?", req.PropertyID).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	reservation := model.Reservation{
		ID:         uuid.New(),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     model.ReservationPending,
		PropertyID: req.PropertyID,
		ClientID:   req.ClientID,
		AgentID:    caller.ID,
	}
	if err := h.db.Table(ns.Table("reservations")).Create(&reservation).Error; err != nil {
		log.Error("Failed to create reservation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Reservation created successfully",
		"reservation": reservation,
	})
}

// List returns all reservations in the namespace.
func (h *ReservationHandler) List(c echo.Context) error {
	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var reservations []model.Reservation
	if err := h.db.Table(ns.Table("reservations")).Order("created_at").Find(&reservations).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservations})
}

// Get returns a reservation by id.
func (h *ReservationHandler) Get(c echo.Context) error {
	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var reservation model.Reservation
	err = h.db.Table(ns.Table("reservations")).Where("id = ?", id).First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, reservation)
}

// UpdateStatus moves a reservation through its lifecycle.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation ID"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	switch model.ReservationStatus(req.Status) {
	case model.ReservationPending, model.ReservationConfirmed, model.ReservationCancelled, model.ReservationCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation status"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Table(ns.Table("reservations")).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     req.Status,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		log.Error("Failed to update reservation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation updated successfully"})
}

// Delete cancels and removes a reservation record.
func (h *ReservationHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	ns, err := middleware.MustNamespace(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := h.db.Table(ns.Table("reservations")).Where("id = ?", id).Delete(&model.Reservation{})
	if result.Error != nil {
		log.Error("Failed to delete reservation", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation deleted successfully"})
}
