package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/api/middleware"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/service"
)

type VehicleHandler struct {
	vehicleService *service.VehicleService
}

func NewVehicleHandler(vs *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vs}
}

// POST /api/vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var dto domain.VehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.vehicleService.Create(c.Request.Context(), actor, dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVehicleType), errors.Is(err, service.ErrInvalidVehicleSize):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrDuplicateEntry):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Plate number already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// GET /api/vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, search := pageQuery(c)
	vehicles, meta, err := h.vehicleService.List(c.Request.Context(), actor, search, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles, "meta": meta})
}

// PUT /api/vehicles/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var dto domain.VehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.vehicleService.Update(c.Request.Context(), actor, id, dto)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		case errors.Is(err, service.ErrInvalidVehicleType), errors.Is(err, service.ErrInvalidVehicleSize):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrDuplicateEntry):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Plate number already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// DELETE /api/vehicles/:id
func (h *VehicleHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), actor, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}
