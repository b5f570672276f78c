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

type SlotHandler struct {
	slotService *service.SlotService
}

func NewSlotHandler(ss *service.SlotService) *SlotHandler {
	return &SlotHandler{slotService: ss}
}

// POST /api/parking-slots/bulk (admin)
func (h *SlotHandler) BulkCreate(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var dto domain.BulkSlotsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots, err := h.slotService.BulkCreate(c.Request.Context(), actor, dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVehicleType), errors.Is(err, service.ErrInvalidVehicleSize):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrDuplicateEntry):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot number already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Slots created", "slots": slots})
}

// GET /api/parking-slots
func (h *SlotHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, search := pageQuery(c)
	slots, meta, err := h.slotService.List(c.Request.Context(), actor, search, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": slots, "meta": meta})
}

// PUT /api/parking-slots/:id (admin)
func (h *SlotHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var dto domain.SlotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.slotService.Update(c.Request.Context(), actor, id, dto)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		case errors.Is(err, service.ErrInvalidVehicleType), errors.Is(err, service.ErrInvalidVehicleSize):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrDuplicateEntry):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot number already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusOK, slot)
}

// DELETE /api/parking-slots/:id (admin)
func (h *SlotHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.slotService.Delete(c.Request.Context(), actor, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted"})
}
