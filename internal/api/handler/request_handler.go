package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/api/middleware"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/service"
)

type RequestHandler struct {
	requestService *service.RequestService
}

func NewRequestHandler(rs *service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: rs}
}

// POST /api/slot-requests
func (h *RequestHandler) Submit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var dto domain.CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.requestService.Submit(c.Request.Context(), actor, dto)
	if err != nil {
		if errors.Is(err, service.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GET /api/slot-requests
func (h *RequestHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, search := pageQuery(c)
	requests, meta, err := h.requestService.List(c.Request.Context(), actor, search, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": requests, "meta": meta})
}

// PUT /api/slot-requests/:id
func (h *RequestHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var dto domain.UpdateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.requestService.UpdateOwn(c.Request.Context(), actor, id, dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVehicleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		case errors.Is(err, service.ErrRequestProcessed), errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found or already processed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusOK, request)
}

// DELETE /api/slot-requests/:id
func (h *RequestHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.requestService.DeleteOwn(c.Request.Context(), actor, id); err != nil {
		if errors.Is(err, service.ErrRequestProcessed) || errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found or already processed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}

// POST /api/slot-requests/:id/approve (admin)
func (h *RequestHandler) Approve(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	request, slot, mailStatus, err := h.requestService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestProcessed), errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found or already processed"})
		case errors.Is(err, repository.ErrNoCompatibleSlot):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No compatible slot available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Request approved",
		"request":      request,
		"slot":         slot,
		"notification": mailStatus,
	})
}

// POST /api/slot-requests/:id/reject (admin)
func (h *RequestHandler) Reject(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	// The rejection reason is optional, an empty body is accepted.
	var dto domain.RejectRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, mailStatus, err := h.requestService.Reject(c.Request.Context(), actor, id, dto.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestProcessed), errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found or already processed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Request rejected",
		"request":      request,
		"notification": mailStatus,
	})
}
