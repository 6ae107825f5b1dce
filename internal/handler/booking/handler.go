package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avdeeva/beautybook/internal/handler"
	"github.com/avdeeva/beautybook/internal/model"
	"github.com/avdeeva/beautybook/internal/service/booking"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.BookSlot)
		bookings.GET("/active", h.ActiveBooking)
		bookings.POST("/:id/cancel", h.Cancel)
	}
	r.POST("/booking-requests", h.CreateRequest)
}

// BookSlot books a specific free slot. Conflicts come back as 409.
func (h *Handler) BookSlot(c *gin.Context) {
	var req model.BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.BookSlot(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

// CreateRequest accepts a free-text booking request. Any text is accepted;
// the admin resolves the visit time later.
func (h *Handler) CreateRequest(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, detected, err := h.service.CreateRequest(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"booking":     created,
		"detected_at": detected,
	}))
}

func (h *Handler) ActiveBooking(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Query("client_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client_id"))
		return
	}

	active, err := h.service.ActiveBooking(c.Request.Context(), clientID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(active))
}

// Cancel cancels the caller's own booking. Someone else's booking id yields
// the same 404 as a nonexistent one.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	var req model.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), id, req.ClientID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cancelled))
}
