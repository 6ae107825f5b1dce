package slot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avdeeva/beautybook/internal/handler"
	"github.com/avdeeva/beautybook/internal/service/slot"
)

type Handler struct {
	service *slot.Service
}

func NewHandler(service *slot.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	slots := r.Group("/slots")
	{
		slots.GET("/dates", h.AvailableDates)
		slots.GET("", h.FreeSlots)
	}
}

// AvailableDates lists upcoming dates that still have free slots.
func (h *Handler) AvailableDates(c *gin.Context) {
	dates, err := h.service.AvailableDates(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dates))
}

// FreeSlots lists the open slots on one date, given as DD.MM.YYYY.
func (h *Handler) FreeSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date is required"))
		return
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), date)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}
