package admin

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avdeeva/beautybook/internal/handler"
	"github.com/avdeeva/beautybook/internal/middleware"
	"github.com/avdeeva/beautybook/internal/model"
	"github.com/avdeeva/beautybook/internal/service/booking"
	"github.com/avdeeva/beautybook/internal/service/reminder"
	"github.com/avdeeva/beautybook/internal/service/slot"
)

// Handler serves the admin panel: calendar management, request review and
// reminder toggles. Every route requires a bearer token.
type Handler struct {
	slots     *slot.Service
	bookings  *booking.Service
	reminders *reminder.Service
}

func NewHandler(slots *slot.Service, bookings *booking.Service, reminders *reminder.Service) *Handler {
	return &Handler{
		slots:     slots,
		bookings:  bookings,
		reminders: reminders,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/working-days", h.AddWorkingDay)
	r.POST("/slots", h.AddSlot)
	r.DELETE("/slots/:id", h.DeleteSlot)
	r.POST("/blocked-days", h.BlockDay)
	r.GET("/schedule", h.Schedule)

	bookings := r.Group("/bookings")
	{
		bookings.GET("/pending", h.ListPending)
		bookings.GET("/confirmed", h.ListConfirmed)
		bookings.POST("/:id/approve", h.ApproveBooking)
		bookings.POST("/:id/reject", h.RejectBooking)
		bookings.POST("/:id/cancel", h.RejectBooking)
		bookings.POST("/:id/schedule", h.ScheduleBooking)
	}

	sessions := r.Group("/sessions")
	{
		sessions.GET("/pending", h.AwaitedBooking)
		sessions.POST("/schedule", h.ScheduleAwaited)
	}

	r.GET("/clients", h.ListClients)
	r.GET("/settings/reminders", h.GetReminderConfig)
	r.PUT("/settings/reminders", h.UpdateReminderConfig)
}

func adminID(c *gin.Context) int64 {
	return c.GetInt64(middleware.ContextAdminID)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid ID"))
		return 0, false
	}
	return id, true
}

// AddWorkingDay creates the default slot grid on a date.
func (h *Handler) AddWorkingDay(c *gin.Context) {
	var req model.AddWorkingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.slots.AddWorkingDay(c.Request.Context(), req.Date)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) AddSlot(c *gin.Context) {
	var req model.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.slots.AddSlot(c.Request.Context(), req.Date, req.Time)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.slots.DeleteSlot(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// BlockDay closes a date; active bookings on it are cancelled and the
// affected clients notified.
func (h *Handler) BlockDay(c *gin.Context) {
	var req model.BlockDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	notices, err := h.slots.BlockDay(c.Request.Context(), req.Date)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"cancelled": notices}))
}

func (h *Handler) Schedule(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date is required"))
		return
	}

	schedule, err := h.slots.Schedule(c.Request.Context(), date)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(schedule))
}

func (h *Handler) ListPending(c *gin.Context) {
	pending, err := h.bookings.ListPending(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(pending))
}

func (h *Handler) ListConfirmed(c *gin.Context) {
	confirmed, err := h.bookings.ListConfirmed(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(confirmed))
}

// ApproveBooking confirms a pending request. When the request text cannot be
// resolved to a visit time the response asks for a follow-up call to
// ScheduleBooking with the time spelled out.
func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	approved, err := h.bookings.Approve(c.Request.Context(), adminID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(approved))
}

func (h *Handler) RejectBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	// The reason body is optional.
	var req model.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rejected, err := h.bookings.Reject(c.Request.Context(), adminID(c), id, req.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rejected))
}

// ScheduleBooking supplies the visit time for a request the extractor could
// not resolve.
func (h *Handler) ScheduleBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.ScheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	scheduled, err := h.bookings.Schedule(c.Request.Context(), adminID(c), id, req.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(scheduled))
}

// AwaitedBooking shows which booking the admin's next time message would
// confirm, if an approve is waiting on a manual time.
func (h *Handler) AwaitedBooking(c *gin.Context) {
	awaited, err := h.bookings.AwaitedBooking(c.Request.Context(), adminID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(awaited))
}

// ScheduleAwaited supplies the visit time for the awaited booking without
// naming its id.
func (h *Handler) ScheduleAwaited(c *gin.Context) {
	var req model.ScheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	scheduled, err := h.bookings.ScheduleAwaited(c.Request.Context(), adminID(c), req.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(scheduled))
}

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.bookings.Clients(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clients))
}

func (h *Handler) GetReminderConfig(c *gin.Context) {
	cfg, err := h.reminders.Config(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cfg))
}

// UpdateReminderConfig replaces all four toggles at once. Partial bodies are
// rejected rather than defaulting the missing leads to off.
func (h *Handler) UpdateReminderConfig(c *gin.Context) {
	var req model.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	cfg := req.Config()
	if err := h.reminders.UpdateConfig(c.Request.Context(), cfg); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cfg))
}
