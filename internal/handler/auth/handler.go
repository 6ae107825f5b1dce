package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avdeeva/beautybook/internal/config"
	"github.com/avdeeva/beautybook/internal/handler"
	"github.com/avdeeva/beautybook/internal/model"
	"github.com/avdeeva/beautybook/pkg/auth"
	"github.com/avdeeva/beautybook/pkg/security"
)

type Handler struct {
	jwtService *auth.JWTService
	admin      config.AdminConfig
}

func NewHandler(jwtService *auth.JWTService, admin config.AdminConfig) *Handler {
	return &Handler{jwtService: jwtService, admin: admin}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

// Login exchanges the admin password for a bearer token. There is a single
// admin account, configured at deploy time.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := security.CheckPassword(req.Password, h.admin.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid credentials"))
		return
	}

	token, err := h.jwtService.GenerateToken(h.admin.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"token": token}))
}
