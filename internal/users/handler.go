package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/middleware"
	"github.com/hasnaanagy/salik/pkg/validation"
)

// Handler handles HTTP requests for accounts
type Handler struct {
	service *Service
}

// NewHandler creates a new users handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Signup handles account registration
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	resp, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to sign up")
		return
	}

	common.CreatedResponse(c, resp)
}

// Login handles authentication
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to log in")
		return
	}

	common.SuccessResponse(c, resp)
}

// GetMe returns the caller's profile
func (h *Handler) GetMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get profile")
		return
	}

	common.SuccessResponse(c, user)
}

// UpdateMe updates the caller's profile
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	common.SuccessResponse(c, user)
}

// SwitchRole toggles the caller between customer and provider
func (h *Handler) SwitchRole(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.SwitchRole(c.Request.Context(), userID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to switch role")
		return
	}

	common.SuccessResponse(c, user)
}

// ReviewDocument handles an admin's document verification decision
func (h *Handler) ReviewDocument(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req UpdateDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	user, err := h.service.SetDocumentStatus(c.Request.Context(), targetID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update document status")
		return
	}

	common.SuccessResponse(c, user)
}

// RegisterRoutes registers account routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
	}

	me := api.Group("/users/me")
	me.Use(middleware.AuthMiddleware(jwtSecret))
	{
		me.GET("", h.GetMe)
		me.PUT("", h.UpdateMe)
		me.PATCH("/role", h.SwitchRole)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireRole(RoleAdmin))
	{
		admin.PATCH("/users/:id/documents", h.ReviewDocument)
	}
}
