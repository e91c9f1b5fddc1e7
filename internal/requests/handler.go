package requests

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/middleware"
	"github.com/hasnaanagy/salik/pkg/validation"
)

// Handler handles HTTP requests for the request workflow
type Handler struct {
	service *Service
}

// NewHandler creates a new requests handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create opens a new assistance request
func (h *Handler) Create(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, err := middleware.GetUserRole(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, role, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create request")
		return
	}

	common.CreatedResponse(c, created)
}

// Transition advances a request through its lifecycle
func (h *Handler) Transition(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, err := middleware.GetUserRole(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	updated, err := h.service.Transition(c.Request.Context(), userID, role, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update request")
		return
	}

	common.SuccessResponse(c, updated)
}

// List returns the caller's requests grouped by status
func (h *Handler) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, err := middleware.GetUserRole(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	grouped, err := h.service.List(c.Request.Context(), userID, role)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list requests")
		return
	}

	common.SuccessResponse(c, grouped)
}

// RegisterRoutes registers request workflow routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1/requests")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		api.POST("", h.Create)
		api.PATCH("", h.Transition)
		api.GET("", h.List)
	}
}
