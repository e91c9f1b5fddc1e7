package services

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hasnaanagy/salik/internal/users"
	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/middleware"
	"github.com/hasnaanagy/salik/pkg/validation"
)

// Handler handles HTTP requests for service offerings
type Handler struct {
	manager *Manager
}

// NewHandler creates a new services handler
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Create publishes a new offering
func (h *Handler) Create(c *gin.Context) {
	providerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	s, err := h.manager.Create(c.Request.Context(), providerID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create service")
		return
	}

	common.CreatedResponse(c, ToResponse(s))
}

// Get returns one offering
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid service ID")
		return
	}

	s, err := h.manager.Get(c.Request.Context(), id)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get service")
		return
	}

	common.SuccessResponse(c, ToResponse(s))
}

// ListMine returns the caller's offerings
func (h *Handler) ListMine(c *gin.Context) {
	providerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.manager.ListMine(c.Request.Context(), providerID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list services")
		return
	}

	common.SuccessResponse(c, ToResponseList(list))
}

// Update edits an offering
func (h *Handler) Update(c *gin.Context) {
	providerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid service ID")
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	s, err := h.manager.Update(c.Request.Context(), id, providerID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update service")
		return
	}

	common.SuccessResponse(c, ToResponse(s))
}

// Delete removes an offering
func (h *Handler) Delete(c *gin.Context) {
	providerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid service ID")
		return
	}

	if err := h.manager.Delete(c.Request.Context(), id, providerID); err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete service")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

// RegisterRoutes registers offering routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1/services")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		api.GET("/:id", h.Get)
		api.GET("/mine", h.ListMine)
	}

	provider := api.Group("")
	provider.Use(middleware.RequireRole(users.RoleProvider))
	{
		provider.POST("", h.Create)
		provider.PUT("/:id", h.Update)
		provider.DELETE("/:id", h.Delete)
	}
}
