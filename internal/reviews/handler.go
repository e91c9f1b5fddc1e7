package reviews

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hasnaanagy/salik/internal/users"
	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/middleware"
	"github.com/hasnaanagy/salik/pkg/validation"
)

// Handler handles HTTP requests for reviews
type Handler struct {
	service *Service
}

// NewHandler creates a new reviews handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ReviewService handles submitting a service review
func (h *Handler) ReviewService(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid service ID")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	review, err := h.service.ReviewService(c.Request.Context(), serviceID, customerID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to submit review")
		return
	}

	common.CreatedResponse(c, review)
}

// ListServiceReviews handles listing a service's reviews
func (h *Handler) ListServiceReviews(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid service ID")
		return
	}

	reviews, err := h.service.ListServiceReviews(c.Request.Context(), serviceID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	common.SuccessResponse(c, reviews)
}

// DeleteServiceReview handles deleting the caller's service review
func (h *Handler) DeleteServiceReview(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid review ID")
		return
	}

	if err := h.service.DeleteServiceReview(c.Request.Context(), reviewID, customerID); err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete review")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

// ReviewProvider handles submitting a provider review
func (h *Handler) ReviewProvider(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	review, err := h.service.ReviewProvider(c.Request.Context(), providerID, customerID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to submit review")
		return
	}

	common.CreatedResponse(c, review)
}

// ListProviderReviews handles listing a provider's reviews
func (h *Handler) ListProviderReviews(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid provider ID")
		return
	}

	reviews, err := h.service.ListProviderReviews(c.Request.Context(), providerID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	common.SuccessResponse(c, reviews)
}

// DeleteProviderReview handles deleting the caller's provider review
func (h *Handler) DeleteProviderReview(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid review ID")
		return
	}

	if err := h.service.DeleteProviderReview(c.Request.Context(), reviewID, customerID); err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete review")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

// RegisterRoutes registers review routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	serviceReviews := r.Group("/api/v1/services/:id/reviews")
	serviceReviews.Use(middleware.AuthMiddleware(jwtSecret))
	{
		serviceReviews.GET("", h.ListServiceReviews)
		serviceReviews.POST("", middleware.RequireRole(users.RoleCustomer), h.ReviewService)
		serviceReviews.DELETE("/:review_id", middleware.RequireRole(users.RoleCustomer), h.DeleteServiceReview)
	}

	providerReviews := r.Group("/api/v1/providers/:id/reviews")
	providerReviews.Use(middleware.AuthMiddleware(jwtSecret))
	{
		providerReviews.GET("", h.ListProviderReviews)
		providerReviews.POST("", middleware.RequireRole(users.RoleCustomer), h.ReviewProvider)
		providerReviews.DELETE("/:review_id", middleware.RequireRole(users.RoleCustomer), h.DeleteProviderReview)
	}
}
