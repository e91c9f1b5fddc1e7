package rides

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hasnaanagy/salik/internal/users"
	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/middleware"
	"github.com/hasnaanagy/salik/pkg/pagination"
	"github.com/hasnaanagy/salik/pkg/validation"
)

// Handler handles HTTP requests for rides and bookings
type Handler struct {
	service *Service
}

// NewHandler creates a new rides handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Publish handles publishing a new ride
func (h *Handler) Publish(c *gin.Context) {
	providerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	ride, err := h.service.Publish(c.Request.Context(), providerID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to publish ride")
		return
	}

	common.CreatedResponse(c, ride)
}

// Get handles getting a ride by ID
func (h *Handler) Get(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride ID")
		return
	}

	ride, err := h.service.Get(c.Request.Context(), rideID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get ride")
		return
	}

	common.SuccessResponse(c, ride)
}

// ListUpcoming handles listing scheduled future rides
func (h *Handler) ListUpcoming(c *gin.Context) {
	params := pagination.ParseParams(c)

	rides, total, err := h.service.ListUpcoming(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list rides")
		return
	}

	common.SuccessResponseWithMeta(c, rides, common.Meta{
		Total:  int(total),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
}

// Book handles reserving seats on a ride
func (h *Handler) Book(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride ID")
		return
	}

	var req BookRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindMessage(err))
		return
	}

	booking, err := h.service.Book(c.Request.Context(), rideID, customerID, req.Seats)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to book ride")
		return
	}

	common.CreatedResponse(c, booking)
}

// CancelBooking handles cancelling a booking
func (h *Handler) CancelBooking(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking ID")
		return
	}

	booking, err := h.service.CancelBooking(c.Request.Context(), bookingID, customerID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to cancel booking")
		return
	}

	common.SuccessResponse(c, booking)
}

// MyBookings handles listing the caller's bookings
func (h *Handler) MyBookings(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := h.service.MyBookings(c.Request.Context(), customerID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	common.SuccessResponse(c, bookings)
}

// RegisterRoutes registers ride and booking routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	ridesGroup := r.Group("/api/v1/rides")
	ridesGroup.Use(middleware.AuthMiddleware(jwtSecret))
	{
		ridesGroup.GET("", h.ListUpcoming)
		ridesGroup.GET("/:id", h.Get)
	}

	ridesGroup.POST("", middleware.RequireRole(users.RoleProvider), h.Publish)
	ridesGroup.POST("/:id/book", middleware.RequireRole(users.RoleCustomer), h.Book)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireRole(users.RoleCustomer))
	{
		bookings.GET("", h.MyBookings)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
}
