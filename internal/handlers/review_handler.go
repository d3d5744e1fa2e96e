package handlers

import (
	"net/http"

	"travelbuddy_backend/internal/middleware"
	"travelbuddy_backend/internal/services"
	"travelbuddy_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/reviews")
	{
		reviews.GET("/user/:id", h.GetUserReviews)
	}

	authed := rg.Group("/reviews")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("", h.CreateUserReview)
		authed.POST("/travel-plans/:planId", h.CreatePlanReview)
		authed.PATCH("/:id", h.UpdateReview)
		authed.DELETE("/:id", h.DeleteReview)
	}

	admin := rg.Group("/admin/reviews")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("", h.ListReviews)
		admin.DELETE("/:id", h.AdminDeleteReview)
	}
}

// CreatePlanReview godoc
// @Summary Review the host of a finished trip
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Travel plan ID"
// @Param request body dto.CreatePlanReviewRequest true "Review"
// @Success 201 {object} dto.ReviewResponse
// @Failure 400 {object} apperrors.ErrorResponse "Trip not finished or not an accepted participant"
// @Failure 409 {object} apperrors.ErrorResponse "Already reviewed"
// @Router /api/v1/reviews/travel-plans/{planId} [post]
func (h *ReviewHandler) CreatePlanReview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePlanReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreatePlanReview(userID, c.Param("planId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": review})
}

func (h *ReviewHandler) CreateUserReview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateUserReview(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": review})
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetUserReviews(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	review, err := h.reviewService.UpdateReview(userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(userID, false, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review deleted"})
}

// ---------------- Admin ----------------

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	reviews, err := h.reviewService.ListReviews(page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
}

func (h *ReviewHandler) AdminDeleteReview(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(adminID, true, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review deleted"})
}
