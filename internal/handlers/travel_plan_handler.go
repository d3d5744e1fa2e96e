package handlers

import (
	"net/http"

	"travelbuddy_backend/internal/middleware"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/services"
	"travelbuddy_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TravelPlanHandler struct {
	*BaseHandler
	planService services.TravelPlanService
}

func NewTravelPlanHandler(base *BaseHandler, planService services.TravelPlanService) *TravelPlanHandler {
	return &TravelPlanHandler{
		BaseHandler: base,
		planService: planService,
	}
}

func (h *TravelPlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/travel-plans")
	{
		plans.GET("", h.ListPlans)
		plans.GET("/:id", h.GetPlan)
	}

	authed := rg.Group("/travel-plans")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("", h.CreatePlan)
		authed.GET("/match", h.MatchPlans)
		authed.PATCH("/:id", h.UpdatePlan)
		authed.DELETE("/:id", h.DeletePlan)
		authed.POST("/:id/join", h.JoinPlan)
		authed.GET("/:id/participants", h.GetParticipants)
		authed.PATCH("/:id/participants/:userId", h.RespondToJoinRequest)
	}
}

// CreatePlan godoc
// @Summary Create a travel plan
// @Tags travel-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTravelPlanRequest true "Plan data"
// @Success 201 {object} dto.TravelPlanResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /api/v1/travel-plans [post]
func (h *TravelPlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTravelPlanRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	plan, err := h.planService.CreatePlan(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": plan})
}

func (h *TravelPlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": plan})
}

func (h *TravelPlanHandler) ListPlans(c *gin.Context) {
	var criteria dto.PlanSearchCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	plans, err := h.planService.ListPlans(criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": plans})
}

func (h *TravelPlanHandler) MatchPlans(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var criteria dto.PlanSearchCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	matches, err := h.planService.MatchPlans(userID, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": matches})
}

func (h *TravelPlanHandler) UpdatePlan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTravelPlanRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	plan, err := h.planService.UpdatePlan(userID, middleware.IsAdmin(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": plan})
}

func (h *TravelPlanHandler) DeletePlan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(userID, middleware.IsAdmin(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Travel plan deleted"})
}

// ---------------- Participants ----------------

func (h *TravelPlanHandler) JoinPlan(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	participant, err := h.planService.JoinPlan(userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": participant})
}

func (h *TravelPlanHandler) GetParticipants(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	participants, err := h.planService.GetParticipants(userID, middleware.IsAdmin(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": participants})
}

type respondRequest struct {
	Status string `json:"status" binding:"required,oneof=ACCEPTED REJECTED"`
}

func (h *TravelPlanHandler) RespondToJoinRequest(c *gin.Context) {
	hostID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req respondRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	participant, err := h.planService.RespondToJoinRequest(
		hostID, c.Param("id"), c.Param("userId"), models.ParticipantStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": participant})
}
