package handlers

import (
	"net/http"
	"strings"

	"travelbuddy_backend/internal/logger"
	"travelbuddy_backend/internal/middleware"
	"travelbuddy_backend/internal/services"
	"travelbuddy_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// transactionIDCandidates lists the field names the gateway has been seen
// using for the transaction id, in lookup order. The query string is
// consulted before the form body for each name.
var transactionIDCandidates = []string{
	"transactionId",
	"tran_id",
	"tranId",
	"transaction_id",
	"tid",
}

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pub := rg.Group("/payments")
	{
		// The gateway calls these with no auth; some configurations
		// redirect the customer with GET, others POST the form.
		pub.GET("/success", h.Success)
		pub.POST("/success", h.Success)
		pub.GET("/fail", h.Fail)
		pub.POST("/fail", h.Fail)
		pub.GET("/cancel", h.Cancel)
		pub.POST("/cancel", h.Cancel)
		pub.POST("/validate-payment", h.ValidatePayment)
	}

	authed := rg.Group("/payments")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/init-subscription", h.InitSubscription)
		authed.GET("/my", h.MyPayments)
		authed.GET("/:transactionId", h.GetPayment)
	}

	admin := rg.Group("/admin/payments")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("", h.ListPayments)
	}
}

// InitSubscription godoc
// @Summary Start a premium subscription checkout
// @Description Creates a pending payment and returns the hosted checkout URL
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InitiateSubscriptionRequest true "Plan selection"
// @Success 200 {object} dto.InitiateSubscriptionResponse
// @Failure 400 {object} apperrors.ErrorResponse "Unknown plan, bad coupon or missing phone"
// @Failure 502 {object} apperrors.ErrorResponse "Gateway unavailable"
// @Router /api/v1/payments/init-subscription [post]
func (h *PaymentHandler) InitSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.InitiateSubscriptionRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.paymentService.InitiateSubscription(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// Success handles the gateway's success redirect. The transaction id may
// arrive under several names in either the query string or the form
// body; the customer ends up 302-redirected to the frontend regardless.
func (h *PaymentHandler) Success(c *gin.Context) {
	transactionID, params := h.extractCallbackParams(c)
	if transactionID == "" && params["val_id"] == "" {
		h.malformedCallback(c)
		return
	}

	result, err := h.paymentService.HandleSuccessCallback(c.Request.Context(), transactionID, params)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, result.RedirectURL)
}

func (h *PaymentHandler) Fail(c *gin.Context) {
	transactionID, params := h.extractCallbackParams(c)
	if transactionID == "" {
		h.malformedCallback(c)
		return
	}

	result, err := h.paymentService.HandleFailCallback(c.Request.Context(), transactionID, params)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, result.RedirectURL)
}

func (h *PaymentHandler) Cancel(c *gin.Context) {
	transactionID, params := h.extractCallbackParams(c)
	if transactionID == "" {
		h.malformedCallback(c)
		return
	}

	result, err := h.paymentService.HandleCancelCallback(c.Request.Context(), transactionID, params)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, result.RedirectURL)
}

// ValidatePayment godoc
// @Summary Gateway IPN endpoint
// @Description Authoritative settlement: validates the val_id with the gateway before touching the payment
// @Tags payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} apperrors.ErrorResponse "Missing val_id"
// @Router /api/v1/payments/validate-payment [post]
func (h *PaymentHandler) ValidatePayment(c *gin.Context) {
	_, params := h.extractCallbackParams(c)

	if err := h.paymentService.HandleIPN(c.Request.Context(), params); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "IPN processed"})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(userID, middleware.IsAdmin(c), c.Param("transactionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payment})
}

func (h *PaymentHandler) MyPayments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	payments, err := h.paymentService.GetUserPayments(userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payments})
}

// ---------------- Admin ----------------

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var criteria dto.PaymentSearchCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	payments, err := h.paymentService.ListPayments(criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payments})
}

// ---------------- Callback plumbing ----------------

// extractCallbackParams merges the query string and form body into one
// map and resolves the transaction id against the candidate-field table.
func (h *PaymentHandler) extractCallbackParams(c *gin.Context) (string, map[string]string) {
	params := map[string]string{}

	if err := c.Request.ParseForm(); err != nil {
		logger.CtxWarn(c.Request.Context(), "failed to parse callback form", "error", err)
	}
	// PostForm values win over query values of the same name.
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	for _, candidate := range transactionIDCandidates {
		if v := c.Query(candidate); strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), params
		}
		if v := c.PostForm(candidate); strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), params
		}
	}
	return "", params
}

func (h *PaymentHandler) malformedCallback(c *gin.Context) {
	logger.CtxWarn(c.Request.Context(), "gateway callback without transaction id",
		"path", c.Request.URL.Path, "ip", c.ClientIP())
	c.Data(http.StatusBadRequest, "text/html; charset=utf-8",
		[]byte("<h3>Invalid payment callback</h3><p>No transaction reference was provided.</p>"))
}
