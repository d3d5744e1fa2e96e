package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"travelbuddy_backend/internal/config"
	"travelbuddy_backend/internal/email"
	"travelbuddy_backend/internal/logger"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/services/dto"
	"travelbuddy_backend/internal/services/payments"
	"travelbuddy_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type PaymentService interface {
	InitiateSubscription(ctx context.Context, userID string, req *dto.InitiateSubscriptionRequest) (*dto.InitiateSubscriptionResponse, error)

	// Gateway callbacks. The params map carries whatever the gateway put
	// in the query string and form body, merged by the handler.
	HandleSuccessCallback(ctx context.Context, transactionID string, params map[string]string) (*dto.CallbackResult, error)
	HandleFailCallback(ctx context.Context, transactionID string, params map[string]string) (*dto.CallbackResult, error)
	HandleCancelCallback(ctx context.Context, transactionID string, params map[string]string) (*dto.CallbackResult, error)
	HandleIPN(ctx context.Context, params map[string]string) error

	GetPayment(actorID string, isAdmin bool, transactionID string) (*dto.PaymentResponse, error)
	GetUserPayments(userID string, page, pageSize int) (*dto.PaymentListResponse, error)

	// Admin operations
	ListPayments(criteria dto.PaymentSearchCriteria) (*dto.PaymentListResponse, error)
}

type PaymentServiceImpl struct {
	paymentRepo   repositories.PaymentRepository
	userRepo      repositories.UserRepository
	gateway       payments.Gateway
	cfg           *config.PaymentsConfig
	emailProvider email.Provider
}

// NewPaymentService wires the payment flow. The payments config must have
// been validated at startup; a nil or incomplete config is a programming
// error, not a runtime condition.
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	gateway payments.Gateway,
	cfg *config.PaymentsConfig,
	emailProvider email.Provider,
) PaymentService {
	if cfg == nil {
		panic("payments config is required")
	}
	return &PaymentServiceImpl{
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		gateway:       gateway,
		cfg:           cfg,
		emailProvider: emailProvider,
	}
}

// ---------------- Initiation ----------------

func (s *PaymentServiceImpl) InitiateSubscription(ctx context.Context, userID string, req *dto.InitiateSubscriptionRequest) (*dto.InitiateSubscriptionResponse, error) {
	plan := models.PremiumPlan(req.Plan)
	price, ok := s.cfg.PlanPrice(req.Plan)
	if !ok || !models.ValidPlan(plan) {
		return nil, apperrors.NewBadRequestError("unknown subscription plan")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.InternalError(err)
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = strings.TrimSpace(user.Phone)
	}
	if phone == "" {
		return nil, apperrors.ErrPhoneRequired
	}

	discount, err := ApplyCoupon(req.CouponCode, price)
	if err != nil {
		return nil, err
	}
	amount := price - discount

	payment := &models.Payment{
		UserID:        userID,
		Amount:        amount,
		Currency:      s.cfg.Currency,
		Gateway:       s.cfg.Gateway,
		TransactionID: newTransactionID(),
		Description:   models.PlanDescription(plan),
		CouponCode:    strings.ToUpper(strings.TrimSpace(req.CouponCode)),
		Discount:      discount,
		Status:        models.PaymentStatusPending,
	}

	// The PENDING row goes in before the gateway is contacted so a
	// crash mid-initiation leaves an auditable trace instead of a
	// charge with no record.
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	session, err := s.gateway.InitiateCheckout(ctx, &payments.CheckoutRequest{
		TransactionID: payment.TransactionID,
		Amount:        amount,
		Currency:      strings.ToUpper(s.cfg.Currency),
		Description:   payment.Description,
		CustomerName:  user.FullName,
		CustomerEmail: user.Email,
		CustomerPhone: phone,
	})
	if err != nil {
		logger.Error("checkout initiation failed", "transaction_id", payment.TransactionID, "error", err)
		// A timeout here does not mean the gateway rejected the session.
		// The row stays PENDING so a later IPN can still settle it; only
		// the error detail is recorded for the audit trail.
		data, _ := json.Marshal(map[string]string{"init_error": err.Error()})
		if uerr := s.paymentRepo.UpdateGatewayData(payment.TransactionID, data); uerr != nil {
			logger.Error("failed to store init error", "transaction_id", payment.TransactionID, "error", uerr)
		}
		return nil, apperrors.ErrGatewayError
	}

	raw, _ := json.Marshal(session.Raw)
	if err := s.paymentRepo.UpdateSession(payment.TransactionID, session.SessionKey, raw); err != nil {
		logger.Warn("failed to store checkout session", "transaction_id", payment.TransactionID, "error", err)
	}

	logger.Info("subscription checkout initiated",
		"transaction_id", payment.TransactionID, "user_id", userID, "plan", req.Plan, "amount", amount)

	return &dto.InitiateSubscriptionResponse{
		PaymentURL:    session.GatewayPageURL,
		TransactionID: payment.TransactionID,
		Amount:        amount,
		Currency:      payment.Currency,
	}, nil
}

// ---------------- Callbacks ----------------

func (s *PaymentServiceImpl) HandleSuccessCallback(ctx context.Context, transactionID string, params map[string]string) (*dto.CallbackResult, error) {
	payment, err := s.findCallbackPayment(transactionID, params)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPaymentNotFound) {
			// The IPN may not have arrived yet; let the frontend poll.
			return s.frontendResult(s.cfg.FrontendSuccessURL, transactionID, 0,
				string(models.PaymentStatusPending), "Payment received, awaiting confirmation"), nil
		}
		return nil, apperrors.InternalError(err)
	}

	if payment.Status == models.PaymentStatusPaid {
		return s.frontendResult(s.cfg.FrontendSuccessURL, payment.TransactionID, payment.Amount,
			string(payment.Status), "Payment already confirmed"), nil
	}

	valID := params["val_id"]
	if valID == "" {
		// Redirects are spoofable; without a val_id the row stays
		// PENDING until the IPN settles it.
		data, _ := json.Marshal(params)
		if err := s.paymentRepo.UpdateGatewayData(payment.TransactionID, data); err != nil {
			logger.Warn("failed to store callback data", "transaction_id", payment.TransactionID, "error", err)
		}
		return s.frontendResult(s.cfg.FrontendSuccessURL, payment.TransactionID, payment.Amount,
			string(models.PaymentStatusPending), "Payment received, awaiting confirmation"), nil
	}

	validation, err := s.gateway.ValidatePayment(ctx, valID)
	if err != nil {
		logger.Error("payment validation failed", "transaction_id", payment.TransactionID, "error", err)
		return nil, apperrors.ErrGatewayError
	}
	if !validation.Valid() {
		if _, _, err := s.paymentRepo.TransitionStatus(payment.TransactionID, models.PaymentStatusFailed, rawJSON(validation.Raw)); err != nil {
			return nil, apperrors.InternalError(err)
		}
		return s.frontendResult(s.cfg.FrontendFailURL, payment.TransactionID, payment.Amount,
			string(models.PaymentStatusFailed), "Payment could not be verified"), nil
	}

	settled, err := s.settle(payment.TransactionID, validation)
	if err != nil {
		return nil, err
	}
	return s.frontendResult(s.cfg.FrontendSuccessURL, settled.TransactionID, settled.Amount,
		string(settled.Status), "Payment successful"), nil
}

func (s *PaymentServiceImpl) HandleFailCallback(ctx context.Context, transactionID string, params map[string]string) (*dto.CallbackResult, error) {
	return s.terminalCallback(transactionID, params, models.PaymentStatusFailed,
		s.cfg.FrontendFailURL, "Payment failed")
}

func (s *PaymentServiceImpl) HandleCancelCallback(ctx context.Context, transactionID string, params map[string]string) (*dto.CallbackResult, error) {
	return s.terminalCallback(transactionID, params, models.PaymentStatusUnpaid,
		s.cfg.FrontendCancelURL, "Payment cancelled")
}

func (s *PaymentServiceImpl) terminalCallback(transactionID string, params map[string]string, status models.PaymentStatus, frontendURL, message string) (*dto.CallbackResult, error) {
	payment, err := s.findCallbackPayment(transactionID, params)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return s.frontendResult(frontendURL, transactionID, 0, string(status), message), nil
		}
		return nil, apperrors.InternalError(err)
	}

	data, _ := json.Marshal(params)
	updated, applied, err := s.paymentRepo.TransitionStatus(payment.TransactionID, status, data)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !applied {
		logger.Info("terminal callback ignored, payment already settled",
			"transaction_id", payment.TransactionID, "status", updated.Status)
		message = settledMessage(updated.Status, message)
	}
	return s.frontendResult(frontendURL, updated.TransactionID, updated.Amount,
		string(updated.Status), message), nil
}

// settledMessage picks the message matching the status a late callback
// actually found, instead of the outcome the callback claimed.
func settledMessage(status models.PaymentStatus, fallback string) string {
	switch status {
	case models.PaymentStatusPaid:
		return "Payment already confirmed"
	case models.PaymentStatusFailed:
		return "Payment failed"
	case models.PaymentStatusUnpaid:
		return "Payment cancelled"
	}
	return fallback
}

// HandleIPN processes the instant payment notification, the only
// authoritative settlement path. Every decision flows from the gateway's
// validation API, never from the notification body alone.
func (s *PaymentServiceImpl) HandleIPN(ctx context.Context, params map[string]string) error {
	valID := params["val_id"]
	if valID == "" {
		return apperrors.NewBadRequestError("val_id is required")
	}

	validation, err := s.gateway.ValidatePayment(ctx, valID)
	if err != nil {
		logger.Error("ipn validation failed", "val_id", valID, "error", err)
		return apperrors.ErrGatewayError
	}

	transactionID := validation.TransactionID
	if transactionID == "" {
		transactionID = params["tran_id"]
	}
	if transactionID == "" {
		return apperrors.NewBadRequestError("transaction id missing from validation response")
	}

	if _, err := s.paymentRepo.FindByTransactionID(transactionID); err != nil {
		if apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return apperrors.NewNotFoundError("payment not found")
		}
		return apperrors.InternalError(err)
	}

	if validation.Valid() {
		if _, err := s.settle(transactionID, validation); err != nil {
			return err
		}
		return nil
	}

	if _, _, err := s.paymentRepo.TransitionStatus(transactionID, models.PaymentStatusUnpaid, rawJSON(validation.Raw)); err != nil {
		return apperrors.InternalError(err)
	}
	logger.Info("ipn reported unsettled payment", "transaction_id", transactionID, "gateway_status", validation.Status)
	return nil
}

// settle confirms the payment and applies the entitlement exactly once.
// A second delivery finds the row already PAID and only re-reads it.
func (s *PaymentServiceImpl) settle(transactionID string, validation *payments.ValidationResult) (*models.Payment, error) {
	payment, applied, err := s.paymentRepo.ConfirmPaid(transactionID, validation.GatewayTxnID, rawJSON(validation.Raw), time.Now())
	if err != nil {
		if apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if applied {
		logger.Info("payment confirmed", "transaction_id", transactionID, "amount", payment.Amount)
		s.sendReceipt(payment)
	} else {
		logger.Info("duplicate settlement ignored", "transaction_id", transactionID, "status", payment.Status)
	}
	return payment, nil
}

func (s *PaymentServiceImpl) sendReceipt(payment *models.Payment) {
	if s.emailProvider == nil {
		return
	}
	user, err := s.userRepo.FindByID(payment.UserID)
	if err != nil {
		return
	}
	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{user.Email},
			"Your TravelBuddy payment receipt",
			email.TemplatePaymentReceipt,
			email.TemplateData{
				"Name":          user.FullName,
				"Amount":        formatAmount(payment.Amount),
				"Currency":      strings.ToUpper(payment.Currency),
				"Description":   payment.Description,
				"TransactionID": payment.TransactionID,
			},
		)
		if err != nil {
			logger.Warn("receipt email failed", "transaction_id", payment.TransactionID, "error", err)
		}
	}()
}

// findCallbackPayment resolves the payment a gateway callback refers to.
// The transaction id from the request is tried first, then the session
// key under its known spellings, then a short scan of recent pending
// rows matched by session key in the stored gateway data.
func (s *PaymentServiceImpl) findCallbackPayment(transactionID string, params map[string]string) (*models.Payment, error) {
	if transactionID != "" {
		payment, err := s.paymentRepo.FindByTransactionID(transactionID)
		if err == nil {
			return payment, nil
		}
		if !apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, err
		}
	}

	var sessionKeys []string
	for _, key := range sessionKeyFields {
		if sk := params[key]; sk != "" {
			sessionKeys = append(sessionKeys, sk)
			payment, err := s.paymentRepo.FindBySessionKey(sk)
			if err == nil {
				return payment, nil
			}
			if !apperrors.Is(err, repositories.ErrPaymentNotFound) {
				return nil, err
			}
		}
	}
	if len(sessionKeys) == 0 {
		return nil, repositories.ErrPaymentNotFound
	}

	// Last resort: the session key may only exist inside the gateway
	// payload stored at initiation, e.g. when the column write failed.
	recent, err := s.paymentRepo.FindRecentPending(s.cfg.Gateway, time.Now().Add(-1*time.Hour), 50)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		if gatewayDataHasSessionKey(recent[i].GatewayData, sessionKeys) {
			return &recent[i], nil
		}
	}
	return nil, repositories.ErrPaymentNotFound
}

// sessionKeyFields lists the spellings gateways use for the checkout
// session key across redirects and stored payloads.
var sessionKeyFields = []string{"sessionkey", "sessionKey", "session_key"}

func gatewayDataHasSessionKey(data datatypes.JSON, sessionKeys []string) bool {
	if len(data) == 0 {
		return false
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return false
	}
	for _, field := range sessionKeyFields {
		stored, ok := payload[field].(string)
		if !ok || stored == "" {
			continue
		}
		for _, sk := range sessionKeys {
			if stored == sk {
				return true
			}
		}
	}
	return false
}

// ---------------- Queries ----------------

func (s *PaymentServiceImpl) GetPayment(actorID string, isAdmin bool, transactionID string) (*dto.PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByTransactionID(transactionID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if payment.UserID != actorID && !isAdmin {
		return nil, apperrors.NewForbiddenError("not your payment")
	}
	return buildPaymentResponse(payment, true), nil
}

func (s *PaymentServiceImpl) GetUserPayments(userID string, page, pageSize int) (*dto.PaymentListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	paymentsList, total, err := s.paymentRepo.FindByUser(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.PaymentListResponse{
		Payments:   make([]*dto.PaymentResponse, 0, len(paymentsList)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for i := range paymentsList {
		resp.Payments = append(resp.Payments, buildPaymentResponse(&paymentsList[i], false))
	}
	return resp, nil
}

func (s *PaymentServiceImpl) ListPayments(criteria dto.PaymentSearchCriteria) (*dto.PaymentListResponse, error) {
	page, pageSize := normalizePage(criteria.Page, criteria.PageSize)

	filter := repositories.PaymentFilter{
		Status:   models.PaymentStatus(criteria.Status),
		UserID:   criteria.UserID,
		Search:   criteria.Search,
		SortBy:   criteria.SortBy,
		SortDesc: criteria.SortOrder != "asc",
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if criteria.DateFrom != "" {
		t, _ := time.Parse("2006-01-02", criteria.DateFrom)
		filter.DateFrom = &t
	}
	if criteria.DateTo != "" {
		// Inclusive upper bound: the whole chosen day.
		t, _ := time.Parse("2006-01-02", criteria.DateTo)
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &t
	}

	paymentsList, total, err := s.paymentRepo.FindWithFilter(filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.PaymentListResponse{
		Payments:   make([]*dto.PaymentResponse, 0, len(paymentsList)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for i := range paymentsList {
		resp.Payments = append(resp.Payments, buildPaymentResponse(&paymentsList[i], true))
	}
	return resp, nil
}

// ---------------- Helpers ----------------

func buildPaymentResponse(payment *models.Payment, withUser bool) *dto.PaymentResponse {
	resp := &dto.PaymentResponse{
		ID:            payment.ID,
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Gateway:       payment.Gateway,
		Status:        string(payment.Status),
		Description:   payment.Description,
		CouponCode:    payment.CouponCode,
		Discount:      payment.Discount,
		PaidAt:        payment.PaidAt,
		CreatedAt:     payment.CreatedAt,
	}
	if withUser && payment.User != nil {
		resp.User = payment.User.Safe()
	}
	return resp
}

func (s *PaymentServiceImpl) frontendResult(baseURL, transactionID string, amount int64, status, message string) *dto.CallbackResult {
	q := url.Values{}
	q.Set("transactionId", transactionID)
	q.Set("message", message)
	q.Set("amount", formatAmount(amount))
	q.Set("status", status)

	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return &dto.CallbackResult{
		TransactionID: transactionID,
		Status:        status,
		Amount:        amount,
		Message:       message,
		RedirectURL:   baseURL + sep + q.Encode(),
	}
}

func newTransactionID() string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("TB-%d-%s", time.Now().UnixNano(), hex.EncodeToString(suffix))
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func rawJSON(raw map[string]interface{}) datatypes.JSON {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return data
}
