package repositories

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"travelbuddy_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

type PaymentRepository interface {
	// Payment operations
	Create(payment *models.Payment) error
	FindByTransactionID(transactionID string) (*models.Payment, error)
	FindBySessionKey(sessionKey string) (*models.Payment, error)
	FindRecentPending(gateway string, since time.Time, limit int) ([]models.Payment, error)
	UpdateGatewayData(transactionID string, data datatypes.JSON) error
	UpdateSession(transactionID, sessionKey string, data datatypes.JSON) error

	// Status transitions. Both are conditional on the row still being
	// PENDING so a late duplicate callback cannot overwrite a settled row.
	ConfirmPaid(transactionID, gatewayTxnID string, data datatypes.JSON, paidAt time.Time) (*models.Payment, bool, error)
	TransitionStatus(transactionID string, next models.PaymentStatus, data datatypes.JSON) (*models.Payment, bool, error)

	// Listing
	FindByUser(userID string, limit, offset int) ([]models.Payment, int64, error)
	FindWithFilter(criteria PaymentFilter) ([]models.Payment, int64, error)
}

type PaymentFilter struct {
	Status   models.PaymentStatus
	UserID   string
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string // transaction id, description, owner email or name
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByTransactionID(transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Preload("User").
		First(&payment, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindBySessionKey(sessionKey string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Preload("User").
		Where("session_key = ?", sessionKey).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindRecentPending(gateway string, since time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("gateway = ? AND status = ? AND created_at >= ?",
		gateway, models.PaymentStatusPending, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepositoryImpl) UpdateGatewayData(transactionID string, data datatypes.JSON) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, "transaction_id = ?", transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		return tx.Model(&models.Payment{}).
			Where("transaction_id = ?", transactionID).
			Update("gateway_data", MergeGatewayData(payment.GatewayData, data)).Error
	})
}

// UpdateSession stores the checkout session handed back by the gateway so
// later callbacks can be matched by session key as well.
func (r *PaymentRepositoryImpl) UpdateSession(transactionID, sessionKey string, data datatypes.JSON) error {
	updates := map[string]interface{}{"session_key": sessionKey}
	if data != nil {
		updates["gateway_data"] = data
	}
	result := r.db.Model(&models.Payment{}).
		Where("transaction_id = ?", transactionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ConfirmPaid settles a payment and applies the purchased entitlement to
// its owner in a single transaction. The UPDATE is guarded by
// status = 'PENDING': when a concurrent callback or IPN settled the row
// first, zero rows match and the entitlement is not applied twice. The
// bool result reports whether this call performed the settlement.
func (r *PaymentRepositoryImpl) ConfirmPaid(transactionID, gatewayTxnID string, data datatypes.JSON, paidAt time.Time) (*models.Payment, bool, error) {
	var payment models.Payment
	applied := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "transaction_id = ?", transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"status":  models.PaymentStatusPaid,
			"paid_at": paidAt,
		}
		if gatewayTxnID != "" {
			updates["gateway_txn_id"] = gatewayTxnID
		}
		if data != nil {
			updates["gateway_data"] = MergeGatewayData(payment.GatewayData, data)
		}

		result := tx.Model(&models.Payment{}).
			Where("transaction_id = ? AND status = ?", transactionID, models.PaymentStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Already settled (or failed) by another delivery.
			return nil
		}
		applied = true

		if err := tx.First(&payment, "transaction_id = ?", transactionID).Error; err != nil {
			return err
		}

		plan, ok := models.PlanFromDescription(payment.Description)
		if !ok {
			return nil
		}

		var user models.User
		if err := tx.First(&user, "id = ?", payment.UserID).Error; err != nil {
			return err
		}
		models.ApplyPlanEffect(&user, plan, paidAt)
		return tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"is_premium":         user.IsPremium,
				"premium_expires_at": user.PremiumExpiresAt,
				"is_verified_badge":  user.IsVerifiedBadge,
			}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &payment, applied, nil
}

// TransitionStatus moves a PENDING payment to a terminal state. Settled
// rows are left untouched and reported via the bool result.
func (r *PaymentRepositoryImpl) TransitionStatus(transactionID string, next models.PaymentStatus, data datatypes.JSON) (*models.Payment, bool, error) {
	if !models.PaymentStatusPending.CanTransitionTo(next) {
		return nil, false, errors.New("invalid payment status transition")
	}

	var payment models.Payment
	applied := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "transaction_id = ?", transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		updates := map[string]interface{}{"status": next}
		if data != nil {
			updates["gateway_data"] = MergeGatewayData(payment.GatewayData, data)
		}

		result := tx.Model(&models.Payment{}).
			Where("transaction_id = ? AND status = ?", transactionID, models.PaymentStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		return tx.First(&payment, "transaction_id = ?", transactionID).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &payment, applied, nil
}

// MergeGatewayData overlays incoming keys onto the stored gateway payload
// so the checkout-session response written at initiation survives later
// callback and validation writes.
func MergeGatewayData(existing, incoming datatypes.JSON) datatypes.JSON {
	if len(existing) == 0 {
		return incoming
	}
	if len(incoming) == 0 {
		return existing
	}
	var base, overlay map[string]interface{}
	if err := json.Unmarshal(existing, &base); err != nil {
		return incoming
	}
	if err := json.Unmarshal(incoming, &overlay); err != nil {
		return existing
	}
	for k, v := range overlay {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return incoming
	}
	return merged
}

// ---------------- Listing ----------------

func (r *PaymentRepositoryImpl) FindByUser(userID string, limit, offset int) ([]models.Payment, int64, error) {
	var total int64
	if err := r.db.Model(&models.Payment{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&payments).Error
	return payments, total, err
}

// paymentOrderClause maps the requested sort to a whitelisted column and
// applies the direction to the default column as well.
func paymentOrderClause(sortBy string, sortDesc bool) string {
	column := "payments.created_at"
	switch sortBy {
	case "amount":
		column = "payments.amount"
	case "status":
		column = "payments.status"
	}
	if sortDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

func (r *PaymentRepositoryImpl) FindWithFilter(criteria PaymentFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{}).
		Joins("LEFT JOIN users ON users.id = payments.user_id")

	if criteria.Status != "" {
		query = query.Where("payments.status = ?", criteria.Status)
	}
	if criteria.UserID != "" {
		query = query.Where("payments.user_id = ?", criteria.UserID)
	}
	if criteria.DateFrom != nil {
		query = query.Where("payments.created_at >= ?", *criteria.DateFrom)
	}
	if criteria.DateTo != nil {
		query = query.Where("payments.created_at <= ?", *criteria.DateTo)
	}
	if criteria.Search != "" {
		term := "%" + strings.ToLower(criteria.Search) + "%"
		query = query.Where(
			"LOWER(payments.transaction_id) LIKE ? OR LOWER(payments.description) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.full_name) LIKE ?",
			term, term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	err := query.Preload("User").
		Order(paymentOrderClause(criteria.SortBy, criteria.SortDesc)).
		Limit(criteria.Limit).Offset(criteria.Offset).
		Find(&payments).Error
	return payments, total, err
}
