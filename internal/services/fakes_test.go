package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"travelbuddy_backend/internal/email"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/services/payments"

	"gorm.io/datatypes"
)

// In-memory repository fakes so the service layer can be tested without
// a database. They honor the same contracts as the GORM implementations,
// including the conditional settlement in ConfirmPaid.

// ---------------- Users ----------------

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		f.nextID++
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Create(u *models.User) error {
	if _, err := f.FindByEmail(u.Email); err == nil {
		return repositories.ErrUserAlreadyExists
	}
	f.add(u)
	return nil
}

func (f *fakeUserRepo) Update(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeUserRepo) UpdatePassword(userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateRole(userID string, role models.UserRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) Delete(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeUserRepo) ApplyEntitlement(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[u.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	stored.IsPremium = u.IsPremium
	stored.PremiumExpiresAt = u.PremiumExpiresAt
	stored.IsVerifiedBadge = u.IsVerifiedBadge
	return nil
}

func (f *fakeUserRepo) FindAll(limit, offset int) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) FindWithFilter(criteria repositories.UserFilter) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if criteria.Role != "" && u.Role != criteria.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) CountAll() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

// ---------------- Payments ----------------

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*models.Payment // keyed by transaction id
	users    *fakeUserRepo
}

func newFakePaymentRepo(users *fakeUserRepo) *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: map[string]*models.Payment{},
		users:    users,
	}
}

func (f *fakePaymentRepo) Create(p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.payments[p.TransactionID]; exists {
		return fmt.Errorf("duplicate transaction id %s", p.TransactionID)
	}
	if p.ID == "" {
		p.ID = "pay-" + p.TransactionID
	}
	p.CreatedAt = time.Now()
	clone := *p
	f.payments[p.TransactionID] = &clone
	return nil
}

func (f *fakePaymentRepo) FindByTransactionID(transactionID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[transactionID]
	if !ok {
		return nil, repositories.ErrPaymentNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePaymentRepo) FindBySessionKey(sessionKey string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.SessionKey == sessionKey && sessionKey != "" {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrPaymentNotFound
}

func (f *fakePaymentRepo) FindRecentPending(gateway string, since time.Time, limit int) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.Status == models.PaymentStatusPending && p.CreatedAt.After(since) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) UpdateGatewayData(transactionID string, data datatypes.JSON) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[transactionID]
	if !ok {
		return repositories.ErrPaymentNotFound
	}
	p.GatewayData = repositories.MergeGatewayData(p.GatewayData, data)
	return nil
}

func (f *fakePaymentRepo) UpdateSession(transactionID, sessionKey string, data datatypes.JSON) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[transactionID]
	if !ok {
		return repositories.ErrPaymentNotFound
	}
	p.SessionKey = sessionKey
	if data != nil {
		p.GatewayData = data
	}
	return nil
}

func (f *fakePaymentRepo) ConfirmPaid(transactionID, gatewayTxnID string, data datatypes.JSON, paidAt time.Time) (*models.Payment, bool, error) {
	f.mu.Lock()
	p, ok := f.payments[transactionID]
	if !ok {
		f.mu.Unlock()
		return nil, false, repositories.ErrPaymentNotFound
	}
	if p.Status != models.PaymentStatusPending {
		clone := *p
		f.mu.Unlock()
		return &clone, false, nil
	}

	p.Status = models.PaymentStatusPaid
	p.PaidAt = &paidAt
	if gatewayTxnID != "" {
		p.GatewayTxnID = gatewayTxnID
	}
	if data != nil {
		p.GatewayData = repositories.MergeGatewayData(p.GatewayData, data)
	}
	clone := *p
	f.mu.Unlock()

	if plan, ok := models.PlanFromDescription(clone.Description); ok {
		user, err := f.users.FindByID(clone.UserID)
		if err != nil {
			return nil, false, err
		}
		models.ApplyPlanEffect(user, plan, paidAt)
		if err := f.users.ApplyEntitlement(user); err != nil {
			return nil, false, err
		}
	}
	return &clone, true, nil
}

func (f *fakePaymentRepo) TransitionStatus(transactionID string, next models.PaymentStatus, data datatypes.JSON) (*models.Payment, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[transactionID]
	if !ok {
		return nil, false, repositories.ErrPaymentNotFound
	}
	if p.Status != models.PaymentStatusPending {
		clone := *p
		return &clone, false, nil
	}
	p.Status = next
	if data != nil {
		p.GatewayData = repositories.MergeGatewayData(p.GatewayData, data)
	}
	clone := *p
	return &clone, true, nil
}

func (f *fakePaymentRepo) FindByUser(userID string, limit, offset int) ([]models.Payment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePaymentRepo) FindWithFilter(criteria repositories.PaymentFilter) ([]models.Payment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if criteria.Status != "" && p.Status != criteria.Status {
			continue
		}
		if criteria.UserID != "" && p.UserID != criteria.UserID {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePaymentRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

// ---------------- Travel Plans ----------------

type fakePlanRepo struct {
	mu           sync.Mutex
	plans        map[string]*models.TravelPlan
	participants map[string]*models.TravelPlanParticipant
	nextID       int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:        map[string]*models.TravelPlan{},
		participants: map[string]*models.TravelPlanParticipant{},
	}
}

func (f *fakePlanRepo) Create(plan *models.TravelPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if plan.ID == "" {
		f.nextID++
		plan.ID = fmt.Sprintf("plan-%d", f.nextID)
	}
	clone := *plan
	f.plans[plan.ID] = &clone
	return nil
}

func (f *fakePlanRepo) FindByID(id string) (*models.TravelPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[id]
	if !ok {
		return nil, repositories.ErrPlanNotFound
	}
	clone := *plan
	return &clone, nil
}

func (f *fakePlanRepo) FindByHost(hostID string) ([]models.TravelPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TravelPlan
	for _, p := range f.plans {
		if p.HostID == hostID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) Update(plan *models.TravelPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.plans[plan.ID]; !ok {
		return repositories.ErrPlanNotFound
	}
	clone := *plan
	f.plans[plan.ID] = &clone
	return nil
}

func (f *fakePlanRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.plans[id]; !ok {
		return repositories.ErrPlanNotFound
	}
	delete(f.plans, id)
	return nil
}

func (f *fakePlanRepo) FindWithFilter(criteria repositories.PlanFilter) ([]models.TravelPlan, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TravelPlan
	for _, p := range f.plans {
		if criteria.Visibility != "" && p.Visibility != criteria.Visibility {
			continue
		}
		if criteria.Destination != "" && !strings.EqualFold(p.Destination, criteria.Destination) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePlanRepo) FindMatches(criteria repositories.MatchCriteria) ([]models.TravelPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TravelPlan
	for _, p := range f.plans {
		if p.Visibility != models.VisibilityPublic {
			continue
		}
		if criteria.ExcludeHost != "" && p.HostID == criteria.ExcludeHost {
			continue
		}
		if criteria.Destination != "" && !strings.EqualFold(p.Destination, criteria.Destination) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePlanRepo) CreateParticipant(p *models.TravelPlanParticipant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.participants {
		if existing.TravelPlanID == p.TravelPlanID && existing.UserID == p.UserID {
			return repositories.ErrAlreadyJoined
		}
	}
	if p.ID == "" {
		f.nextID++
		p.ID = fmt.Sprintf("part-%d", f.nextID)
	}
	clone := *p
	f.participants[p.ID] = &clone
	return nil
}

func (f *fakePlanRepo) FindParticipant(planID, userID string) (*models.TravelPlanParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants {
		if p.TravelPlanID == planID && p.UserID == userID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (f *fakePlanRepo) FindParticipantByID(id string) (*models.TravelPlanParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePlanRepo) FindParticipants(planID string) ([]models.TravelPlanParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TravelPlanParticipant
	for _, p := range f.participants {
		if p.TravelPlanID == planID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) UpdateParticipantStatus(id string, status models.ParticipantStatus, respondedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	p.RespondedAt = &respondedAt
	return nil
}

func (f *fakePlanRepo) FindPlansJoinedBy(userID string, statuses []models.ParticipantStatus) ([]models.TravelPlanParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TravelPlanParticipant
	for _, p := range f.participants {
		if p.UserID != userID {
			continue
		}
		match := len(statuses) == 0
		for _, s := range statuses {
			if p.Status == s {
				match = true
			}
		}
		if !match {
			continue
		}
		clone := *p
		if plan, ok := f.plans[p.TravelPlanID]; ok {
			planClone := *plan
			clone.TravelPlan = &planClone
		}
		out = append(out, clone)
	}
	return out, nil
}

func (f *fakePlanRepo) HasAcceptedParticipant(planID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants {
		if p.TravelPlanID == planID && p.UserID == userID && p.Status == models.ParticipantStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

// ---------------- Reviews ----------------

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*models.Review
	nextID  int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[string]*models.Review{}}
}

func (f *fakeReviewRepo) Create(review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if review.TravelPlanID != nil {
		for _, existing := range f.reviews {
			if existing.TravelPlanID != nil && *existing.TravelPlanID == *review.TravelPlanID &&
				existing.AuthorID == review.AuthorID && existing.TargetID == review.TargetID {
				return repositories.ErrReviewAlreadyExists
			}
		}
	}
	if review.ID == "" {
		f.nextID++
		review.ID = fmt.Sprintf("review-%d", f.nextID)
	}
	review.CreatedAt = time.Now()
	clone := *review
	f.reviews[review.ID] = &clone
	return nil
}

func (f *fakeReviewRepo) FindByID(id string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, repositories.ErrReviewNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReviewRepo) FindByTarget(targetID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if r.TargetID == targetID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) FindByAuthor(authorID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if r.AuthorID == authorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) FindByPlan(planID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if r.TravelPlanID != nil && *r.TravelPlanID == planID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) FindByPlanAndAuthor(planID, authorID, targetID string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.TravelPlanID != nil && *r.TravelPlanID == planID && r.AuthorID == authorID && r.TargetID == targetID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, repositories.ErrReviewNotFound
}

func (f *fakeReviewRepo) Update(review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[review.ID]; !ok {
		return repositories.ErrReviewNotFound
	}
	clone := *review
	f.reviews[review.ID] = &clone
	return nil
}

func (f *fakeReviewRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return repositories.ErrReviewNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) AverageRating(targetID string) (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, count int64
	for _, r := range f.reviews {
		if r.TargetID == targetID {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (f *fakeReviewRepo) FindAll(limit, offset int) ([]models.Review, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

// ---------------- Gateway ----------------

type fakeGateway struct {
	mu sync.Mutex

	initErr       error
	session       *payments.CheckoutSession
	initCalls     []*payments.CheckoutRequest
	pendingAtCall []bool
	repo          *fakePaymentRepo

	validateErr    error
	validateResult *payments.ValidationResult
	validateCalls  []string
}

func newFakeGateway(repo *fakePaymentRepo) *fakeGateway {
	return &fakeGateway{
		repo: repo,
		session: &payments.CheckoutSession{
			GatewayPageURL: "https://sandbox.sslcommerz.com/EasyCheckOut/test",
			SessionKey:     "sess-123",
			Raw:            map[string]interface{}{"status": "SUCCESS", "sessionkey": "sess-123"},
		},
	}
}

func (g *fakeGateway) InitiateCheckout(ctx context.Context, req *payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	g.mu.Lock()
	g.initCalls = append(g.initCalls, req)
	g.mu.Unlock()

	// Record whether the pending row already existed when the gateway
	// was contacted.
	if g.repo != nil {
		_, err := g.repo.FindByTransactionID(req.TransactionID)
		g.mu.Lock()
		g.pendingAtCall = append(g.pendingAtCall, err == nil)
		g.mu.Unlock()
	}

	if g.initErr != nil {
		return nil, g.initErr
	}
	return g.session, nil
}

func (g *fakeGateway) ValidatePayment(ctx context.Context, valID string) (*payments.ValidationResult, error) {
	g.mu.Lock()
	g.validateCalls = append(g.validateCalls, valID)
	g.mu.Unlock()

	if g.validateErr != nil {
		return nil, g.validateErr
	}
	return g.validateResult, nil
}

// ---------------- Email ----------------

type fakeEmailProvider struct {
	mu        sync.Mutex
	templates []string
}

func (f *fakeEmailProvider) Send(_ *email.Email) error { return nil }

func (f *fakeEmailProvider) SendTemplate(to []string, subject, templateName string, data email.TemplateData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates = append(f.templates, templateName)
	return nil
}

func (f *fakeEmailProvider) Validate() error { return nil }
