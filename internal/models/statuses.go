package models

type UserRole string
type TravelType string
type PlanVisibility string
type ParticipantStatus string
type PaymentStatus string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"

	TravelTypeSolo    TravelType = "SOLO"
	TravelTypeFamily  TravelType = "FAMILY"
	TravelTypeFriends TravelType = "FRIENDS"
	TravelTypeCouple  TravelType = "COUPLE"
	TravelTypeGroup   TravelType = "GROUP"

	VisibilityPublic  PlanVisibility = "PUBLIC"
	VisibilityPrivate PlanVisibility = "PRIVATE"

	ParticipantStatusPending  ParticipantStatus = "PENDING"
	ParticipantStatusAccepted ParticipantStatus = "ACCEPTED"
	ParticipantStatusRejected ParticipantStatus = "REJECTED"

	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
)

// ValidRole reports whether role is a known user role.
func ValidRole(role UserRole) bool {
	return role == UserRoleUser || role == UserRoleAdmin
}

// ValidTravelType reports whether t is a known travel type.
func ValidTravelType(t TravelType) bool {
	switch t {
	case TravelTypeSolo, TravelTypeFamily, TravelTypeFriends, TravelTypeCouple, TravelTypeGroup:
		return true
	}
	return false
}

// IsTerminal reports whether the payment status accepts no further transitions.
// PENDING is the only non-terminal state; PAID, FAILED and UNPAID are final.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed || s == PaymentStatusUnpaid
}

// CanTransitionTo encodes the closed payment state machine:
// PENDING -> PAID | FAILED | UNPAID. Terminal states reject everything.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s != PaymentStatusPending {
		return false
	}
	return next.IsTerminal()
}
