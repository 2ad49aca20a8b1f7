package models

import (
	"fmt"
	"time"
)

type OrderStatus string

// Full lifecycle so the order store contract can be shared with the
// fulfillment tooling. The bot itself only moves orders up to verified or
// rejected; the later statuses are owned by the fulfillment side.
const (
	StatusPending             OrderStatus = "pending"
	StatusAwaitingPayment     OrderStatus = "awaiting_payment"
	StatusPendingVerification OrderStatus = "pending_verification"
	StatusVerified            OrderStatus = "verified"
	StatusRejected            OrderStatus = "rejected"
	StatusAssigned            OrderStatus = "assigned"
	StatusInProgress          OrderStatus = "in_progress"
	StatusAwaitingReview      OrderStatus = "awaiting_review"
	StatusCompleted           OrderStatus = "completed"
	StatusDelivered           OrderStatus = "delivered"
	StatusCancelled           OrderStatus = "cancelled"
)

// statusRank orders the lifecycle so transitions only ever move forward.
// verified and rejected share a rank: exactly one of them may be reached
// from pending_verification, never the other afterwards.
var statusRank = map[OrderStatus]int{
	StatusPending:             0,
	StatusAwaitingPayment:     1,
	StatusPendingVerification: 2,
	StatusVerified:            3,
	StatusRejected:            3,
	StatusAssigned:            4,
	StatusInProgress:          5,
	StatusAwaitingReview:      6,
	StatusCompleted:           7,
	StatusDelivered:           8,
	StatusCancelled:           9,
}

// Terminal reports whether the status is a payment decision the user must
// be notified about.
func (s OrderStatus) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

type Order struct {
	ID               string      `json:"id"`
	CandidateUID     string      `json:"candidate_uid"`
	TelegramUserID   string      `json:"telegram_user_id"`
	Status           OrderStatus `json:"status"`
	StatusDetails    string      `json:"status_details"`
	PaymentVerified  bool        `json:"payment_verified"`
	ProofFileID      string      `json:"proof_file_id"`
	OrderedAt        time.Time   `json:"ordered_at"`
	LastStatusUpdate time.Time   `json:"last_status_update"`
}

// UpdateStatus moves the order along the lifecycle. Backward transitions
// are rejected so a submitted proof can never fall back to awaiting_payment
// and a decided order can never be re-decided.
func (o *Order) UpdateStatus(status OrderStatus, details string) error {
	from, ok := statusRank[o.Status]
	if !ok {
		return fmt.Errorf("unknown order status %q", o.Status)
	}
	to, ok := statusRank[status]
	if !ok {
		return fmt.Errorf("unknown order status %q", status)
	}
	if to <= from {
		return fmt.Errorf("invalid order transition %s -> %s", o.Status, status)
	}
	o.Status = status
	if details != "" {
		o.StatusDetails = details
	}
	o.LastStatusUpdate = time.Now()
	return nil
}

// Decided reports whether a payment decision has already been recorded.
func (o *Order) Decided() bool {
	return o.Status.Terminal()
}

// Approve marks the payment verified. Calling it on an already decided
// order is a no-op so a repeated button press cannot toggle anything.
func (o *Order) Approve() error {
	if o.Decided() {
		return nil
	}
	if err := o.UpdateStatus(StatusVerified, "Payment approved"); err != nil {
		return err
	}
	o.PaymentVerified = true
	return nil
}

// Reject records the rejection reason in the status details. Like Approve,
// it is idempotent on decided orders.
func (o *Order) Reject(reason string) error {
	if o.Decided() {
		return nil
	}
	if reason == "" {
		reason = "Payment rejected"
	}
	return o.UpdateStatus(StatusRejected, reason)
}
