// Review handoff: routes a submitted payment proof to the reviewer channel
// and applies the reviewer's approve/reject decision.
package review

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go-cvbot-backend/internal/i18n"
	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/session"
	"go-cvbot-backend/internal/store"
	"go-cvbot-backend/internal/transport"

	"go.uber.org/zap"
)

// Reviewer-facing strings stay untranslated; the review surface is English.
const (
	defaultRejectReason = "Payment could not be verified"
	rejectReasonPrompt  = "Please reply with the rejection reason for order %s (or /skip for the default)."
)

// AdminMessage locates the reviewer-channel message a decision came from.
type AdminMessage struct {
	ChatID    int64
	MessageID int
	Caption   string
}

type pendingReject struct {
	orderID string
	userID  string
	msg     AdminMessage
}

type Handoff struct {
	log          *zap.Logger
	tr           transport.Transport
	orders       store.OrderStore
	reg          *session.Registry
	reviewChatID int64

	mu      sync.Mutex
	pending map[string]pendingReject // keyed by reviewer user id
}

func NewHandoff(log *zap.Logger, tr transport.Transport, orders store.OrderStore, reg *session.Registry, reviewChatID int64) *Handoff {
	return &Handoff{
		log:          log,
		tr:           tr,
		orders:       orders,
		reg:          reg,
		reviewChatID: reviewChatID,
		pending:      make(map[string]pendingReject),
	}
}

// SubmitProof forwards a validated payment artifact to the reviewer
// channel and moves the order to pending_verification. The caller keeps
// the session open so the status watcher can still reach the user.
func (h *Handoff) SubmitProof(ctx context.Context, sess *session.Session, from transport.Sender, file transport.File) error {
	orderID := sess.OrderID()
	if orderID == "" {
		return errors.New("payment proof without an active order")
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", orderID, err)
	}

	caption := proofCaption(from, sess.Candidate["phoneNumber"], orderID)
	buttons := []transport.Button{
		{Label: "✅ Approve", Action: transport.EncodeAction("approve", from.UserID, orderID)},
		{Label: "❌ Reject", Action: transport.EncodeAction("reject", from.UserID, orderID)},
	}

	if file.IsPhoto {
		_, err = h.tr.ForwardPhoto(ctx, h.reviewChatID, file.FileID, caption, buttons...)
	} else {
		_, err = h.tr.ForwardDocument(ctx, h.reviewChatID, file.FileID, caption, buttons...)
	}
	if err != nil {
		return fmt.Errorf("forward proof to reviewer: %w", err)
	}

	order.ProofFileID = file.FileID
	if err := order.UpdateStatus(models.StatusPendingVerification, "Payment proof submitted"); err != nil {
		return err
	}
	if err := h.orders.PutOrder(ctx, order); err != nil {
		return fmt.Errorf("store proof submission: %w", err)
	}

	h.log.Info("payment proof forwarded",
		zap.String("user_id", from.UserID),
		zap.String("order_id", orderID))

	locale := sess.Locale()
	if err := h.tr.SendText(ctx, sess.ChatID, i18n.T(locale, "payment_ack")); err != nil {
		return err
	}
	return h.tr.SendText(ctx, sess.ChatID, i18n.T(locale, "payment_confirmation"))
}

func proofCaption(from transport.Sender, phone, orderID string) string {
	caption := "💳 Payment Proof Received\n\n👤 User: " + from.FirstName
	if from.LastName != "" {
		caption += " " + from.LastName
	}
	if from.Username != "" {
		caption += " (@" + from.Username + ")"
	}
	caption += "\n🆔 User ID: " + from.UserID
	if phone != "" {
		caption += "\n📞 Phone: " + phone
	}
	caption += "\n📋 Order ID: " + orderID
	return caption
}

// HandleDecision applies an approve/reject button press. The action tag
// carries both identities, so the order resolves without reply-threading.
func (h *Handoff) HandleDecision(ctx context.Context, reviewer transport.Sender, action string, args []string, msg AdminMessage) error {
	if len(args) < 2 {
		h.log.Error("malformed decision tag", zap.String("action", action), zap.Strings("args", args))
		return h.annotate(ctx, msg, "⚠️ ERROR: malformed decision data")
	}
	userID, orderID := args[0], args[1]

	order, err := h.orders.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		h.log.Error("decision for unknown order", zap.String("order_id", orderID))
		return h.annotate(ctx, msg, "⚠️ ERROR: order not found")
	}
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", orderID, err)
	}

	// second press on an already decided order must not toggle anything
	if order.Decided() {
		h.log.Warn("decision on already decided order",
			zap.String("order_id", orderID), zap.String("status", string(order.Status)))
		return nil
	}

	switch action {
	case "approve":
		return h.approve(ctx, reviewer, userID, order, msg)
	case "reject":
		return h.beginReject(ctx, reviewer, userID, orderID, msg)
	default:
		h.log.Error("unknown decision action", zap.String("action", action))
		return nil
	}
}

func (h *Handoff) approve(ctx context.Context, reviewer transport.Sender, userID string, order *models.Order, msg AdminMessage) error {
	if err := order.Approve(); err != nil {
		return err
	}
	if err := h.orders.PutOrder(ctx, order); err != nil {
		return fmt.Errorf("store approval: %w", err)
	}

	h.log.Info("payment approved",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("reviewer", reviewer.UserID))

	// the decision is durable; notification is best-effort from here, the
	// status watcher retries if this send never happens
	h.notifyUser(ctx, userID, order)

	return h.annotate(ctx, msg, "✅ APPROVED by "+reviewerName(reviewer))
}

// beginReject records a pending rejection and asks the reviewer for a
// reason. If the prompt cannot be delivered the fixed default reason is
// applied immediately.
func (h *Handoff) beginReject(ctx context.Context, reviewer transport.Sender, userID, orderID string, msg AdminMessage) error {
	h.mu.Lock()
	h.pending[reviewer.UserID] = pendingReject{orderID: orderID, userID: userID, msg: msg}
	h.mu.Unlock()

	if err := h.tr.SendText(ctx, h.reviewChatID, fmt.Sprintf(rejectReasonPrompt, orderID)); err != nil {
		h.log.Warn("reason prompt undeliverable, using default reason",
			zap.String("order_id", orderID), zap.Error(err))
		h.mu.Lock()
		delete(h.pending, reviewer.UserID)
		h.mu.Unlock()
		return h.completeReject(ctx, reviewer, userID, orderID, defaultRejectReason, msg)
	}
	return nil
}

// HandleReviewerText completes a pending rejection with the typed reason.
// Returns false when the reviewer has no rejection in flight.
func (h *Handoff) HandleReviewerText(ctx context.Context, reviewer transport.Sender, text string) (bool, error) {
	h.mu.Lock()
	p, ok := h.pending[reviewer.UserID]
	if ok {
		delete(h.pending, reviewer.UserID)
	}
	h.mu.Unlock()
	if !ok {
		return false, nil
	}

	reason := text
	if reason == "" || reason == "/skip" {
		reason = defaultRejectReason
	}
	return true, h.completeReject(ctx, reviewer, p.userID, p.orderID, reason, p.msg)
}

func (h *Handoff) completeReject(ctx context.Context, reviewer transport.Sender, userID, orderID, reason string, msg AdminMessage) error {
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", orderID, err)
	}
	if order.Decided() {
		return nil
	}

	if err := order.Reject(reason); err != nil {
		return err
	}
	if err := h.orders.PutOrder(ctx, order); err != nil {
		return fmt.Errorf("store rejection: %w", err)
	}

	h.log.Info("payment rejected",
		zap.String("order_id", orderID),
		zap.String("user_id", userID),
		zap.String("reason", reason),
		zap.String("reviewer", reviewer.UserID))

	h.notifyUser(ctx, userID, order)

	return h.annotate(ctx, msg, "❌ REJECTED by "+reviewerName(reviewer)+": "+reason)
}

// notifyUser delivers the decision to the user, gated by the session's
// already-notified flag so the watcher cannot duplicate it.
func (h *Handoff) notifyUser(ctx context.Context, userID string, order *models.Order) {
	locale := i18n.DefaultLocale
	chatID := int64(0)
	hadSession := false

	if sess := h.reg.Get(userID); sess != nil {
		locale = sess.Locale()
		chatID = sess.ChatID
		hadSession = true
		if !sess.MarkNotified() {
			return
		}
	} else {
		// session already gone: a private chat id equals the user id
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			h.log.Error("no notification channel for decision",
				zap.String("user_id", userID), zap.String("order_id", order.ID))
			return
		}
		chatID = id
	}

	var text string
	if order.Status == models.StatusVerified {
		text = i18n.T(locale, "verified_message")
	} else {
		text = fmt.Sprintf(i18n.T(locale, "rejected_message"), order.StatusDetails)
	}

	if err := h.tr.SendText(ctx, chatID, text); err != nil {
		h.log.Error("decision notification failed",
			zap.String("user_id", userID), zap.String("order_id", order.ID), zap.Error(err))
		return
	}

	// the decision is delivered, the conversation is over
	if hadSession {
		h.reg.Destroy(userID)
	}
}

// annotate marks the admin message decided and strips its buttons, so a
// second press has nothing left to press.
func (h *Handoff) annotate(ctx context.Context, msg AdminMessage, note string) error {
	if msg.MessageID == 0 {
		return nil
	}
	return h.tr.EditMessageCaption(ctx, msg.ChatID, msg.MessageID, msg.Caption+"\n\n"+note)
}

func reviewerName(reviewer transport.Sender) string {
	if reviewer.FirstName != "" {
		return reviewer.FirstName
	}
	return "Admin"
}
