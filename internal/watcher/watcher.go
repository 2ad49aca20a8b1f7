// Status watcher: the redundant notification path. Reviewer decisions also
// land here when they were recorded without a direct callback, e.g. an
// out-of-band status edit in the order store.
package watcher

import (
	"context"
	"fmt"
	"time"

	"go-cvbot-backend/internal/i18n"
	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/session"
	"go-cvbot-backend/internal/store"
	"go-cvbot-backend/internal/transport"

	"go.uber.org/zap"
)

type Watcher struct {
	log      *zap.Logger
	tr       transport.Transport
	orders   store.OrderStore
	reg      *session.Registry
	interval time.Duration
}

func New(log *zap.Logger, tr transport.Transport, orders store.OrderStore, reg *session.Registry, interval time.Duration) *Watcher {
	return &Watcher{log: log, tr: tr, orders: orders, reg: reg, interval: interval}
}

// Run sweeps the registry on the configured interval until the context is
// cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("status watcher started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("status watcher stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep checks every active session with an order for a terminal decision
// the user has not heard about yet. A failure on one session never aborts
// the rest of the sweep.
func (w *Watcher) Sweep(ctx context.Context) {
	for _, sess := range w.reg.Snapshot() {
		orderID := sess.OrderID()
		if orderID == "" || sess.ChatID == 0 || sess.Notified() {
			continue
		}
		if err := w.check(ctx, sess, orderID); err != nil {
			w.log.Error("sweep failed for session",
				zap.String("user_id", sess.UserID),
				zap.String("order_id", orderID),
				zap.Error(err))
		}
	}
}

func (w *Watcher) check(ctx context.Context, sess *session.Session, orderID string) error {
	order, err := w.orders.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if !order.Status.Terminal() {
		return nil
	}

	// the direct decision path may have won between the snapshot and here
	if !sess.MarkNotified() {
		return nil
	}

	var text string
	if order.Status == models.StatusVerified {
		text = i18n.T(sess.Locale(), "verified_message")
	} else {
		text = fmt.Sprintf(i18n.T(sess.Locale(), "rejected_message"), order.StatusDetails)
	}

	if err := w.tr.SendText(ctx, sess.ChatID, text); err != nil {
		return fmt.Errorf("notify user: %w", err)
	}

	// delivered, nothing left for later sweeps
	w.reg.Destroy(sess.UserID)

	w.log.Info("decision delivered by sweep",
		zap.String("user_id", sess.UserID),
		zap.String("order_id", orderID),
		zap.String("status", string(order.Status)))
	return nil
}
