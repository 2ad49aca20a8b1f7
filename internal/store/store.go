// Contracts for the two external record stores. The bot only ever talks to
// these interfaces; internal/database provides the Postgres implementation
// and Memory backs tests and tokenless local runs.
package store

import (
	"context"
	"errors"

	"go-cvbot-backend/internal/models"
)

// ErrNotFound is returned by Get lookups when no record exists for the key.
var ErrNotFound = errors.New("record not found")

type ProfileStore interface {
	// GetCandidate resolves a candidate by telegram user id.
	GetCandidate(ctx context.Context, telegramUserID string) (*models.Candidate, error)
	PutCandidate(ctx context.Context, c *models.Candidate) error
	// GetChildren returns the stored records of one kind in insertion order.
	GetChildren(ctx context.Context, candidateUID string, kind models.ChildKind) ([]models.ChildRecord, error)
	PutChild(ctx context.Context, rec *models.ChildRecord) error
	// DeleteChildren clears a kind so a resubmission rebuilds the set
	// instead of merging into stale records.
	DeleteChildren(ctx context.Context, candidateUID string, kind models.ChildKind) error
}

type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	PutOrder(ctx context.Context, o *models.Order) error
	QueryOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
}
