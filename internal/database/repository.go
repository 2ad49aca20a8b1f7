package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements store.ProfileStore and store.OrderStore on Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: Supabase connection pooler (PgBouncer in Transaction mode)
	// does not support prepared statements easily. We MUST disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// ---------------- CANDIDATE OPERATIONS ----------------

func (r *Repository) GetCandidate(ctx context.Context, telegramUserID string) (*models.Candidate, error) {
	var c models.Candidate
	var fields []byte

	query := `SELECT uid, telegram_user_id, fields, created_at, last_updated_at FROM candidates WHERE telegram_user_id = $1`
	err := r.db.QueryRow(ctx, query, telegramUserID).
		Scan(&c.UID, &c.TelegramUserID, &fields, &c.CreatedAt, &c.LastUpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	if err := json.Unmarshal(fields, &c.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode candidate fields: %w", err)
	}
	return &c, nil
}

func (r *Repository) PutCandidate(ctx context.Context, c *models.Candidate) error {
	fields, err := json.Marshal(c.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode candidate fields: %w", err)
	}

	query := `
		INSERT INTO candidates (uid, telegram_user_id, fields, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_user_id)
		DO UPDATE SET fields = EXCLUDED.fields, last_updated_at = EXCLUDED.last_updated_at`

	_, err = r.db.Exec(ctx, query, c.UID, c.TelegramUserID, fields, c.CreatedAt, c.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put candidate: %w", err)
	}
	return nil
}

// ---------------- CHILD RECORD OPERATIONS ----------------

func (r *Repository) GetChildren(ctx context.Context, candidateUID string, kind models.ChildKind) ([]models.ChildRecord, error) {
	query := `
		SELECT id, candidate_uid, kind, fields, created_at
		FROM candidate_children
		WHERE candidate_uid = $1 AND kind = $2
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, candidateUID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", kind, err)
	}
	defer rows.Close()

	var out []models.ChildRecord
	for rows.Next() {
		var rec models.ChildRecord
		var fields []byte
		if err := rows.Scan(&rec.ID, &rec.CandidateUID, &rec.Kind, &fields, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", kind, err)
		}
		if err := json.Unmarshal(fields, &rec.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode %s record fields: %w", kind, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) PutChild(ctx context.Context, rec *models.ChildRecord) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s record fields: %w", rec.Kind, err)
	}

	query := `
		INSERT INTO candidate_children (id, candidate_uid, kind, fields, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.Exec(ctx, query, rec.ID, rec.CandidateUID, rec.Kind, fields, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put %s record: %w", rec.Kind, err)
	}
	return nil
}

func (r *Repository) DeleteChildren(ctx context.Context, candidateUID string, kind models.ChildKind) error {
	_, err := r.db.Exec(ctx, `DELETE FROM candidate_children WHERE candidate_uid = $1 AND kind = $2`, candidateUID, kind)
	if err != nil {
		return fmt.Errorf("failed to clear %s records: %w", kind, err)
	}
	return nil
}

// ---------------- ORDER OPERATIONS ----------------

func (r *Repository) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var o models.Order
	query := `
		SELECT id, candidate_uid, telegram_user_id, status, status_details, payment_verified, proof_file_id, ordered_at, last_status_update
		FROM orders WHERE id = $1`
	err := r.db.QueryRow(ctx, query, orderID).
		Scan(&o.ID, &o.CandidateUID, &o.TelegramUserID, &o.Status, &o.StatusDetails, &o.PaymentVerified, &o.ProofFileID, &o.OrderedAt, &o.LastStatusUpdate)
	if err == pgx.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *Repository) PutOrder(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders (id, candidate_uid, telegram_user_id, status, status_details, payment_verified, proof_file_id, ordered_at, last_status_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET status = EXCLUDED.status, status_details = EXCLUDED.status_details,
			payment_verified = EXCLUDED.payment_verified, proof_file_id = EXCLUDED.proof_file_id,
			last_status_update = EXCLUDED.last_status_update`

	_, err := r.db.Exec(ctx, query, o.ID, o.CandidateUID, o.TelegramUserID, o.Status, o.StatusDetails, o.PaymentVerified, o.ProofFileID, o.OrderedAt, o.LastStatusUpdate)
	if err != nil {
		return fmt.Errorf("failed to put order: %w", err)
	}
	return nil
}

func (r *Repository) QueryOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := `
		SELECT id, candidate_uid, telegram_user_id, status, status_details, payment_verified, proof_file_id, ordered_at, last_status_update
		FROM orders WHERE status = $1 ORDER BY ordered_at`

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by status: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CandidateUID, &o.TelegramUserID, &o.Status, &o.StatusDetails, &o.PaymentVerified, &o.ProofFileID, &o.OrderedAt, &o.LastStatusUpdate); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
