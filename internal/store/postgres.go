package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for checkout events and
// legacy payment logs.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertEvent appends one checkout event and returns its generated id.
// The caller is responsible for supplying a session id.
func (p *PostgresStore) InsertEvent(ctx context.Context, ev models.CheckoutEvent) (string, error) {
	if ev.SessionID == "" || ev.EventType == "" {
		return "", errors.New("sessionID/eventType required")
	}

	if ev.Metadata == nil {
		ev.Metadata = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(ev.Metadata)
	if err != nil {
		return "", err
	}

	var id string
	err = p.pool.QueryRow(ctx, `
		INSERT INTO checkout_events(session_id, event_type, user_name, user_email, payment_method, checkout_session_id, metadata)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),$7)
		RETURNING id
	`, ev.SessionID, ev.EventType, ev.UserName, ev.UserEmail, ev.PaymentMethod, ev.CheckoutSessionID, metaJSON).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// InsertPaymentLog appends one legacy payment log row and returns its id.
func (p *PostgresStore) InsertPaymentLog(ctx context.Context, log models.PaymentLog) (string, error) {
	if log.Name == "" || log.Email == "" || log.PaymentMethod == "" {
		return "", errors.New("name/email/paymentMethod required")
	}

	var id string
	err := p.pool.QueryRow(ctx, `
		INSERT INTO payment_logs(name, email, telefone, cpf, payment_method, aceitou, pagou_pix)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,$6,$7)
		RETURNING id
	`, log.Name, log.Email, log.Telefone, log.CPF, log.PaymentMethod, log.Aceitou, log.PagouPix).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ConfirmPixPayment marks the newest payment log matching (name, email) as
// PIX-confirmed. The match is by name/email only; there is no stable key
// linking the confirmation to its originating row. Returns found=false when
// no row matched, in which case the caller inserts a fresh log instead.
func (p *PostgresStore) ConfirmPixPayment(ctx context.Context, name, email string) (string, bool, error) {
	var id string
	err := p.pool.QueryRow(ctx, `
		UPDATE payment_logs SET pagou_pix = true
		WHERE id = (
			SELECT id FROM payment_logs
			WHERE name = $1 AND email = $2
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING id
	`, name, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// ListEventsSince returns all checkout events created at or after the cutoff,
// oldest first.
func (p *PostgresStore) ListEventsSince(ctx context.Context, since time.Time) ([]models.CheckoutEvent, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, session_id, event_type,
		       COALESCE(user_name,''), COALESCE(user_email,''),
		       COALESCE(payment_method,''), COALESCE(checkout_session_id,''),
		       metadata, created_at
		FROM checkout_events
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.CheckoutEvent
	for rows.Next() {
		var ev models.CheckoutEvent
		var metaJSON []byte
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.EventType, &ev.UserName, &ev.UserEmail,
			&ev.PaymentMethod, &ev.CheckoutSessionID, &metaJSON, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &ev.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListPaymentLogsSince returns all legacy payment logs created at or after
// the cutoff, oldest first.
func (p *PostgresStore) ListPaymentLogsSince(ctx context.Context, since time.Time) ([]models.PaymentLog, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, email, COALESCE(telefone,''), COALESCE(cpf,''),
		       payment_method, aceitou, pagou_pix, created_at
		FROM payment_logs
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.PaymentLog
	for rows.Next() {
		var log models.PaymentLog
		if err := rows.Scan(&log.ID, &log.Name, &log.Email, &log.Telefone, &log.CPF,
			&log.PaymentMethod, &log.Aceitou, &log.PagouPix, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
