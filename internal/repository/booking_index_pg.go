package repository

import (
	"context"
	"errors"

	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingIndexRepository mirrors ledger records into postgres for querying.
// The ledger stays authoritative; this index is rebuilt from the event stream.
type BookingIndexRepository interface {
	Upsert(ctx context.Context, record *domain.BookingRecord) error
	GetByID(ctx context.Context, bookingID string) (*domain.BookingRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.BookingRecord, error)
}

type PGBookingIndexRepository struct {
	db *pgxpool.Pool
}

func NewBookingIndexRepository(db *pgxpool.Pool) BookingIndexRepository {
	return &PGBookingIndexRepository{db: db}
}

func (r *PGBookingIndexRepository) Upsert(ctx context.Context, record *domain.BookingRecord) error {
	_, err := r.db.Exec(ctx, `INSERT INTO booking_index (booking_id, user_id, provider_code, resource_id, amount, status, tx_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (booking_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		record.BookingID.String(), record.UserID, record.ProviderCode, record.ResourceID,
		record.Amount, record.Status.String(), record.TransactionHash, record.CreatedAt, record.UpdatedAt)
	return err
}

func (r *PGBookingIndexRepository) GetByID(ctx context.Context, bookingID string) (*domain.BookingRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT booking_id, user_id, provider_code, resource_id, amount, status, tx_hash, created_at, updated_at
		FROM booking_index WHERE booking_id=$1`, bookingID)
	record, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *PGBookingIndexRepository) ListByUser(ctx context.Context, userID string) ([]domain.BookingRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, user_id, provider_code, resource_id, amount, status, tx_hash, created_at, updated_at
		FROM booking_index WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.BookingRecord
	for rows.Next() {
		record, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *record)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.BookingRecord, error) {
	var b domain.BookingRecord
	var id, status string
	if err := row.Scan(&id, &b.UserID, &b.ProviderCode, &b.ResourceID, &b.Amount, &status, &b.TransactionHash, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseBookingID(id)
	if err != nil {
		return nil, err
	}
	b.BookingID = parsed
	b.Status = parseStatus(status)
	return &b, nil
}

func parseStatus(s string) domain.BookingStatus {
	switch s {
	case "CONFIRMED":
		return domain.BookingStatusConfirmed
	case "CANCELLED":
		return domain.BookingStatusCancelled
	case "DISPUTED":
		return domain.BookingStatusDisputed
	case "RESOLVED":
		return domain.BookingStatusResolved
	default:
		return domain.BookingStatusPending
	}
}

var _ BookingIndexRepository = (*PGBookingIndexRepository)(nil)
