package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
)

const billColumns = `
	bill_key, email, type, name, amount, date, vat, pct, commentary,
	file_url, file_name, file_path, mime_type, status, created_at, updated_at`

// BillRepository implements port.BillRepository
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) port.BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a bill; CreatedAt and UpdatedAt default to now
func (r *BillRepository) Create(ctx context.Context, bill *entity.StoredBill) error {
	query := `INSERT INTO bills (` + billColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	if bill.UpdatedAt.IsZero() {
		bill.UpdatedAt = bill.CreatedAt
	}

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.Key,
		bill.Email,
		bill.Type,
		bill.Name,
		nullInt(bill.Amount),
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		nullString(bill.FileURL),
		nullString(bill.FileName),
		bill.FilePath,
		bill.MimeType,
		bill.Status,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.String("key", bill.Key), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetByKey retrieves a bill, returning nil when it does not exist
func (r *BillRepository) GetByKey(ctx context.Context, key string) (*entity.StoredBill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_key = ?`

	bill, err := scanBill(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get bill", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// Update overwrites every field of the bill and bumps UpdatedAt
func (r *BillRepository) Update(ctx context.Context, bill *entity.StoredBill) error {
	query := `
		UPDATE bills SET
			email = ?, type = ?, name = ?, amount = ?, date = ?, vat = ?, pct = ?,
			commentary = ?, file_url = ?, file_name = ?, file_path = ?, mime_type = ?,
			status = ?, updated_at = ?
		WHERE bill_key = ?
	`

	bill.UpdatedAt = time.Now().UTC()
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		bill.Email,
		bill.Type,
		bill.Name,
		nullInt(bill.Amount),
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		nullString(bill.FileURL),
		nullString(bill.FileName),
		bill.FilePath,
		bill.MimeType,
		bill.Status,
		bill.UpdatedAt,
		bill.Key,
	)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("key", bill.Key), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill not found: %s", bill.Key)
	}
	return nil
}

// List returns the bills of email, or every bill when email is empty
func (r *BillRepository) List(ctx context.Context, email string) ([]*entity.StoredBill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	var args []interface{}
	if email != "" {
		query += ` WHERE email = ?`
		args = append(args, email)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListDraftsBefore returns receipt-only records, never updated since the
// upload, created before cutoff
func (r *BillRepository) ListDraftsBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.StoredBill, error) {
	query := `SELECT ` + billColumns + ` FROM bills
		WHERE name = '' AND date = '' AND type = '' AND updated_at = created_at AND created_at < ?
		ORDER BY created_at ASC
		LIMIT ?`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, cutoff.UTC(), limit)
	if err != nil {
		r.logger.Error("Failed to list draft bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list draft bills: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Delete removes a bill
func (r *BillRepository) Delete(ctx context.Context, key string) error {
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM bills WHERE bill_key = ?`, key)
	if err != nil {
		r.logger.Error("Failed to delete bill", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return nil
}

func (r *BillRepository) collect(rows *sql.Rows) ([]*entity.StoredBill, error) {
	var bills []*entity.StoredBill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			r.logger.Error("Failed to scan bill", zap.Error(err))
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(s scanner) (*entity.StoredBill, error) {
	var bill entity.StoredBill
	var amount sql.NullInt64
	var fileURL, fileName sql.NullString

	err := s.Scan(
		&bill.Key,
		&bill.Email,
		&bill.Type,
		&bill.Name,
		&amount,
		&bill.Date,
		&bill.VAT,
		&bill.Pct,
		&bill.Commentary,
		&fileURL,
		&fileName,
		&bill.FilePath,
		&bill.MimeType,
		&bill.Status,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if amount.Valid {
		v := int(amount.Int64)
		bill.Amount = &v
	}
	if fileURL.Valid {
		bill.FileURL = &fileURL.String
	}
	if fileName.Valid {
		bill.FileName = &fileName.String
	}
	return &bill, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
