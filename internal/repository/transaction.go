package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

const transactionColumns = `id, wallet_id, type, direction, amount, currency,
	balance_before, balance_after, description, reference_id, status, metadata, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (
			id, wallet_id, type, direction, amount, currency,
			balance_before, balance_after, description, reference_id, status, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.WalletID, t.Type, t.Direction, t.Amount, t.Currency,
		t.BalanceBefore, t.BalanceAfter, t.Description, t.ReferenceID, t.Status,
		nullableJSON(t.Metadata), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	return r.list(ctx, "ListByWallet",
		`SELECT `+transactionColumns+` FROM transactions
		WHERE wallet_id = $1 ORDER BY created_at DESC, id`, walletID,
	)
}

func (r *TransactionRepository) ListByReference(ctx context.Context, referenceID string) ([]domain.Transaction, error) {
	return r.list(ctx, "ListByReference",
		`SELECT `+transactionColumns+` FROM transactions
		WHERE reference_id = $1 ORDER BY created_at`, referenceID,
	)
}

func (r *TransactionRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return entries, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var (
		t        domain.Transaction
		metadata []byte
	)
	err := s.Scan(
		&t.ID, &t.WalletID, &t.Type, &t.Direction, &t.Amount, &t.Currency,
		&t.BalanceBefore, &t.BalanceAfter, &t.Description, &t.ReferenceID, &t.Status,
		&metadata, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Metadata = metadata
	return &t, nil
}
