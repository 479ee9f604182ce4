package repository

import (
	"context"
	"fmt"

	"condotel-booking/internal/data/entity"
	"condotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BankAccountRepository interface {
	FindActiveByHostID(ctx context.Context, hostID uuid.UUID) (*entity.HostBankAccount, error)
	HasActiveByHostID(ctx context.Context, hostID uuid.UUID) (bool, error)
}

type bankAccountRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBankAccountRepository(db database.PgxIface, log *zap.Logger) BankAccountRepository {
	return &bankAccountRepository{
		db:  db,
		log: log.With(zap.String("repository", "bank_account")),
	}
}

func (r *bankAccountRepository) FindActiveByHostID(ctx context.Context, hostID uuid.UUID) (*entity.HostBankAccount, error) {
	query := `
		SELECT id, host_id, bank_code, account_number, account_holder, is_active, created_at
		FROM host_bank_accounts
		WHERE host_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`

	var account entity.HostBankAccount
	err := r.db.QueryRow(ctx, query, hostID).Scan(
		&account.ID,
		&account.HostID,
		&account.BankCode,
		&account.AccountNumber,
		&account.AccountHolder,
		&account.IsActive,
		&account.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active bank account",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return nil, fmt.Errorf("find active bank account for host %s: %w", hostID.String(), err)
	}

	return &account, nil
}

func (r *bankAccountRepository) HasActiveByHostID(ctx context.Context, hostID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM host_bank_accounts WHERE host_id = $1 AND is_active = true)`

	var exists bool
	err := r.db.QueryRow(ctx, query, hostID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check active bank account",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return false, fmt.Errorf("check active bank account for host %s: %w", hostID.String(), err)
	}

	return exists, nil
}
