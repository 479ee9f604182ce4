package repository

import (
	"context"
	"fmt"
	"time"

	"condotel-booking/internal/data/entity"
	"condotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type HostPackageRepository interface {
	FindPackageByID(ctx context.Context, id uuid.UUID) (*entity.Package, error)
	ListPackages(ctx context.Context) ([]*entity.Package, error)

	// Replace cancels any pending subscription the host has for the package
	// and inserts a fresh one, so a retried purchase always tracks the latest
	// payment link.
	Replace(ctx context.Context, sub *entity.HostPackage) error
	FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*entity.HostPackage, error)
	FindActiveByHostID(ctx context.Context, hostID uuid.UUID, now time.Time) (*entity.HostPackage, error)

	// FindForUpdate locks the host's most recent subscription to the package.
	FindForUpdate(ctx context.Context, tx pgx.Tx, hostID, packageID uuid.UUID) (*entity.HostPackage, error)

	// ActivateTx stamps the subscription window. Guarded on pending_payment
	// so a replayed settlement event never re-stamps the dates.
	ActivateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, start, end time.Time) (bool, error)
	CancelPendingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
}

type hostPackageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHostPackageRepository(db database.PgxIface, log *zap.Logger) HostPackageRepository {
	return &hostPackageRepository{
		db:  db,
		log: log.With(zap.String("repository", "host_package")),
	}
}

func (r *hostPackageRepository) FindPackageByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	query := `
		SELECT id, name, price, duration_days, status, created_at, updated_at
		FROM packages
		WHERE id = $1
	`

	var pkg entity.Package
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.Price,
		&pkg.DurationDays,
		&pkg.Status,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by ID",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return nil, fmt.Errorf("find package by ID %s: %w", id.String(), err)
	}

	return &pkg, nil
}

func (r *hostPackageRepository) ListPackages(ctx context.Context) ([]*entity.Package, error) {
	query := `
		SELECT id, name, price, duration_days, status, created_at, updated_at
		FROM packages
		WHERE status = 'active'
		ORDER BY price
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list packages", zap.Error(err))
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []*entity.Package
	for rows.Next() {
		var pkg entity.Package
		err := rows.Scan(&pkg.ID, &pkg.Name, &pkg.Price, &pkg.DurationDays, &pkg.Status, &pkg.CreatedAt, &pkg.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, &pkg)
	}

	return packages, rows.Err()
}

const hostPackageColumns = `id, host_id, package_id, status, start_date, end_date, duration_days, order_code, created_at`

func (r *hostPackageRepository) Replace(ctx context.Context, sub *entity.HostPackage) error {
	cancelQuery := `
		UPDATE host_packages
		SET status = 'cancelled'
		WHERE host_id = $1 AND package_id = $2 AND status = 'pending_payment'
	`

	_, err := r.db.Exec(ctx, cancelQuery, sub.HostID, sub.PackageID)
	if err != nil {
		r.log.Error("Failed to cancel pending host packages",
			zap.Error(err),
			zap.String("host_id", sub.HostID.String()),
		)
		return fmt.Errorf("cancel pending host packages for host %s: %w", sub.HostID.String(), err)
	}

	insertQuery := `
		INSERT INTO host_packages (id, host_id, package_id, status, start_date, end_date, duration_days, order_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, insertQuery,
		sub.ID,
		sub.HostID,
		sub.PackageID,
		sub.Status,
		sub.StartDate,
		sub.EndDate,
		sub.DurationDays,
		sub.OrderCode,
		sub.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create host package",
			zap.Error(err),
			zap.String("host_id", sub.HostID.String()),
		)
		return fmt.Errorf("create host package for host %s: %w", sub.HostID.String(), err)
	}

	return nil
}

func (r *hostPackageRepository) FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*entity.HostPackage, error) {
	query := `
		SELECT ` + hostPackageColumns + `
		FROM host_packages
		WHERE host_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, hostID)
	if err != nil {
		r.log.Error("Failed to find host packages",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return nil, fmt.Errorf("find host packages for host %s: %w", hostID.String(), err)
	}
	defer rows.Close()

	var subs []*entity.HostPackage
	for rows.Next() {
		sub, err := scanHostPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan host package row: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

func (r *hostPackageRepository) FindActiveByHostID(ctx context.Context, hostID uuid.UUID, now time.Time) (*entity.HostPackage, error) {
	query := `
		SELECT ` + hostPackageColumns + `
		FROM host_packages
		WHERE host_id = $1 AND status = 'active' AND start_date <= $2 AND end_date >= $2
		ORDER BY end_date DESC
		LIMIT 1
	`

	sub, err := scanHostPackage(r.db.QueryRow(ctx, query, hostID, now))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active host package",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return nil, fmt.Errorf("find active host package for host %s: %w", hostID.String(), err)
	}

	return sub, nil
}

func (r *hostPackageRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, hostID, packageID uuid.UUID) (*entity.HostPackage, error) {
	query := `
		SELECT ` + hostPackageColumns + `
		FROM host_packages
		WHERE host_id = $1 AND package_id = $2
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`

	sub, err := scanHostPackage(tx.QueryRow(ctx, query, hostID, packageID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock host package for host %s: %w", hostID.String(), err)
	}

	return sub, nil
}

func (r *hostPackageRepository) ActivateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		UPDATE host_packages
		SET status = 'active', start_date = $2, end_date = $3
		WHERE id = $1 AND status = 'pending_payment'
	`

	result, err := tx.Exec(ctx, query, id, start, end)
	if err != nil {
		return false, fmt.Errorf("activate host package %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *hostPackageRepository) CancelPendingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `
		UPDATE host_packages
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'pending_payment'
	`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("cancel host package %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func scanHostPackage(row pgx.Row) (*entity.HostPackage, error) {
	var sub entity.HostPackage
	err := row.Scan(
		&sub.ID,
		&sub.HostID,
		&sub.PackageID,
		&sub.Status,
		&sub.StartDate,
		&sub.EndDate,
		&sub.DurationDays,
		&sub.OrderCode,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
