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

type CondotelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Condotel, error)
	FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*entity.Condotel, error)
}

type condotelRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCondotelRepository(db database.PgxIface, log *zap.Logger) CondotelRepository {
	return &condotelRepository{
		db:  db,
		log: log.With(zap.String("repository", "condotel")),
	}
}

func (r *condotelRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Condotel, error) {
	query := `
		SELECT id, host_id, name, nightly_rate, status, created_at, updated_at
		FROM condotels
		WHERE id = $1
	`

	var condotel entity.Condotel
	err := r.db.QueryRow(ctx, query, id).Scan(
		&condotel.ID,
		&condotel.HostID,
		&condotel.Name,
		&condotel.NightlyRate,
		&condotel.Status,
		&condotel.CreatedAt,
		&condotel.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find condotel by ID",
			zap.Error(err),
			zap.String("condotel_id", id.String()),
		)
		return nil, fmt.Errorf("find condotel by ID %s: %w", id.String(), err)
	}

	return &condotel, nil
}

func (r *condotelRepository) FindByHostID(ctx context.Context, hostID uuid.UUID) ([]*entity.Condotel, error) {
	query := `
		SELECT id, host_id, name, nightly_rate, status, created_at, updated_at
		FROM condotels
		WHERE host_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, hostID)
	if err != nil {
		r.log.Error("Failed to find condotels by host ID",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return nil, fmt.Errorf("find condotels by host ID %s: %w", hostID.String(), err)
	}
	defer rows.Close()

	var condotels []*entity.Condotel
	for rows.Next() {
		var condotel entity.Condotel
		err := rows.Scan(
			&condotel.ID,
			&condotel.HostID,
			&condotel.Name,
			&condotel.NightlyRate,
			&condotel.Status,
			&condotel.CreatedAt,
			&condotel.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan condotel row: %w", err)
		}
		condotels = append(condotels, &condotel)
	}

	return condotels, rows.Err()
}
