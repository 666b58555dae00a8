package places

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/placekeeper/placekeeper/internal/common"
	"github.com/placekeeper/placekeeper/internal/dbx"
	"github.com/placekeeper/placekeeper/internal/server/models"
)

// PostgresRepository implements listing storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const placeColumns = `id, owner_id, title, address, photos, description, perks, extra_info, check_in, check_out, max_guests, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, place *models.Place) (*models.Place, error) {

	query := `
		INSERT INTO places (id, owner_id, title, address, photos, description, perks, extra_info, check_in, check_out, max_guests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		place.ID, place.OwnerID, place.Title, place.Address, pq.Array(place.Photos),
		place.Description, pq.Array(place.Perks), place.ExtraInfo,
		place.CheckIn, place.CheckOut, place.MaxGuests,
	).Scan(&place.CreatedAt, &place.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return place, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	place := &models.Place{}
	var photos, perks pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&place.ID, &place.OwnerID, &place.Title, &place.Address, &photos,
		&place.Description, &perks, &place.ExtraInfo,
		&place.CheckIn, &place.CheckOut, &place.MaxGuests,
		&place.CreatedAt, &place.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	place.Photos = photos
	place.Perks = perks
	return place, nil
}

// ListByOwner returns every listing owned by ownerID, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select places: %w", err)
	}
	defer rows.Close()

	var result []*models.Place
	for rows.Next() {
		place := &models.Place{}
		var photos, perks pq.StringArray
		if err := rows.Scan(
			&place.ID, &place.OwnerID, &place.Title, &place.Address, &photos,
			&place.Description, &perks, &place.ExtraInfo,
			&place.CheckIn, &place.CheckOut, &place.MaxGuests,
			&place.CreatedAt, &place.UpdatedAt,
		); err != nil {
			return nil, err
		}
		place.Photos = photos
		place.Perks = perks
		result = append(result, place)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Replace overwrites every mutable field of the listing with id. The owner
// column is never touched. Zero rows affected means the listing is gone and
// maps to common.ErrorNotFound.
func (r *PostgresRepository) Replace(ctx context.Context, id string, fields *models.PlaceFields) error {
	query := `
		UPDATE places SET
			title = $2,
			address = $3,
			photos = $4,
			description = $5,
			perks = $6,
			extra_info = $7,
			check_in = $8,
			check_out = $9,
			max_guests = $10,
			updated_at = now()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		id, fields.Title, fields.Address, pq.Array(fields.Photos),
		fields.Description, pq.Array(fields.Perks), fields.ExtraInfo,
		fields.CheckIn, fields.CheckOut, fields.MaxGuests,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
