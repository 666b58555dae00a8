// Package places provides the PostgreSQL-backed repository for rental
// listings.
package places

import (
	"context"

	"github.com/placekeeper/placekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, place *models.Place) (*models.Place, error)
	GetByID(ctx context.Context, id string) (*models.Place, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Place, error)
	Replace(ctx context.Context, id string, fields *models.PlaceFields) error
}
