package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/placekeeper/placekeeper/internal/common"
	"github.com/placekeeper/placekeeper/internal/dbx"
	"github.com/placekeeper/placekeeper/internal/server/config"
	"github.com/placekeeper/placekeeper/internal/server/models"
	"github.com/placekeeper/placekeeper/internal/server/repositories/repomanager"
)

// PlaceService manages rental listings. Every mutation is bound to the
// authenticated owner; reads of a single listing are public.
type PlaceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPlaceService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *PlaceService {
	return &PlaceService{db: db, repomanager: m}
}

// Create stores a new listing owned by ownerID.
func (s *PlaceService) Create(ctx context.Context, ownerID string, fields *models.PlaceFields) (*models.Place, error) {
	if err := validatePlace(fields); err != nil {
		return nil, err
	}

	place := &models.Place{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       fields.Title,
		Address:     fields.Address,
		Photos:      fields.Photos,
		Description: fields.Description,
		Perks:       fields.Perks,
		ExtraInfo:   fields.ExtraInfo,
		CheckIn:     fields.CheckIn,
		CheckOut:    fields.CheckOut,
		MaxGuests:   fields.MaxGuests,
	}

	repo := s.repomanager.Places(s.db)
	p, err := repo.Create(ctx, place)
	if err != nil {
		return nil, fmt.Errorf("error creating place: %w", err)
	}
	return p, nil
}

// ListOwned returns every listing owned by ownerID, newest first.
func (s *PlaceService) ListOwned(ctx context.Context, ownerID string) ([]*models.Place, error) {
	repo := s.repomanager.Places(s.db)
	return repo.ListByOwner(ctx, ownerID)
}

// Get returns a single listing by id. No ownership check: listing detail
// pages are public.
func (s *PlaceService) Get(ctx context.Context, id string) (*models.Place, error) {
	repo := s.repomanager.Places(s.db)
	return repo.GetByID(ctx, id)
}

// Update replaces all mutable fields of the listing. The ownership check and
// the write run in one transaction so a listing cannot change owners between
// the two. A requester who does not own the listing gets
// common.ErrorForbidden.
func (s *PlaceService) Update(ctx context.Context, requesterID, placeID string, fields *models.PlaceFields) (*models.Place, error) {
	if err := validatePlace(fields); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Places(tx)

		place, err := repo.GetByID(ctx, placeID)
		if err != nil {
			return err
		}
		if place.OwnerID != requesterID {
			return common.ErrorForbidden
		}

		return repo.Replace(ctx, placeID, fields)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorForbidden) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating place: %w", err)
	}

	return s.Get(ctx, placeID)
}

func validatePlace(fields *models.PlaceFields) error {
	if strings.TrimSpace(fields.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if strings.TrimSpace(fields.Address) == "" {
		return fmt.Errorf("%w: address is required", common.ErrorValidation)
	}
	if fields.MaxGuests < 1 {
		return fmt.Errorf("%w: maxGuests must be at least 1", common.ErrorValidation)
	}
	return nil
}
