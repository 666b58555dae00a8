package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placekeeper/placekeeper/internal/server/models"
)

type placeRequest struct {
	Title       string   `json:"title" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extraInfo"`
	CheckIn     string   `json:"checkIn"`
	CheckOut    string   `json:"checkOut"`
	MaxGuests   int      `json:"maxGuests" binding:"required,min=1"`
}

type updatePlaceRequest struct {
	ID string `json:"id" binding:"required"`
	placeRequest
}

func (r *placeRequest) fields() *models.PlaceFields {
	return &models.PlaceFields{
		Title:       r.Title,
		Address:     r.Address,
		Photos:      r.Photos,
		Description: r.Description,
		Perks:       r.Perks,
		ExtraInfo:   r.ExtraInfo,
		CheckIn:     r.CheckIn,
		CheckOut:    r.CheckOut,
		MaxGuests:   r.MaxGuests,
	}
}

// POST /places
func (s *Server) createPlace(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	place, err := s.places.Create(c.Request.Context(), c.GetString(ctxUserID), req.fields())
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, place)
}

// GET /places returns the caller's own listings.
func (s *Server) listOwnedPlaces(c *gin.Context) {
	list, err := s.places.ListOwned(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		s.handleError(c, err)
		return
	}
	if list == nil {
		list = []*models.Place{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /places/:id is public: listing detail pages render without a session.
func (s *Server) getPlace(c *gin.Context) {
	place, err := s.places.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// PUT /places replaces every mutable field of the listing named in the body.
func (s *Server) updatePlace(c *gin.Context) {
	var req updatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	if _, err := s.places.Update(c.Request.Context(), c.GetString(ctxUserID), req.ID, req.fields()); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, "ok")
}
