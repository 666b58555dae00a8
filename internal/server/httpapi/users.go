package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placekeeper/placekeeper/internal/common"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /register
func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// POST /login sets the session cookie on success.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	user, token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, user)
}

// GET /profile returns the logged-in user, or JSON null when no session
// cookie is present. A present but invalid cookie is a 401: the client
// should drop it rather than keep retrying.
func (s *Server) profile(c *gin.Context) {
	token, err := c.Cookie(s.config.CookieName)
	if err != nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	user, err := s.users.CurrentUser(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// the account behind the cookie is gone
			c.JSON(http.StatusOK, nil)
			return
		}
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// POST /logout clears the session cookie.
func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.CookieName, "", -1, "/", s.config.CookieDomain, false, true)
	c.JSON(http.StatusOK, true)
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	maxAge := 0 // session cookie when tokens never expire
	if s.config.TokenValidityDuration > 0 {
		maxAge = int(s.config.TokenValidityDuration.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.CookieName, token, maxAge, "/", s.config.CookieDomain, false, true)
}
