// Package httpapi exposes the PlaceKeeper REST API over gin. Sessions ride
// in a signed cookie; photo content is served either from the uploads
// directory or through presigned object-storage URLs.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/placekeeper/placekeeper/internal/logging"
	"github.com/placekeeper/placekeeper/internal/server/config"
	"github.com/placekeeper/placekeeper/internal/server/services"
)

// Server carries the HTTP transport state: services, config, and the
// directory to serve statically when the disk photo backend is active.
type Server struct {
	config    *config.Config
	logger    logging.Logger
	users     *services.UserService
	places    *services.PlaceService
	photos    *services.PhotoService
	jwtSecret []byte

	// uploadsDir is empty when photos live in object storage.
	uploadsDir string
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService,
	ps *services.PlaceService, phs *services.PhotoService, uploadsDir string) *Server {
	return &Server{
		config:     cfg,
		logger:     l.With("module", "http_server"),
		users:      us,
		places:     ps,
		photos:     phs,
		jwtSecret:  []byte(cfg.SecretKey),
		uploadsDir: uploadsDir,
	}
}

// Router builds the gin engine with all middleware and routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(s.cors())

	r.POST("/register", s.register)
	r.POST("/login", s.login)
	r.GET("/profile", s.profile)
	r.POST("/logout", s.logout)

	r.POST("/upload-by-link", s.uploadByLink)
	r.POST("/upload", s.upload)

	authed := r.Group("/", s.requireAuth())
	authed.POST("/places", s.createPlace)
	authed.GET("/places", s.listOwnedPlaces)
	authed.PUT("/places", s.updatePlace)

	r.GET("/places/:id", s.getPlace)

	if s.uploadsDir != "" {
		r.Static("/uploads", s.uploadsDir)
	}

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.config.EndpointAddrHTTP,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
