// Package web serves hosted downloads over HTTP: a hosted link of the form
// <base>/download/<hash> resolves here to the content-addressed file on
// disk.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/logging"
	"github.com/dmitrijs2005/premrelay/internal/server/files"
)

type Server struct {
	address string
	files   files.Repository
	logger  logging.Logger
}

func NewServer(address string, fileRepo files.Repository, logger logging.Logger) *Server {
	return &Server{
		address: address,
		files:   fileRepo,
		logger:  logger.With("module", "web"),
	}
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/", s.welcomeHandler())
	r.GET("/download/:hash", s.downloadHandler())

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func (s *Server) welcomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the API"})
	}
}

// downloadHandler resolves a content hash to the stored file and serves it
// as an attachment under its original filename.
//
// Returns:
//   - 200 with the file body
//   - 404 when the hash is unknown or the file is missing on disk
func (s *Server) downloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := c.Param("hash")

		file, err := s.files.GetByHash(c.Request.Context(), hash)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				s.logger.Error(c.Request.Context(), "failed to look up file", "hash", hash, "error", err.Error())
			}
			c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
			return
		}

		if _, err := os.Stat(file.Path); err != nil {
			s.logger.Error(c.Request.Context(), "stored file missing on disk", "hash", hash, "path", file.Path)
			c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
			return
		}

		c.FileAttachment(file.Path, file.OriginalFilename)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
