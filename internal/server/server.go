// Package server exposes the note store and the translation service over
// HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dailynote.app/notes-api/internal/config"
	"dailynote.app/notes-api/internal/logging"
	"dailynote.app/notes-api/internal/models"
)

// Store is the note persistence boundary.
type Store interface {
	CreateNote(ctx context.Context, in models.CreateNoteInput) (*models.Note, error)
	GetNote(ctx context.Context, id int64) (*models.Note, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	UpdateNote(ctx context.Context, in models.UpdateNoteInput) (*models.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	SearchNotes(ctx context.Context, query string) ([]models.Note, error)
	ReorderNotes(ctx context.Context, orderedIDs []int64) error
}

// Translator is the translation boundary.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

type Server struct {
	echo       *echo.Echo
	store      Store
	translator Translator
	cfg        config.Config
	log        *slog.Logger
}

func New(cfg config.Config, store Store, translator Translator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:       e,
		store:      store,
		translator: translator,
		cfg:        cfg,
		log:        logging.ForService("server"),
	}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.echo.GET("/healthz", s.Healthz)

	s.echo.GET("/notes", s.ListNotes)
	s.echo.POST("/notes", s.CreateNote)
	s.echo.GET("/notes/search", s.SearchNotes)
	s.echo.POST("/notes/reorder", s.ReorderNotes)
	s.echo.POST("/notes/translate", s.TranslateText)
	s.echo.GET("/notes/:id", s.GetNote)
	s.echo.PUT("/notes/:id", s.UpdateNote)
	s.echo.DELETE("/notes/:id", s.DeleteNote)
	s.echo.POST("/notes/:id/translate", s.TranslateNote)
}

// Echo exposes the router, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info("starting HTTP server", "addr", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
