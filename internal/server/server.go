package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/blob"
	"github.com/buildsafe/safety-backend/internal/config"
	"github.com/buildsafe/safety-backend/internal/database"
	"github.com/buildsafe/safety-backend/internal/metrics"
	"github.com/buildsafe/safety-backend/internal/service"
)

// maxUploadBytes caps a single photo or signature upload.
const maxUploadBytes = 10 << 20

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Templates   service.TemplateService
	Completions service.CompletionService
	History     service.HistoryService
	Projects    service.ProjectService
	Admin       service.AdminService
	Gate        service.AccessGate
	Tokens      *auth.TokenManager
	Blobs       blob.Store
	Metrics     *metrics.Metrics
	DB          database.Service
}

type Server struct {
	port        int
	corsOrigins []string

	templates   service.TemplateService
	completions service.CompletionService
	history     service.HistoryService
	projects    service.ProjectService
	admin       service.AdminService
	gate        service.AccessGate
	tokens      *auth.TokenManager
	blobs       blob.Store
	metrics     *metrics.Metrics
	db          database.Service
}

// New wires the handlers. Most callers want NewServer instead.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		port:        cfg.Port,
		corsOrigins: cfg.CORS.AllowedOrigins,
		templates:   deps.Templates,
		completions: deps.Completions,
		history:     deps.History,
		projects:    deps.Projects,
		admin:       deps.Admin,
		gate:        deps.Gate,
		tokens:      deps.Tokens,
		blobs:       deps.Blobs,
		metrics:     deps.Metrics,
		db:          deps.DB,
	}
}

func NewServer(cfg *config.Config, deps Deps) *http.Server {
	appServer := New(cfg, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
