package router

import (
	"net/http"

	"github.com/gorilla/mux"

	apicontext "github.com/dtroode/socialgraph-server/internal/api/context"
	"github.com/dtroode/socialgraph-server/internal/api/http/handler"
	"github.com/dtroode/socialgraph-server/internal/api/http/middleware"
	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/metrics"
)

// Router wires the public HTTP API.
type Router struct {
	relationService  handler.RelationService
	profileService   handler.ProfileService
	reconcileService handler.ReconcileService
	contextManager   *apicontext.Manager
	logger           *logger.Logger
}

// New creates a Router. reconcileService may be nil, which leaves the admin
// endpoint unregistered.
func New(
	relationService handler.RelationService,
	profileService handler.ProfileService,
	reconcileService handler.ReconcileService,
	contextManager *apicontext.Manager,
	logger *logger.Logger,
) *Router {
	return &Router{
		relationService:  relationService,
		profileService:   profileService,
		reconcileService: reconcileService,
		contextManager:   contextManager,
		logger:           logger,
	}
}

// Register builds the HTTP handler tree with logging and metrics middleware.
func (r *Router) Register() *mux.Router {
	m := mux.NewRouter()
	m.Use(middleware.NewLogging(r.contextManager, r.logger).Handle)
	m.Use(middleware.Metrics)

	r.registerUserRoutes(m.PathPrefix("/users").Subrouter())
	r.registerAdminRoutes(m.PathPrefix("/admin").Subrouter())
	m.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return m
}

func (r *Router) registerUserRoutes(s *mux.Router) {
	relation := handler.NewRelation(r.relationService, r.logger)
	profile := handler.NewProfile(r.profileService, r.logger)

	s.HandleFunc("/follow/{followerId}", relation.Follow).Methods(http.MethodPost)
	s.HandleFunc("/unfollow/{followerId}", relation.Unfollow).Methods(http.MethodPost)
	s.HandleFunc("/profile/{id}", profile.Get).Methods(http.MethodGet)
	s.HandleFunc("/{id}/following/{targetId}", relation.IsFollowing).Methods(http.MethodGet)
}

func (r *Router) registerAdminRoutes(s *mux.Router) {
	if r.reconcileService == nil {
		return
	}

	admin := handler.NewAdmin(r.reconcileService, r.logger)
	s.HandleFunc("/reconcile", admin.Reconcile).Methods(http.MethodPost)
}
