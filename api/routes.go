package api

import (
	"github.com/garnizeh/quizflag/internal/config"
	"github.com/garnizeh/quizflag/internal/db"
	"github.com/garnizeh/quizflag/internal/markdown"
	"github.com/garnizeh/quizflag/internal/repository/sqlite"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and renderer shared by all handlers
	repo := sqlite.New(db, nil)
	renderer := markdown.NewRenderer()

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(cfg.AdminPasswordHash(), cfg.JWTSecret, cfg.TokenDuration)
	participantHandler := NewParticipantHandler(repo, repo, renderer)
	adminHandler := NewAdminHandler(repo, repo, renderer)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/api/challenges", participantHandler.ListChallenges).Methods("GET")
	r.HandleFunc("/api/c/{slug}", participantHandler.GetChallenge).Methods("GET")
	r.HandleFunc("/api/c/{slug}/check", participantHandler.CheckAnswers).Methods("POST")

	// Authoring API, optionally mounted under a secret-bearing prefix
	adminPrefix := "/admin"
	if cfg.AdminPathSecret != "" {
		adminPrefix = "/admin-" + cfg.AdminPathSecret
	}
	admin := r.PathPrefix(adminPrefix).Subrouter()
	admin.HandleFunc("/auth/signin", authHandler.Signin).Methods("POST")

	protected := admin.NewRoute().Subrouter()
	protected.Use(AdminAuthMiddlewareWithSecret(cfg.JWTSecret))

	protected.HandleFunc("/challenges", adminHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges", adminHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}", adminHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}", adminHandler.UpdateChallenge).Methods("PUT")
	protected.HandleFunc("/challenges/{id}", adminHandler.DeleteChallenge).Methods("DELETE")
	protected.HandleFunc("/challenges/{id}/questions", adminHandler.CreateQuestion).Methods("POST")
	protected.HandleFunc("/challenges/{id}/questions", adminHandler.BulkSaveQuestions).Methods("PUT")
	protected.HandleFunc("/questions/{id}", adminHandler.UpdateQuestion).Methods("PUT")
	protected.HandleFunc("/questions/{id}", adminHandler.DeleteQuestion).Methods("DELETE")
	protected.HandleFunc("/preview", adminHandler.Preview).Methods("POST")

	return r
}
