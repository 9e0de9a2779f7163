package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/db"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/models"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/scraper"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db     *db.DB
	repo   *db.TweetRepository
	logger *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB) *Router {
	return &Router{
		db:     database,
		repo:   db.NewTweetRepository(database.DB),
		logger: logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	engine.GET("/random", r.randomThreadHandler)
	engine.GET("/export", r.exportHandler)
}

func (r *Router) healthHandler(c *gin.Context) {
	if err := r.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "rtt-backend",
	})
}

// randomThreadHandler serves one random thread: a uniform pick over distinct
// conversation ids, then every tweet sharing the chosen id
func (r *Router) randomThreadHandler(c *gin.Context) {
	thread, err := r.repo.RandomThread(c.Request.Context())
	if err != nil {
		if errors.Is(err, db.ErrEmptyStore) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no tweets stored yet"})
			return
		}
		r.logger.Error("Failed to sample random thread", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sample thread"})
		return
	}

	views := make([]models.View, 0, len(thread))
	for i := range thread {
		views = append(views, thread[i].View())
	}
	c.JSON(http.StatusOK, gin.H{"tweets": views})
}

func (r *Router) exportHandler(c *gin.Context) {
	doc, err := scraper.BuildExport(c.Request.Context(), r.repo)
	if err != nil {
		r.logger.Error("Failed to build export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}
	c.JSON(http.StatusOK, doc)
}
