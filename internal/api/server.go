// Package api exposes the recommendation services over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sahoo-ansu/I-MED/internal/models"
	"github.com/sahoo-ansu/I-MED/internal/recommend"
)

const (
	DefaultMaxBodyBytes = 1 << 20
	readyTimeout        = 2 * time.Second
)

// Store is the read side the HTTP surface needs.
type Store interface {
	ListConditions(ctx context.Context) ([]*models.Condition, error)
	ListMedicines(ctx context.Context) ([]*models.Medicine, error)
	GetMedicine(ctx context.Context, id int64) (*models.Medicine, error)
	ListRecommendationsByUser(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error)
	Ping(ctx context.Context) error
}

type StaticRecommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.StaticResult, error)
}

type GenerativeRecommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.GenerativeResult, error)
}

type Options struct {
	// Strategy decides what POST /api/medicine does.
	Strategy       recommend.Strategy
	MaxBodyBytes   int64
	AllowedOrigins []string
}

type Server struct {
	static     StaticRecommender
	generative GenerativeRecommender
	store      Store
	opts       Options
	logger     *zap.Logger
}

func NewServer(static StaticRecommender, generative GenerativeRecommender, store Store, opts Options, logger *zap.Logger) *Server {
	if opts.Strategy == "" {
		opts.Strategy = recommend.StrategyKnowledgeBase
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		static:     static,
		generative: generative,
		store:      store,
		opts:       opts,
		logger:     logger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		requestLogger(s.logger),
		gin.Recovery(),
		limitBodySize(s.opts.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  s.opts.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", userIDHeader},
			ExposeHeaders: []string{detectedConditionHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", s.handleReady)

	api := router.Group("/api")
	api.POST("/medicine", s.handleMedicine)
	api.POST("/medicine/static", s.handleStatic)
	api.POST("/medicine/generative", s.handleGenerative)
	api.GET("/medicines", s.handleListMedicines)
	api.GET("/medicines/:id", s.handleGetMedicine)
	api.GET("/conditions", s.handleListConditions)
	api.GET("/recommendations", s.handleListRecommendations)

	return router
}
