package router

import (
	"net/http"
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/config"
	"github.com/ryanmoffett1/harmonydrill/internal/handlers"
	"github.com/ryanmoffett1/harmonydrill/internal/services"
	"github.com/ryanmoffett1/harmonydrill/internal/theory"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitError(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
}

// Setup wires middleware, handlers and routes into a Gin engine.
func Setup(log *zap.Logger, catalog *theory.Catalog) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 365,
	})
	router.Use(sessions.Sessions("harmonydrill", store))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.Conf.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Session starts are the only write-heavy endpoint worth limiting.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitError,
		KeyFunc:      keyFunc,
	})

	registry := handlers.NewRegistry()
	registry.StartJanitor(10 * time.Minute)
	sink := services.NewFeedbackSink(log)

	sessionHandler := handlers.NewSessionHandler(log, catalog, registry, sink)
	statsHandler := handlers.NewStatsHandler(log)
	profileHandler := handlers.NewProfileHandler(log)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(ProfileLoader(log))
	{
		sessionRoutes := api.Group("/sessions")
		{
			sessionRoutes.POST("", limiter, sessionHandler.Start)
			sessionRoutes.POST("/:id/answers", sessionHandler.SubmitAnswer)
			sessionRoutes.POST("/:id/selection", sessionHandler.UpdateSelection)
			sessionRoutes.POST("/:id/abandon", sessionHandler.Abandon)
			sessionRoutes.GET("/:id/result", sessionHandler.Result)
		}

		api.GET("/rating", statsHandler.Rating)
		api.GET("/reviews/due", statsHandler.ReviewsDue)
		api.GET("/reviews/stats", statsHandler.ReviewStats)
		api.GET("/reviews/weakest", statsHandler.Weakest)
		api.GET("/recommendation", statsHandler.Recommendation)
		api.GET("/leaderboard", statsHandler.Leaderboard)
		api.GET("/history", statsHandler.History)

		api.GET("/profile", profileHandler.Show)
		api.PUT("/profile", profileHandler.UpdateName)
	}

	return router
}
