package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mobilitylab/trips-backend-go/internal/config"
	"github.com/mobilitylab/trips-backend-go/internal/database"
	"github.com/mobilitylab/trips-backend-go/internal/handler"
	"github.com/mobilitylab/trips-backend-go/internal/middleware"
	"github.com/mobilitylab/trips-backend-go/internal/repository"
	"github.com/mobilitylab/trips-backend-go/internal/service"
)

// SetupRouter builds the gin engine and wires all handlers
func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Trips Backend API is running",
		})
	})

	db := database.GetDB()

	staypointRepo := repository.NewStaypointRepository(db)
	triplegRepo := repository.NewTriplegRepository(db)
	tripRepo := repository.NewTripRepository(db)
	taskRepo := repository.NewAnalysisTaskRepository(db)

	staypointService := service.NewStaypointService(staypointRepo)
	triplegService := service.NewTriplegService(triplegRepo)
	tripService := service.NewTripService(tripRepo)
	taskService := service.NewAnalysisTaskService(taskRepo, db, cfg)

	staypointHandler := handler.NewStaypointHandler(staypointService)
	triplegHandler := handler.NewTriplegHandler(triplegService, cfg.SimplifyToleranceMeters)
	tripHandler := handler.NewTripHandler(tripService)
	taskHandler := handler.NewAnalysisTaskHandler(taskService)

	api := r.Group("/api/v1")
	{
		staypoints := api.Group("/staypoints")
		{
			staypoints.GET("", staypointHandler.GetStaypoints)
			staypoints.GET("/:id", staypointHandler.GetStaypointByID)
		}

		triplegs := api.Group("/triplegs")
		{
			triplegs.GET("", triplegHandler.GetTriplegs)
			triplegs.GET("/smoothed", triplegHandler.GetSmoothedTriplegs)
		}

		trips := api.Group("/trips")
		{
			trips.GET("", tripHandler.GetTrips)
			trips.GET("/stats", tripHandler.GetTripStats)
			trips.GET("/:id", tripHandler.GetTripByID)
		}

		// Task management is write-capable, keep it behind auth
		analysis := api.Group("/analysis")
		analysis.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			analysis.POST("/tasks", taskHandler.CreateTask)
			analysis.GET("/tasks", taskHandler.ListTasks)
			analysis.GET("/tasks/:id", taskHandler.GetTask)
		}
	}

	return r
}
