package routes

import (
	"github.com/gin-gonic/gin"

	"go-adverse/handlers"
)

func SetupRouter(h *handlers.Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to Go Adverse!",
		})
	})

	// api routes
	api := r.Group("/api/adverse")
	{
		api.POST("/screen", h.Screen)
		api.POST("/score", h.ScoreArticle)
		api.GET("/timeranges", handlers.TimeRanges)
		api.GET("/screenings", h.ListScreenings)
		api.GET("/screenings/:id", h.GetScreening)
		api.GET("/screenings/:id/insights", h.GetInsights)
	}

	return r
}
