package routes

import (
	"log"
	"net/http"

	"practicetests/handlers"
	"practicetests/middleware"
	"practicetests/models"
	"practicetests/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards are served from a different origin in development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	questionHandler *handlers.QuestionHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	requireAuth := middleware.AuthMiddleware(jwtSecret)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	// API routes
	api := router.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/profile", requireAuth, authHandler.GetProfile)
		}

		// Question routes, public reads and admin writes
		questions := api.Group("/questions")
		{
			questions.GET("", questionHandler.ListQuestions)
			questions.GET("/:id", questionHandler.GetQuestion)
			questions.POST("", requireAuth, requireAdmin, questionHandler.CreateQuestion)
			questions.PUT("/:id", requireAuth, requireAdmin, questionHandler.UpdateQuestion)
			questions.DELETE("/:id", requireAuth, requireAdmin, questionHandler.DeleteQuestion)
		}
	}

	// WebSocket endpoint streaming question change events to admins
	router.GET("/ws/questions", middleware.WebSocketAuth(jwtSecret), requireAdmin, func(c *gin.Context) {
		claims, _ := middleware.CurrentUser(c)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %d: %v", claims.UserID, err)
			return
		}

		log.Printf("WebSocket connection established for user %d (%s)", claims.UserID, claims.Email)
		hub.RegisterClient(conn, claims.UserID, claims.Email)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
