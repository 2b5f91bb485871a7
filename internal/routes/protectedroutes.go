package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Shivesh4/MindPath/internal/handlers"
	"github.com/Shivesh4/MindPath/internal/middlewares"
)

func RegisterProtectedEndpoints(
	router *gin.Engine,
	sessionHandler *handlers.SessionHandler,
	bookingHandler *handlers.BookingHandler,
	chatHandler *handlers.ChatHandler,
	jwtSecret string,
) {
	protected := router.Group("/api")
	protected.Use(middlewares.AuthMiddleware(jwtSecret))

	tutorOnly := middlewares.RequireTutor()

	protected.POST("/sessions", tutorOnly, sessionHandler.Create)
	protected.GET("/sessions", tutorOnly, sessionHandler.List)
	protected.GET("/sessions/:id", sessionHandler.Get)
	protected.PUT("/sessions/:id/status", tutorOnly, sessionHandler.UpdateStatus)
	protected.PUT("/sessions/:id/capacity", tutorOnly, sessionHandler.UpdateCapacity)

	protected.POST("/sessions/:id/attendees", bookingHandler.RequestJoin)
	protected.DELETE("/sessions/:id/attendees", bookingHandler.Leave)
	protected.GET("/sessions/:id/attendees", bookingHandler.ListAttendees)

	protected.GET("/requests", tutorOnly, bookingHandler.ListRequests)
	protected.PUT("/requests", tutorOnly, bookingHandler.DecideRequest)

	protected.GET("/messages/:contactId", chatHandler.History)
}
