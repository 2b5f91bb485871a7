package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shivesh4/MindPath/internal/dtos"
	"github.com/Shivesh4/MindPath/internal/middlewares"
	"github.com/Shivesh4/MindPath/internal/models"
	"github.com/Shivesh4/MindPath/internal/services"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// RequestJoin handles POST /sessions/:id/attendees
func (h *BookingHandler) RequestJoin(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	studentID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	request, err := h.bookingService.RequestJoin(c.Request.Context(), sessionID, studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, requestResponse(request))
}

// Leave handles DELETE /sessions/:id/attendees
func (h *BookingHandler) Leave(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	studentID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.bookingService.Leave(c.Request.Context(), sessionID, studentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"left": true})
}

// ListAttendees handles GET /sessions/:id/attendees
func (h *BookingHandler) ListAttendees(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	callerID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	attendees, err := h.bookingService.ListAttendees(c.Request.Context(), sessionID, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dtos.AttendeeResponse, 0, len(attendees))
	for _, a := range attendees {
		out = append(out, dtos.AttendeeResponse{
			SessionID: a.SessionID,
			StudentID: a.StudentID,
			JoinedAt:  a.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// ListRequests handles GET /requests?status= (tutor only)
func (h *BookingHandler) ListRequests(c *gin.Context) {
	tutorID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	status := models.JoinRequestStatus(c.Query("status"))
	switch status {
	case "", models.JoinRequestStatusPending, models.JoinRequestStatusApproved, models.JoinRequestStatusRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	requests, err := h.bookingService.ListRequests(c.Request.Context(), tutorID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dtos.JoinRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, requestResponse(&requests[i]))
	}

	c.JSON(http.StatusOK, out)
}

// DecideRequest handles PUT /requests (tutor only)
func (h *BookingHandler) DecideRequest(c *gin.Context) {
	var req dtos.DecideRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tutorID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var (
		result *models.JoinRequest
		err    error
	)
	if req.Action == "approve" {
		result, err = h.bookingService.Approve(c.Request.Context(), req.RequestID, tutorID)
	} else {
		result, err = h.bookingService.Deny(c.Request.Context(), req.RequestID, tutorID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requestResponse(result))
}

func requestResponse(r *models.JoinRequest) dtos.JoinRequestResponse {
	return dtos.JoinRequestResponse{
		ID:        r.ID,
		SessionID: r.SessionID,
		StudentID: r.StudentID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		DecidedAt: r.DecidedAt,
	}
}
