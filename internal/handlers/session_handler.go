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

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create handles POST /sessions (tutor only)
func (h *SessionHandler) Create(c *gin.Context) {
	var req dtos.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tutorID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	session := &models.StudySession{
		TutorID:         tutorID,
		Title:           req.Title,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
	}

	if err := h.sessionService.Create(c.Request.Context(), session); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

// List handles GET /sessions (tutor's own sessions)
func (h *SessionHandler) List(c *gin.Context) {
	tutorID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sessions, err := h.sessionService.ListByTutor(c.Request.Context(), tutorID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dtos.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionResponse(&sessions[i]))
	}

	c.JSON(http.StatusOK, out)
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// UpdateStatus handles PUT /sessions/:id/status (owner only)
func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var req dtos.UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	err = h.sessionService.UpdateStatus(c.Request.Context(), sessionID, callerID, models.SessionStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// UpdateCapacity handles PUT /sessions/:id/capacity (owner only)
func (h *SessionHandler) UpdateCapacity(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var req struct {
		Capacity int `json:"capacity" binding:"required,gte=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID, ok := middlewares.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	err = h.sessionService.UpdateCapacity(c.Request.Context(), sessionID, callerID, req.Capacity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"capacity": req.Capacity})
}

func sessionResponse(s *models.StudySession) dtos.SessionResponse {
	return dtos.SessionResponse{
		ID:              s.ID,
		TutorID:         s.TutorID,
		Title:           s.Title,
		ScheduledAt:     s.ScheduledAt,
		DurationMinutes: s.DurationMinutes,
		Capacity:        s.Capacity,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
	}
}
