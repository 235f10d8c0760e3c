package handler

import (
	"context"
	"net/http"
	"strconv"

	"sound-service/configs/middleware"
	"sound-service/internal/models"
	"sound-service/internal/service"
	"sound-service/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	connectionService *service.ConnectionService
}

func NewConnectionHandler(connectionService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// @Summary Send a connection request
// @Description Send (or re-send after removal) a connection request to another user
// @Tags connections
// @Accept json
// @Produce json
// @Param request body models.SendConnectionRequest true "Receiver"
// @Success 201 {object} models.ConnectionResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /connections/requests [post]
func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req models.SendConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	conn, err := h.connectionService.SendRequest(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, conn.ToResponse())
}

// @Summary List sent requests
// @Description Pending connection requests the authenticated user initiated
// @Tags connections
// @Produce json
// @Success 200 {array} models.PendingRequestResponse
// @Router /connections/requests/sent [get]
func (h *ConnectionHandler) SentList(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	requests, err := h.connectionService.SentList(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// @Summary List received requests
// @Description Pending connection requests addressed to the authenticated user
// @Tags connections
// @Produce json
// @Success 200 {array} models.PendingRequestResponse
// @Router /connections/requests/received [get]
func (h *ConnectionHandler) RequestList(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	requests, err := h.connectionService.RequestList(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// @Summary List friends
// @Description Paginated accepted connections, optionally filtered by name or email
// @Tags connections
// @Produce json
// @Param search query string false "Case-insensitive substring match"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} models.FriendListResponse
// @Router /connections/friends [get]
func (h *ConnectionHandler) FriendList(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	list, err := h.connectionService.FriendList(c.Request.Context(), userID, search, page, limit)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}

// @Summary Accept a connection request
// @Tags connections
// @Produce json
// @Param connectionId path int true "Connection ID"
// @Success 200 {object} models.ConnectionResponse
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /connections/requests/{connectionId}/accept [patch]
func (h *ConnectionHandler) AcceptRequest(c *gin.Context) {
	h.answerRequest(c, h.connectionService.AcceptRequest)
}

// @Summary Reject a connection request
// @Tags connections
// @Produce json
// @Param connectionId path int true "Connection ID"
// @Success 200 {object} models.ConnectionResponse
// @Router /connections/requests/{connectionId}/reject [patch]
func (h *ConnectionHandler) RejectRequest(c *gin.Context) {
	h.answerRequest(c, h.connectionService.RejectRequest)
}

// @Summary Cancel a connection
// @Description Withdraw a pending request or an accepted connection
// @Tags connections
// @Produce json
// @Param connectionId path int true "Connection ID"
// @Success 200 {object} models.ConnectionResponse
// @Router /connections/{connectionId}/cancel [patch]
func (h *ConnectionHandler) CancelRequest(c *gin.Context) {
	h.answerRequest(c, h.connectionService.CancelRequest)
}

// @Summary Remove a friend
// @Tags connections
// @Produce json
// @Param userId path int true "Other user ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /connections/friends/{userId} [patch]
func (h *ConnectionHandler) RemoveFriend(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	otherUserID, err := parseIDParam(c, "userId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID format"})
		return
	}

	if err := h.connectionService.RemoveFriend(c.Request.Context(), userID, otherUserID); err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "connection removed"})
}

// @Summary Block a user
// @Tags connections
// @Accept json
// @Produce json
// @Param request body models.BlockUserRequest true "User to block"
// @Success 200 {object} models.ConnectionResponse
// @Router /connections/block [post]
func (h *ConnectionHandler) BlockUser(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req models.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	conn, err := h.connectionService.BlockUser(c.Request.Context(), userID, req.UserID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conn.ToResponse())
}

func (h *ConnectionHandler) answerRequest(c *gin.Context, op func(ctx context.Context, connectionID, actorID uint) (*models.Connection, error)) {
	userID := c.MustGet("user_id").(uint)

	connectionID, err := parseIDParam(c, "connectionId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid connection ID format"})
		return
	}

	conn, err := op(c.Request.Context(), connectionID, userID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conn.ToResponse())
}

// Register routes
func (h *ConnectionHandler) RegisterRoutes(r *gin.RouterGroup) {
	connections := r.Group("/connections")
	{
		connections.Use(middleware.Auth())
		connections.POST("/requests", h.SendRequest)
		connections.GET("/requests/sent", h.SentList)
		connections.GET("/requests/received", h.RequestList)
		connections.GET("/friends", h.FriendList)
		connections.PATCH("/requests/:connectionId/accept", h.AcceptRequest)
		connections.PATCH("/requests/:connectionId/reject", h.RejectRequest)
		connections.PATCH("/:connectionId/cancel", h.CancelRequest)
		connections.PATCH("/friends/:userId", h.RemoveFriend)
		connections.POST("/block", h.BlockUser)
	}
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
