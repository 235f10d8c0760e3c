package handler

import (
	"net/http"

	"sound-service/internal/models"
	"sound-service/internal/service"
	"sound-service/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingService *service.BillingService
	webhookSecret  string
}

func NewBillingHandler(billingService *service.BillingService, webhookSecret string) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		webhookSecret:  webhookSecret,
	}
}

// @Summary Payment processor webhook
// @Description Subscription lifecycle events pushed by the payment processor
// @Tags billing
// @Accept json
// @Produce json
// @Param request body models.BillingEvent true "Processor event"
// @Success 200 {object} map[string]string
// @Router /billing/webhook [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	if c.GetHeader("X-Webhook-Secret") != h.webhookSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var event models.BillingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.billingService.ProcessEvent(c.Request.Context(), &event); err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event processed"})
}

// Register routes
func (h *BillingHandler) RegisterRoutes(r *gin.RouterGroup) {
	billing := r.Group("/billing")
	{
		// Authenticated by shared secret, not user JWT
		billing.POST("/webhook", h.Webhook)
	}
}
