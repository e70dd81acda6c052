package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fiesta/internal/models/request_models"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

// maxWebhookBody caps how much of a webhook payload is read. Stripe's events
// stay well under this.
const maxWebhookBody = 1 << 16

type WebhookController struct {
	webhookService services.WebhookServiceInterface
}

func NewWebhookController(webhookService services.WebhookServiceInterface) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
	}
}

// HandleStripeWebhook verifies the Stripe-Signature header over the raw body
// before anything is parsed. Only a signature failure is a non-2xx.
func (w *WebhookController) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := w.webhookService.HandleStripeWebhook(c.Request.Context(), payload, signature); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Webhook signature verification failed")
		return
	}

	c.Status(http.StatusOK)
}

// HandleShippoWebhook ingests carrier tracking updates. Updates that do not
// apply to the transaction's current state are acked and dropped so the
// carrier stops retrying them.
func (w *WebhookController) HandleShippoWebhook(c *gin.Context) {
	var update request_models.ShippoTrackingUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := w.webhookService.HandleShippoWebhook(c.Request.Context(), update); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
