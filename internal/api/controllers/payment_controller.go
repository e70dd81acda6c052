package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fiesta/internal/models/request_models"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentIntentServiceInterface
}

func NewPaymentController(paymentService services.PaymentIntentServiceInterface) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// CreatePaymentIntent godoc
// @Summary Create a payment intent for a transaction
// @Description Create a destination-charge payment intent grouped under the transaction
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentIntentRequest true "Create Payment Intent Request"
// @Success 200 {object} utils.APIResponse
// @Router /payments/intents [post]
func (p *PaymentController) CreatePaymentIntent(c *gin.Context) {

	var request request_models.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := p.paymentService.CreateIntent(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Payment intent created successfully")
}

// CapturePaymentIntent godoc
// @Summary Capture a manual-capture payment intent
// @Description Capture a sub-amount of an authorization and pay it out to the provider
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CapturePaymentIntentRequest true "Capture Payment Intent Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/intents/capture [post]
func (p *PaymentController) CapturePaymentIntent(c *gin.Context) {

	var request request_models.CapturePaymentIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := p.paymentService.CaptureIntent(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Payment intent captured successfully")
}

// CancelPaymentIntent godoc
// @Summary Cancel a payment intent
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CancelPaymentIntentRequest true "Cancel Payment Intent Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/intents/cancel [post]
func (p *PaymentController) CancelPaymentIntent(c *gin.Context) {

	var request request_models.CancelPaymentIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := p.paymentService.CancelIntent(c.Request.Context(), request.IntentID, request.Reason); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"paymentIntentId": request.IntentID}, "Payment intent canceled successfully")
}

// CreateSetupIntent godoc
// @Summary Create a setup intent to save a payment method
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.SetupIntentRequest true "Setup Intent Request"
// @Success 200 {object} utils.APIResponse
// @Router /payments/setup-intents [post]
func (p *PaymentController) CreateSetupIntent(c *gin.Context) {

	var request request_models.SetupIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := p.paymentService.CreateSetupIntent(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Setup intent created successfully")
}

// RefundPayment godoc
// @Summary Refund a payment intent
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.RefundRequest true "Refund Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/refunds [post]
func (p *PaymentController) RefundPayment(c *gin.Context) {

	var request request_models.RefundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := p.paymentService.Refund(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Refund created successfully")
}
