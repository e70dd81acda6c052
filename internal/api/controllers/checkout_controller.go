package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fiesta/internal/models/request_models"
	"fiesta/internal/services"
	"fiesta/pkg/utils"
)

type CheckoutController struct {
	checkoutService services.CheckoutServiceInterface
}

func NewCheckoutController(checkoutService services.CheckoutServiceInterface) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// InitiateMultiCheckout godoc
// @Summary Start a multi-item cart checkout
// @Description Initiate one transaction per cart item and open a single payment intent for the total
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body request_models.InitiateMultiCheckoutRequest true "Initiate Multi Checkout Request"
// @Success 200 {object} utils.APIResponse
// @Router /checkout/initiate [post]
func (ch *CheckoutController) InitiateMultiCheckout(c *gin.Context) {

	var request request_models.InitiateMultiCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := ch.checkoutService.InitiateMultiCheckout(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Checkout initiated successfully")
}

// ConfirmMultiCheckout godoc
// @Summary Confirm a multi-item cart checkout
// @Description Confirm payment on each item transaction after the shared intent succeeded
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body request_models.ConfirmMultiCheckoutRequest true "Confirm Multi Checkout Request"
// @Success 200 {object} utils.APIResponse
// @Router /checkout/confirm [post]
func (ch *CheckoutController) ConfirmMultiCheckout(c *gin.Context) {

	var request request_models.ConfirmMultiCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := ch.checkoutService.ConfirmMultiCheckout(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Checkout confirmed")
}
